// internal/app/features/families/setup.go
package families

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/creation"
	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type parentPayload struct {
	FullName    string `json:"full_name"`
	BirthYear   int    `json:"birth_year"`
	SpouseOrder int    `json:"spouse_order,omitempty"`
}

type setupParentsRequest struct {
	Father  *parentPayload  `json:"father,omitempty"`
	Mothers []parentPayload `json:"mothers"`
}

type setupParentsResponse struct {
	Father   *models.Member  `json:"father,omitempty"`
	Mothers  []models.Member `json:"mothers"`
	Branches []models.Branch `json:"branches"`
}

// HandleSetupParents handles POST /families/{familyID}/parents: the
// guided step that creates the root members and their branches.
func (h *Handler) HandleSetupParents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)
	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var req setupParentsRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var father *creation.ParentInput
	if req.Father != nil {
		if !validBirthYear(req.Father.BirthYear) {
			shared.WriteError(w, h.Log, errBirthYear)
			return
		}
		father = &creation.ParentInput{
			FullName:  req.Father.FullName,
			BirthYear: req.Father.BirthYear,
		}
	}
	mothers := make([]creation.ParentInput, 0, len(req.Mothers))
	for _, m := range req.Mothers {
		if !validBirthYear(m.BirthYear) {
			shared.WriteError(w, h.Log, errBirthYear)
			return
		}
		mothers = append(mothers, creation.ParentInput{
			FullName:    m.FullName,
			BirthYear:   m.BirthYear,
			SpouseOrder: m.SpouseOrder,
		})
	}

	res, err := h.Engine.SetupParents(ctx, familyID, p.ID, father, mothers)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	resp := setupParentsResponse{
		Father:   res.Father,
		Mothers:  res.Mothers,
		Branches: res.Branches,
	}
	shared.WriteJSON(w, http.StatusCreated, resp)
}

type childPayload struct {
	FullName  string `json:"full_name"`
	BirthYear int    `json:"birth_year"`
	MotherID  string `json:"mother_id,omitempty"`
}

type setupChildrenRequest struct {
	Children []childPayload `json:"children"`
}

// HandleSetupChildren handles POST /families/{familyID}/children: the
// guided step that populates the branches with children.
func (h *Handler) HandleSetupChildren(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)
	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var req setupChildrenRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	children := make([]creation.ChildInput, 0, len(req.Children))
	for _, c := range req.Children {
		if !validBirthYear(c.BirthYear) {
			shared.WriteError(w, h.Log, errBirthYear)
			return
		}
		in := creation.ChildInput{FullName: c.FullName, BirthYear: c.BirthYear}
		if c.MotherID != "" {
			motherID, err := primitive.ObjectIDFromHex(c.MotherID)
			if err != nil {
				shared.WriteError(w, h.Log, errBadID)
				return
			}
			in.MotherID = &motherID
		}
		children = append(children, in)
	}

	created, err := h.Engine.SetupChildren(ctx, familyID, p.ID, children)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if created == nil {
		created = []models.Member{}
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"children": created})
}
