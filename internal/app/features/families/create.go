// internal/app/features/families/create.go
package families

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/creation"
	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/policy/familypolicy"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Name             string `json:"name"`
	CreationType     string `json:"creation_type"`
	CreatorName      string `json:"creator_name"`
	CreatorBirthYear int    `json:"creator_birth_year"`
}

type createResponse struct {
	Family        models.Family `json:"family"`
	CreatorMember models.Member `json:"creator_member"`
	CurrentStep   string        `json:"current_step"`
}

// HandleCreate handles POST /families: initializes a tree for the
// authenticated principal.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)

	var req createRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if !validBirthYear(req.CreatorBirthYear) {
		shared.WriteError(w, h.Log, errBirthYear)
		return
	}

	res, err := h.Engine.CreateFamily(ctx, p.ID, creation.CreateFamilyInput{
		Name:             req.Name,
		CreationType:     req.CreationType,
		CreatorName:      req.CreatorName,
		CreatorBirthYear: req.CreatorBirthYear,
	})
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, createResponse{
		Family:        res.Family,
		CreatorMember: res.CreatorMember,
		CurrentStep:   res.Flow.CurrentStep(),
	})
}

// HandleSetMain handles POST /families/{familyID}/main: promotes the
// family to the principal's main family, demoting any previous holder.
func (h *Handler) HandleSetMain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)
	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	fam, err := h.families.GetByID(ctx, familyID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := familypolicy.RequireCreator(fam, p.ID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.families.SetMain(ctx, familyID, p.ID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"id": familyID, "is_main_family": true})
}

func pathObjectID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chiURLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, errBadID
	}
	return id, nil
}
