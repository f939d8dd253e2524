// internal/app/features/families/view.go
package families

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/domain/models"
)

// familyView is the aggregate a client needs to render one tree: the
// family itself, its members and branches, the derived setup step, and
// the active links to other families.
type familyView struct {
	Family      models.Family       `json:"family"`
	Members     []models.Member     `json:"members"`
	Branches    []models.Branch     `json:"branches"`
	CurrentStep string              `json:"current_step"`
	Links       []models.FamilyLink `json:"links"`
}

// ServeView handles GET /families/{familyID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

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
	members, err := h.members.ByFamily(ctx, familyID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	branches, err := h.branches.ByFamily(ctx, familyID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	links, err := h.links.ActiveForFamily(ctx, familyID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	// A family predating the guided flow simply reads as initialized.
	step := models.StepInitialized
	if flow, err := h.flows.GetByFamily(ctx, familyID); err == nil {
		step = flow.CurrentStep()
	}

	if members == nil {
		members = []models.Member{}
	}
	if branches == nil {
		branches = []models.Branch{}
	}
	if links == nil {
		links = []models.FamilyLink{}
	}

	shared.WriteJSON(w, http.StatusOK, familyView{
		Family:      fam,
		Members:     members,
		Branches:    branches,
		CurrentStep: step,
		Links:       links,
	})
}
