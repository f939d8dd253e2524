// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/domain/models"
)

// ServeList handles GET /families/{familyID}/members. Any signed-in
// principal may read a family's member list; mutation stays
// creator-only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if _, err := h.families.GetByID(ctx, familyID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	members, err := h.members.ByFamily(ctx, familyID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}

// ServeMember handles GET /families/{familyID}/members/{memberID}.
func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	memberID, err := pathObjectID(r, "memberID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	m, err := h.members.GetByID(ctx, memberID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if m.FamilyID != familyID {
		shared.WriteError(w, h.Log, errMemberOutsideFamily)
		return
	}
	shared.WriteJSON(w, http.StatusOK, m)
}
