// internal/app/features/members/update.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/validate"
)

var errMemberOutsideFamily = apperrors.NotFound(apperrors.CodeMemberNotFound,
	"member does not belong to this family")

// HandleUpdate handles PATCH /families/{familyID}/members/{memberID}:
// display-field changes only, creator-only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fam, err := h.requireCreatorFamily(ctx, r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	memberID, err := pathObjectID(r, "memberID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	existing, err := h.members.GetByID(ctx, memberID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if existing.FamilyID != fam.ID {
		shared.WriteError(w, h.Log, errMemberOutsideFamily)
		return
	}

	var req updateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if req.BirthYear != nil && !validBirthYear(*req.BirthYear) {
		shared.WriteError(w, h.Log, errBirthYear)
		return
	}
	if req.ContactEmail != nil && *req.ContactEmail != "" && !validate.SimpleEmailValid(*req.ContactEmail) {
		shared.WriteError(w, h.Log,
			apperrors.Validation(apperrors.CodeInvalidInput, "malformed contact email"))
		return
	}
	if req.Bio != nil {
		clean := htmlsanitize.Sanitize(*req.Bio)
		req.Bio = &clean
	}
	if req.Relationship != nil {
		clean := htmlsanitize.StripTags(*req.Relationship)
		req.Relationship = &clean
	}

	updated, err := h.members.Update(ctx, memberID, memberstore.UpdateFields{
		FullName:     req.FullName,
		Relationship: req.Relationship,
		BirthYear:    req.BirthYear,
		Deceased:     req.Deceased,
		DeathYear:    req.DeathYear,
		AvatarURL:    req.AvatarURL,
		Bio:          req.Bio,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		SocialLinks:  req.SocialLinks,
		Verified:     req.Verified,
	})
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	h.notifyCreator(fam, notify.EventMemberUpdated, map[string]string{
		notify.FieldMemberName: updated.FullName,
	})
	shared.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /families/{familyID}/members/{memberID}.
// The family creator member is protected.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fam, err := h.requireCreatorFamily(ctx, r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	memberID, err := pathObjectID(r, "memberID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	existing, err := h.members.GetByID(ctx, memberID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if existing.FamilyID != fam.ID {
		shared.WriteError(w, h.Log, errMemberOutsideFamily)
		return
	}

	if err := h.members.Delete(ctx, memberID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	h.notifyCreator(fam, notify.EventMemberDeleted, map[string]string{
		notify.FieldMemberName: existing.FullName,
	})
	w.WriteHeader(http.StatusNoContent)
}
