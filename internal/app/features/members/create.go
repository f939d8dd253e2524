// internal/app/features/members/create.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/kinhub/internal/app/system/normalize"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/app/system/txn"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleAdd handles POST /families/{familyID}/members: adds one member.
// Adding a mother also creates her branch in the same transaction, so a
// mother can never exist without a branch.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fam, err := h.requireCreatorFamily(ctx, r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var req addRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if !validBirthYear(req.BirthYear) {
		shared.WriteError(w, h.Log, errBirthYear)
		return
	}
	if req.ContactEmail != "" && !validate.SimpleEmailValid(req.ContactEmail) {
		shared.WriteError(w, h.Log,
			apperrors.Validation(apperrors.CodeInvalidInput, "malformed contact email"))
		return
	}

	m, err := h.buildMember(fam.ID, req)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var created models.Member
	err = txn.WithTransaction(ctx, h.DB.Client(), func(ctx context.Context) error {
		var err error
		created, err = h.members.Create(ctx, m)
		if err != nil {
			return err
		}
		if created.Role == models.RoleMother {
			_, err = h.branches.CreateForMother(ctx, fam.ID, created.ID, *created.SpouseOrder)
		}
		return err
	})
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	h.notifyCreator(fam, notify.EventMemberAdded, map[string]string{
		notify.FieldMemberName: created.FullName,
		notify.FieldMemberRole: created.Role,
	})
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) buildMember(familyID primitive.ObjectID, req addRequest) (models.Member, error) {
	var m models.Member
	switch normalize.Role(req.Role) {
	case models.RoleFather:
		m = models.NewFather(familyID, req.FullName, req.BirthYear)
	case models.RoleMother:
		m = models.NewMother(familyID, req.FullName, req.BirthYear, req.SpouseOrder)
	case models.RoleChild:
		var motherID *primitive.ObjectID
		if req.MotherID != "" {
			id, err := primitive.ObjectIDFromHex(req.MotherID)
			if err != nil {
				return models.Member{}, errBadID
			}
			motherID = &id
		}
		m = models.NewChild(familyID, req.FullName, req.BirthYear, motherID)
	default:
		return models.Member{}, apperrors.Validation(apperrors.CodeInvalidInput, "unknown member role")
	}

	m.Relationship = htmlsanitize.StripTags(req.Relationship)
	m.Deceased = req.Deceased
	m.DeathYear = req.DeathYear
	m.AvatarURL = req.AvatarURL
	m.Bio = htmlsanitize.Sanitize(req.Bio)
	m.ContactEmail = normalize.Email(req.ContactEmail)
	m.ContactPhone = req.ContactPhone
	m.SocialLinks = req.SocialLinks
	return m, nil
}
