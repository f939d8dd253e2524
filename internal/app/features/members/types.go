// internal/app/features/members/types.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/policy/familypolicy"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errBadID     = apperrors.Validation(apperrors.CodeInvalidInput, "malformed id")
	errBirthYear = apperrors.Validation(apperrors.CodeInvalidInput, "birth year must be a 4-digit year")
)

// addRequest is the ad hoc add-member payload. Structural fields depend
// on the role: spouse_order for mothers, mother_id (optional) for
// children.
type addRequest struct {
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
	BirthYear   int    `json:"birth_year"`
	SpouseOrder int    `json:"spouse_order,omitempty"`
	MotherID    string `json:"mother_id,omitempty"`

	Relationship string            `json:"relationship,omitempty"`
	Deceased     bool              `json:"deceased,omitempty"`
	DeathYear    *int              `json:"death_year,omitempty"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	Bio          string            `json:"bio,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	ContactPhone string            `json:"contact_phone,omitempty"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`
}

// updateRequest carries display-field changes; absent fields are left
// untouched.
type updateRequest struct {
	FullName     *string           `json:"full_name,omitempty"`
	Relationship *string           `json:"relationship,omitempty"`
	BirthYear    *int              `json:"birth_year,omitempty"`
	Deceased     *bool             `json:"deceased,omitempty"`
	DeathYear    *int              `json:"death_year,omitempty"`
	AvatarURL    *string           `json:"avatar_url,omitempty"`
	Bio          *string           `json:"bio,omitempty"`
	ContactEmail *string           `json:"contact_email,omitempty"`
	ContactPhone *string           `json:"contact_phone,omitempty"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`
	Verified     *bool             `json:"verified,omitempty"`
}

func validBirthYear(y int) bool {
	return y >= 1000 && y <= 9999
}

func pathObjectID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, errBadID
	}
	return id, nil
}

// requireCreatorFamily loads the family from the URL and checks the
// current principal created it.
func (h *Handler) requireCreatorFamily(ctx context.Context, r *http.Request) (models.Family, error) {
	familyID, err := pathObjectID(r, "familyID")
	if err != nil {
		return models.Family{}, err
	}
	fam, err := h.families.GetByID(ctx, familyID)
	if err != nil {
		return models.Family{}, err
	}
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return models.Family{}, apperrors.Unauthorized(apperrors.CodeNotAuthorized, "no principal")
	}
	if err := familypolicy.RequireCreator(fam, p.ID); err != nil {
		return models.Family{}, err
	}
	return fam, nil
}

// notifyCreator dispatches a fire-and-forget event to the family
// creator after a successful mutation.
func (h *Handler) notifyCreator(fam models.Family, kind string, fields map[string]string) {
	if h.Notifier == nil {
		return
	}
	if fields == nil {
		fields = map[string]string{}
	}
	fields[notify.FieldFamilyName] = fam.Name
	h.Notifier.Dispatch(fam.CreatorPrincipalID, kind, fields)
}
