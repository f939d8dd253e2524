// internal/app/policy/familypolicy/familypolicy.go
package familypolicy

import (
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsCreator reports whether the principal created the family. All
// mutating operations on a family are creator-only.
func IsCreator(f models.Family, principalID primitive.ObjectID) bool {
	return f.CreatorPrincipalID == principalID
}

// RequireCreator returns a not_authorized error unless the principal
// created the family.
func RequireCreator(f models.Family, principalID primitive.ObjectID) error {
	if !IsCreator(f, principalID) {
		return apperrors.Unauthorized(apperrors.CodeNotAuthorized,
			"only the family creator may perform this operation")
	}
	return nil
}
