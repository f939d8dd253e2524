// internal/app/features/families/helpers.go
package families

import (
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/go-chi/chi/v5"
)

var (
	errBadID     = apperrors.Validation(apperrors.CodeInvalidInput, "malformed id")
	errBirthYear = apperrors.Validation(apperrors.CodeInvalidInput, "birth year must be a 4-digit year")
)

func chiURLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func validBirthYear(y int) bool {
	return y >= 1000 && y <= 9999
}
