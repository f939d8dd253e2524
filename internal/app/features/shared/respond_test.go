package shared_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"go.uber.org/zap"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation(apperrors.CodeInvalidInput, "bad"), http.StatusUnprocessableEntity},
		{"not found", apperrors.NotFound(apperrors.CodeFamilyNotFound, "missing"), http.StatusNotFound},
		{"conflict", apperrors.Conflict(apperrors.CodeAlreadyLinked, "linked"), http.StatusConflict},
		{"unauthorized", apperrors.Unauthorized(apperrors.CodeNotAuthorized, "no"), http.StatusForbidden},
		{"transient", apperrors.Transient("db down", nil), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shared.StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	shared.WriteError(rec, zap.NewNop(), apperrors.Conflict(apperrors.CodeJoinCodeAlreadyUsed, "join code already consumed"))

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	body := rec.Body.String()
	if !strings.Contains(body, apperrors.CodeJoinCodeAlreadyUsed) {
		t.Errorf("body missing code: %s", body)
	}
}

func TestWriteError_TransientHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	shared.WriteError(rec, zap.NewNop(),
		apperrors.Transient("insert failed", http.ErrServerClosed))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if strings.Contains(rec.Body.String(), http.ErrServerClosed.Error()) {
		t.Error("transient response leaked the underlying cause")
	}
}

func TestDecode_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope": 1}`))
	var dst struct {
		Name string `json:"name"`
	}
	err := shared.Decode(req, &dst)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid_input, got %v", err)
	}
}
