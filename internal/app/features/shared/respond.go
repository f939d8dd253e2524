// internal/app/features/shared/respond.go
//
// Package shared holds the JSON plumbing every feature handler uses:
// response writing, request decoding, and the mapping from error kinds
// to HTTP statuses.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; payloads here are small documents.
const maxBodyBytes = 1 << 20

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the error envelope: a stable machine-readable code, a
// human-readable message, and optional details. Internal errors never
// leak their cause; that goes to the log only.
type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusForbidden
	case apperrors.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the error envelope for err. Transient and unknown
// errors are logged with their cause and reported with a generic
// message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := StatusOf(err)

	var ae *apperrors.Error
	if !errors.As(err, &ae) {
		logger.Error("unhandled error", zap.Error(err))
		WriteJSON(w, status, errorBody{Code: "internal", Message: "internal error"})
		return
	}

	body := errorBody{Code: ae.Code, Message: ae.Message, Details: ae.Details}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", ae.Code), zap.Error(err))
		body.Message = "temporarily unavailable, retry later"
		body.Details = nil
	}
	WriteJSON(w, status, body)
}

// Decode reads the request body into dst, rejecting unknown fields and
// oversized payloads.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation(apperrors.CodeInvalidInput, "malformed request body")
	}
	return nil
}
