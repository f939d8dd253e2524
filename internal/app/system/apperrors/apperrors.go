// internal/app/system/apperrors/apperrors.go
//
// Package apperrors is the failure taxonomy for the family-graph core.
// Every operation reports failures as an *Error carrying a kind (used by
// the HTTP layer to pick a status), a stable machine-readable code, a
// human-readable message, and optional detail fields. Nothing in the core
// returns bare framework errors to callers.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for transport mapping.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindTransient    Kind = "transient"
)

// Stable machine-readable codes. These are part of the API contract;
// never rename one once clients depend on it.
const (
	CodeAgeOrderingViolation    = "age_ordering_violation"
	CodeInvalidSpouseOrder      = "invalid_spouse_order"
	CodeInvalidInput            = "invalid_input"
	CodeFamilyNotFound          = "family_not_found"
	CodeMemberNotFound          = "member_not_found"
	CodeBranchNotFound          = "branch_not_found"
	CodeFlowNotFound            = "flow_not_found"
	CodeDuplicateMainFamily     = "duplicate_main_family"
	CodeDuplicateBranchOrder    = "duplicate_branch_order"
	CodeProtectedMemberDeletion = "protected_member_deletion"
	CodeIssuanceExhausted       = "issuance_exhausted"
	CodeInvalidJoinCode         = "invalid_join_code"
	CodeJoinCodeAlreadyUsed     = "join_code_already_used"
	CodeJoinCodeNotEligible     = "join_code_not_eligible"
	CodeNoMainFamily            = "no_main_family"
	CodeSelfLinkForbidden       = "self_link_forbidden"
	CodeAlreadyLinked           = "already_linked"
	CodeNotAuthorized           = "not_authorized"
	CodeTransientStore          = "transient_store"
)

// Error is the single failure type the core returns.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with the given kind, code and message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new *Error.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// WithDetails returns the error with detail fields attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Validation, NotFound, Conflict, Unauthorized, and Transient are the
// shorthand constructors used throughout the stores and engines.
func Validation(code, message string) *Error   { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error     { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Error     { return New(KindConflict, code, message) }
func Unauthorized(code, message string) *Error { return New(KindUnauthorized, code, message) }

// Transient marks a retryable infrastructure failure.
func Transient(message string, err error) *Error {
	return Wrap(KindTransient, CodeTransientStore, message, err)
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the stable code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given stable code.
func IsCode(err error, code string) bool { return CodeOf(err) == code }
