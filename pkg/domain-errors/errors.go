// Package domainerrors defines the typed error vocabulary shared by services
// and the HTTP boundary. Services return these instead of raw errors so the
// transport layer can translate codes into status codes without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Codes are stable and machine-readable;
// they appear verbatim in HTTP error envelopes.
type Code string

const (
	// CodeInvalidInput covers malformed or out-of-range submission data.
	// Always user-recoverable, never retried server-side.
	CodeInvalidInput Code = "invalid_input"

	// CodeDuplicate signals an active registration already exists for the
	// normalized email. The conflicting record is referenced via Meta.
	CodeDuplicate Code = "duplicate_registration"

	// CodeUnauthorized covers both invalid identity assertions and callers
	// outside the admin identity set. Deliberately detail-free so responses
	// never leak admin set membership.
	CodeUnauthorized Code = "unauthorized"

	// CodeNotFound signals an unknown registration id.
	CodeNotFound Code = "not_found"

	// CodeAlreadyDecided is the idempotency guard on decisions: the record
	// already carries a terminal status and will not be flipped.
	CodeAlreadyDecided Code = "already_decided"

	// CodeConfiguration signals an unusable configuration snapshot
	// (non-positive fee, empty category list). Fatal to the request,
	// never silently defaulted.
	CodeConfiguration Code = "configuration_error"

	// CodeUnavailable signals a store or identity collaborator timeout or
	// failure. Retryable by the caller; no partial state was written.
	CodeUnavailable Code = "unavailable"

	// CodeInternal is the fallback for unexpected faults.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a stable code, a human-readable message, and
// optional machine-readable metadata for the response envelope.
type Error struct {
	Code    Code
	Message string
	Meta    map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause is kept
// for logs and errors.Is chains but never rendered to clients.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithMeta attaches a metadata key/value pair and returns the same error for
// chaining. Meta keys surface in the HTTP error envelope.
func (e *Error) WithMeta(key, value string) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]string)
	}
	e.Meta[key] = value
	return e
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err is not a domain
// error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MetaOf returns the metadata of err, or nil.
func MetaOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Meta
	}
	return nil
}

// MessageOf returns the message of err, or an empty string when err is not a
// domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
