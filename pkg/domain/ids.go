// Package domain holds identifier types and small value objects shared across
// module boundaries. IDs are distinct types over uuid.UUID so the compiler
// rejects cross-type assignment.
package domain

import (
	"github.com/google/uuid"

	dErrors "regdesk/pkg/domain-errors"
)

// RegistrationID identifies one registration record.
type RegistrationID uuid.UUID

func (id RegistrationID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the id is the nil UUID.
func (id RegistrationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewRegistrationID returns a fresh random id.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// ParseRegistrationID parses and validates an id at a trust boundary.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseRegistrationID(raw string) (RegistrationID, error) {
	if raw == "" {
		return RegistrationID{}, dErrors.New(dErrors.CodeInvalidInput, "registration id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return RegistrationID{}, dErrors.New(dErrors.CodeInvalidInput, "registration id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return RegistrationID{}, dErrors.New(dErrors.CodeInvalidInput, "registration id must not be nil")
	}
	return RegistrationID(parsed), nil
}
