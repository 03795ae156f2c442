package registration

import (
	"context"

	"regdesk/pkg/domain"
)

// Store is the external persistence collaborator. Implementations must make
// the two check-then-act sequences atomic:
//
//   - CreateActive must fail with sentinel.ErrConflict when a non-Rejected
//     record already exists for the same normalized email, even under
//     concurrent submissions.
//   - ApplyDecision must only transition a Pending record; a terminal record
//     yields sentinel.ErrInvalidState and an unknown id sentinel.ErrNotFound.
//
// Both id and normalized email are point-lookup keys.
//
//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store
type Store interface {
	// CreateActive persists a new Pending registration, enforcing the
	// at-most-one-active-record-per-email invariant atomically.
	CreateActive(ctx context.Context, reg *Registration) error

	FindByID(ctx context.Context, id domain.RegistrationID) (*Registration, error)

	// FindActiveByEmail returns the Pending or Approved record for a
	// normalized email, or sentinel.ErrNotFound.
	FindActiveByEmail(ctx context.Context, email string) (*Registration, error)

	// ApplyDecision atomically moves a Pending record to a terminal status.
	ApplyDecision(ctx context.Context, id domain.RegistrationID, decision Decision) (*Registration, error)

	// SetPaymentReferenceIfPending attaches a payment reference to a record
	// that is still Pending.
	SetPaymentReferenceIfPending(ctx context.Context, id domain.RegistrationID, reference string) (*Registration, error)

	// ListByStatus returns records in a status, oldest first. Backs the
	// admin moderation queue.
	ListByStatus(ctx context.Context, status Status) ([]*Registration, error)

	// ListByEmail returns every record ever created for a normalized email,
	// including Rejected ones, oldest first.
	ListByEmail(ctx context.Context, email string) ([]*Registration, error)
}
