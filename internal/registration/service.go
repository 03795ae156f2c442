package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"regdesk/internal/audit"
	"regdesk/internal/eventconfig"
	"regdesk/internal/platform/metrics"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

// Resolver yields the current configuration snapshot. Re-resolved on every
// operation; never cached across requests.
type Resolver interface {
	Resolve(ctx context.Context) (eventconfig.Snapshot, error)
}

// Service orchestrates submissions: validation, duplicate detection, fee
// resolution, and creation. It holds no mutable state of its own; all durable
// state lives in the store.
type Service struct {
	store    Store
	resolver Resolver
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(store Store, resolver Resolver, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// Submit validates a submission, prices it against the current configuration,
// and creates a Pending record. The duplicate check and the create are not a
// single atomic unit here; the store's conditional create closes the race, so
// two concurrent submissions for one email can never both succeed.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Registration, error) {
	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.metrics.RecordSubmission("error")
		return nil, err
	}

	norm, err := ValidateSubmission(sub, snap)
	if err != nil {
		s.metrics.RecordSubmission("invalid")
		return nil, err
	}

	// Early duplicate check for a friendly error before pricing. The
	// authoritative enforcement is the conditional create below.
	if existing, err := s.store.FindActiveByEmail(ctx, norm.Email); err == nil {
		s.metrics.RecordSubmission("duplicate")
		return nil, duplicateError(existing)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.RecordSubmission("error")
		return nil, storeError("check duplicate", err)
	}

	now := requestcontext.Now(ctx)
	amount, err := ComputeFee(norm.Category, snap, now)
	if err != nil {
		s.metrics.RecordSubmission("error")
		s.logger.ErrorContext(ctx, "fee resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"category", norm.Category,
			"config_version", snap.Version,
			"error", err.Error(),
		)
		return nil, err
	}

	reg := &Registration{
		ID:               domain.NewRegistrationID(),
		Category:         norm.Category,
		AmountDue:        amount,
		PaymentReference: norm.PaymentReference,
		Status:           StatusPending,
		CreatedAt:        now,
	}
	reg.Identity.Email = norm.Email
	reg.Identity.DisplayName = norm.DisplayName
	reg.Identity.Phone = norm.Phone

	start := time.Now()
	err = s.store.CreateActive(ctx, reg)
	s.metrics.ObserveStoreLatency("create", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race to a concurrent submission. Report the winner.
			s.metrics.RecordSubmission("duplicate")
			if existing, findErr := s.store.FindActiveByEmail(ctx, norm.Email); findErr == nil {
				return nil, duplicateError(existing)
			}
			return nil, dErrors.New(dErrors.CodeDuplicate, "an active registration already exists for this email")
		}
		s.metrics.RecordSubmission("error")
		return nil, storeError("create registration", err)
	}

	s.metrics.RecordSubmission("created")
	s.metrics.ObserveFee(amount)
	s.auditor.Emit(ctx, audit.Event{
		Timestamp:      now,
		Action:         audit.ActionRegistrationCreated,
		RegistrationID: reg.ID.String(),
		Email:          reg.Identity.Email,
		RequestID:      requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "registration created",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID.String(),
		"category", reg.Category,
		"amount_due", reg.AmountDue,
	)
	return reg, nil
}

// AttachPaymentReference sets the user-asserted proof token on a record that
// is still Pending. Terminal records keep their reference untouched.
func (s *Service) AttachPaymentReference(ctx context.Context, id domain.RegistrationID, reference string) (*Registration, error) {
	if err := ValidatePaymentReference(reference); err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payment reference is required")
	}

	start := time.Now()
	reg, err := s.store.SetPaymentReferenceIfPending(ctx, id, reference)
	s.metrics.ObserveStoreLatency("attach_payment", time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeAlreadyDecided, "registration has already been decided")
		default:
			return nil, storeError("attach payment reference", err)
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:         audit.ActionPaymentAttached,
		RegistrationID: reg.ID.String(),
		Email:          reg.Identity.Email,
		RequestID:      requestcontext.RequestID(ctx),
	})
	return reg, nil
}

func duplicateError(existing *Registration) error {
	return dErrors.New(dErrors.CodeDuplicate, "an active registration already exists for this email").
		WithMeta("existing_id", existing.ID.String()).
		WithMeta("existing_status", string(existing.Status))
}

// storeError maps infrastructure failures to the retryable unavailable code.
func storeError(op string, err error) error {
	return dErrors.Wrap(dErrors.CodeUnavailable, op+" failed", err)
}
