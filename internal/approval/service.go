package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"regdesk/internal/audit"
	"regdesk/internal/eventconfig"
	"regdesk/internal/platform/metrics"
	"regdesk/internal/registration"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

// Action is the decision an administrator takes on a pending registration.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionApprove, ActionReject:
		return Action(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "action must be approve or reject")
	}
}

// Resolver yields the current configuration snapshot, including the admin
// allowlist. Membership is checked per request, never cached.
type Resolver interface {
	Resolve(ctx context.Context) (eventconfig.Snapshot, error)
}

// Service is the moderation surface: deciding pending registrations and
// reading the queue. All operations require a verified admin identity.
type Service struct {
	store    registration.Store
	resolver Resolver
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(store registration.Store, resolver Resolver, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// Decide applies an approve or reject decision to a pending registration.
// Preconditions are checked in order: the actor must be on the admin
// allowlist, the registration must exist, and it must still be pending.
// Approval additionally requires a recorded payment reference. The first
// decision to land wins; later attempts see already_decided.
func (s *Service) Decide(ctx context.Context, id domain.RegistrationID, action Action, admin domain.Identity) (*registration.Registration, error) {
	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.metrics.RecordDecision(string(action), "error")
		return nil, err
	}
	if !snap.IsAdmin(admin.Email) {
		s.metrics.RecordDecision(string(action), "denied")
		s.auditor.Emit(ctx, audit.Event{
			Action:         audit.ActionDecisionDenied,
			RegistrationID: id.String(),
			Actor:          admin.Email,
			Reason:         "not an administrator",
			RequestID:      requestcontext.RequestID(ctx),
		})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not authorized to decide registrations")
	}

	if action == ActionApprove {
		current, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
			}
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "load registration failed", err)
		}
		if current.Status == registration.StatusPending && current.PaymentReference == "" {
			s.metrics.RecordDecision(string(action), "invalid")
			return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot approve without a payment reference")
		}
	}

	status := registration.StatusApproved
	auditAction := audit.ActionRegistrationApproved
	if action == ActionReject {
		status = registration.StatusRejected
		auditAction = audit.ActionRegistrationRejected
	}

	decision := registration.Decision{
		Status:    status,
		DecidedBy: admin.Email,
		DecidedAt: requestcontext.Now(ctx),
	}

	start := time.Now()
	reg, err := s.store.ApplyDecision(ctx, id, decision)
	s.metrics.ObserveStoreLatency("decide", time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.RecordDecision(string(action), "not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.RecordDecision(string(action), "already_decided")
			return nil, dErrors.New(dErrors.CodeAlreadyDecided, "registration has already been decided")
		default:
			s.metrics.RecordDecision(string(action), "error")
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "apply decision failed", err)
		}
	}

	s.metrics.RecordDecision(string(action), "applied")
	s.auditor.Emit(ctx, audit.Event{
		Timestamp:      decision.DecidedAt,
		Action:         auditAction,
		RegistrationID: reg.ID.String(),
		Email:          reg.Identity.Email,
		Actor:          admin.Email,
		RequestID:      requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "registration decided",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID.String(),
		"status", string(reg.Status),
		"decided_by", admin.Email,
	)
	return reg, nil
}

// Get loads a single registration for the moderation view.
func (s *Service) Get(ctx context.Context, id domain.RegistrationID, admin domain.Identity) (*registration.Registration, error) {
	if err := s.authorize(ctx, admin); err != nil {
		return nil, err
	}
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "load registration failed", err)
	}
	return reg, nil
}

// List returns registrations in the given status, oldest first.
func (s *Service) List(ctx context.Context, status registration.Status, admin domain.Identity) ([]*registration.Registration, error) {
	if err := s.authorize(ctx, admin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown status filter")
	}
	regs, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "list registrations failed", err)
	}
	return regs, nil
}

func (s *Service) authorize(ctx context.Context, admin domain.Identity) error {
	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	if !snap.IsAdmin(admin.Email) {
		return dErrors.New(dErrors.CodeUnauthorized, "not authorized to view registrations")
	}
	return nil
}
