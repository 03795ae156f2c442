package approval_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"regdesk/internal/approval"
	"regdesk/internal/audit"
	"regdesk/internal/eventconfig"
	"regdesk/internal/registration"
	"regdesk/internal/registration/mocks"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

type ApprovalSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	source  *eventconfig.StaticSource
	service *approval.Service
}

func TestApprovalSuite(t *testing.T) {
	suite.Run(t, new(ApprovalSuite))
}

func (s *ApprovalSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.source = &eventconfig.StaticSource{Snap: eventconfig.Snapshot{
		Version:     1,
		EventName:   "Tarang#1",
		Currency:    "INR",
		TicketPrice: 85,
		Categories:  []string{"2025 batch"},
		AdminEmails: []string{"admin@x.com"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := eventconfig.NewResolver(s.source, logger)
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), nil, logger)
	s.service = approval.NewService(s.store, resolver, auditor, nil, logger)
}

func (s *ApprovalSuite) TearDownTest() {
	s.ctrl.Finish()
}

func admin() domain.Identity {
	return domain.Identity{Email: "admin@x.com", DisplayName: "Admin"}
}

func pendingReg(id domain.RegistrationID, ref string) *registration.Registration {
	reg := &registration.Registration{
		ID:               id,
		Category:         "2025 batch",
		AmountDue:        85,
		PaymentReference: ref,
		Status:           registration.StatusPending,
	}
	reg.Identity.Email = "a@x.com"
	return reg
}

func (s *ApprovalSuite) TestParseAction() {
	for _, raw := range []string{"approve", "reject"} {
		_, err := approval.ParseAction(raw)
		s.NoError(err, raw)
	}
	for _, raw := range []string{"", "Approve", "delete"} {
		_, err := approval.ParseAction(raw)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), raw)
	}
}

func (s *ApprovalSuite) TestDecide() {
	ctx := context.Background()
	id := domain.NewRegistrationID()

	s.Run("approve applies the decision with the admin recorded", func() {
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(pendingReg(id, "UPI-1"), nil)
		s.store.EXPECT().ApplyDecision(gomock.Any(), id, registration.Decision{
			Status:    registration.StatusApproved,
			DecidedBy: "admin@x.com",
			DecidedAt: now,
		}).DoAndReturn(func(_ context.Context, _ domain.RegistrationID, d registration.Decision) (*registration.Registration, error) {
			reg := pendingReg(id, "UPI-1")
			reg.Status = d.Status
			reg.DecidedAt = &d.DecidedAt
			reg.DecidedBy = d.DecidedBy
			return reg, nil
		})

		reg, err := s.service.Decide(requestcontext.WithTime(ctx, now), id, approval.ActionApprove, admin())
		s.Require().NoError(err)
		s.Equal(registration.StatusApproved, reg.Status)
		s.Equal("admin@x.com", reg.DecidedBy)
	})

	s.Run("reject needs no payment reference", func() {
		s.store.EXPECT().ApplyDecision(gomock.Any(), id, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ domain.RegistrationID, d registration.Decision) (*registration.Registration, error) {
				s.Equal(registration.StatusRejected, d.Status)
				reg := pendingReg(id, "")
				reg.Status = d.Status
				return reg, nil
			})

		reg, err := s.service.Decide(ctx, id, approval.ActionReject, admin())
		s.Require().NoError(err)
		s.Equal(registration.StatusRejected, reg.Status)
	})

	s.Run("approve without a payment reference is invalid", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(pendingReg(id, ""), nil)
		_, err := s.service.Decide(ctx, id, approval.ActionApprove, admin())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("non-admin is rejected before any store access", func() {
		_, err := s.service.Decide(ctx, id, approval.ActionApprove, domain.Identity{Email: "a@x.com"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown registration maps to not found", func() {
		s.store.EXPECT().ApplyDecision(gomock.Any(), id, gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Decide(ctx, id, approval.ActionReject, admin())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("second decision maps to already decided", func() {
		s.store.EXPECT().ApplyDecision(gomock.Any(), id, gomock.Any()).Return(nil, sentinel.ErrInvalidState)
		_, err := s.service.Decide(ctx, id, approval.ActionReject, admin())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDecided))
	})

	s.Run("configuration outage maps to unavailable", func() {
		s.source.Err = context.DeadlineExceeded
		defer func() { s.source.Err = nil }()
		_, err := s.service.Decide(ctx, id, approval.ActionApprove, admin())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ApprovalSuite) TestGet() {
	ctx := context.Background()
	id := domain.NewRegistrationID()

	s.Run("returns the registration for an admin", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(pendingReg(id, ""), nil)
		reg, err := s.service.Get(ctx, id, admin())
		s.Require().NoError(err)
		s.Equal(id, reg.ID)
	})

	s.Run("non-admin is unauthorized", func() {
		_, err := s.service.Get(ctx, id, domain.Identity{Email: "a@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing registration maps to not found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Get(ctx, id, admin())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ApprovalSuite) TestList() {
	ctx := context.Background()

	s.Run("returns the pending queue", func() {
		regs := []*registration.Registration{pendingReg(domain.NewRegistrationID(), "")}
		s.store.EXPECT().ListByStatus(gomock.Any(), registration.StatusPending).Return(regs, nil)
		got, err := s.service.List(ctx, registration.StatusPending, admin())
		s.Require().NoError(err)
		s.Len(got, 1)
	})

	s.Run("unknown status filter is invalid", func() {
		_, err := s.service.List(ctx, registration.Status("archived"), admin())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("non-admin is unauthorized", func() {
		_, err := s.service.List(ctx, registration.StatusPending, domain.Identity{Email: "a@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
