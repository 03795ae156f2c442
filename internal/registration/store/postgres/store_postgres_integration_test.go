//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regdesk/internal/registration"
	"regdesk/internal/registration/store/postgres"
	"regdesk/pkg/domain"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.pg.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "registrations"))
}

func pending(email string) *registration.Registration {
	reg := &registration.Registration{
		ID:        domain.NewRegistrationID(),
		Category:  "2025 batch",
		AmountDue: 8500,
		Status:    registration.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	reg.Identity.Email = email
	reg.Identity.DisplayName = "Someone"
	reg.Identity.Phone = "9876543210"
	return reg
}

func (s *PostgresStoreSuite) TestCreateRoundTrip() {
	ctx := context.Background()
	reg := pending("a@x.com")
	s.Require().NoError(s.store.CreateActive(ctx, reg))

	found, err := s.store.FindByID(ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(reg.ID, found.ID)
	s.Equal("a@x.com", found.Identity.Email)
	s.Equal(int64(8500), found.AmountDue)
	s.Equal(registration.StatusPending, found.Status)
	s.Nil(found.DecidedAt)

	active, err := s.store.FindActiveByEmail(ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(reg.ID, active.ID)
}

// TestConcurrentCreate drives the partial unique index: of many racing
// submissions for one email, exactly one row lands.
func (s *PostgresStoreSuite) TestConcurrentCreate() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.CreateActive(ctx, pending("race@x.com")); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())

	only, err := s.store.ListByEmail(ctx, "race@x.com")
	s.Require().NoError(err)
	s.Len(only, 1)
}

func (s *PostgresStoreSuite) TestDecisionLifecycle() {
	ctx := context.Background()
	reg := pending("decide@x.com")
	s.Require().NoError(s.store.CreateActive(ctx, reg))

	decidedAt := time.Now().UTC()
	updated, err := s.store.ApplyDecision(ctx, reg.ID, registration.Decision{
		Status:    registration.StatusApproved,
		DecidedBy: "admin@x.com",
		DecidedAt: decidedAt,
	})
	s.Require().NoError(err)
	s.Equal(registration.StatusApproved, updated.Status)
	s.Equal("admin@x.com", updated.DecidedBy)
	s.Require().NotNil(updated.DecidedAt)

	_, err = s.store.ApplyDecision(ctx, reg.ID, registration.Decision{
		Status:    registration.StatusRejected,
		DecidedBy: "admin@x.com",
		DecidedAt: decidedAt,
	})
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.ApplyDecision(ctx, domain.NewRegistrationID(), registration.Decision{
		Status:    registration.StatusApproved,
		DecidedBy: "admin@x.com",
		DecidedAt: decidedAt,
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRejectionAllowsResubmission() {
	ctx := context.Background()
	reg := pending("retry@x.com")
	s.Require().NoError(s.store.CreateActive(ctx, reg))

	_, err := s.store.ApplyDecision(ctx, reg.ID, registration.Decision{
		Status:    registration.StatusRejected,
		DecidedBy: "admin@x.com",
		DecidedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.store.CreateActive(ctx, pending("retry@x.com")))

	all, err := s.store.ListByEmail(ctx, "retry@x.com")
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresStoreSuite) TestSetPaymentReferenceIfPending() {
	ctx := context.Background()
	reg := pending("pay@x.com")
	s.Require().NoError(s.store.CreateActive(ctx, reg))

	updated, err := s.store.SetPaymentReferenceIfPending(ctx, reg.ID, "UPI-777")
	s.Require().NoError(err)
	s.Equal("UPI-777", updated.PaymentReference)

	_, err = s.store.ApplyDecision(ctx, reg.ID, registration.Decision{
		Status:    registration.StatusApproved,
		DecidedBy: "admin@x.com",
		DecidedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	_, err = s.store.SetPaymentReferenceIfPending(ctx, reg.ID, "UPI-888")
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
}
