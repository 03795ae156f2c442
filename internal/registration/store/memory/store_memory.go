// Package memory provides the in-memory registration store. It favors
// clarity over performance and backs tests and single-node deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"regdesk/internal/registration"
	"regdesk/pkg/domain"
	"regdesk/pkg/platform/sentinel"
)

// Store keeps registrations in maps guarded by one mutex. Holding the lock
// across the check and the write is what makes CreateActive and ApplyDecision
// atomic, mirroring the conditional statements of the SQL implementation.
type Store struct {
	mu            sync.RWMutex
	byID          map[domain.RegistrationID]*registration.Registration
	activeByEmail map[string]domain.RegistrationID
	order         []domain.RegistrationID
}

func New() *Store {
	return &Store{
		byID:          make(map[domain.RegistrationID]*registration.Registration),
		activeByEmail: make(map[string]domain.RegistrationID),
	}
}

func (s *Store) CreateActive(_ context.Context, reg *registration.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.activeByEmail[reg.Identity.Email]; exists {
		return sentinel.ErrConflict
	}
	stored := *reg
	s.byID[reg.ID] = &stored
	s.activeByEmail[reg.Identity.Email] = reg.ID
	s.order = append(s.order, reg.ID)
	return nil
}

func (s *Store) FindByID(_ context.Context, id domain.RegistrationID) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (s *Store) FindActiveByEmail(_ context.Context, email string) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.activeByEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *Store) ApplyDecision(_ context.Context, id domain.RegistrationID, decision registration.Decision) (*registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if reg.Status != registration.StatusPending {
		return nil, sentinel.ErrInvalidState
	}
	reg.Status = decision.Status
	decidedAt := decision.DecidedAt
	reg.DecidedAt = &decidedAt
	reg.DecidedBy = decision.DecidedBy
	if decision.Status == registration.StatusRejected {
		// A rejected record stops blocking resubmission for its email.
		delete(s.activeByEmail, reg.Identity.Email)
	}
	copied := *reg
	return &copied, nil
}

func (s *Store) SetPaymentReferenceIfPending(_ context.Context, id domain.RegistrationID, reference string) (*registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if reg.Status != registration.StatusPending {
		return nil, sentinel.ErrInvalidState
	}
	reg.PaymentReference = reference
	copied := *reg
	return &copied, nil
}

func (s *Store) ListByStatus(_ context.Context, status registration.Status) ([]*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*registration.Registration
	for _, id := range s.order {
		if reg := s.byID[id]; reg.Status == status {
			copied := *reg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) ListByEmail(_ context.Context, email string) ([]*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*registration.Registration
	for _, reg := range s.byID {
		if reg.Identity.Email == email {
			copied := *reg
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
