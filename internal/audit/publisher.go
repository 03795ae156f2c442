package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store is the append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEmail(ctx context.Context, email string) ([]Event, error)
}

// Sink mirrors events to an external system, best-effort. Implementations
// must never block the caller beyond their own internal timeout.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Publisher persists audit events and mirrors them to an optional external
// sink. Emitting is deliberately forgiving: the audit trail must never roll
// back or block the domain write it describes, so failures are logged and
// swallowed.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(store Store, sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, sink: sink, logger: logger}
}

// Emit records an event. Safe to call on a nil publisher.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"action", string(event.Action),
			"registration_id", event.RegistrationID,
			"error", err.Error(),
		)
	}
	if p.sink != nil {
		p.sink.Publish(ctx, event)
	}
}

// List returns the trail for one normalized email, oldest first.
func (p *Publisher) List(ctx context.Context, email string) ([]Event, error) {
	return p.store.ListByEmail(ctx, email)
}

// InMemoryStore keeps the audit trail in memory. Suitable for tests and
// single-node deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Email] = append(s.events[event.Email], event)
	return nil
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[email]...), nil
}
