package audit

import (
	"context"
	"sync"
	"time"

	id "sospeso/pkg/domain"
)

// Publisher is the sink side of the audit trail. Services emit events
// without caring whether they land in memory, a database, or Kafka.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is an append-only event log. The in-memory implementation backs
// tests; Kafka-backed deployments keep their log in the topic itself.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByVoucher(ctx context.Context, voucherID id.VoucherID) ([]Event, error)
}

// StorePublisher captures structured audit events. It is append-only and
// uses the store for persistence so tests can swap sinks easily.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *StorePublisher) List(ctx context.Context, voucherID id.VoucherID) ([]Event, error) {
	return p.store.ListByVoucher(ctx, voucherID)
}

// InMemoryStore keeps events in process. Test sink.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByVoucher(_ context.Context, voucherID id.VoucherID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	for _, event := range s.events {
		if event.VoucherID == voucherID {
			out = append(out, event)
		}
	}
	return out, nil
}

// All returns every captured event in emission order.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
