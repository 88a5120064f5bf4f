package store

import (
	"context"
	"sort"
	"sync"

	"sospeso/internal/sospeso/models"
	"sospeso/pkg/domain"
	"sospeso/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded reference store. It deep-copies snapshots on
// the way in and out so callers can never alias its internal state.
type InMemory struct {
	mu       sync.RWMutex
	vouchers map[domain.VoucherID]Record
}

func NewInMemory() *InMemory {
	return &InMemory{vouchers: make(map[domain.VoucherID]Record)}
}

func (s *InMemory) Create(_ context.Context, voucher models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vouchers[voucher.ID]; exists {
		return sentinel.ErrConflict
	}
	s.vouchers[voucher.ID] = Record{Voucher: voucher.Clone(), Revision: 1}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.VoucherID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.vouchers[id]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return Record{Voucher: record.Voucher.Clone(), Revision: record.Revision}, nil
}

func (s *InMemory) Update(_ context.Context, voucher models.Voucher, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.vouchers[voucher.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.Revision != expectedRevision {
		return sentinel.ErrRevisionMismatch
	}
	s.vouchers[voucher.ID] = Record{Voucher: voucher.Clone(), Revision: expectedRevision + 1}
	return nil
}

func (s *InMemory) List(_ context.Context, limit, offset int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.vouchers))
	for _, record := range s.vouchers {
		records = append(records, Record{Voucher: record.Voucher.Clone(), Revision: record.Revision})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Voucher.Issuing.IssuedAt.After(records[j].Voucher.Issuing.IssuedAt)
	})

	if offset >= len(records) {
		return []Record{}, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
