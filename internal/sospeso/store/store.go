// Package store persists voucher snapshots. Implementations enforce the
// aggregate's concurrency contract: at most one writer commits against a
// given voucher revision, so two commands racing on the same stale snapshot
// cannot both win.
package store

import (
	"context"

	"sospeso/internal/sospeso/models"
	"sospeso/pkg/domain"
)

// Record pairs a voucher snapshot with its storage revision. The revision
// increments on every committed update and backs the optimistic lock.
type Record struct {
	Voucher  models.Voucher
	Revision int64
}

// Store is the persistence port for voucher aggregates. Implementations
// return sentinel errors (sentinel.ErrNotFound, sentinel.ErrConflict,
// sentinel.ErrRevisionMismatch) so services can translate them into domain
// errors.
type Store interface {
	// Create persists a freshly issued voucher at revision 1. Fails with
	// sentinel.ErrConflict when the id already exists.
	Create(ctx context.Context, voucher models.Voucher) error
	// FindByID loads the current snapshot and its revision.
	FindByID(ctx context.Context, id domain.VoucherID) (Record, error)
	// Update commits a new snapshot if and only if the stored revision still
	// equals expectedRevision. Fails with sentinel.ErrRevisionMismatch when
	// another writer committed first.
	Update(ctx context.Context, voucher models.Voucher, expectedRevision int64) error
	// List returns snapshots ordered by issuance time, newest first.
	List(ctx context.Context, limit, offset int) ([]Record, error)
}
