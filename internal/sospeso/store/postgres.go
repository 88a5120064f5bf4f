package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"sospeso/internal/sospeso/models"
	"sospeso/pkg/domain"
	"sospeso/pkg/platform/sentinel"
)

// Schema creates the vouchers table. The aggregate is stored as one JSONB
// snapshot per voucher; status and issued_at are extracted into columns for
// listing, and revision backs the optimistic lock.
const Schema = `
CREATE TABLE IF NOT EXISTS vouchers (
	id        TEXT PRIMARY KEY,
	status    TEXT NOT NULL,
	issued_at TIMESTAMPTZ NOT NULL,
	revision  BIGINT NOT NULL,
	snapshot  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS vouchers_issued_at_idx ON vouchers (issued_at DESC);
`

// Postgres persists voucher snapshots in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the vouchers table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure voucher schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, voucher models.Voucher) error {
	snapshot, err := json.Marshal(voucher)
	if err != nil {
		return fmt.Errorf("marshal voucher snapshot: %w", err)
	}
	query := `
		INSERT INTO vouchers (id, status, issued_at, revision, snapshot)
		VALUES ($1, $2, $3, 1, $4)
	`
	_, err = s.db.ExecContext(ctx, query,
		voucher.ID.String(),
		models.CalcStatus(voucher).String(),
		voucher.Issuing.IssuedAt,
		snapshot,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create voucher: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.VoucherID) (Record, error) {
	var (
		revision int64
		snapshot []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT revision, snapshot FROM vouchers WHERE id = $1`, id.String(),
	).Scan(&revision, &snapshot)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("find voucher: %w", err)
	}

	var voucher models.Voucher
	if err := json.Unmarshal(snapshot, &voucher); err != nil {
		return Record{}, fmt.Errorf("unmarshal voucher snapshot: %w", err)
	}
	return Record{Voucher: voucher, Revision: revision}, nil
}

// Update commits a new snapshot guarded by the revision check. A zero-row
// update means either the voucher vanished or another writer moved the
// revision; the two cases are distinguished with a follow-up lookup.
func (s *Postgres) Update(ctx context.Context, voucher models.Voucher, expectedRevision int64) error {
	snapshot, err := json.Marshal(voucher)
	if err != nil {
		return fmt.Errorf("marshal voucher snapshot: %w", err)
	}
	query := `
		UPDATE vouchers
		SET status = $3, revision = revision + 1, snapshot = $4
		WHERE id = $1 AND revision = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		voucher.ID.String(),
		expectedRevision,
		models.CalcStatus(voucher).String(),
		snapshot,
	)
	if err != nil {
		return fmt.Errorf("update voucher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update voucher: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM vouchers WHERE id = $1)`, voucher.ID.String(),
		).Scan(&exists); err != nil {
			return fmt.Errorf("update voucher: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrRevisionMismatch
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT revision, snapshot FROM vouchers
		ORDER BY issued_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			revision int64
			snapshot []byte
		)
		if err := rows.Scan(&revision, &snapshot); err != nil {
			return nil, fmt.Errorf("scan voucher row: %w", err)
		}
		var voucher models.Voucher
		if err := json.Unmarshal(snapshot, &voucher); err != nil {
			return nil, fmt.Errorf("unmarshal voucher snapshot: %w", err)
		}
		records = append(records, Record{Voucher: voucher, Revision: revision})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	return records, nil
}
