// Package service orchestrates the voucher lifecycle: it supplies ids and
// timestamps to the pure command handlers, round-trips snapshots through the
// store under the optimistic revision check, and fans results out to audit
// and metrics.
package service

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"sospeso/internal/audit"
	sospesometrics "sospeso/internal/sospeso/metrics"
	"sospeso/internal/sospeso/models"
	"sospeso/internal/sospeso/store"
	dErrors "sospeso/pkg/domain-errors"
	"sospeso/pkg/platform/sentinel"
)

//go:generate mockgen -destination=mocks_test.go -package=service sospeso/internal/sospeso/store Store

// Store is the persistence port the service drives. It matches
// store.Store; redeclared here so mocks stay local to the service tests.
type Store = store.Store

// Service executes voucher commands against a Store.
type Service struct {
	vouchers       Store
	logger         *slog.Logger
	auditPublisher audit.Publisher
	metrics        *sospesometrics.Metrics
	unitPrice      int64
	generateID     func() string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *sospesometrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithUnitPrice overrides the default single-voucher price.
func WithUnitPrice(price int64) Option {
	return func(s *Service) {
		if price > 0 {
			s.unitPrice = price
		}
	}
}

// WithIDGenerator swaps the id source, mainly for deterministic tests.
func WithIDGenerator(generate func() string) Option {
	return func(s *Service) {
		if generate != nil {
			s.generateID = generate
		}
	}
}

// New constructs a Service.
func New(vouchers Store, opts ...Option) *Service {
	s := &Service{
		vouchers:   vouchers,
		logger:     slog.Default(),
		unitPrice:  models.DefaultUnitPrice,
		generateID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wrapStoreErr translates store sentinels into coded domain errors.
func wrapStoreErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrRevisionMismatch):
		return dErrors.New(dErrors.CodeConflict, "sospeso was modified concurrently, retry with fresh state")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "sospeso id already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "voucher store failure")
	}
}
