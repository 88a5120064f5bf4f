//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sospeso/internal/sospeso/models"
	"sospeso/internal/sospeso/store"
	"sospeso/pkg/domain"
	"sospeso/pkg/platform/sentinel"
	"sospeso/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	ctx      context.Context
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(store.EnsureSchema(s.ctx, s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateVouchers(s.ctx))
}

func voucherFixture(id string, issuedAt time.Time) models.Voucher {
	return models.Voucher{
		ID:   domain.VoucherID(id),
		From: "탐정토끼",
		To:   "퇴사 준비생",
		Issuing: models.Issuing{
			ID:         domain.VoucherID(id),
			IssuedAt:   issuedAt,
			PaidAmount: models.DefaultUnitPrice,
			IssuerID:   "issuer-1",
		},
		ApplicationList: []models.Application{},
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	issuedAt := time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC)
	voucher := voucherFixture("voucher-1", issuedAt)

	s.Require().NoError(s.store.Create(s.ctx, voucher))

	record, err := s.store.FindByID(s.ctx, voucher.ID)
	s.Require().NoError(err)
	s.Equal(voucher.ID, record.Voucher.ID)
	s.Equal(voucher.From, record.Voucher.From)
	s.True(record.Voucher.Issuing.IssuedAt.Equal(issuedAt))
	s.EqualValues(1, record.Revision)
}

func (s *PostgresStoreSuite) TestCreateDuplicateConflicts() {
	voucher := voucherFixture("voucher-1", time.Now().UTC())
	s.Require().NoError(s.store.Create(s.ctx, voucher))

	err := s.store.Create(s.ctx, voucher)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindUnknownNotFound() {
	_, err := s.store.FindByID(s.ctx, "no-such-voucher")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateBumpsRevision() {
	voucher := voucherFixture("voucher-1", time.Now().UTC())
	s.Require().NoError(s.store.Create(s.ctx, voucher))

	voucher.ApplicationList = append(voucher.ApplicationList, models.Application{
		ID:          "app-1",
		ApplicantID: "applicant-1",
		AppliedAt:   time.Now().UTC(),
		Status:      models.ApplicationApplied,
	})
	s.Require().NoError(s.store.Update(s.ctx, voucher, 1))

	record, err := s.store.FindByID(s.ctx, voucher.ID)
	s.Require().NoError(err)
	s.EqualValues(2, record.Revision)
	s.Require().Len(record.Voucher.ApplicationList, 1)
	s.Equal(models.ApplicationApplied, record.Voucher.ApplicationList[0].Status)
}

func (s *PostgresStoreSuite) TestUpdateStaleRevisionRejected() {
	voucher := voucherFixture("voucher-1", time.Now().UTC())
	s.Require().NoError(s.store.Create(s.ctx, voucher))
	s.Require().NoError(s.store.Update(s.ctx, voucher, 1))

	err := s.store.Update(s.ctx, voucher, 1)
	s.Require().ErrorIs(err, sentinel.ErrRevisionMismatch)
}

func (s *PostgresStoreSuite) TestUpdateUnknownNotFound() {
	voucher := voucherFixture("voucher-ghost", time.Now().UTC())
	err := s.store.Update(s.ctx, voucher, 1)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListNewestFirstWithPaging() {
	base := time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, voucherFixture("voucher-1", base)))
	s.Require().NoError(s.store.Create(s.ctx, voucherFixture("voucher-2", base.Add(time.Hour))))
	s.Require().NoError(s.store.Create(s.ctx, voucherFixture("voucher-3", base.Add(2*time.Hour))))

	records, err := s.store.List(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(domain.VoucherID("voucher-3"), records[0].Voucher.ID)
	s.Equal(domain.VoucherID("voucher-2"), records[1].Voucher.ID)

	records, err = s.store.List(s.ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(domain.VoucherID("voucher-1"), records[0].Voucher.ID)
}
