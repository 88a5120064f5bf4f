package service

import (
	"context"
	"strings"
	"time"

	"sospeso/internal/audit"
	"sospeso/internal/sospeso/models"
	"sospeso/pkg/domain"
	dErrors "sospeso/pkg/domain-errors"
	"sospeso/pkg/requestcontext"
)

// IssueInput carries caller-facing issuance fields. PaidAmount defaults to
// the configured unit price when zero.
type IssueInput struct {
	From       string
	To         string
	PaidAmount int64
	IssuerID   domain.ActorID
}

// IssueBundleInput carries bundle issuance fields; the paid amount is
// derived from the unit price and Amount.
type IssueBundleInput struct {
	From     string
	To       string
	IssuerID domain.ActorID
	Amount   int
	Item     string
}

// ApplyInput carries a beneficiary's application.
type ApplyInput struct {
	ApplicantID domain.ActorID
	Content     string
}

// ConsumeInput records a redemption.
type ConsumeInput struct {
	ConsumerID domain.ActorID
	CoachID    domain.ActorID
	Content    string
	Memo       string
}

// Issue creates and persists a new voucher.
func (s *Service) Issue(ctx context.Context, input IssueInput) (models.Voucher, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveCommandLatency("issue", time.Since(started)) }()

	if err := validateIssuance(input.From, input.To, input.IssuerID); err != nil {
		s.metrics.IncrementOutcome("issue", string(dErrors.GetCode(err)))
		return models.Voucher{}, err
	}
	paidAmount := input.PaidAmount
	if paidAmount == 0 {
		paidAmount = s.unitPrice
	}

	voucher := models.Issue(models.IssueCommand{
		VoucherID:  domain.VoucherID(s.generateID()),
		IssuedAt:   requestcontext.Now(ctx).UTC(),
		From:       strings.TrimSpace(input.From),
		To:         strings.TrimSpace(input.To),
		PaidAmount: paidAmount,
		IssuerID:   input.IssuerID,
	})

	if err := s.vouchers.Create(ctx, voucher); err != nil {
		s.metrics.IncrementOutcome("issue", "store_error")
		return models.Voucher{}, wrapStoreErr(err, "sospeso not found")
	}

	s.emitAudit(ctx, audit.ActionIssued, voucher.ID, "", input.IssuerID)
	s.metrics.IncrementOutcome("issue", "ok")
	s.metrics.AddIssuedAmount(paidAmount)
	return voucher, nil
}

// IssueBundle creates a multi-unit issuance priced at unit price × amount.
func (s *Service) IssueBundle(ctx context.Context, input IssueBundleInput) (models.Voucher, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveCommandLatency("issue_bundle", time.Since(started)) }()

	if err := validateIssuance(input.From, input.To, input.IssuerID); err != nil {
		s.metrics.IncrementOutcome("issue_bundle", string(dErrors.GetCode(err)))
		return models.Voucher{}, err
	}

	voucher, err := models.IssueBundle(models.IssueBundleCommand{
		VoucherID: domain.VoucherID(s.generateID()),
		IssuedAt:  requestcontext.Now(ctx).UTC(),
		From:      strings.TrimSpace(input.From),
		To:        strings.TrimSpace(input.To),
		UnitPrice: s.unitPrice,
		IssuerID:  input.IssuerID,
		Amount:    input.Amount,
		Item:      strings.TrimSpace(input.Item),
	})
	if err != nil {
		s.metrics.IncrementOutcome("issue_bundle", string(dErrors.GetCode(err)))
		return models.Voucher{}, err
	}

	if err := s.vouchers.Create(ctx, voucher); err != nil {
		s.metrics.IncrementOutcome("issue_bundle", "store_error")
		return models.Voucher{}, wrapStoreErr(err, "sospeso not found")
	}

	s.emitAudit(ctx, audit.ActionBundleIssued, voucher.ID, "", input.IssuerID)
	s.metrics.IncrementOutcome("issue_bundle", "ok")
	s.metrics.AddIssuedAmount(voucher.Issuing.PaidAmount)
	return voucher, nil
}

// Apply submits an application for the voucher.
func (s *Service) Apply(ctx context.Context, voucherID domain.VoucherID, input ApplyInput) (models.Voucher, error) {
	if input.ApplicantID.IsNil() {
		return models.Voucher{}, dErrors.New(dErrors.CodeValidation, "applicant id is required")
	}
	applicationID := domain.ApplicationID(s.generateID())
	return s.transition(ctx, "apply", voucherID, applicationID, input.ApplicantID, audit.ActionApplied,
		func(v models.Voucher) (models.Voucher, error) {
			return models.Apply(v, models.ApplyCommand{
				VoucherID:     voucherID,
				ApplicationID: applicationID,
				ApplicantID:   input.ApplicantID,
				AppliedAt:     requestcontext.Now(ctx).UTC(),
				Content:       input.Content,
			})
		})
}

// Approve flips an application to approved.
func (s *Service) Approve(ctx context.Context, voucherID domain.VoucherID, applicationID domain.ApplicationID) (models.Voucher, error) {
	return s.transition(ctx, "approve", voucherID, applicationID, requestcontext.ActorID(ctx), audit.ActionApproved,
		func(v models.Voucher) (models.Voucher, error) {
			return models.Approve(v, models.ApproveCommand{VoucherID: voucherID, ApplicationID: applicationID})
		})
}

// Reject flips an application to rejected.
func (s *Service) Reject(ctx context.Context, voucherID domain.VoucherID, applicationID domain.ApplicationID) (models.Voucher, error) {
	return s.transition(ctx, "reject", voucherID, applicationID, requestcontext.ActorID(ctx), audit.ActionRejected,
		func(v models.Voucher) (models.Voucher, error) {
			return models.Reject(v, models.RejectCommand{VoucherID: voucherID, ApplicationID: applicationID})
		})
}

// Consume records the final redemption of an approved voucher.
func (s *Service) Consume(ctx context.Context, voucherID domain.VoucherID, input ConsumeInput) (models.Voucher, error) {
	if input.ConsumerID.IsNil() {
		return models.Voucher{}, dErrors.New(dErrors.CodeValidation, "consumer id is required")
	}
	if input.CoachID.IsNil() {
		return models.Voucher{}, dErrors.New(dErrors.CodeValidation, "coach id is required")
	}
	return s.transition(ctx, "consume", voucherID, "", input.ConsumerID, audit.ActionConsumed,
		func(v models.Voucher) (models.Voucher, error) {
			return models.Consume(v, models.ConsumeCommand{
				VoucherID:   voucherID,
				ConsumingID: domain.ConsumingID(s.generateID()),
				ConsumedAt:  requestcontext.Now(ctx).UTC(),
				Content:     input.Content,
				Memo:        input.Memo,
				ConsumerID:  input.ConsumerID,
				CoachID:     input.CoachID,
			})
		})
}

// Get loads a voucher snapshot with its derived status available via
// models.CalcStatus.
func (s *Service) Get(ctx context.Context, voucherID domain.VoucherID) (models.Voucher, error) {
	record, err := s.vouchers.FindByID(ctx, voucherID)
	if err != nil {
		return models.Voucher{}, wrapStoreErr(err, "sospeso not found")
	}
	return record.Voucher, nil
}

// List returns voucher snapshots, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Voucher, error) {
	records, err := s.vouchers.List(ctx, limit, offset)
	if err != nil {
		return nil, wrapStoreErr(err, "sospeso not found")
	}
	vouchers := make([]models.Voucher, 0, len(records))
	for _, record := range records {
		vouchers = append(vouchers, record.Voucher)
	}
	return vouchers, nil
}

// transition runs one load → pure handler → optimistic commit cycle shared
// by every mutating command after issuance.
func (s *Service) transition(
	ctx context.Context,
	command string,
	voucherID domain.VoucherID,
	applicationID domain.ApplicationID,
	actorID domain.ActorID,
	action audit.Action,
	apply func(models.Voucher) (models.Voucher, error),
) (models.Voucher, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveCommandLatency(command, time.Since(started)) }()

	record, err := s.vouchers.FindByID(ctx, voucherID)
	if err != nil {
		s.metrics.IncrementOutcome(command, "not_found")
		return models.Voucher{}, wrapStoreErr(err, "sospeso not found")
	}

	next, err := apply(record.Voucher)
	if err != nil {
		s.metrics.IncrementOutcome(command, string(dErrors.GetCode(err)))
		return models.Voucher{}, err
	}

	if err := s.vouchers.Update(ctx, next, record.Revision); err != nil {
		s.metrics.IncrementOutcome(command, "store_error")
		return models.Voucher{}, wrapStoreErr(err, "sospeso not found")
	}

	s.emitAudit(ctx, action, voucherID, applicationID, actorID)
	s.metrics.IncrementOutcome(command, "ok")
	return next, nil
}

// emitAudit forwards a lifecycle event; audit failures are logged, never
// surfaced, the command already committed.
func (s *Service) emitAudit(ctx context.Context, action audit.Action, voucherID domain.VoucherID, applicationID domain.ApplicationID, actorID domain.ActorID) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp:     requestcontext.Now(ctx).UTC(),
		Action:        action,
		VoucherID:     voucherID,
		ApplicationID: applicationID,
		ActorID:       actorID,
		RequestID:     requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", action,
			"voucher_id", voucherID,
			"error", err,
		)
	}
}

func validateIssuance(from, to string, issuerID domain.ActorID) error {
	if strings.TrimSpace(from) == "" {
		return dErrors.New(dErrors.CodeValidation, "sponsor name is required")
	}
	if strings.TrimSpace(to) == "" {
		return dErrors.New(dErrors.CodeValidation, "beneficiary description is required")
	}
	if issuerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "issuer id is required")
	}
	return nil
}
