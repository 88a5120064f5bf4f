package models

import (
	"time"

	"sospeso/pkg/domain"
	dErrors "sospeso/pkg/domain-errors"
)

// Commands carry every input a handler needs, ids and timestamps included.
// Nothing here reads a clock or generates an id; that keeps the handlers
// deterministic and trivially testable with fixed inputs.

type IssueCommand struct {
	VoucherID  domain.VoucherID
	IssuedAt   time.Time
	From       string
	To         string
	PaidAmount int64
	IssuerID   domain.ActorID
}

type IssueBundleCommand struct {
	VoucherID domain.VoucherID
	IssuedAt  time.Time
	From      string
	To        string
	// UnitPrice is the price of one redeemable unit; the recorded paid
	// amount is UnitPrice * Amount.
	UnitPrice int64
	IssuerID  domain.ActorID
	Amount    int
	Item      string
}

type ApplyCommand struct {
	VoucherID     domain.VoucherID
	ApplicationID domain.ApplicationID
	ApplicantID   domain.ActorID
	AppliedAt     time.Time
	Content       string
}

type ApproveCommand struct {
	VoucherID     domain.VoucherID
	ApplicationID domain.ApplicationID
}

type RejectCommand struct {
	VoucherID     domain.VoucherID
	ApplicationID domain.ApplicationID
}

type ConsumeCommand struct {
	VoucherID   domain.VoucherID
	ConsumingID domain.ConsumingID
	ConsumedAt  time.Time
	Content     string
	Memo        string
	ConsumerID  domain.ActorID
	CoachID     domain.ActorID
}

// Issue creates a new voucher with an empty application list and no
// consumption record. Pure construction; id uniqueness is the caller's
// responsibility.
func Issue(cmd IssueCommand) Voucher {
	return Voucher{
		ID:   cmd.VoucherID,
		From: cmd.From,
		To:   cmd.To,
		Issuing: Issuing{
			ID:         cmd.VoucherID,
			IssuedAt:   cmd.IssuedAt,
			PaidAmount: cmd.PaidAmount,
			IssuerID:   cmd.IssuerID,
		},
		ApplicationList: []Application{},
	}
}

// IssueBundle creates a voucher covering cmd.Amount redeemable units in one
// issuance. The paid amount is inflated accordingly; application and
// consumption behavior is identical to a single issuance.
func IssueBundle(cmd IssueBundleCommand) (Voucher, error) {
	if cmd.Amount < 1 {
		return Voucher{}, dErrors.New(dErrors.CodeValidation, "bundle amount must be at least 1")
	}
	voucher := Issue(IssueCommand{
		VoucherID:  cmd.VoucherID,
		IssuedAt:   cmd.IssuedAt,
		From:       cmd.From,
		To:         cmd.To,
		PaidAmount: cmd.UnitPrice * int64(cmd.Amount),
		IssuerID:   cmd.IssuerID,
	})
	voucher.Amount = cmd.Amount
	voucher.Item = cmd.Item
	return voucher, nil
}

// Apply appends a new application in the applied state. It conflicts while
// the voucher is locked (an application is applied or approved); a rejected
// application does not lock, so re-application after rejection succeeds.
func Apply(voucher Voucher, cmd ApplyCommand) (Voucher, error) {
	if err := guardCommand(voucher, cmd.VoucherID); err != nil {
		return Voucher{}, err
	}
	if IsLocked(voucher) {
		return Voucher{}, dErrors.New(dErrors.CodeConflict, "someone has already applied for this sospeso")
	}

	next := voucher.Clone()
	next.ApplicationList = append(next.ApplicationList, Application{
		ID:          cmd.ApplicationID,
		ApplicantID: cmd.ApplicantID,
		AppliedAt:   cmd.AppliedAt,
		Content:     cmd.Content,
		Status:      ApplicationApplied,
	})
	return next, nil
}

// Approve flips the referenced application to approved. At most one approved
// application may exist, so approving while another approval stands is a
// conflict.
func Approve(voucher Voucher, cmd ApproveCommand) (Voucher, error) {
	if err := guardCommand(voucher, cmd.VoucherID); err != nil {
		return Voucher{}, err
	}
	idx := voucher.findApplication(cmd.ApplicationID)
	if idx < 0 {
		return Voucher{}, dErrors.New(dErrors.CodeNotFound, "no application with this id on this sospeso")
	}
	if IsApproved(voucher) {
		return Voucher{}, dErrors.New(dErrors.CodeConflict, "this sospeso already has an approved application")
	}

	next := voucher.Clone()
	next.ApplicationList[idx].Status = ApplicationApproved
	return next, nil
}

// Reject flips the referenced application to rejected. Rejection is always
// legal on an existing application: it reverses an approval, and rejecting
// an already-rejected application is an observable no-op.
func Reject(voucher Voucher, cmd RejectCommand) (Voucher, error) {
	if err := guardCommand(voucher, cmd.VoucherID); err != nil {
		return Voucher{}, err
	}
	idx := voucher.findApplication(cmd.ApplicationID)
	if idx < 0 {
		return Voucher{}, dErrors.New(dErrors.CodeNotFound, "no application with this id on this sospeso")
	}

	next := voucher.Clone()
	next.ApplicationList[idx].Status = ApplicationRejected
	return next, nil
}

// Consume records the final redemption. It requires an approved application,
// and only that application's applicant may redeem.
func Consume(voucher Voucher, cmd ConsumeCommand) (Voucher, error) {
	if err := guardCommand(voucher, cmd.VoucherID); err != nil {
		return Voucher{}, err
	}
	approved, ok := voucher.approvedApplication()
	if !ok {
		return Voucher{}, dErrors.New(dErrors.CodeInvariantViolation, "this sospeso has no approved application")
	}
	if approved.ApplicantID != cmd.ConsumerID {
		return Voucher{}, dErrors.New(dErrors.CodeForbidden, "only the approved applicant can consume this sospeso")
	}

	next := voucher.Clone()
	next.Consuming = &Consuming{
		ID:         cmd.ConsumingID,
		ConsumedAt: cmd.ConsumedAt,
		Content:    cmd.Content,
		Memo:       cmd.Memo,
		ConsumerID: cmd.ConsumerID,
		CoachID:    cmd.CoachID,
	}
	return next, nil
}

// guardCommand enforces the shared preconditions of every mutating command:
// the command must target this voucher, and a consumed voucher accepts no
// further transitions.
func guardCommand(voucher Voucher, commandID domain.VoucherID) error {
	if voucher.ID != commandID {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"command voucher id %q does not match aggregate id %q", commandID, voucher.ID)
	}
	if IsConsumed(voucher) {
		return dErrors.New(dErrors.CodeInvariantViolation, "this sospeso has already been consumed")
	}
	return nil
}
