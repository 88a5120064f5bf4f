package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sospeso/pkg/domain"
	dErrors "sospeso/pkg/domain-errors"
)

var (
	testIssuerID = domain.ActorID(uuid.NewString())
	testUserID   = domain.ActorID(uuid.NewString())
	testCoachID  = domain.ActorID(uuid.NewString())
)

func newIssued(t *testing.T) Voucher {
	t.Helper()
	return Issue(IssueCommand{
		VoucherID:  domain.VoucherID(uuid.NewString()),
		IssuedAt:   time.Now().UTC(),
		From:       "탐정토끼",
		To:         "퀴어 문화 축제 올 사람",
		PaidAmount: DefaultUnitPrice,
		IssuerID:   testIssuerID,
	})
}

func newApplied(t *testing.T) (Voucher, domain.ApplicationID) {
	t.Helper()
	issued := newIssued(t)
	applicationID := domain.ApplicationID(uuid.NewString())
	applied, err := Apply(issued, ApplyCommand{
		VoucherID:     issued.ID,
		ApplicationID: applicationID,
		ApplicantID:   testUserID,
		AppliedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return applied, applicationID
}

func newApproved(t *testing.T) (Voucher, domain.ApplicationID) {
	t.Helper()
	applied, applicationID := newApplied(t)
	approved, err := Approve(applied, ApproveCommand{VoucherID: applied.ID, ApplicationID: applicationID})
	require.NoError(t, err)
	return approved, applicationID
}

func statuses(v Voucher) []ApplicationStatus {
	out := make([]ApplicationStatus, 0, len(v.ApplicationList))
	for _, application := range v.ApplicationList {
		out = append(out, application.Status)
	}
	return out
}

func TestIssue(t *testing.T) {
	issued := newIssued(t)

	assert.Equal(t, issued.ID, issued.Issuing.ID)
	assert.Equal(t, DefaultUnitPrice, issued.Issuing.PaidAmount)
	assert.Equal(t, testIssuerID, issued.Issuing.IssuerID)
	assert.Empty(t, issued.ApplicationList)
	assert.False(t, IsConsumed(issued))
	assert.Equal(t, StatusIssued, CalcStatus(issued))
}

func TestIssueBundle(t *testing.T) {
	t.Run("paid amount is unit price times bundle size", func(t *testing.T) {
		voucherID := domain.VoucherID(uuid.NewString())
		bundle, err := IssueBundle(IssueBundleCommand{
			VoucherID: voucherID,
			IssuedAt:  time.Now().UTC(),
			From:      "탐정토끼",
			To:        "책읽기 모임 4회 참여할 사람",
			UnitPrice: DefaultUnitPrice,
			IssuerID:  testIssuerID,
			Amount:    4,
			Item:      "책읽기 클래스 1시간 반",
		})
		require.NoError(t, err)

		assert.Equal(t, voucherID, bundle.ID)
		assert.Equal(t, voucherID, bundle.Issuing.ID)
		assert.Equal(t, 4, bundle.Amount)
		assert.Equal(t, DefaultUnitPrice*4, bundle.Issuing.PaidAmount)
		assert.Empty(t, bundle.ApplicationList)
		assert.False(t, IsConsumed(bundle))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := IssueBundle(IssueBundleCommand{Amount: 0, UnitPrice: DefaultUnitPrice})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("bundle lifecycle matches the single-unit case", func(t *testing.T) {
		bundle, err := IssueBundle(IssueBundleCommand{
			VoucherID: domain.VoucherID(uuid.NewString()),
			IssuedAt:  time.Now().UTC(),
			UnitPrice: DefaultUnitPrice,
			IssuerID:  testIssuerID,
			Amount:    4,
		})
		require.NoError(t, err)

		applicationID := domain.ApplicationID(uuid.NewString())
		applied, err := Apply(bundle, ApplyCommand{
			VoucherID:     bundle.ID,
			ApplicationID: applicationID,
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		approved, err := Approve(applied, ApproveCommand{VoucherID: bundle.ID, ApplicationID: applicationID})
		require.NoError(t, err)

		consumed, err := Consume(approved, ConsumeCommand{
			VoucherID:   bundle.ID,
			ConsumingID: domain.ConsumingID(uuid.NewString()),
			ConsumedAt:  time.Now().UTC(),
			ConsumerID:  testUserID,
			CoachID:     testCoachID,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConsumed, CalcStatus(consumed))
		assert.Equal(t, 4, consumed.Amount)
	})
}

func TestApply(t *testing.T) {
	t.Run("appends an applied application", func(t *testing.T) {
		applied, _ := newApplied(t)
		require.Len(t, applied.ApplicationList, 1)
		assert.Equal(t, ApplicationApplied, applied.ApplicationList[0].Status)
		assert.Equal(t, testUserID, applied.ApplicationList[0].ApplicantID)
		assert.False(t, IsApproved(applied))
	})

	t.Run("conflicts while an application is outstanding", func(t *testing.T) {
		applied, _ := newApplied(t)
		_, err := Apply(applied, ApplyCommand{
			VoucherID:     applied.ID,
			ApplicationID: domain.ApplicationID(uuid.NewString()),
			ApplicantID:   domain.ActorID(uuid.NewString()),
			AppliedAt:     time.Now().UTC(),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("conflicts while an application is approved", func(t *testing.T) {
		approved, _ := newApproved(t)
		_, err := Apply(approved, ApplyCommand{
			VoucherID:     approved.ID,
			ApplicationID: domain.ApplicationID(uuid.NewString()),
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("does not mutate the input snapshot", func(t *testing.T) {
		issued := newIssued(t)
		_, err := Apply(issued, ApplyCommand{
			VoucherID:     issued.ID,
			ApplicationID: domain.ApplicationID(uuid.NewString()),
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Empty(t, issued.ApplicationList)
	})

	t.Run("rejects a mismatched voucher id", func(t *testing.T) {
		issued := newIssued(t)
		_, err := Apply(issued, ApplyCommand{
			VoucherID:     domain.VoucherID(uuid.NewString()),
			ApplicationID: domain.ApplicationID(uuid.NewString()),
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApprove(t *testing.T) {
	t.Run("approves an applied application", func(t *testing.T) {
		approved, _ := newApproved(t)
		assert.True(t, IsApproved(approved))
		assert.Equal(t, StatusPending, CalcStatus(approved))
	})

	t.Run("fails for an unknown application id", func(t *testing.T) {
		applied, _ := newApplied(t)
		_, err := Approve(applied, ApproveCommand{
			VoucherID:     applied.ID,
			ApplicationID: domain.ApplicationID(uuid.NewString()),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("conflicts when an approval already exists", func(t *testing.T) {
		approved, applicationID := newApproved(t)
		_, err := Approve(approved, ApproveCommand{VoucherID: approved.ID, ApplicationID: applicationID})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestReject(t *testing.T) {
	t.Run("rejects an applied application", func(t *testing.T) {
		applied, applicationID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: applicationID})
		require.NoError(t, err)
		assert.Equal(t, []ApplicationStatus{ApplicationRejected}, statuses(rejected))
		assert.Equal(t, StatusIssued, CalcStatus(rejected))
	})

	t.Run("reverses an approval", func(t *testing.T) {
		approved, applicationID := newApproved(t)
		rejected, err := Reject(approved, RejectCommand{VoucherID: approved.ID, ApplicationID: applicationID})
		require.NoError(t, err)
		assert.Equal(t, []ApplicationStatus{ApplicationRejected}, statuses(rejected))
		assert.False(t, IsApproved(rejected))
		assert.Equal(t, StatusIssued, CalcStatus(rejected))
	})

	t.Run("allows re-application after rejection", func(t *testing.T) {
		applied, firstID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: firstID})
		require.NoError(t, err)
		assert.False(t, IsLocked(rejected))

		secondID := domain.ApplicationID(uuid.NewString())
		reapplied, err := Apply(rejected, ApplyCommand{
			VoucherID:     rejected.ID,
			ApplicationID: secondID,
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		approved, err := Approve(reapplied, ApproveCommand{VoucherID: reapplied.ID, ApplicationID: secondID})
		require.NoError(t, err)
		assert.Equal(t, []ApplicationStatus{ApplicationRejected, ApplicationApproved}, statuses(approved))
		assert.Equal(t, StatusPending, CalcStatus(approved))
	})

	t.Run("can reject more than once", func(t *testing.T) {
		applied, firstID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: firstID})
		require.NoError(t, err)

		secondID := domain.ApplicationID(uuid.NewString())
		reapplied, err := Apply(rejected, ApplyCommand{
			VoucherID:     rejected.ID,
			ApplicationID: secondID,
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		rejectedAgain, err := Reject(reapplied, RejectCommand{VoucherID: reapplied.ID, ApplicationID: secondID})
		require.NoError(t, err)
		assert.Equal(t, []ApplicationStatus{ApplicationRejected, ApplicationRejected}, statuses(rejectedAgain))
	})

	t.Run("re-rejecting a rejected application changes nothing", func(t *testing.T) {
		applied, applicationID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: applicationID})
		require.NoError(t, err)

		again, err := Reject(rejected, RejectCommand{VoucherID: rejected.ID, ApplicationID: applicationID})
		require.NoError(t, err)
		assert.Equal(t, rejected.ApplicationList, again.ApplicationList)
	})
}

func TestConsume(t *testing.T) {
	consumeCmd := func(v Voucher, consumer domain.ActorID) ConsumeCommand {
		return ConsumeCommand{
			VoucherID:   v.ID,
			ConsumingID: domain.ConsumingID(uuid.NewString()),
			ConsumedAt:  time.Now().UTC(),
			Content:     "너무 도움이 되었어요! 덕분에 취직도 잘할듯?",
			Memo:        "장소: 약수역, 시간: 2022년 12월 11일.",
			ConsumerID:  consumer,
			CoachID:     testCoachID,
		}
	}

	t.Run("consumes an approved voucher", func(t *testing.T) {
		approved, _ := newApproved(t)
		assert.False(t, IsConsumed(approved))

		consumed, err := Consume(approved, consumeCmd(approved, testUserID))
		require.NoError(t, err)
		assert.True(t, IsConsumed(consumed))
		assert.Equal(t, StatusConsumed, CalcStatus(consumed))
		assert.Equal(t, testUserID, consumed.Consuming.ConsumerID)
		assert.Equal(t, testCoachID, consumed.Consuming.CoachID)

		// input snapshot untouched
		assert.False(t, IsConsumed(approved))
	})

	t.Run("requires an approved application", func(t *testing.T) {
		applied, applicationID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: applicationID})
		require.NoError(t, err)

		_, err = Consume(rejected, consumeCmd(rejected, testUserID))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("only the approved applicant can consume", func(t *testing.T) {
		approved, _ := newApproved(t)
		_, err := Consume(approved, consumeCmd(approved, domain.ActorID(uuid.NewString())))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Nil(t, approved.Consuming)
	})

	t.Run("a consumed voucher accepts no further commands", func(t *testing.T) {
		approved, applicationID := newApproved(t)
		consumed, err := Consume(approved, consumeCmd(approved, testUserID))
		require.NoError(t, err)

		_, err = Consume(consumed, consumeCmd(consumed, testUserID))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = Apply(consumed, ApplyCommand{
			VoucherID:     consumed.ID,
			ApplicationID: domain.ApplicationID(uuid.NewString()),
			ApplicantID:   testUserID,
			AppliedAt:     time.Now().UTC(),
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = Approve(consumed, ApproveCommand{VoucherID: consumed.ID, ApplicationID: applicationID})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = Reject(consumed, RejectCommand{VoucherID: consumed.ID, ApplicationID: applicationID})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
