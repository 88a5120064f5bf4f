package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sospeso/pkg/domain"
)

func TestCalcStatus(t *testing.T) {
	t.Run("freshly issued and rejected-only vouchers are issued", func(t *testing.T) {
		issued := newIssued(t)
		assert.Equal(t, StatusIssued, CalcStatus(issued))

		applied, applicationID := newApplied(t)
		rejected, err := Reject(applied, RejectCommand{VoucherID: applied.ID, ApplicationID: applicationID})
		require.NoError(t, err)
		assert.Equal(t, StatusIssued, CalcStatus(rejected))
	})

	t.Run("applied or approved vouchers are pending", func(t *testing.T) {
		applied, _ := newApplied(t)
		assert.Equal(t, StatusPending, CalcStatus(applied))

		approved, _ := newApproved(t)
		assert.Equal(t, StatusPending, CalcStatus(approved))
	})

	t.Run("redeemed vouchers are consumed", func(t *testing.T) {
		approved, _ := newApproved(t)
		consumed, err := Consume(approved, ConsumeCommand{
			VoucherID:   approved.ID,
			ConsumingID: domain.ConsumingID(uuid.NewString()),
			ConsumedAt:  time.Now().UTC(),
			ConsumerID:  testUserID,
			CoachID:     testCoachID,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConsumed, CalcStatus(consumed))
	})
}

func TestApplicationStatusValid(t *testing.T) {
	assert.True(t, ApplicationApplied.Valid())
	assert.True(t, ApplicationApproved.Valid())
	assert.True(t, ApplicationRejected.Valid())
	assert.False(t, ApplicationStatus("cancelled").Valid())
	assert.False(t, ApplicationStatus("").Valid())
}
