package audit

import (
	"time"

	id "sospeso/pkg/domain"
)

// Action names one voucher lifecycle transition worth auditing.
type Action string

const (
	ActionIssued       Action = "sospeso.issued"
	ActionBundleIssued Action = "sospeso.bundle_issued"
	ActionApplied      Action = "sospeso.applied"
	ActionApproved     Action = "sospeso.approved"
	ActionRejected     Action = "sospeso.rejected"
	ActionConsumed     Action = "sospeso.consumed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	Action        Action           `json:"action"`
	VoucherID     id.VoucherID     `json:"voucher_id"`
	ApplicationID id.ApplicationID `json:"application_id,omitempty"`
	ActorID       id.ActorID       `json:"actor_id"`
	RequestID     string           `json:"request_id,omitempty"`
}
