package models

import (
	"time"

	"sospeso/pkg/domain"
)

// DefaultUnitPrice is the price of a single sospeso in KRW. Bundle issuance
// multiplies it by the unit count; services may override it via config.
const DefaultUnitPrice int64 = 80000

// ApplicationStatus tracks one beneficiary application on a voucher.
type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "applied"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the three known application statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Issuing records how a voucher came into existence. Fixed at creation,
// immutable afterwards. Its ID mirrors the voucher id.
type Issuing struct {
	ID         domain.VoucherID `json:"id"`
	IssuedAt   time.Time        `json:"issued_at"`
	PaidAmount int64            `json:"paid_amount"`
	IssuerID   domain.ActorID   `json:"issuer_id"`
}

// Application is a beneficiary's request to redeem a voucher. Entries are
// appended in arrival order and only their Status ever changes.
type Application struct {
	ID          domain.ApplicationID `json:"id"`
	ApplicantID domain.ActorID       `json:"applicant_id"`
	AppliedAt   time.Time            `json:"applied_at"`
	Content     string               `json:"content"`
	Status      ApplicationStatus    `json:"status"`
}

// Consuming records the final redemption of a voucher: who received the
// service, who delivered it, a public testimonial, and private notes.
type Consuming struct {
	ID         domain.ConsumingID `json:"id"`
	ConsumedAt time.Time          `json:"consumed_at"`
	Content    string             `json:"content"`
	Memo       string             `json:"memo"` // markdown, admin-only
	ConsumerID domain.ActorID     `json:"consumer_id"`
	CoachID    domain.ActorID     `json:"coach_id"`
}

// Voucher is the aggregate root for one sospeso.
//
// Invariants:
//   - ID is immutable; commands carrying a different voucher id are rejected
//   - at most one Application is applied or approved at any time (the
//     voucher is "locked" while one is outstanding)
//   - at most one Application is approved at any time
//   - Consuming is set only while an approved Application exists, and its
//     ConsumerID equals that Application's ApplicantID
//   - ApplicationList is append-only; entries change status in place but are
//     never removed or reordered
//
// Command handlers never mutate their receiver: each returns a fresh
// snapshot, leaving concurrency control (one writer per voucher id) to the
// storage layer.
type Voucher struct {
	ID   domain.VoucherID `json:"id"`
	From string           `json:"from"`
	To   string           `json:"to"` // beneficiary eligibility, free text

	Issuing         Issuing       `json:"issuing"`
	ApplicationList []Application `json:"application_list"`
	Consuming       *Consuming    `json:"consuming,omitempty"`

	// Amount is the number of redeemable units bought in one bundle
	// issuance. Zero for a single issuance. It inflates the paid amount and
	// is carried as issuance metadata only; application and consumption
	// rules are identical to the single-unit case.
	Amount int    `json:"amount,omitempty"`
	Item   string `json:"item,omitempty"`
}

// Clone returns a deep copy of the voucher. Handlers build their result on a
// clone so the input snapshot stays untouched.
func (v Voucher) Clone() Voucher {
	out := v
	out.ApplicationList = make([]Application, len(v.ApplicationList))
	copy(out.ApplicationList, v.ApplicationList)
	if v.Consuming != nil {
		consuming := *v.Consuming
		out.Consuming = &consuming
	}
	return out
}

// findApplication returns the index of the application with the given id,
// or -1 when absent.
func (v Voucher) findApplication(id domain.ApplicationID) int {
	for i := range v.ApplicationList {
		if v.ApplicationList[i].ID == id {
			return i
		}
	}
	return -1
}

// approvedApplication returns the currently approved application, if any.
func (v Voucher) approvedApplication() (Application, bool) {
	for _, application := range v.ApplicationList {
		if application.Status == ApplicationApproved {
			return application, true
		}
	}
	return Application{}, false
}
