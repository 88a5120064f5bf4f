package models

// Status is the coarse lifecycle phase of a voucher. It is derived, never
// stored: recomputing it from the application list and consumption record
// avoids a second source of truth that could drift.
type Status string

const (
	// StatusIssued covers freshly issued vouchers and vouchers whose
	// applications were all rejected.
	StatusIssued Status = "issued"
	// StatusPending means an application is outstanding (applied or
	// approved).
	StatusPending Status = "pending"
	// StatusConsumed means the voucher has been redeemed.
	StatusConsumed Status = "consumed"
)

func (s Status) String() string { return string(s) }

// IsConsumed reports whether the voucher has been redeemed.
func IsConsumed(v Voucher) bool {
	return v.Consuming != nil
}

// IsApproved reports whether some application is currently approved.
func IsApproved(v Voucher) bool {
	_, ok := v.approvedApplication()
	return ok
}

// IsLocked reports whether an application is outstanding, blocking new
// applications. Rejected applications do not lock.
func IsLocked(v Voucher) bool {
	for _, application := range v.ApplicationList {
		if application.Status == ApplicationApplied || application.Status == ApplicationApproved {
			return true
		}
	}
	return false
}

// CalcStatus projects the raw voucher history onto its lifecycle phase.
// Pure and total: every reachable snapshot maps to exactly one status.
func CalcStatus(v Voucher) Status {
	if IsConsumed(v) {
		return StatusConsumed
	}
	if IsLocked(v) {
		return StatusPending
	}
	return StatusIssued
}
