// Package domain holds shared domain primitives: the opaque typed ids that
// flow between layers. Typed ids make cross-type assignment a compile error
// (a VoucherID can never be passed where an ActorID is expected).
//
// Ids are opaque strings supplied by the caller; the domain assumes they are
// globally unique and never generates them itself.
package domain

import (
	"strings"

	dErrors "sospeso/pkg/domain-errors"
)

// VoucherID identifies one sospeso voucher aggregate.
type VoucherID string

// ApplicationID identifies one application on a voucher.
type ApplicationID string

// ConsumingID identifies one redemption record.
type ConsumingID string

// ActorID identifies a user acting on a voucher: issuer, applicant,
// consumer, or coach. Treated as an opaque foreign key; no authorization
// semantics beyond identity equality.
type ActorID string

func (id VoucherID) String() string     { return string(id) }
func (id ApplicationID) String() string { return string(id) }
func (id ConsumingID) String() string   { return string(id) }
func (id ActorID) String() string       { return string(id) }

func (id VoucherID) IsNil() bool     { return id == "" }
func (id ApplicationID) IsNil() bool { return id == "" }
func (id ConsumingID) IsNil() bool   { return id == "" }
func (id ActorID) IsNil() bool       { return id == "" }

// ParseVoucherID validates a caller-supplied voucher id at a trust boundary.
func ParseVoucherID(s string) (VoucherID, error) {
	if err := requireOpaqueID(s, "voucher id"); err != nil {
		return "", err
	}
	return VoucherID(s), nil
}

// ParseApplicationID validates a caller-supplied application id.
func ParseApplicationID(s string) (ApplicationID, error) {
	if err := requireOpaqueID(s, "application id"); err != nil {
		return "", err
	}
	return ApplicationID(s), nil
}

// ParseActorID validates a caller-supplied actor id.
func ParseActorID(s string) (ActorID, error) {
	if err := requireOpaqueID(s, "actor id"); err != nil {
		return "", err
	}
	return ActorID(s), nil
}

func requireOpaqueID(s, what string) error {
	if strings.TrimSpace(s) == "" {
		return dErrors.Newf(dErrors.CodeValidation, "%s must not be empty", what)
	}
	return nil
}
