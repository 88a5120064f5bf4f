// Package domainerrors defines the coded error vocabulary shared by every
// layer. Services raise coded errors, transport maps codes to HTTP statuses,
// and callers branch on codes instead of matching message strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// CodeValidation marks caller input that failed validation.
	CodeValidation Code = "validation"
	// CodeBadRequest marks a malformed request (bad JSON, missing fields).
	CodeBadRequest Code = "bad_request"
	// CodeInvariantViolation marks a structural precondition failure. These
	// are caller bugs: mismatched aggregate ids, references to records that
	// do not exist, commands issued against a terminal state.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeConflict marks a legitimate business-state clash the caller may
	// retry with fresh state (e.g. a concurrent writer won).
	CodeConflict Code = "conflict"
	// CodeForbidden marks an actor-identity mismatch.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a missing record.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
	// CodeTimeout marks an operation that exceeded its deadline.
	CodeTimeout Code = "timeout"
)

// DomainError carries a stable code alongside a human-oriented message and an
// optional wrapped cause.
type DomainError struct {
	Code    Code
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is makes two DomainErrors compare equal under errors.Is when both code and
// message match, so tests can assert against a freshly constructed value.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a DomainError with the given code and message.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Newf creates a DomainError with a formatted message.
func Newf(code Code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a DomainError with
// the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is shorthand for HasCode; it reads better at call sites that branch on
// a single code.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode extracts the outermost code from err, defaulting to CodeInternal
// for non-domain errors.
func GetCode(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
