// Package outcome defines the machine-readable results returned by every public
// progression operation. Validation failures are values, not errors.
package outcome

import (
	"errors"

	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNotEligible       Reason = "NOT_ELIGIBLE"
	ReasonLevelNotReached   Reason = "LEVEL_NOT_REACHED"
	ReasonRebirthNotReached Reason = "REBIRTH_NOT_REACHED"
	ReasonAlreadyClaimed    Reason = "ALREADY_CLAIMED"
	ReasonInvalidMilestone  Reason = "INVALID_MILESTONE"
	ReasonTransactionFailed Reason = "TRANSACTION_FAILED"
	ReasonStoreUnavailable  Reason = "STORE_UNAVAILABLE"
	ReasonLockTimeout       Reason = "LOCK_TIMEOUT"
	ReasonItemNotFound      Reason = "ITEM_NOT_FOUND"
	ReasonInvalidAmount     Reason = "INVALID_AMOUNT"
)

// Outcome is embedded in every result type.
type Outcome struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK() Outcome {
	return Outcome{Success: true}
}

func Fail(reason Reason, message string) Outcome {
	return Outcome{Success: false, Reason: reason, Message: message}
}

// Failed reports whether the outcome carries a failure reason.
func (o Outcome) Failed() bool {
	return !o.Success
}

// Error is used internally to carry a reason through a transaction closure so
// that the caller can tell a validation failure from an I/O failure.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Message
}

func Errorf(reason Reason, message string) error {
	return &Error{Reason: reason, Message: message}
}

// FromError maps an internal error onto an Outcome. Reasons carried by *Error
// win, lock timeouts map to LOCK_TIMEOUT and everything else is treated as the
// given fallback (STORE_UNAVAILABLE for reads, TRANSACTION_FAILED for commits).
func FromError(err error, fallback Reason) Outcome {
	if err == nil {
		return OK()
	}

	var reasonErr *Error
	if errors.As(err, &reasonErr) {
		return Fail(reasonErr.Reason, reasonErr.Message)
	}
	if errors.Is(err, usermutex.ErrLockTimeout) {
		return Fail(ReasonLockTimeout, "another operation for this user is still running")
	}
	if errors.Is(err, store.ErrUnavailable) {
		return Fail(ReasonStoreUnavailable, err.Error())
	}
	return Fail(fallback, err.Error())
}

// IsValidation reports whether err carries a reason, meaning the operation was
// refused rather than broken.
func IsValidation(err error) bool {
	var reasonErr *Error
	return errors.As(err, &reasonErr)
}
