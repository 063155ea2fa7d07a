package leave

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSubstituteConflict  = errors.New("substitute unavailable")
)

// InsufficientBalanceError carries the figures the caller needs to report
// why a submission or approval was blocked.
type InsufficientBalanceError struct {
	EmployeeID string
	PolicyID   string
	Available  float64
	Requested  float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: available %.1f, requested %.1f", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// SubstituteConflictError names the proposed substitute that is already on
// approved leave for one of the requested dates.
type SubstituteConflictError struct {
	SubstituteID string
	Date         time.Time
}

func (e *SubstituteConflictError) Error() string {
	return fmt.Sprintf("substitute %s is on approved leave on %s", e.SubstituteID, e.Date.Format("2006-01-02"))
}

func (e *SubstituteConflictError) Unwrap() error {
	return ErrSubstituteConflict
}
