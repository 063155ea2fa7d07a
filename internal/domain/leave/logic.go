package leave

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flms/internal/domain/auth"
)

var two = decimal.NewFromInt(2)

// CalculateDays returns the inclusive calendar day count between start and
// end. Weekends and holidays count; the original system charges calendar
// days.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return float64(inclusiveDays(start, end)), nil
}

func inclusiveDays(start, end time.Time) int64 {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int64(e.Sub(s).Hours()/24) + 1
}

// RoundToHalf rounds to the nearest 0.5 day, the allocation granularity.
// Done in decimal so repeated prorations cannot drift.
func RoundToHalf(v float64) float64 {
	return decimal.NewFromFloat(v).Mul(two).Round(0).Div(two).InexactFloat64()
}

// ProratedAllocation computes the initial grant for an employee under a
// policy cycle: the full allowance scaled by the fraction of the cycle the
// employee is active for, rounded to half-day granularity. ok is false when
// the employee joins after the cycle ends and gets no account at all.
func ProratedAllocation(allowed float64, policyStart, policyEnd, joiningDate time.Time) (float64, bool) {
	activeStart := policyStart
	if joiningDate.After(activeStart) {
		activeStart = joiningDate
	}
	if activeStart.After(policyEnd) {
		return 0, false
	}

	totalDays := inclusiveDays(policyStart, policyEnd)
	activeDays := inclusiveDays(activeStart, policyEnd)
	prorated := decimal.NewFromFloat(allowed).
		Mul(decimal.NewFromInt(activeDays)).
		Div(decimal.NewFromInt(totalDays))
	return prorated.Mul(two).Round(0).Div(two).InexactFloat64(), true
}

// Available returns the spendable balance of an account under the given
// effect: allowance plus carry-forward minus consumption for DEDUCT,
// credits minus consumption for ADD.
func Available(account LeaveAccount, effect string) float64 {
	if effect == EffectAdd {
		return account.CreditedLeaves - account.UsedLeaves
	}
	return account.TotalLeaves + account.CarryForwardLeaves - account.UsedLeaves
}

// InitialStatus routes a new request: an HOD's own leave skips peer HOD
// review and goes straight to the director.
func InitialStatus(role string) string {
	if role == auth.RoleHOD {
		return StatusPendingDirector
	}
	return StatusPendingHOD
}

// IsEmergency reports whether the free-text description waives the
// substitute requirement.
func IsEmergency(description string) bool {
	return strings.Contains(strings.ToLower(description), "emergency")
}

// AdjustmentStatusFor assigns the per-period status at submission time.
func AdjustmentStatusFor(substituteFacultyID, description string) string {
	if substituteFacultyID != "" {
		return AdjustmentAdjusted
	}
	if IsEmergency(description) {
		return AdjustmentNotRequired
	}
	return AdjustmentPending
}

var transitions = map[string][]string{
	StatusPendingHOD:      {StatusApproved, StatusPendingDirector, StatusRejectedByHOD},
	StatusPendingDirector: {StatusApproved, StatusRejectedByDirector},
}

// CanTransition reports whether the state machine permits moving from one
// status to another in a single step. Terminal statuses have no outgoing
// transitions.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ResetCycle returns the post-reset (totalLeaves, carryForwardLeaves) for
// an account. Forwarding policies bank the unspent allowance; either way
// usedLeaves restarts at zero and every employee gets the full allowance
// regardless of when they joined.
func ResetCycle(policy LeavePolicy, account LeaveAccount) (total, carryForward float64) {
	if policy.IsForwarding {
		carryForward = account.TotalLeaves - account.UsedLeaves
		if carryForward < 0 {
			carryForward = 0
		}
		return policy.AllowedLeaves + carryForward, carryForward
	}
	return policy.AllowedLeaves, 0
}

// OverlapDays counts the calendar days of [aStart, aEnd] that fall within
// [bStart, bEnd], all bounds inclusive.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return 0
	}
	return inclusiveDays(start, end)
}

// DaysInMonth returns the calendar length of a month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
