package leave

import (
	"context"
	"time"
)

// AccountSummary joins an account with its policy for balance reporting.
type AccountSummary struct {
	PolicyID           string  `json:"leaveTypeId"`
	PolicyName         string  `json:"name"`
	LeaveEffect        string  `json:"effect"`
	AllowedLeaves      float64 `json:"allowed"`
	TotalLeaves        float64 `json:"-"`
	CarryForwardLeaves float64 `json:"carryForward"`
	UsedLeaves         float64 `json:"used"`
	CreditedLeaves     float64 `json:"-"`
	TotalAvailable     float64 `json:"totalAvailable"`
	Remaining          float64 `json:"remaining"`
	IsHalfDayAllowed   bool    `json:"halfDayAllowed"`
}

type StoreAPI interface {
	CreatePolicy(ctx context.Context, p LeavePolicy) (string, error)
	PolicyByID(ctx context.Context, id string) (LeavePolicy, error)
	ListPolicies(ctx context.Context) ([]LeavePolicy, error)
	UpdatePolicy(ctx context.Context, p LeavePolicy) error
	DeletePolicy(ctx context.Context, id string) error
	AdvancePolicyCycle(ctx context.Context, id string) error

	InsertAccount(ctx context.Context, a LeaveAccount) error
	AccountFor(ctx context.Context, employeeID, policyID string) (LeaveAccount, error)
	AccountsForPolicy(ctx context.Context, policyID string) ([]LeaveAccount, error)
	ResetAccount(ctx context.Context, accountID string, total, carryForward float64) error
	// ConsumeLeave adds days to usedLeaves only if the account still has
	// that much available under the given effect; reports whether the
	// conditional update applied.
	ConsumeLeave(ctx context.Context, employeeID, policyID, effect string, days float64) (bool, error)
	AccountSummaries(ctx context.Context, employeeID string) ([]AccountSummary, error)

	CreateRequest(ctx context.Context, req LeaveRequest) (string, error)
	RequestByID(ctx context.Context, id string) (LeaveRequest, error)
	ListRequests(ctx context.Context, employeeID, status string) ([]LeaveRequest, error)
	SetDecision(ctx context.Context, requestID, status string, hod bool, approvedBy, comments string) error
	MarkAdjustmentNotified(ctx context.Context, adjustmentID string) error

	HasApprovedLeave(ctx context.Context, facultyID string, date time.Time) (bool, error)
	ApprovedRequestsForDepartment(ctx context.Context, departmentID string, from, to time.Time) ([]LeaveRequest, error)
}
