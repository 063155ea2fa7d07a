package leave

import "time"

// Leave effect determines how an account tracks balance. DEDUCT policies
// grant an allowance up front and spend it down; ADD policies accumulate
// credits over time and consumption is tracked against them.
const (
	EffectDeduct = "deduct"
	EffectAdd    = "add"
)

// Request statuses. pending_hod and pending_director are the two waiting
// states; the other three are terminal.
const (
	StatusPendingHOD         = "pending_hod"
	StatusPendingDirector    = "pending_director"
	StatusApproved           = "approved"
	StatusRejectedByHOD      = "rejected_by_hod"
	StatusRejectedByDirector = "rejected_by_director"
)

// Per-period adjustment statuses.
const (
	AdjustmentPending     = "pending"
	AdjustmentAdjusted    = "adjusted"
	AdjustmentNotRequired = "not_required"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type LeavePolicy struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AllowedLeaves    float64   `json:"allowedLeaves"`
	Roles            []string  `json:"roles"`
	IsForwarding     bool      `json:"isForwarding"`
	IsHalfDayAllowed bool      `json:"isHalfDayAllowed"`
	LeaveEffect      string    `json:"leaveEffect"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	CreatedAt        time.Time `json:"createdAt"`
}

// LeaveAccount is one employee's balance under one policy. TotalLeaves is
// the allowance for DEDUCT policies and always 0 for ADD policies, where
// CreditedLeaves carries the accumulated grant instead.
type LeaveAccount struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employeeId"`
	PolicyID           string    `json:"policyId"`
	TotalLeaves        float64   `json:"totalLeaves"`
	UsedLeaves         float64   `json:"usedLeaves"`
	CarryForwardLeaves float64   `json:"carryForwardLeaves"`
	CreditedLeaves     float64   `json:"creditedLeaves"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Approval struct {
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
	Comments   string    `json:"comments,omitempty"`
}

// PeriodAdjustment is one timetable slot the leave-taker was scheduled to
// teach during the leave window, with the substitute arrangement for it.
type PeriodAdjustment struct {
	ID                  string    `json:"id,omitempty"`
	Date                time.Time `json:"date"`
	Day                 string    `json:"day"`
	Period              int       `json:"period"`
	ClassName           string    `json:"className"`
	DepartmentID        string    `json:"departmentId"`
	SubjectID           string    `json:"subjectId"`
	SubstituteFacultyID string    `json:"substituteFacultyId,omitempty"`
	Status              string    `json:"status"`
	NotificationStatus  string    `json:"notificationStatus"`
}

type LeaveRequest struct {
	ID               string             `json:"id"`
	EmployeeID       string             `json:"employeeId"`
	PolicyID         string             `json:"leaveTypeId"`
	StartDate        time.Time          `json:"startDate"`
	EndDate          time.Time          `json:"endDate"`
	TotalDays        float64            `json:"totalDays"`
	Description      string             `json:"description"`
	Status           string             `json:"status"`
	Adjustments      []PeriodAdjustment `json:"periodAdjustments"`
	HODApproval      *Approval          `json:"hodApproval,omitempty"`
	DirectorApproval *Approval          `json:"directorApproval,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}
