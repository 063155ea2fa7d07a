package notifications

const (
	TypeLeaveSubmitted     = "leave_submitted"
	TypeLeaveApproved      = "leave_approved"
	TypeLeaveRejected      = "leave_rejected"
	TypeLeaveForwarded     = "leave_forwarded"
	TypeSubstituteAssigned = "substitute_assigned"
	TypePolicyAllocated    = "policy_allocated"
)
