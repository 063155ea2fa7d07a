package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flms/internal/domain/auth"
	"flms/internal/domain/directory"
	"flms/internal/domain/notifications"
)

// SubmitInput carries a new leave application. Adjustments may be supplied
// by the caller (non-teaching staff, or an explicit override); when empty
// and the applicant teaches, they are resolved from the live timetable.
type SubmitInput struct {
	EmployeeID  string             `json:"employeeId"`
	PolicyID    string             `json:"leaveTypeId"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
	Description string             `json:"description"`
	Adjustments []PeriodAdjustment `json:"periodAdjustments"`
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (LeaveRequest, error) {
	if in.EmployeeID == "" || in.PolicyID == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return LeaveRequest{}, fmt.Errorf("%w: employeeId, leaveTypeId, startDate and endDate are required", ErrValidation)
	}
	days, err := CalculateDays(in.StartDate, in.EndDate)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	policy, err := s.store.PolicyByID(ctx, in.PolicyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LeaveRequest{}, fmt.Errorf("%w: leave policy %s", ErrNotFound, in.PolicyID)
		}
		return LeaveRequest{}, err
	}
	employee, err := s.lookupEmployee(ctx, in.EmployeeID)
	if err != nil {
		return LeaveRequest{}, err
	}
	account, err := s.store.AccountFor(ctx, in.EmployeeID, in.PolicyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LeaveRequest{}, fmt.Errorf("%w: policy not allocated to this employee", ErrNotFound)
		}
		return LeaveRequest{}, err
	}

	// Pre-check only; the balance is actually spent by the conditional
	// update at final approval.
	available := Available(account, policy.LeaveEffect)
	if days > available {
		return LeaveRequest{}, &InsufficientBalanceError{
			EmployeeID: in.EmployeeID,
			PolicyID:   in.PolicyID,
			Available:  available,
			Requested:  days,
		}
	}

	adjustments := in.Adjustments
	if len(adjustments) == 0 && auth.TeachingEligible(employee.Role) {
		occurrences, err := s.periods.ResolvePeriods(ctx, in.EmployeeID, in.StartDate, in.EndDate)
		if err != nil {
			return LeaveRequest{}, fmt.Errorf("resolve periods: %w", err)
		}
		for _, occ := range occurrences {
			adjustments = append(adjustments, PeriodAdjustment{
				Date:         occ.Date,
				Day:          occ.Day,
				Period:       occ.Period,
				ClassName:    occ.ClassName,
				DepartmentID: occ.DepartmentID,
				SubjectID:    occ.SubjectID,
			})
		}
	}

	for i := range adjustments {
		adj := &adjustments[i]
		if adj.SubstituteFacultyID != "" {
			busy, err := s.store.HasApprovedLeave(ctx, adj.SubstituteFacultyID, adj.Date)
			if err != nil {
				return LeaveRequest{}, fmt.Errorf("check substitute %s: %w", adj.SubstituteFacultyID, err)
			}
			if busy {
				return LeaveRequest{}, &SubstituteConflictError{SubstituteID: adj.SubstituteFacultyID, Date: adj.Date}
			}
		}
		adj.Status = AdjustmentStatusFor(adj.SubstituteFacultyID, in.Description)
		adj.NotificationStatus = "pending"
	}

	request := LeaveRequest{
		EmployeeID:  in.EmployeeID,
		PolicyID:    in.PolicyID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TotalDays:   days,
		Description: in.Description,
		Status:      InitialStatus(employee.Role),
		Adjustments: adjustments,
	}
	id, err := s.store.CreateRequest(ctx, request)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}

	s.notifySubmission(ctx, id, employee)
	return s.store.RequestByID(ctx, id)
}

// lookupEmployee translates a missing directory row into this package's
// ErrNotFound so callers can distinguish it from an infrastructure error.
func (s *Service) lookupEmployee(ctx context.Context, id string) (directory.Employee, error) {
	employee, err := s.directory.EmployeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Employee{}, fmt.Errorf("%w: employee %s", ErrNotFound, id)
		}
		return directory.Employee{}, fmt.Errorf("employee %s: %w", id, err)
	}
	return employee, nil
}

func (s *Service) notifySubmission(ctx context.Context, requestID string, employee directory.Employee) {
	title := "Leave request submitted"
	message := fmt.Sprintf("%s has applied for leave.", employee.Name)

	if employee.Role == auth.RoleHOD {
		s.notifyDirectors(ctx, requestID, notifications.TypeLeaveSubmitted, title, message)
	} else if employee.DepartmentID != "" {
		hodID, err := s.directory.HODOfDepartment(ctx, employee.DepartmentID)
		if err != nil {
			slog.Warn("hod lookup failed", "departmentId", employee.DepartmentID, "err", err)
		} else if hodID != "" {
			s.notifier.Notify(ctx, hodID, requestID, notifications.TypeLeaveSubmitted, title, message)
		}
	}
	s.notifier.Notify(ctx, employee.ID, requestID, notifications.TypeLeaveSubmitted,
		"Leave request received", "Your leave request has been submitted for approval.")
}

func (s *Service) notifyDirectors(ctx context.Context, requestID, ntype, title, message string) {
	directorIDs, err := s.directory.DirectorIDs(ctx)
	if err != nil {
		slog.Warn("director lookup failed", "err", err)
		return
	}
	for _, directorID := range directorIDs {
		s.notifier.Notify(ctx, directorID, requestID, ntype, title, message)
	}
}

// HodAction applies an HOD's approve/reject decision to a request waiting
// at pending_hod. For ordinary staff the HOD is the final approver; a peer
// HOD's own request is forwarded to the director instead.
func (s *Service) HodAction(ctx context.Context, requestID, action, comments, hodID string) (LeaveRequest, error) {
	if hodID == "" {
		return LeaveRequest{}, fmt.Errorf("%w: hod id is required", ErrValidation)
	}
	if action != ActionApprove && action != ActionReject {
		return LeaveRequest{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	request, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if request.Status != StatusPendingHOD {
		return LeaveRequest{}, fmt.Errorf("%w: request is %s, expected %s", ErrInvalidState, request.Status, StatusPendingHOD)
	}
	actor, err := s.lookupEmployee(ctx, hodID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if actor.Role != auth.RoleHOD {
		return LeaveRequest{}, fmt.Errorf("%w: only an hod may act on this request", ErrForbidden)
	}

	if action == ActionReject {
		if err := s.store.SetDecision(ctx, requestID, StatusRejectedByHOD, true, hodID, comments); err != nil {
			return LeaveRequest{}, err
		}
		s.notifier.Notify(ctx, request.EmployeeID, requestID, notifications.TypeLeaveRejected,
			"Leave request rejected", "Your leave request was rejected by the HOD.")
		return s.store.RequestByID(ctx, requestID)
	}

	taker, err := s.lookupEmployee(ctx, request.EmployeeID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if taker.Role == auth.RoleHOD {
		// Peer-HOD leave forwards to the director without spending balance.
		if err := s.store.SetDecision(ctx, requestID, StatusPendingDirector, true, hodID, comments); err != nil {
			return LeaveRequest{}, err
		}
		s.notifyDirectors(ctx, requestID, notifications.TypeLeaveForwarded,
			"Leave request awaiting approval", fmt.Sprintf("%s's leave request awaits your decision.", taker.Name))
		return s.store.RequestByID(ctx, requestID)
	}

	if err := s.finalizeApproval(ctx, request); err != nil {
		return LeaveRequest{}, err
	}
	if err := s.store.SetDecision(ctx, requestID, StatusApproved, true, hodID, comments); err != nil {
		return LeaveRequest{}, err
	}
	s.commitAdjustments(ctx, request)

	if len(request.Adjustments) > 0 {
		s.notifier.Notify(ctx, request.EmployeeID, requestID, notifications.TypeLeaveApproved,
			"Leave request approved", "Your leave request has been approved.")
	} else {
		s.notifyDirectors(ctx, requestID, notifications.TypeLeaveApproved,
			"Leave approved", fmt.Sprintf("%s's leave request was approved by the HOD.", taker.Name))
	}
	return s.store.RequestByID(ctx, requestID)
}

// DirectorAction applies a director's approve/reject decision to a request
// waiting at pending_director. Approval requires the leave to start
// strictly after today; that guard runs before the identity check.
func (s *Service) DirectorAction(ctx context.Context, requestID, action, comments, directorID string) (LeaveRequest, error) {
	if directorID == "" {
		return LeaveRequest{}, fmt.Errorf("%w: director id is required", ErrValidation)
	}
	if action != ActionApprove && action != ActionReject {
		return LeaveRequest{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	request, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if request.Status != StatusPendingDirector {
		return LeaveRequest{}, fmt.Errorf("%w: request is %s, expected %s", ErrInvalidState, request.Status, StatusPendingDirector)
	}

	if action == ActionApprove {
		today := truncateDay(s.Now())
		if !truncateDay(request.StartDate).After(today) {
			return LeaveRequest{}, fmt.Errorf("%w: leave must start at least one day after approval", ErrValidation)
		}
	}

	actor, err := s.lookupEmployee(ctx, directorID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if actor.Role != auth.RoleDirector {
		return LeaveRequest{}, fmt.Errorf("%w: only a director may act on this request", ErrForbidden)
	}

	if action == ActionReject {
		if err := s.store.SetDecision(ctx, requestID, StatusRejectedByDirector, false, directorID, comments); err != nil {
			return LeaveRequest{}, err
		}
		s.notifier.Notify(ctx, request.EmployeeID, requestID, notifications.TypeLeaveRejected,
			"Leave request rejected", "Your leave request was rejected by the director.")
		return s.store.RequestByID(ctx, requestID)
	}

	if err := s.finalizeApproval(ctx, request); err != nil {
		return LeaveRequest{}, err
	}
	if err := s.store.SetDecision(ctx, requestID, StatusApproved, false, directorID, comments); err != nil {
		return LeaveRequest{}, err
	}
	s.commitAdjustments(ctx, request)
	s.notifier.Notify(ctx, request.EmployeeID, requestID, notifications.TypeLeaveApproved,
		"Leave request approved", "Your leave request has been approved.")
	return s.store.RequestByID(ctx, requestID)
}

// finalizeApproval spends the balance. The conditional update re-checks
// availability at commit time, so a stale pre-check from a concurrent
// approval cannot push an account negative.
func (s *Service) finalizeApproval(ctx context.Context, request LeaveRequest) error {
	policy, err := s.store.PolicyByID(ctx, request.PolicyID)
	if err != nil {
		return err
	}
	applied, err := s.store.ConsumeLeave(ctx, request.EmployeeID, request.PolicyID, policy.LeaveEffect, request.TotalDays)
	if err != nil {
		return fmt.Errorf("consume leave: %w", err)
	}
	if !applied {
		account, err := s.store.AccountFor(ctx, request.EmployeeID, request.PolicyID)
		if err != nil {
			return fmt.Errorf("%w: balance exhausted", ErrInsufficientBalance)
		}
		return &InsufficientBalanceError{
			EmployeeID: request.EmployeeID,
			PolicyID:   request.PolicyID,
			Available:  Available(account, policy.LeaveEffect),
			Requested:  request.TotalDays,
		}
	}
	return nil
}

// commitAdjustments writes each confirmed substitute into the standing
// timetable and notifies them. A failed cell write is logged and skipped;
// the approval already happened and must not be rolled back by a timetable
// hiccup.
func (s *Service) commitAdjustments(ctx context.Context, request LeaveRequest) {
	for _, adj := range request.Adjustments {
		if adj.SubstituteFacultyID == "" {
			continue
		}
		if err := s.timetables.AssignSubstitute(ctx, adj.DepartmentID, adj.ClassName, adj.Day, adj.Period, adj.SubstituteFacultyID); err != nil {
			slog.Warn("timetable substitution failed",
				"leaveRequestId", request.ID, "departmentId", adj.DepartmentID,
				"class", adj.ClassName, "day", adj.Day, "period", adj.Period, "err", err)
			continue
		}
		if err := s.store.MarkAdjustmentNotified(ctx, adj.ID); err != nil {
			slog.Warn("adjustment status update failed", "adjustmentId", adj.ID, "err", err)
		}
		s.notifier.Notify(ctx, adj.SubstituteFacultyID, request.ID, notifications.TypeSubstituteAssigned,
			"Substitution assigned",
			fmt.Sprintf("You are assigned to cover %s period %d on %s.", adj.ClassName, adj.Period, adj.Date.Format("2006-01-02")))
	}
}

func (s *Service) RequestByID(ctx context.Context, id string) (LeaveRequest, error) {
	return s.store.RequestByID(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, employeeID, status string) ([]LeaveRequest, error) {
	return s.store.ListRequests(ctx, employeeID, status)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
