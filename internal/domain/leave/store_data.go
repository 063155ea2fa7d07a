package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreatePolicy(ctx context.Context, p LeavePolicy) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_policies (name, allowed_leaves, roles, is_forwarding, is_half_day_allowed, leave_effect, start_date, end_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, p.Name, p.AllowedLeaves, p.Roles, p.IsForwarding, p.IsHalfDayAllowed, p.LeaveEffect, p.StartDate, p.EndDate).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) PolicyByID(ctx context.Context, id string) (LeavePolicy, error) {
	var p LeavePolicy
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, allowed_leaves, roles, is_forwarding, is_half_day_allowed, leave_effect, start_date, end_date, created_at
    FROM leave_policies
    WHERE id = $1
  `, id).Scan(&p.ID, &p.Name, &p.AllowedLeaves, &p.Roles, &p.IsForwarding, &p.IsHalfDayAllowed, &p.LeaveEffect, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Store) ListPolicies(ctx context.Context) ([]LeavePolicy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, allowed_leaves, roles, is_forwarding, is_half_day_allowed, leave_effect, start_date, end_date, created_at
    FROM leave_policies
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []LeavePolicy
	for rows.Next() {
		var p LeavePolicy
		if err := rows.Scan(&p.ID, &p.Name, &p.AllowedLeaves, &p.Roles, &p.IsForwarding, &p.IsHalfDayAllowed, &p.LeaveEffect, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p LeavePolicy) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_policies
    SET name = $1, allowed_leaves = $2, roles = $3, is_forwarding = $4, is_half_day_allowed = $5, start_date = $6, end_date = $7
    WHERE id = $8
  `, p.Name, p.AllowedLeaves, p.Roles, p.IsForwarding, p.IsHalfDayAllowed, p.StartDate, p.EndDate, p.ID)
	return err
}

// DeletePolicy removes the policy; leave_accounts cascade via FK. Historic
// requests keep their policy id (no FK cascade on leave_requests).
func (s *Store) DeletePolicy(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM leave_policies WHERE id = $1", id)
	return err
}

func (s *Store) AdvancePolicyCycle(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_policies
    SET start_date = start_date + INTERVAL '1 year', end_date = end_date + INTERVAL '1 year'
    WHERE id = $1
  `, id)
	return err
}

func (s *Store) InsertAccount(ctx context.Context, a LeaveAccount) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_accounts (employee_id, policy_id, total_leaves, used_leaves, carry_forward_leaves, credited_leaves)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, a.EmployeeID, a.PolicyID, a.TotalLeaves, a.UsedLeaves, a.CarryForwardLeaves, a.CreditedLeaves)
	return err
}

func (s *Store) AccountFor(ctx context.Context, employeeID, policyID string) (LeaveAccount, error) {
	var a LeaveAccount
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, policy_id, total_leaves, used_leaves, carry_forward_leaves, credited_leaves, updated_at
    FROM leave_accounts
    WHERE employee_id = $1 AND policy_id = $2
  `, employeeID, policyID).Scan(&a.ID, &a.EmployeeID, &a.PolicyID, &a.TotalLeaves, &a.UsedLeaves, &a.CarryForwardLeaves, &a.CreditedLeaves, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

func (s *Store) AccountsForPolicy(ctx context.Context, policyID string) ([]LeaveAccount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, policy_id, total_leaves, used_leaves, carry_forward_leaves, credited_leaves, updated_at
    FROM leave_accounts
    WHERE policy_id = $1
  `, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []LeaveAccount
	for rows.Next() {
		var a LeaveAccount
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.PolicyID, &a.TotalLeaves, &a.UsedLeaves, &a.CarryForwardLeaves, &a.CreditedLeaves, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *Store) ResetAccount(ctx context.Context, accountID string, total, carryForward float64) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_accounts
    SET total_leaves = $1, carry_forward_leaves = $2, used_leaves = 0, updated_at = now()
    WHERE id = $3
  `, total, carryForward, accountID)
	return err
}

// ConsumeLeave is the one balance mutation in the workflow. The WHERE
// clause makes the check-then-spend a single conditional update, so two
// concurrent approvals cannot both drain the same balance.
func (s *Store) ConsumeLeave(ctx context.Context, employeeID, policyID, effect string, days float64) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_accounts
    SET used_leaves = used_leaves + $1, updated_at = now()
    WHERE employee_id = $2 AND policy_id = $3
      AND (CASE WHEN $4 = 'add' THEN credited_leaves ELSE total_leaves + carry_forward_leaves END) - used_leaves >= $1
  `, days, employeeID, policyID, effect)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AccountSummaries(ctx context.Context, employeeID string) ([]AccountSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.name, p.leave_effect, p.allowed_leaves, p.is_half_day_allowed,
           a.total_leaves, a.used_leaves, a.carry_forward_leaves, a.credited_leaves
    FROM leave_accounts a
    JOIN leave_policies p ON a.policy_id = p.id
    WHERE a.employee_id = $1
    ORDER BY p.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []AccountSummary
	for rows.Next() {
		var sum AccountSummary
		if err := rows.Scan(&sum.PolicyID, &sum.PolicyName, &sum.LeaveEffect, &sum.AllowedLeaves, &sum.IsHalfDayAllowed,
			&sum.TotalLeaves, &sum.UsedLeaves, &sum.CarryForwardLeaves, &sum.CreditedLeaves); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *Store) CreateRequest(ctx context.Context, req LeaveRequest) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, policy_id, start_date, end_date, total_days, description, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, req.EmployeeID, req.PolicyID, req.StartDate, req.EndDate, req.TotalDays, req.Description, req.Status).Scan(&id); err != nil {
		return "", err
	}

	for _, adj := range req.Adjustments {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO period_adjustments (leave_request_id, date, day, period, class_name, department_id, subject_id, substitute_faculty_id, status, notification_status)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, id, adj.Date, adj.Day, adj.Period, adj.ClassName, adj.DepartmentID, nullIfEmpty(adj.SubjectID), nullIfEmpty(adj.SubstituteFacultyID), adj.Status, adj.NotificationStatus); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *Store) RequestByID(ctx context.Context, id string) (LeaveRequest, error) {
	var req LeaveRequest
	var hodBy, hodComments, dirBy, dirComments string
	var hodAt, dirAt *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, policy_id, start_date, end_date, total_days, description, status,
           COALESCE(hod_approved_by::text, ''), hod_approved_at, COALESCE(hod_comments, ''),
           COALESCE(director_approved_by::text, ''), director_approved_at, COALESCE(director_comments, ''),
           created_at
    FROM leave_requests
    WHERE id = $1
  `, id).Scan(&req.ID, &req.EmployeeID, &req.PolicyID, &req.StartDate, &req.EndDate, &req.TotalDays, &req.Description, &req.Status,
		&hodBy, &hodAt, &hodComments, &dirBy, &dirAt, &dirComments, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, ErrNotFound
	}
	if err != nil {
		return req, err
	}
	if hodBy != "" && hodAt != nil {
		req.HODApproval = &Approval{ApprovedBy: hodBy, ApprovedAt: *hodAt, Comments: hodComments}
	}
	if dirBy != "" && dirAt != nil {
		req.DirectorApproval = &Approval{ApprovedBy: dirBy, ApprovedAt: *dirAt, Comments: dirComments}
	}

	adjustments, err := s.adjustmentsOf(ctx, id)
	if err != nil {
		return req, err
	}
	req.Adjustments = adjustments
	return req, nil
}

func (s *Store) adjustmentsOf(ctx context.Context, requestID string) ([]PeriodAdjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, date, day, period, class_name, department_id, COALESCE(subject_id::text, ''), COALESCE(substitute_faculty_id::text, ''), status, notification_status
    FROM period_adjustments
    WHERE leave_request_id = $1
    ORDER BY date, period
  `, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []PeriodAdjustment
	for rows.Next() {
		var adj PeriodAdjustment
		if err := rows.Scan(&adj.ID, &adj.Date, &adj.Day, &adj.Period, &adj.ClassName, &adj.DepartmentID, &adj.SubjectID, &adj.SubstituteFacultyID, &adj.Status, &adj.NotificationStatus); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, nil
}

func (s *Store) ListRequests(ctx context.Context, employeeID, status string) ([]LeaveRequest, error) {
	query := `
    SELECT id, employee_id, policy_id, start_date, end_date, total_days, description, status, created_at
    FROM leave_requests
    WHERE 1=1
  `
	args := []any{}
	if employeeID != "" {
		args = append(args, employeeID)
		query += " AND employee_id = $1"
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += " AND status = $1"
		} else {
			query += " AND status = $2"
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var req LeaveRequest
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.PolicyID, &req.StartDate, &req.EndDate, &req.TotalDays, &req.Description, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (s *Store) SetDecision(ctx context.Context, requestID, status string, hod bool, approvedBy, comments string) error {
	var err error
	if hod {
		_, err = s.DB.Exec(ctx, `
      UPDATE leave_requests
      SET status = $1, hod_approved_by = $2, hod_approved_at = now(), hod_comments = $3
      WHERE id = $4
    `, status, approvedBy, comments, requestID)
	} else {
		_, err = s.DB.Exec(ctx, `
      UPDATE leave_requests
      SET status = $1, director_approved_by = $2, director_approved_at = now(), director_comments = $3
      WHERE id = $4
    `, status, approvedBy, comments, requestID)
	}
	return err
}

func (s *Store) MarkAdjustmentNotified(ctx context.Context, adjustmentID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE period_adjustments SET notification_status = 'sent' WHERE id = $1
  `, adjustmentID)
	return err
}

func (s *Store) HasApprovedLeave(ctx context.Context, facultyID string, date time.Time) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE employee_id = $1 AND status = 'approved' AND start_date <= $2 AND end_date >= $2
  `, facultyID, date).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ApprovedRequestsForDepartment(ctx context.Context, departmentID string, from, to time.Time) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.policy_id, r.start_date, r.end_date, r.total_days, r.description, r.status, r.created_at
    FROM leave_requests r
    JOIN employees e ON r.employee_id = e.id
    WHERE e.department_id = $1 AND r.status = 'approved' AND r.start_date <= $3 AND r.end_date >= $2
    ORDER BY r.start_date
  `, departmentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var req LeaveRequest
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.PolicyID, &req.StartDate, &req.EndDate, &req.TotalDays, &req.Description, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
