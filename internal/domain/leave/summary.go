package leave

import (
	"context"
	"time"
)

// FacultyMonthUsage is one employee's row in the department balance
// report.
type FacultyMonthUsage struct {
	EmployeeID string  `json:"employeeId"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	UsedDays   float64 `json:"usedDays"`
	Remaining  float64 `json:"remaining"`
}

type DepartmentBalance struct {
	DepartmentID string              `json:"departmentId"`
	Month        time.Month          `json:"month"`
	Year         int                 `json:"year"`
	DaysInMonth  int                 `json:"daysInMonth"`
	Faculty      []FacultyMonthUsage `json:"faculty"`
}

// FacultyLeaveSummary returns the employee's per-policy balances with the
// availability figures filled in for the policy's effect.
func (s *Service) FacultyLeaveSummary(ctx context.Context, employeeID string) ([]AccountSummary, error) {
	summaries, err := s.store.AccountSummaries(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		sum := &summaries[i]
		if sum.LeaveEffect == EffectAdd {
			sum.TotalAvailable = sum.CreditedLeaves
		} else {
			sum.TotalAvailable = sum.TotalLeaves + sum.CarryForwardLeaves
		}
		sum.Remaining = sum.TotalAvailable - sum.UsedLeaves
	}
	return summaries, nil
}

// DepartmentLeaveBalance reports, for each employee of the department, the
// approved leave days falling inside the given month and the balance left
// across all their policies.
func (s *Service) DepartmentLeaveBalance(ctx context.Context, departmentID string, month time.Month, year int) (DepartmentBalance, error) {
	daysInMonth := DaysInMonth(year, month)
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(year, month, daysInMonth, 0, 0, 0, 0, time.UTC)

	balance := DepartmentBalance{
		DepartmentID: departmentID,
		Month:        month,
		Year:         year,
		DaysInMonth:  daysInMonth,
	}

	employees, err := s.directory.ListEmployees(ctx, "", departmentID)
	if err != nil {
		return balance, err
	}
	requests, err := s.store.ApprovedRequestsForDepartment(ctx, departmentID, monthStart, monthEnd)
	if err != nil {
		return balance, err
	}

	usedByEmployee := map[string]float64{}
	for _, req := range requests {
		usedByEmployee[req.EmployeeID] += float64(OverlapDays(req.StartDate, req.EndDate, monthStart, monthEnd))
	}

	for _, e := range employees {
		summaries, err := s.FacultyLeaveSummary(ctx, e.ID)
		if err != nil {
			return balance, err
		}
		var remaining float64
		for _, sum := range summaries {
			remaining += sum.Remaining
		}
		balance.Faculty = append(balance.Faculty, FacultyMonthUsage{
			EmployeeID: e.ID,
			Name:       e.Name,
			Role:       e.Role,
			UsedDays:   usedByEmployee[e.ID],
			Remaining:  remaining,
		})
	}
	return balance, nil
}
