package leave

import (
	"context"
	"time"

	"flms/internal/domain/auth"
	"flms/internal/domain/directory"
)

// HasApprovedLeave reports whether the faculty member is on approved leave
// on the given date. Drives substitute pre-validation at submission and
// the available-substitutes listing.
func (s *Service) HasApprovedLeave(ctx context.Context, facultyID string, date time.Time) (bool, error) {
	return s.store.HasApprovedLeave(ctx, facultyID, date)
}

// AvailableSubstitutes lists the department's teaching staff who are not
// on approved leave on the given date. The requesting faculty member is
// excluded.
func (s *Service) AvailableSubstitutes(ctx context.Context, departmentID, excludeEmployeeID string, date time.Time) ([]directory.Employee, error) {
	employees, err := s.directory.ListEmployees(ctx, "", departmentID)
	if err != nil {
		return nil, err
	}

	var available []directory.Employee
	for _, e := range employees {
		if e.ID == excludeEmployeeID || !auth.TeachingEligible(e.Role) {
			continue
		}
		busy, err := s.store.HasApprovedLeave(ctx, e.ID, date)
		if err != nil {
			return nil, err
		}
		if !busy {
			available = append(available, e)
		}
	}
	return available, nil
}
