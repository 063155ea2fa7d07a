package timetable

import (
	"context"
	"time"

	"flms/internal/domain/directory"
)

// Directory is the slice of the employee directory the resolver needs.
// Satisfied by *directory.Store.
type Directory interface {
	EmployeeByID(ctx context.Context, id string) (directory.Employee, error)
}

type Service struct {
	Store     *Store
	Directory Directory
}

func NewService(store *Store, dir Directory) *Service {
	return &Service{Store: store, Directory: dir}
}

// ResolvePeriods enumerates the timetable slots the employee teaches on
// each date in [start, end]. Employees without a department, or whose
// department has no timetables, resolve to an empty list.
func (s *Service) ResolvePeriods(ctx context.Context, employeeID string, start, end time.Time) ([]Occurrence, error) {
	employee, err := s.Directory.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.DepartmentID == "" {
		return nil, nil
	}

	timetables, err := s.Store.TimetablesByDepartment(ctx, employee.DepartmentID)
	if err != nil {
		return nil, err
	}
	return ResolveOccurrences(timetables, employeeID, start, end), nil
}
