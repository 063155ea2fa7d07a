package leave

import (
	"context"
	"time"

	"flms/internal/domain/directory"
	"flms/internal/domain/timetable"
)

// DirectoryAPI is the slice of the employee directory the leave workflow
// needs. Satisfied by *directory.Store.
type DirectoryAPI interface {
	EmployeeByID(ctx context.Context, id string) (directory.Employee, error)
	ListEmployees(ctx context.Context, role, departmentID string) ([]directory.Employee, error)
	JoiningDates(ctx context.Context, roles []string) (map[string]time.Time, error)
	HODOfDepartment(ctx context.Context, departmentID string) (string, error)
	DirectorIDs(ctx context.Context) ([]string, error)
}

// PeriodSource resolves the timetable slots an employee teaches across a
// date range. Satisfied by *timetable.Service.
type PeriodSource interface {
	ResolvePeriods(ctx context.Context, employeeID string, start, end time.Time) ([]timetable.Occurrence, error)
}

// TimetableAPI commits substitute assignments into standing timetables.
// Satisfied by *timetable.Store.
type TimetableAPI interface {
	AssignSubstitute(ctx context.Context, departmentID, className, day string, period int, substituteID string) error
}

// Notifier records a notification best-effort; implementations never
// return errors to the workflow. Satisfied by *notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, userID, leaveRequestID, ntype, title, message string)
}

type Service struct {
	store      StoreAPI
	directory  DirectoryAPI
	periods    PeriodSource
	timetables TimetableAPI
	notifier   Notifier

	// Now is the clock used for the director lead-time check. Defaults to
	// time.Now; tests pin it.
	Now func() time.Time
}

func NewService(store StoreAPI, dir DirectoryAPI, periods PeriodSource, timetables TimetableAPI, notifier Notifier) *Service {
	return &Service{
		store:      store,
		directory:  dir,
		periods:    periods,
		timetables: timetables,
		notifier:   notifier,
		Now:        time.Now,
	}
}
