package timetable

import "time"

// Timetable is the standing schedule grid for one class of one department:
// (day, period) cells mapping to a subject and the faculty teaching it.
type Timetable struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"departmentId"`
	ClassName    string    `json:"className"`
	Semester     int       `json:"semester"`
	Cells        []Cell    `json:"cells"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Cell struct {
	Day       string `json:"day"`
	Period    int    `json:"period"`
	SubjectID string `json:"subjectId"`
	FacultyID string `json:"facultyId"`
}

// Occurrence is one concrete teaching slot of an employee on a calendar
// date, produced by resolving timetables over a date range.
type Occurrence struct {
	Date         time.Time `json:"date"`
	Day          string    `json:"day"`
	Period       int       `json:"period"`
	ClassName    string    `json:"className"`
	DepartmentID string    `json:"departmentId"`
	SubjectID    string    `json:"subjectId"`
	FacultyID    string    `json:"facultyId"`
}
