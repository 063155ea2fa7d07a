package timetable

import "time"

// ResolveOccurrences walks every calendar date from start to end inclusive
// and collects the cells of the given timetables where the employee is the
// assigned faculty on that weekday. Output is date-ascending; within one
// date, cells appear in timetable scan order.
func ResolveOccurrences(timetables []Timetable, employeeID string, start, end time.Time) []Occurrence {
	var occurrences []Occurrence
	for date := truncateDay(start); !date.After(truncateDay(end)); date = date.AddDate(0, 0, 1) {
		weekday := date.Weekday().String()
		for _, tt := range timetables {
			for _, cell := range tt.Cells {
				if cell.FacultyID != employeeID || cell.Day != weekday {
					continue
				}
				occurrences = append(occurrences, Occurrence{
					Date:         date,
					Day:          weekday,
					Period:       cell.Period,
					ClassName:    tt.ClassName,
					DepartmentID: tt.DepartmentID,
					SubjectID:    cell.SubjectID,
					FacultyID:    cell.FacultyID,
				})
			}
		}
	}
	return occurrences
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
