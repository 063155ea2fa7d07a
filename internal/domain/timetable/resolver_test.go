package timetable

import (
	"testing"
	"time"
)

func fixtureTimetables() []Timetable {
	return []Timetable{
		{
			ID:           "tt-1",
			DepartmentID: "dept-cs",
			ClassName:    "CS-A",
			Semester:     3,
			Cells: []Cell{
				{Day: "Monday", Period: 1, SubjectID: "sub-algo", FacultyID: "fac-1"},
				{Day: "Monday", Period: 3, SubjectID: "sub-os", FacultyID: "fac-2"},
				{Day: "Wednesday", Period: 2, SubjectID: "sub-algo", FacultyID: "fac-1"},
			},
		},
		{
			ID:           "tt-2",
			DepartmentID: "dept-cs",
			ClassName:    "CS-B",
			Semester:     3,
			Cells: []Cell{
				{Day: "Monday", Period: 4, SubjectID: "sub-dbms", FacultyID: "fac-1"},
			},
		},
	}
}

func TestResolveOccurrencesMatchesWeekdayAndFaculty(t *testing.T) {
	// Mon Jan 5 through Wed Jan 7, 2026.
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	occurrences := ResolveOccurrences(fixtureTimetables(), "fac-1", start, end)
	if len(occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occurrences))
	}

	// Date-ascending, timetable scan order within a date.
	if occurrences[0].ClassName != "CS-A" || occurrences[0].Period != 1 {
		t.Fatalf("unexpected first occurrence: %+v", occurrences[0])
	}
	if occurrences[1].ClassName != "CS-B" || occurrences[1].Period != 4 {
		t.Fatalf("unexpected second occurrence: %+v", occurrences[1])
	}
	if occurrences[2].Day != "Wednesday" || occurrences[2].Period != 2 {
		t.Fatalf("unexpected third occurrence: %+v", occurrences[2])
	}
	for _, occ := range occurrences {
		if occ.FacultyID != "fac-1" {
			t.Fatalf("occurrence for wrong faculty: %+v", occ)
		}
	}
}

func TestResolveOccurrencesEmptyForUnknownFaculty(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)

	occurrences := ResolveOccurrences(fixtureTimetables(), "fac-none", start, end)
	if len(occurrences) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(occurrences))
	}
}

func TestResolveOccurrencesSingleDay(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday

	occurrences := ResolveOccurrences(fixtureTimetables(), "fac-2", day, day)
	if len(occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occurrences))
	}
	if occurrences[0].SubjectID != "sub-os" || occurrences[0].Period != 3 {
		t.Fatalf("unexpected occurrence: %+v", occurrences[0])
	}
}

func TestResolveOccurrencesRepeatsAcrossWeeks(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC) // two Mondays

	occurrences := ResolveOccurrences(fixtureTimetables(), "fac-2", start, end)
	if len(occurrences) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occurrences))
	}
	if !occurrences[1].Date.After(occurrences[0].Date) {
		t.Fatal("occurrences not date-ascending")
	}
}
