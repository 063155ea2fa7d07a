package timetable

import (
	"context"
	"fmt"
)

// UpsertTimetable replaces the grid for (department, class, semester). The
// old cells are dropped in the same transaction-free pass the original
// editor used; last writer wins.
func (s *Store) UpsertTimetable(ctx context.Context, departmentID, className string, semester int, cells []Cell) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO timetables (department_id, class_name, semester)
    VALUES ($1,$2,$3)
    ON CONFLICT (department_id, class_name, semester) DO UPDATE SET created_at = timetables.created_at
    RETURNING id
  `, departmentID, className, semester).Scan(&id); err != nil {
		return "", err
	}

	if _, err := s.DB.Exec(ctx, "DELETE FROM timetable_cells WHERE timetable_id = $1", id); err != nil {
		return "", err
	}
	for _, cell := range cells {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO timetable_cells (timetable_id, day, period, subject_id, faculty_id)
      VALUES ($1,$2,$3,$4,$5)
    `, id, cell.Day, cell.Period, nullIfEmpty(cell.SubjectID), nullIfEmpty(cell.FacultyID)); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *Store) TimetablesByDepartment(ctx context.Context, departmentID string) ([]Timetable, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, department_id, class_name, semester, created_at
    FROM timetables
    WHERE department_id = $1
    ORDER BY class_name, semester
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timetables []Timetable
	for rows.Next() {
		var tt Timetable
		if err := rows.Scan(&tt.ID, &tt.DepartmentID, &tt.ClassName, &tt.Semester, &tt.CreatedAt); err != nil {
			return nil, err
		}
		timetables = append(timetables, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range timetables {
		cells, err := s.cellsOf(ctx, timetables[i].ID)
		if err != nil {
			return nil, err
		}
		timetables[i].Cells = cells
	}
	return timetables, nil
}

func (s *Store) cellsOf(ctx context.Context, timetableID string) ([]Cell, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT day, period, COALESCE(subject_id::text, ''), COALESCE(faculty_id::text, '')
    FROM timetable_cells
    WHERE timetable_id = $1
    ORDER BY day, period
  `, timetableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []Cell
	for rows.Next() {
		var c Cell
		if err := rows.Scan(&c.Day, &c.Period, &c.SubjectID, &c.FacultyID); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// AssignSubstitute overwrites the faculty of the matching cell in the
// standing timetable. The swap is permanent; there is no restore when the
// leave ends.
func (s *Store) AssignSubstitute(ctx context.Context, departmentID, className, day string, period int, substituteID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timetable_cells
    SET faculty_id = $1
    WHERE day = $2 AND period = $3
      AND timetable_id IN (
        SELECT id FROM timetables WHERE department_id = $4 AND class_name = $5
      )
  `, substituteID, day, period, departmentID, className)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no timetable cell matches department %s class %s %s period %d", departmentID, className, day, period)
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
