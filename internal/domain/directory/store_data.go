package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateDepartment(ctx context.Context, name string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name)
    VALUES ($1)
    RETURNING id
  `, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(hod_employee_id::text, ''), created_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.HODEmployeeID, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id, name string) error {
	_, err := s.DB.Exec(ctx, "UPDATE departments SET name = $1 WHERE id = $2", name, id)
	return err
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	return err
}

func (s *Store) AssignHOD(ctx context.Context, departmentID, employeeID string) error {
	if _, err := s.DB.Exec(ctx, `
    UPDATE departments SET hod_employee_id = $1 WHERE id = $2
  `, nullIfEmpty(employeeID), departmentID); err != nil {
		return err
	}
	if employeeID != "" {
		_, err := s.DB.Exec(ctx, "UPDATE employees SET role = 'hod' WHERE id = $1", employeeID)
		return err
	}
	return nil
}

func (s *Store) CreateEmployee(ctx context.Context, e Employee, passwordHash string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (name, email, role, department_id, joining_date, password_hash)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, e.Name, e.Email, e.Role, nullIfEmpty(e.DepartmentID), e.JoiningDate, passwordHash).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) EmployeeByID(ctx context.Context, id string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, role, COALESCE(department_id::text, ''), joining_date, created_at
    FROM employees
    WHERE id = $1
  `, id).Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DepartmentID, &e.JoiningDate, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: employee %s", ErrNotFound, id)
	}
	return e, err
}

func (s *Store) EmployeeCredentials(ctx context.Context, email string) (Employee, string, error) {
	var e Employee
	var hash string
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, role, COALESCE(department_id::text, ''), joining_date, created_at, password_hash
    FROM employees
    WHERE email = $1
  `, email).Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DepartmentID, &e.JoiningDate, &e.CreatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, "", fmt.Errorf("%w: no employee with email %s", ErrNotFound, email)
	}
	return e, hash, err
}

func (s *Store) ListEmployees(ctx context.Context, role, departmentID string) ([]Employee, error) {
	query := `
    SELECT id, name, email, role, COALESCE(department_id::text, ''), joining_date, created_at
    FROM employees
    WHERE 1=1
  `
	args := []any{}
	if role != "" {
		args = append(args, role)
		query += " AND role = $1"
	}
	if departmentID != "" {
		args = append(args, departmentID)
		if len(args) == 1 {
			query += " AND department_id = $1"
		} else {
			query += " AND department_id = $2"
		}
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DepartmentID, &e.JoiningDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func (s *Store) EmployeesByRoles(ctx context.Context, roles []string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, email, role, COALESCE(department_id::text, ''), joining_date, created_at
    FROM employees
    WHERE role = ANY($1)
    ORDER BY name
  `, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DepartmentID, &e.JoiningDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e Employee) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, email = $2, role = $3, department_id = $4, joining_date = $5
    WHERE id = $6
  `, e.Name, e.Email, e.Role, nullIfEmpty(e.DepartmentID), e.JoiningDate, e.ID)
	return err
}

// HODOfDepartment returns the employee id of the department's HOD, or ""
// when the department has no HOD assigned.
func (s *Store) HODOfDepartment(ctx context.Context, departmentID string) (string, error) {
	var hodID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(hod_employee_id::text, '')
    FROM departments
    WHERE id = $1
  `, departmentID).Scan(&hodID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: department %s", ErrNotFound, departmentID)
	}
	return hodID, err
}

func (s *Store) DirectorIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM employees WHERE role = 'director'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) CreateSubject(ctx context.Context, subject Subject) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO subjects (name, code, department_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, subject.Name, subject.Code, subject.DepartmentID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListSubjects(ctx context.Context, departmentID string) ([]Subject, error) {
	query := "SELECT id, name, code, department_id FROM subjects"
	args := []any{}
	if departmentID != "" {
		query += " WHERE department_id = $1"
		args = append(args, departmentID)
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Code, &sub.DepartmentID); err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, nil
}

func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM subjects WHERE id = $1", id)
	return err
}

func (s *Store) JoiningDates(ctx context.Context, roles []string) (map[string]time.Time, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, joining_date
    FROM employees
    WHERE role = ANY($1)
  `, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var id string
		var joined time.Time
		if err := rows.Scan(&id, &joined); err != nil {
			return nil, err
		}
		out[id] = joined
	}
	return out, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
