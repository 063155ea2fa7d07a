package directoryhandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flms/internal/domain/auth"
	"flms/internal/domain/directory"
	"flms/internal/transport/http/api"
	"flms/internal/transport/http/middleware"
	"flms/internal/transport/http/shared"
)

type Handler struct {
	Store *directory.Store
}

func NewHandler(store *directory.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDepartments)
		r.With(admin).Post("/", h.handleCreateDepartment)
		r.With(admin).Put("/{departmentID}", h.handleUpdateDepartment)
		r.With(admin).Delete("/{departmentID}", h.handleDeleteDepartment)
		r.With(admin).Post("/{departmentID}/hod", h.handleAssignHOD)
	})

	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListEmployees)
		r.With(middleware.RequireAuth).Get("/{employeeID}", h.handleGetEmployee)
		r.With(admin).Post("/", h.handleCreateEmployee)
		r.With(admin).Put("/{employeeID}", h.handleUpdateEmployee)
	})

	r.Route("/subjects", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListSubjects)
		r.With(admin).Post("/", h.handleCreateSubject)
		r.With(admin).Delete("/{subjectID}", h.handleDeleteSubject)
	})
}

type departmentPayload struct {
	Name string `json:"name"`
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "department name is required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Store.CreateDepartment(r.Context(), strings.TrimSpace(payload.Name))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "department name is required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateDepartment(r.Context(), chi.URLParam(r, "departmentID"), strings.TrimSpace(payload.Name)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to update department", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteDepartment(r.Context(), chi.URLParam(r, "departmentID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignHOD(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.AssignHOD(r.Context(), chi.URLParam(r, "departmentID"), payload.EmployeeID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "hod_assign_failed", "failed to assign hod", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"assigned": true}, middleware.GetRequestID(r.Context()))
}

type employeePayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId"`
	JoiningDate  string `json:"joiningDate"`
	Password     string `json:"password"`
}

func (p employeePayload) validate() (directory.Employee, string) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		return directory.Employee{}, "name and email are required"
	}
	switch p.Role {
	case auth.RoleAdmin, auth.RoleTeaching, auth.RoleNonTeaching, auth.RoleHOD, auth.RoleDirector:
	default:
		return directory.Employee{}, "unknown role"
	}
	joined, err := shared.ParseDate(p.JoiningDate)
	if err != nil {
		return directory.Employee{}, "joiningDate must be a valid date"
	}
	if joined.IsZero() {
		joined = time.Now()
	}
	return directory.Employee{
		Name:         strings.TrimSpace(p.Name),
		Email:        strings.TrimSpace(strings.ToLower(p.Email)),
		Role:         p.Role,
		DepartmentID: p.DepartmentID,
		JoiningDate:  joined,
	}, ""
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	employee, reason := payload.validate()
	if reason != "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", reason, middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "password is required", middleware.GetRequestID(r.Context()))
		return
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), employee, hash)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), r.URL.Query().Get("role"), r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.Store.EmployeeByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	employee, reason := payload.validate()
	if reason != "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", reason, middleware.GetRequestID(r.Context()))
		return
	}
	employee.ID = chi.URLParam(r, "employeeID")
	if err := h.Store.UpdateEmployee(r.Context(), employee); err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.Store.ListSubjects(r.Context(), r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subjects_failed", "failed to list subjects", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, subjects, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var payload directory.Subject
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" || payload.DepartmentID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "subject name and departmentId are required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Store.CreateSubject(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subject_create_failed", "failed to create subject", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteSubject(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "subject_delete_failed", "failed to delete subject", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}
