package timetablehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flms/internal/domain/auth"
	"flms/internal/domain/timetable"
	"flms/internal/transport/http/api"
	"flms/internal/transport/http/middleware"
	"flms/internal/transport/http/shared"
)

type Handler struct {
	Store   *timetable.Store
	Service *timetable.Service
}

func NewHandler(store *timetable.Store, service *timetable.Service) *Handler {
	return &Handler{Store: store, Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timetables", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListByDepartment)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHOD)).Post("/", h.handleUpsert)
	})
	r.With(middleware.RequireAuth).Get("/employees/{employeeID}/periods", h.handleResolvePeriods)
}

type upsertPayload struct {
	DepartmentID string           `json:"departmentId"`
	ClassName    string           `json:"className"`
	Semester     int              `json:"semester"`
	Cells        []timetable.Cell `json:"cells"`
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var payload upsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.DepartmentID == "" || payload.ClassName == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "departmentId and className are required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Store.UpsertTimetable(r.Context(), payload.DepartmentID, payload.ClassName, payload.Semester, payload.Cells)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timetable_upsert_failed", "failed to save timetable", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("departmentId")
	if departmentID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "departmentId is required", middleware.GetRequestID(r.Context()))
		return
	}
	timetables, err := h.Store.TimetablesByDepartment(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timetables_failed", "failed to list timetables", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, timetables, middleware.GetRequestID(r.Context()))
}

// handleResolvePeriods previews the periods an employee teaches in a date
// range, the same resolution the leave workflow runs at submission.
func (h *Handler) handleResolvePeriods(w http.ResponseWriter, r *http.Request) {
	start, err := shared.ParseDate(r.URL.Query().Get("startDate"))
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "startDate must be a valid date", middleware.GetRequestID(r.Context()))
		return
	}
	end, err := shared.ParseDate(r.URL.Query().Get("endDate"))
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "endDate must be a valid date", middleware.GetRequestID(r.Context()))
		return
	}
	if end.Before(start) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "endDate must not be before startDate", middleware.GetRequestID(r.Context()))
		return
	}

	occurrences, err := h.Service.ResolvePeriods(r.Context(), chi.URLParam(r, "employeeID"), start, end)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "periods_failed", "failed to resolve periods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, occurrences, middleware.GetRequestID(r.Context()))
}
