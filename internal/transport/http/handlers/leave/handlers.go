package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"flms/internal/domain/auth"
	"flms/internal/domain/leave"
	"flms/internal/transport/http/api"
	"flms/internal/transport/http/middleware"
	"flms/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	approver := middleware.RequireRole(auth.RoleAdmin, auth.RoleHOD, auth.RoleDirector)

	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/policies", h.handleListPolicies)
		r.With(admin).Post("/policies", h.handleCreatePolicy)
		r.With(admin).Put("/policies/{policyID}", h.handleUpdatePolicy)
		r.With(admin).Delete("/policies/{policyID}", h.handleDeletePolicy)
		r.With(admin).Post("/reset/run", h.handleRunReset)

		r.With(middleware.RequireAuth).Get("/summary", h.handleSummary)
		r.With(middleware.RequireAuth).Get("/substitutes", h.handleAvailableSubstitutes)

		r.With(middleware.RequireAuth).Post("/requests", h.handleApply)
		r.With(middleware.RequireAuth).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireAuth).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleHOD)).Post("/requests/{requestID}/hod-decision", h.handleHodDecision)
		r.With(middleware.RequireRole(auth.RoleDirector)).Post("/requests/{requestID}/director-decision", h.handleDirectorDecision)

		r.With(approver).Get("/departments/{departmentID}/balance", h.handleDepartmentBalance)
		r.With(approver).Get("/departments/{departmentID}/balance/export", h.handleDepartmentBalancePDF)
	})
}

// failDomain maps leave domain errors to the API error taxonomy.
func failDomain(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "state_conflict", err.Error(), reqID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		var balErr *leave.InsufficientBalanceError
		if errors.As(err, &balErr) {
			api.FailWithDetails(w, http.StatusConflict, "insufficient_balance", err.Error(), map[string]float64{
				"available": balErr.Available,
				"requested": balErr.Requested,
			}, reqID)
			return
		}
		api.Fail(w, http.StatusConflict, "insufficient_balance", err.Error(), reqID)
	case errors.Is(err, leave.ErrSubstituteConflict):
		var subErr *leave.SubstituteConflictError
		if errors.As(err, &subErr) {
			api.FailWithDetails(w, http.StatusConflict, "substitute_conflict", err.Error(), map[string]string{
				"substituteId": subErr.SubstituteID,
				"date":         subErr.Date.Format("2006-01-02"),
			}, reqID)
			return
		}
		api.Fail(w, http.StatusConflict, "substitute_conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
	}
}

type policyPayload struct {
	Name             string   `json:"name"`
	AllowedLeaves    float64  `json:"allowedLeaves"`
	Roles            []string `json:"roles"`
	IsForwarding     bool     `json:"isForwarding"`
	IsHalfDayAllowed bool     `json:"isHalfDayAllowed"`
	LeaveEffect      string   `json:"leaveEffect"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
}

func (p policyPayload) toModel(w http.ResponseWriter, r *http.Request) (leave.LeavePolicy, bool) {
	start, err := shared.ParseDate(p.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "startDate must be a valid date", middleware.GetRequestID(r.Context()))
		return leave.LeavePolicy{}, false
	}
	end, err := shared.ParseDate(p.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "endDate must be a valid date", middleware.GetRequestID(r.Context()))
		return leave.LeavePolicy{}, false
	}
	return leave.LeavePolicy{
		Name:             p.Name,
		AllowedLeaves:    p.AllowedLeaves,
		Roles:            p.Roles,
		IsForwarding:     p.IsForwarding,
		IsHalfDayAllowed: p.IsHalfDayAllowed,
		LeaveEffect:      p.LeaveEffect,
		StartDate:        start,
		EndDate:          end,
	}, true
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Service.ListPolicies(r.Context())
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	model, ok := payload.toModel(w, r)
	if !ok {
		return
	}
	policy, err := h.Service.CreatePolicy(r.Context(), model)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Created(w, policy, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	model, ok := payload.toModel(w, r)
	if !ok {
		return
	}
	model.ID = chi.URLParam(r, "policyID")
	if err := h.Service.UpdatePolicy(r.Context(), model); err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"updated": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePolicy(r.Context(), chi.URLParam(r, "policyID")); err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunReset(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ResetDuePolicies(r.Context(), time.Now()); err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"ran": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = user.UserID
	}
	if employeeID != user.UserID && user.Role != auth.RoleAdmin && user.Role != auth.RoleHOD && user.Role != auth.RoleDirector {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's summary", middleware.GetRequestID(r.Context()))
		return
	}
	summaries, err := h.Service.FacultyLeaveSummary(r.Context(), employeeID)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAvailableSubstitutes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	departmentID := r.URL.Query().Get("departmentId")
	date, err := shared.ParseDate(r.URL.Query().Get("date"))
	if departmentID == "" || err != nil || date.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "departmentId and date are required", middleware.GetRequestID(r.Context()))
		return
	}
	available, err := h.Service.AvailableSubstitutes(r.Context(), departmentID, user.UserID, date)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, available, middleware.GetRequestID(r.Context()))
}

type adjustmentPayload struct {
	Date                string `json:"date"`
	Day                 string `json:"day"`
	Period              int    `json:"period"`
	ClassName           string `json:"className"`
	DepartmentID        string `json:"departmentId"`
	SubjectID           string `json:"subjectId"`
	SubstituteFacultyID string `json:"substituteFacultyId"`
}

type applyPayload struct {
	LeaveTypeID       string              `json:"leaveTypeId"`
	StartDate         string              `json:"startDate"`
	EndDate           string              `json:"endDate"`
	Description       string              `json:"description"`
	PeriodAdjustments []adjustmentPayload `json:"periodAdjustments"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload applyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "startDate must be a valid date", middleware.GetRequestID(r.Context()))
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "endDate must be a valid date", middleware.GetRequestID(r.Context()))
		return
	}

	adjustments := make([]leave.PeriodAdjustment, 0, len(payload.PeriodAdjustments))
	for _, adj := range payload.PeriodAdjustments {
		adjDate, err := shared.ParseDate(adj.Date)
		if err != nil || adjDate.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "periodAdjustments dates must be valid", middleware.GetRequestID(r.Context()))
			return
		}
		adjustments = append(adjustments, leave.PeriodAdjustment{
			Date:                adjDate,
			Day:                 adj.Day,
			Period:              adj.Period,
			ClassName:           adj.ClassName,
			DepartmentID:        adj.DepartmentID,
			SubjectID:           adj.SubjectID,
			SubstituteFacultyID: adj.SubstituteFacultyID,
		})
	}

	request, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		EmployeeID:  user.UserID,
		PolicyID:    payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Description: payload.Description,
		Adjustments: adjustments,
	})
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Created(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	status := r.URL.Query().Get("status")

	// Staff see only their own requests; approvers and admins may filter
	// freely.
	switch user.Role {
	case auth.RoleAdmin, auth.RoleHOD, auth.RoleDirector:
	default:
		employeeID = user.UserID
	}

	requests, err := h.Service.ListRequests(r.Context(), employeeID, status)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.Service.RequestByID(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failDomain(w, r, err)
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if request.EmployeeID != user.UserID {
		switch user.Role {
		case auth.RoleAdmin, auth.RoleHOD, auth.RoleDirector:
		default:
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's request", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

type decisionPayload struct {
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

func (h *Handler) handleHodDecision(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	request, err := h.Service.HodAction(r.Context(), chi.URLParam(r, "requestID"), payload.Action, payload.Comments, user.UserID)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDirectorDecision(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	request, err := h.Service.DirectorAction(r.Context(), chi.URLParam(r, "requestID"), payload.Action, payload.Comments, user.UserID)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

func monthYearParams(r *http.Request) (time.Month, int, bool) {
	monthRaw, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthRaw < 1 || monthRaw > 12 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, false
	}
	return time.Month(monthRaw), year, true
}

func (h *Handler) handleDepartmentBalance(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYearParams(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "month and year are required", middleware.GetRequestID(r.Context()))
		return
	}
	balance, err := h.Service.DepartmentLeaveBalance(r.Context(), chi.URLParam(r, "departmentID"), month, year)
	if err != nil {
		failDomain(w, r, err)
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartmentBalancePDF(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYearParams(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "month and year are required", middleware.GetRequestID(r.Context()))
		return
	}
	balance, err := h.Service.DepartmentLeaveBalance(r.Context(), chi.URLParam(r, "departmentID"), month, year)
	if err != nil {
		failDomain(w, r, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Department Leave Balance")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d (%d days)", month.String(), year, balance.DaysInMonth))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Role", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Used (month)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Remaining", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range balance.Faculty {
		pdf.CellFormat(70, 8, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, row.Role, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.1f", row.UsedDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.1f", row.Remaining), "1", 1, "R", false, 0, "")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leave-balance-%d-%02d.pdf", year, month))
	if err := pdf.Output(w); err != nil {
		// Too late for a JSON error envelope; the response is already
		// streaming.
		slog.Warn("pdf output failed",
			"departmentId", chi.URLParam(r, "departmentID"),
			"requestId", middleware.GetRequestID(r.Context()), "err", err)
	}
}
