package authhandler

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
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	Directory *directory.Store
	Secret    string
}

func NewHandler(dir *directory.Store, secret string) *Handler {
	return &Handler{Directory: dir, Secret: secret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireAuth).Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string             `json:"token"`
	Employee directory.Employee `json:"employee"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", middleware.GetRequestID(r.Context()))
		return
	}

	employee, hash, err := h.Directory.EmployeeCredentials(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: employee.ID, Role: employee.Role}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, loginResponse{Token: token, Employee: employee}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employee, err := h.Directory.EmployeeByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}
