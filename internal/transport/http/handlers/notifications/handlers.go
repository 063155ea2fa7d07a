package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"flms/internal/domain/notifications"
	"flms/internal/transport/http/api"
	"flms/internal/transport/http/middleware"
	"flms/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.Post("/read-all", h.handleMarkAllRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	items, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	count, err := h.Service.UnreadCount(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to count notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]int{"unread": count}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.MarkRead(r.Context(), user.UserID, chi.URLParam(r, "notificationID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notification read", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"read": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.MarkAllRead(r.Context(), user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notifications read", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"read": true}, middleware.GetRequestID(r.Context()))
}
