package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	EmailFrom   string
	EmailEnable bool
}

func New(store StoreAPI, mailer Mailer, from string, emailEnabled bool) *Service {
	return &Service{store: store, Mailer: mailer, EmailFrom: from, EmailEnable: emailEnabled}
}

// Notify records a notification for the recipient. Failures are logged and
// swallowed: a lost notification must never fail the workflow action that
// produced it.
func (s *Service) Notify(ctx context.Context, userID, leaveRequestID, ntype, title, message string) {
	if userID == "" {
		return
	}
	if err := s.store.CreateNotification(ctx, userID, leaveRequestID, ntype, title, message); err != nil {
		slog.Warn("notification insert failed", "userId", userID, "type", ntype, "err", err)
		return
	}

	if s.Mailer == nil || !s.EmailEnable {
		return
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "userId", userID, "err", err)
		return
	}
	if email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.EmailFrom, email, title, message); err != nil {
		slog.Warn("notification email send failed", "userId", userID, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}
