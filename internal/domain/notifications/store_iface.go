package notifications

import (
	"context"
	"time"
)

type Notification struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	LeaveRequestID string    `json:"leaveRequestId,omitempty"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

type StoreAPI interface {
	CreateNotification(ctx context.Context, userID, leaveRequestID, ntype, title, message string) error
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UserEmail(ctx context.Context, userID string) (string, error)
}
