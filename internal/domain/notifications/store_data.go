package notifications

import "context"

func (s *Store) CreateNotification(ctx context.Context, userID, leaveRequestID, ntype, title, message string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (user_id, leave_request_id, type, title, message)
    VALUES ($1,$2,$3,$4,$5)
  `, userID, nullIfEmpty(leaveRequestID), ntype, title, message)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, COALESCE(leave_request_id::text, ''), type, title, message, is_read, created_at
    FROM notifications
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.LeaveRequestID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND NOT is_read", userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET is_read = TRUE
    WHERE user_id = $1 AND id = $2
  `, userID, notificationID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE notifications SET is_read = TRUE WHERE user_id = $1", userID)
	return err
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM employees WHERE id = $1", userID).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
