package notification

import (
	"context"

	"ambulink/models"
)

// NotificationService persists per-user notifications and pushes them out.
type NotificationService interface {
	Create(ctx context.Context, userID string, kind models.NotificationKind, title, message, link string) (*models.Notification, error)
	// NotifyUsers creates one notification per user. Failures are logged.
	NotifyUsers(ctx context.Context, userIDs []string, kind models.NotificationKind, title, message, link string)
	// NotifyRole notifies every account holding role. Failures are logged.
	NotifyRole(ctx context.Context, role models.Role, kind models.NotificationKind, title, message, link string)
	ListForUser(ctx context.Context, actor models.Actor, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor models.Actor, id string) (*models.Notification, error)
}

// Pusher delivers a mobile push to a device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}
