package notificationRepo

import (
	"context"

	"ambulink/models"
)

// NotificationRepository defines methods for notification data access.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	// ListForUser returns the newest notifications of a user first.
	ListForUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	// MarkRead flags one notification as read.
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
}
