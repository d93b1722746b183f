package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ambulink/database"
	notificationRepo "ambulink/database/repository/notification"
	userRepo "ambulink/database/repository/user"
	"ambulink/models"
	"ambulink/services/realtime"
	"ambulink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo        notificationRepo.NotificationRepository
	users       userRepo.UserRepository
	broadcaster realtime.Broadcaster
	pusher      Pusher
	now         func() time.Time
}

// NewDefaultNotificationService wires the sink. pusher may be nil.
func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
	broadcaster realtime.Broadcaster,
	pusher Pusher,
) (*DefaultNotificationService, error) {
	if repo == nil || users == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	if broadcaster == nil {
		broadcaster = realtime.Nop{}
	}
	return &DefaultNotificationService{
		repo:        repo,
		users:       users,
		broadcaster: broadcaster,
		pusher:      pusher,
		now:         time.Now,
	}, nil
}

// Create stores a notification, emits newNotification to the user's room and
// sends a push when the user registered a device.
func (s *DefaultNotificationService) Create(ctx context.Context, userID string, kind models.NotificationKind, title, message, link string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, utils.NewDependencyError("failed to store notification", err)
	}

	_ = s.broadcaster.Publish(ctx, models.Event{
		Name:    models.EventNewNotification,
		Payload: n,
		Rooms:   []string{models.UserRoom(userID)},
		At:      n.CreatedAt,
	})
	s.push(ctx, n)
	return n, nil
}

func (s *DefaultNotificationService) push(ctx context.Context, n *models.Notification) {
	if s.pusher == nil {
		return
	}
	user, err := s.users.FindByID(ctx, n.UserID)
	if err != nil || user.FCMToken == "" {
		return
	}
	data := map[string]string{
		"notificationId": n.ID,
		"type":           string(n.Kind),
		"role":           string(user.Role),
	}
	if n.Link != "" {
		data["link"] = n.Link
	}
	if err := s.pusher.Push(ctx, user.FCMToken, n.Title, n.Message, data); err != nil {
		utils.GetLogger().Warn("push notification failed", zap.String("userId", n.UserID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) NotifyUsers(ctx context.Context, userIDs []string, kind models.NotificationKind, title, message, link string) {
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.Create(ctx, id, kind, title, message, link); err != nil {
			utils.GetLogger().Error("failed to notify user", zap.String("userId", id), zap.Error(err))
		}
	}
}

func (s *DefaultNotificationService) NotifyRole(ctx context.Context, role models.Role, kind models.NotificationKind, title, message, link string) {
	users, err := s.users.FindByRole(ctx, role)
	if err != nil {
		utils.GetLogger().Error("failed to load role members", zap.String("role", string(role)), zap.Error(err))
		return
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	s.NotifyUsers(ctx, ids, kind, title, message, link)
}

func (s *DefaultNotificationService) ListForUser(ctx context.Context, actor models.Actor, limit int64) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	list, err := s.repo.ListForUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, utils.NewDependencyError("failed to list notifications", err)
	}
	return list, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("notification not found")
		}
		return nil, utils.NewDependencyError("failed to load notification", err)
	}
	if n.UserID != actor.ID {
		return nil, utils.NewAuthorizationError("notification belongs to another user")
	}
	if n.Read {
		return n, nil
	}
	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, utils.NewDependencyError("failed to mark notification read", err)
	}
	return updated, nil
}
