package booking

import (
	"context"
	"errors"
	"time"

	"ambulink/database"
	"ambulink/models"
	"ambulink/observability"
	"ambulink/utils"

	"go.uber.org/zap"
)

// load fetches a booking and maps storage errors onto API errors.
func (s *DefaultBookingService) load(ctx context.Context, id string) (*models.Booking, error) {
	if id == "" {
		return nil, utils.NewValidationError("booking id is required")
	}
	b, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("booking not found")
		}
		return nil, utils.NewDependencyError("failed to load booking", err)
	}
	return b, nil
}

// commit writes b only if it is still in expected at the version it was read.
func (s *DefaultBookingService) commit(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	if err := s.Bookings.Save(ctx, b, expected); err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			observability.BookingConflicts.Inc()
			return utils.NewConflictError("booking was modified concurrently, reload and retry")
		}
		return utils.NewDependencyError("failed to save booking", err)
	}
	observability.BookingTransitions.WithLabelValues(string(expected), string(b.Status)).Inc()
	return nil
}

func appendTimeline(b *models.Booking, status models.BookingStatus, actor models.Actor, note string, at time.Time) {
	b.Timeline = append(b.Timeline, models.TimelineEntry{
		Status:    status,
		At:        at,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Note:      note,
	})
}

// bookingRooms lists the parties interested in a booking.
func bookingRooms(b *models.Booking) []string {
	rooms := []string{b.ID, models.UserRoom(b.PatientID), models.RoleRoom(models.RoleAdmin)}
	if b.DriverID != "" {
		rooms = append(rooms, models.UserRoom(b.DriverID))
	}
	return rooms
}

func (s *DefaultBookingService) publish(ctx context.Context, name string, payload interface{}, rooms ...string) {
	event := models.Event{Name: name, Payload: payload, Rooms: rooms, At: s.now()}
	if err := s.broadcaster().Publish(ctx, event); err != nil {
		utils.GetLogger().Warn("failed to publish event", zap.String("event", name), zap.Error(err))
	}
}

func (s *DefaultBookingService) publishUpdated(ctx context.Context, b *models.Booking) {
	s.publish(ctx, models.EventBookingUpdated, b.Clone(), bookingRooms(b)...)
}

func (s *DefaultBookingService) notify(ctx context.Context, userIDs []string, kind models.NotificationKind, title, message string, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyUsers(ctx, userIDs, kind, title, message, bookingLink(b))
}

func (s *DefaultBookingService) notifyRole(ctx context.Context, role models.Role, kind models.NotificationKind, title, message string, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyRole(ctx, role, kind, title, message, bookingLink(b))
}

func bookingLink(b *models.Booking) string {
	return "/bookings/" + b.ID
}

// releaseDriver makes a driver available again after a ride ends or a claim
// has to be rolled back.
func (s *DefaultBookingService) releaseDriver(ctx context.Context, driverID, bookingID string) {
	if driverID == "" {
		return
	}
	err := s.Users.ReleaseDriver(ctx, driverID, bookingID)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrVersionConflict):
		utils.GetLogger().Warn("driver not held for booking, nothing to release",
			zap.String("driverId", driverID),
			zap.String("bookingId", bookingID))
	default:
		utils.GetLogger().Error("failed to release driver",
			zap.String("driverId", driverID),
			zap.Error(err))
	}
}
