package booking

import (
	"context"
	"time"

	bookingRepo "ambulink/database/repository/booking"
	userRepo "ambulink/database/repository/user"
	"ambulink/models"
	"ambulink/services/notification"
	"ambulink/services/realtime"
)

// BookingService is the booking workflow engine. Every operation receives the
// verified caller explicitly.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Actor, input models.BookingInput) (*models.Booking, error)
	AssignDriver(ctx context.Context, actor models.Actor, bookingID, driverID string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus, note string) (*models.Booking, error)
	SubmitFeedback(ctx context.Context, actor models.Actor, bookingID string, rating int, comment string) (*models.Booking, error)
	CreateEmergencyAlert(ctx context.Context, actor models.Actor, location models.Coordinates, message string) (*models.Booking, error)
	GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor, query ListQuery) ([]models.Booking, error)
	// CanJoinRoom authorises realtime subscriptions to a booking room.
	CanJoinRoom(ctx context.Context, actor models.Actor, room string) error
}

// HospitalLocator finds the closest destination for emergency bookings.
type HospitalLocator interface {
	Nearest(ctx context.Context, at models.Coordinates, maxKm float64) (*models.Hospital, error)
}

// Escalator schedules the follow-up for bookings left pending too long.
type Escalator interface {
	ScheduleEscalation(ctx context.Context, bookingID string) error
}

// ListQuery narrows ListBookings. Role and UserID are honoured for admins only.
type ListQuery struct {
	Role   models.Role
	UserID string
	Status models.BookingStatus
	Limit  int64
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings    bookingRepo.BookingRepository
	Users       userRepo.UserRepository
	Notifier    notification.NotificationService
	Broadcaster realtime.Broadcaster
	Hospitals   HospitalLocator
	Escalator   Escalator
	Now         func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) broadcaster() realtime.Broadcaster {
	if s.Broadcaster == nil {
		return realtime.Nop{}
	}
	return s.Broadcaster
}
