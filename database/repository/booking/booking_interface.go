package bookingRepo

import (
	"context"

	"ambulink/models"
)

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, booking *models.Booking) error
	// FindByID retrieves a booking by its ID. Returns database.ErrNotFound when missing.
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// FindByFilter lists bookings newest first.
	FindByFilter(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// FindActiveByDriver returns the booking a driver is currently serving, or
	// database.ErrNotFound.
	FindActiveByDriver(ctx context.Context, driverID string) (*models.Booking, error)
	// Save replaces the booking if it is still in expectedStatus at the same
	// version. On success booking.Version is bumped; otherwise
	// database.ErrVersionConflict is returned.
	Save(ctx context.Context, booking *models.Booking, expectedStatus models.BookingStatus) error
	// SetFeedback stores feedback on a completed booking that has none yet and
	// returns the updated document. database.ErrVersionConflict when feedback exists.
	SetFeedback(ctx context.Context, id string, feedback models.Feedback) (*models.Booking, error)
}
