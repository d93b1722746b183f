package userRepo

import (
	"context"

	"ambulink/models"
)

// UserRepository defines methods for account and driver data access.
type UserRepository interface {
	// FindByID retrieves a user by its unique ID.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByEmail retrieves a user by its email address.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByRole lists every user holding role.
	FindByRole(ctx context.Context, role models.Role) ([]models.User, error)
	// FindAvailableDrivers lists drivers currently accepting bookings.
	FindAvailableDrivers(ctx context.Context) ([]models.User, error)
	// Create inserts a new user. Returns database.ErrDuplicate for a taken email.
	Create(ctx context.Context, user *models.User) error
	// UpdateAvailability sets the driver's available flag unconditionally.
	UpdateAvailability(ctx context.Context, id string, available bool) error
	// MarkAvailable sets available=true only while the driver holds no
	// booking. Returns database.ErrVersionConflict otherwise.
	MarkAvailable(ctx context.Context, id string) error
	// ClaimDriver flips available from true to false and records bookingID.
	// Returns database.ErrVersionConflict when the driver was not available.
	ClaimDriver(ctx context.Context, id, bookingID string) error
	// ReleaseDriver undoes the claim made for bookingID. A driver claimed for
	// another booking is left untouched.
	ReleaseDriver(ctx context.Context, id, bookingID string) error
	// UpdateLocation stores the latest driver position.
	UpdateLocation(ctx context.Context, id string, location models.Coordinates) error
	// UpdateRating folds one rating into the running average and increments totalRides.
	UpdateRating(ctx context.Context, id string, rating int) (*models.User, error)
	// UpdateFCMToken stores the push token of a device.
	UpdateFCMToken(ctx context.Context, id, token string) error
}
