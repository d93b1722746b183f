package user

import (
	"context"
	"time"

	bookingRepo "ambulink/database/repository/booking"
	userRepo "ambulink/database/repository/user"
	"ambulink/models"
	"ambulink/services/location"
	"ambulink/services/realtime"
)

type UserService interface {
	// Authentication
	Register(ctx context.Context, input models.RegisterInput) (*models.AuthResponse, error)
	Login(ctx context.Context, input models.LoginInput) (*models.AuthResponse, error)
	// EnsureAdmin creates the admin account when it does not exist yet.
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error)

	// User management
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, actor models.Actor, token string) error

	// Drivers
	ListDrivers(ctx context.Context, actor models.Actor) ([]models.User, error)
	NearbyDrivers(ctx context.Context, actor models.Actor, center models.Coordinates, radiusKm float64) ([]models.NearbyDriver, error)
	UpdateLocation(ctx context.Context, actor models.Actor, at models.Coordinates) error
	SetAvailability(ctx context.Context, actor models.Actor, available bool) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo        userRepo.UserRepository
	Bookings    bookingRepo.BookingRepository
	Locations   location.Index
	Broadcaster realtime.Broadcaster
	TokenTTL    time.Duration
}

func (s *DefaultUserService) broadcaster() realtime.Broadcaster {
	if s.Broadcaster == nil {
		return realtime.Nop{}
	}
	return s.Broadcaster
}
