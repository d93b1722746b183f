package booking

import (
	"context"

	"ambulink/models"
	"ambulink/utils"
)

// GetBooking returns a booking the actor is allowed to see.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkViewAccess(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns the actor's bookings newest first. Admins see every
// booking and may narrow by role and user.
func (s *DefaultBookingService) ListBookings(ctx context.Context, actor models.Actor, query ListQuery) ([]models.Booking, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, utils.NewValidationError("unknown status %q", query.Status)
	}
	filter := models.BookingFilter{Status: query.Status, Limit: query.Limit}

	switch actor.Role {
	case models.RolePatient:
		filter.PatientID = actor.ID
	case models.RoleDriver:
		filter.DriverID = actor.ID
	case models.RoleAdmin:
		if query.UserID != "" {
			switch query.Role {
			case models.RolePatient:
				filter.PatientID = query.UserID
			case models.RoleDriver:
				filter.DriverID = query.UserID
			default:
				return nil, utils.NewValidationError("role must be patient or driver when filtering by userId")
			}
		}
	default:
		return nil, utils.NewAuthorizationError("role %q may not list bookings", actor.Role)
	}

	bookings, err := s.Bookings.FindByFilter(ctx, filter)
	if err != nil {
		return nil, utils.NewDependencyError("failed to list bookings", err)
	}
	return bookings, nil
}

// CanJoinRoom allows a realtime subscription to a booking room when the actor
// may view that booking.
func (s *DefaultBookingService) CanJoinRoom(ctx context.Context, actor models.Actor, room string) error {
	_, err := s.GetBooking(ctx, actor, room)
	return err
}

// checkViewAccess: patients see their own bookings, drivers see unassigned
// bookings and their own assignments, admins see everything.
func checkViewAccess(actor models.Actor, b *models.Booking) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RolePatient:
		if b.PatientID == actor.ID {
			return nil
		}
	case models.RoleDriver:
		if b.DriverID == "" || b.DriverID == actor.ID {
			return nil
		}
	}
	return utils.NewAuthorizationError("you do not have access to this booking")
}
