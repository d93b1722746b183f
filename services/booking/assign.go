package booking

import (
	"context"
	"errors"
	"fmt"

	"ambulink/database"
	"ambulink/models"
	"ambulink/observability"
	"ambulink/utils"

	"go.uber.org/zap"
)

// AssignDriver binds an available driver to a pending booking.
//
// The driver is claimed first with a conditional write on its availability,
// then the booking is written conditionally on {pending, version}. When the
// booking write loses a race the claim is rolled back.
func (s *DefaultBookingService) AssignDriver(ctx context.Context, actor models.Actor, bookingID, driverID string) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, utils.NewAuthorizationError("only admins can assign drivers")
	}
	if driverID == "" {
		return nil, utils.NewValidationError("driverId is required")
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	driver, err := s.Users.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("driver not found")
		}
		return nil, utils.NewDependencyError("failed to load driver", err)
	}
	if driver.Role != models.RoleDriver {
		return nil, utils.NewValidationError("user %s is not a driver", driverID)
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewValidationError("booking is %s, only pending bookings can be assigned", b.Status)
	}
	if !driver.Available {
		return nil, s.rejectAssignment(ctx, b, utils.NewValidationError("driver is not available"))
	}

	if err := s.Users.ClaimDriver(ctx, driver.ID, b.ID); err != nil {
		switch {
		case errors.Is(err, database.ErrVersionConflict):
			return nil, utils.NewConflictError("driver was assigned concurrently, reload and retry")
		case errors.Is(err, database.ErrNotFound):
			return nil, utils.NewNotFoundError("driver not found")
		}
		return nil, utils.NewDependencyError("failed to claim driver", err)
	}

	now := s.now()
	eta := EstimateArrival(now, driver.Location, b.Pickup.Location)
	b.DriverID = driver.ID
	b.Status = models.StatusAssigned
	b.EstimatedArrival = &eta
	b.UpdatedAt = now
	appendTimeline(b, models.StatusAssigned, actor, "Driver "+driver.Name+" assigned", now)

	if err := s.commit(ctx, b, models.StatusPending); err != nil {
		s.releaseDriver(ctx, driver.ID, b.ID)
		return nil, err
	}

	utils.GetLogger().Info("driver assigned",
		zap.String("bookingId", b.ID),
		zap.String("driverId", driver.ID),
		zap.Time("eta", eta))

	s.notify(ctx, []string{b.PatientID}, models.NotificationBooking, "Driver assigned",
		fmt.Sprintf("%s is on the way, estimated arrival %s", driver.Name, eta.Format("15:04")), b)
	s.notify(ctx, []string{driver.ID}, models.NotificationBooking, "New assignment",
		fmt.Sprintf("Pick up %s at %s", b.PatientName, b.Pickup.Address), b)
	s.publishUpdated(ctx, b)
	return b, nil
}

// rejectAssignment returns ConflictError when the booking left the state it
// was read in, since the driver may be unavailable because of that very
// change. Otherwise the original rejection stands.
func (s *DefaultBookingService) rejectAssignment(ctx context.Context, read *models.Booking, rejection error) error {
	current, err := s.Bookings.FindByID(ctx, read.ID)
	if err != nil {
		return rejection
	}
	if current.Status != read.Status || current.Version != read.Version {
		observability.BookingConflicts.Inc()
		return utils.NewConflictError("booking was modified concurrently, reload and retry")
	}
	return rejection
}
