package booking

import (
	"context"
	"fmt"

	"ambulink/models"
	"ambulink/utils"

	"go.uber.org/zap"
)

// UpdateStatus applies one step of the transition table on behalf of actor.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus, note string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkStatusAccess(actor, b, status); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, utils.NewValidationError("unknown status %q", status)
	}
	if !CanTransition(b.Status, status) {
		return nil, utils.NewInvalidTransitionError("cannot move booking from %s to %s", b.Status, status)
	}
	if status == models.StatusAssigned {
		return nil, utils.NewValidationError("use the assign endpoint to assign a driver")
	}

	from := b.Status
	now := s.now()
	b.Status = status
	b.UpdatedAt = now
	switch status {
	case models.StatusArrived:
		b.ActualArrival = &now
	case models.StatusCompleted:
		if b.CompletedAt == nil {
			b.CompletedAt = &now
		}
	case models.StatusCancelled:
		b.CancelledAt = &now
		b.CancellationReason = note
	}
	appendTimeline(b, status, actor, note, now)

	if err := s.commit(ctx, b, from); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("booking status updated",
		zap.String("bookingId", b.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.String("actorId", actor.ID))

	if status.Terminal() && from.HoldsDriver() {
		s.releaseDriver(ctx, b.DriverID, b.ID)
	}
	s.notifyStatusChange(ctx, actor, b)
	s.publishUpdated(ctx, b)
	return b, nil
}

// checkStatusAccess enforces who may drive a booking forward: patients may
// only cancel their own booking, drivers may only act on their assignment.
func checkStatusAccess(actor models.Actor, b *models.Booking, status models.BookingStatus) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RolePatient:
		if b.PatientID != actor.ID {
			return utils.NewAuthorizationError("booking belongs to another patient")
		}
		if status != models.StatusCancelled {
			return utils.NewAuthorizationError("patients can only cancel bookings")
		}
		return nil
	case models.RoleDriver:
		if b.DriverID == "" || b.DriverID != actor.ID {
			return utils.NewAuthorizationError("booking is not assigned to you")
		}
		return nil
	}
	return utils.NewAuthorizationError("role %q may not update bookings", actor.Role)
}

var statusMessages = map[models.BookingStatus][2]string{
	models.StatusEnRoute:   {"Ambulance on the way", "Your ambulance is en route to %s"},
	models.StatusArrived:   {"Ambulance arrived", "Your ambulance has arrived at %s"},
	models.StatusCompleted: {"Ride completed", "Your ride to %s is complete. Please rate your driver"},
	models.StatusCancelled: {"Booking cancelled", "The booking from %s was cancelled"},
}

func (s *DefaultBookingService) notifyStatusChange(ctx context.Context, actor models.Actor, b *models.Booking) {
	msg, ok := statusMessages[b.Status]
	if !ok {
		return
	}
	place := b.Pickup.Address
	if b.Status == models.StatusCompleted {
		place = b.Destination.Address
	}
	text := fmt.Sprintf(msg[1], place)

	if actor.ID != b.PatientID {
		s.notify(ctx, []string{b.PatientID}, models.NotificationBooking, msg[0], text, b)
	}
	if b.Status == models.StatusCancelled && b.DriverID != "" && actor.ID != b.DriverID {
		s.notify(ctx, []string{b.DriverID}, models.NotificationBooking, msg[0], text, b)
	}
}
