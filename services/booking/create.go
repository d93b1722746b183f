package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ambulink/models"
	"ambulink/observability"
	"ambulink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the request, prices it and stores a pending booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actor models.Actor, input models.BookingInput) (*models.Booking, error) {
	if !actor.IsPatient() {
		return nil, utils.NewAuthorizationError("only patients can create bookings")
	}

	input = s.withAccountDefaults(ctx, actor, input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	distanceKm := EstimateDistanceKm(input.PickupLocation, input.DestinationLocation, input.Route)
	b := &models.Booking{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
		PatientID:    actor.ID,
		PatientName:  input.PatientName,
		PatientPhone: input.PatientPhone,
		Pickup: models.Place{
			Address:  input.PickupAddress,
			Location: input.PickupLocation,
		},
		Destination: models.Place{
			Address:  input.DestinationAddress,
			Location: input.DestinationLocation,
		},
		Route:                 input.Route,
		MedicalCondition:      input.MedicalCondition,
		Priority:              input.Priority,
		Requirements:          input.Requirements,
		EmergencyContact:      input.EmergencyContact,
		EmergencyContactPhone: input.EmergencyContactPhone,
		Status:                models.StatusPending,
		Fare:                  CalculateFare(distanceKm, input.Priority),
		PaymentStatus:         models.PaymentPending,
	}
	appendTimeline(b, models.StatusPending, actor, "Booking created", now)

	if err := s.insert(ctx, b); err != nil {
		return nil, err
	}

	s.notifyRole(ctx, models.RoleAdmin, models.NotificationBooking, "New booking",
		fmt.Sprintf("%s requested an ambulance (%s priority) from %s", b.PatientName, b.Priority, b.Pickup.Address), b)
	return b, nil
}

// insert stores a new booking and announces it to admins.
func (s *DefaultBookingService) insert(ctx context.Context, b *models.Booking) error {
	if err := s.Bookings.Create(ctx, b); err != nil {
		return utils.NewDependencyError("failed to create booking", err)
	}
	observability.BookingsCreated.WithLabelValues(string(b.Priority), strconv.FormatBool(b.Emergency)).Inc()
	utils.GetLogger().Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("patientId", b.PatientID),
		zap.String("priority", string(b.Priority)),
		zap.Float64("totalFare", b.Fare.TotalFare))

	s.publish(ctx, models.EventNewBooking, b.Clone(), models.RoleRoom(models.RoleAdmin))

	if s.Escalator != nil {
		if err := s.Escalator.ScheduleEscalation(ctx, b.ID); err != nil {
			utils.GetLogger().Warn("failed to schedule booking escalation", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	return nil
}

// withAccountDefaults trims the input and fills the patient contact details
// from the caller's account when they were left out.
func (s *DefaultBookingService) withAccountDefaults(ctx context.Context, actor models.Actor, in models.BookingInput) models.BookingInput {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	in.DestinationAddress = strings.TrimSpace(in.DestinationAddress)
	in.MedicalCondition = strings.TrimSpace(in.MedicalCondition)
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}

	if in.PatientName != "" && in.PatientPhone != "" {
		return in
	}
	if in.PatientName == "" {
		in.PatientName = actor.Name
	}
	if s.Users == nil {
		return in
	}
	account, err := s.Users.FindByID(ctx, actor.ID)
	if err != nil {
		return in
	}
	if in.PatientName == "" {
		in.PatientName = account.Name
	}
	if in.PatientPhone == "" {
		in.PatientPhone = account.Phone
	}
	return in
}

func validateInput(in models.BookingInput) error {
	var missing []string
	if in.PatientName == "" {
		missing = append(missing, "patientName")
	}
	if in.PatientPhone == "" {
		missing = append(missing, "patientPhone")
	}
	if in.PickupAddress == "" {
		missing = append(missing, "pickupAddress")
	}
	if in.DestinationAddress == "" {
		missing = append(missing, "destinationAddress")
	}
	if in.MedicalCondition == "" {
		missing = append(missing, "medicalCondition")
	}
	if len(missing) > 0 {
		return utils.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.Priority.Valid() {
		return utils.NewValidationError("invalid priority %q", in.Priority)
	}
	if !in.PickupLocation.Valid() || !in.DestinationLocation.Valid() {
		return utils.NewValidationError("coordinates out of range")
	}
	if in.Route != nil && (in.Route.DistanceKm < 0 || in.Route.DurationMin < 0) {
		return utils.NewValidationError("route distance and duration must not be negative")
	}
	return nil
}
