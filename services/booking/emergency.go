package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ambulink/database"
	"ambulink/models"
	"ambulink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// emergencyHospitalRadiusKm bounds the automatic destination lookup.
	emergencyHospitalRadiusKm = 50.0
	placeholderDestination    = "Nearest hospital (to be confirmed)"
	defaultEmergencyMessage   = "Emergency assistance requested"
)

// CreateEmergencyAlert synthesizes a critical booking at the patient's
// position and alerts every admin and available driver.
func (s *DefaultBookingService) CreateEmergencyAlert(ctx context.Context, actor models.Actor, location models.Coordinates, message string) (*models.Booking, error) {
	if !actor.IsPatient() {
		return nil, utils.NewAuthorizationError("only patients can raise emergency alerts")
	}
	if location.IsZero() || !location.Valid() {
		return nil, utils.NewValidationError("a valid location is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = defaultEmergencyMessage
	}

	name, phone := actor.Name, ""
	if account, err := s.Users.FindByID(ctx, actor.ID); err == nil {
		name, phone = account.Name, account.Phone
	}

	now := s.now()
	destination := s.emergencyDestination(ctx, location)
	b := &models.Booking{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
		PatientID:    actor.ID,
		PatientName:  name,
		PatientPhone: phone,
		Pickup: models.Place{
			Address:  "Emergency location (" + location.String() + ")",
			Location: location,
		},
		Destination:      destination,
		MedicalCondition: message,
		Priority:         models.PriorityCritical,
		Emergency:        true,
		Status:           models.StatusPending,
		Fare: CalculateFare(
			EstimateDistanceKm(location, destination.Location, nil),
			models.PriorityCritical,
		),
		PaymentStatus: models.PaymentPending,
	}
	appendTimeline(b, models.StatusPending, actor, "Emergency alert", now)

	if err := s.insert(ctx, b); err != nil {
		return nil, err
	}

	utils.GetLogger().Warn("emergency alert raised",
		zap.String("bookingId", b.ID),
		zap.String("patientId", actor.ID),
		zap.String("location", location.String()))

	title := "Emergency alert"
	text := fmt.Sprintf("%s needs an ambulance at %s: %s", name, location.String(), message)
	s.notifyRole(ctx, models.RoleAdmin, models.NotificationEmergency, title, text, b)
	s.notifyAvailableDrivers(ctx, title, text, b)

	s.publish(ctx, models.EventEmergencyAlert, models.EmergencyAlert{
		BookingID: b.ID,
		PatientID: b.PatientID,
		Location:  location,
		Message:   message,
	})
	return b, nil
}

// emergencyDestination picks the closest hospital in range, or a placeholder
// at the pickup position for the dispatcher to confirm.
func (s *DefaultBookingService) emergencyDestination(ctx context.Context, at models.Coordinates) models.Place {
	placeholder := models.Place{Address: placeholderDestination, Location: at}
	if s.Hospitals == nil {
		return placeholder
	}
	h, err := s.Hospitals.Nearest(ctx, at, emergencyHospitalRadiusKm)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			utils.GetLogger().Warn("nearest hospital lookup failed", zap.Error(err))
		}
		return placeholder
	}
	return models.Place{Address: h.Name + ", " + h.Address, Location: h.Coordinates}
}

func (s *DefaultBookingService) notifyAvailableDrivers(ctx context.Context, title, text string, b *models.Booking) {
	drivers, err := s.Users.FindAvailableDrivers(ctx)
	if err != nil {
		utils.GetLogger().Error("failed to load available drivers", zap.Error(err))
		return
	}
	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.ID)
	}
	s.notify(ctx, ids, models.NotificationEmergency, title, text, b)
}
