package user

import (
	"context"
	"errors"
	"sort"
	"time"

	"ambulink/database"
	"ambulink/models"
	"ambulink/utils"

	"go.uber.org/zap"
)

const (
	defaultNearbyRadiusKm = 10.0
	maxNearbyDrivers      = 50
)

// GetUserByID returns an account by id.
func (s *DefaultUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, utils.NewDependencyError("failed to load user", err)
	}
	return u, nil
}

// UpdateFCMToken registers the caller's device for push notifications.
func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, actor models.Actor, token string) error {
	if token == "" {
		return utils.NewValidationError("fcmToken is required")
	}
	if err := s.Repo.UpdateFCMToken(ctx, actor.ID, token); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NewNotFoundError("user not found")
		}
		return utils.NewDependencyError("failed to store FCM token", err)
	}
	return nil
}

// ListDrivers returns every driver with credentials removed.
func (s *DefaultUserService) ListDrivers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	drivers, err := s.Repo.FindByRole(ctx, models.RoleDriver)
	if err != nil {
		return nil, utils.NewDependencyError("failed to list drivers", err)
	}
	out := make([]models.User, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d.Redacted())
	}
	return out, nil
}

// NearbyDrivers lists available drivers around center, closest first. The
// Redis index is used when configured, otherwise positions stored in MongoDB
// are filtered by straight-line distance.
func (s *DefaultUserService) NearbyDrivers(ctx context.Context, actor models.Actor, center models.Coordinates, radiusKm float64) ([]models.NearbyDriver, error) {
	if !actor.IsAdmin() {
		return nil, utils.NewAuthorizationError("only admins can search for drivers")
	}
	if center.IsZero() || !center.Valid() {
		return nil, utils.NewValidationError("lat and lng are required")
	}
	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}

	available, err := s.Repo.FindAvailableDrivers(ctx)
	if err != nil {
		return nil, utils.NewDependencyError("failed to list drivers", err)
	}
	byID := make(map[string]models.User, len(available))
	for _, d := range available {
		byID[d.ID] = d
	}

	if s.Locations != nil {
		hits, err := s.Locations.Nearby(ctx, center, radiusKm, maxNearbyDrivers)
		if err == nil {
			out := make([]models.NearbyDriver, 0, len(hits))
			for _, h := range hits {
				if d, ok := byID[h.DriverID]; ok {
					out = append(out, models.NearbyDriver{User: d.Redacted(), DistanceKm: utils.RoundTo(h.DistanceKm, 2)})
				}
			}
			return out, nil
		}
		utils.GetLogger().Warn("driver geo index unavailable, falling back to database", zap.Error(err))
	}

	out := make([]models.NearbyDriver, 0)
	for _, d := range available {
		if d.Location == nil || d.Location.IsZero() {
			continue
		}
		dist := utils.HaversineKm(center, *d.Location)
		if dist <= radiusKm {
			out = append(out, models.NearbyDriver{User: d.Redacted(), DistanceKm: utils.RoundTo(dist, 2)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > maxNearbyDrivers {
		out = out[:maxNearbyDrivers]
	}
	return out, nil
}

// UpdateLocation records a driver position and relays it to every client.
// Concurrent updates are last-writer-wins.
func (s *DefaultUserService) UpdateLocation(ctx context.Context, actor models.Actor, at models.Coordinates) error {
	if !actor.IsDriver() {
		return utils.NewAuthorizationError("only drivers can update their location")
	}
	if at.IsZero() || !at.Valid() {
		return utils.NewValidationError("a valid location is required")
	}
	if at.Timestamp == nil {
		now := time.Now()
		at.Timestamp = &now
	}

	if err := s.Repo.UpdateLocation(ctx, actor.ID, at); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NewNotFoundError("driver not found")
		}
		return utils.NewDependencyError("failed to store location", err)
	}
	if s.Locations != nil {
		if err := s.Locations.Set(ctx, actor.ID, at); err != nil {
			utils.GetLogger().Warn("failed to index driver location", zap.String("driverId", actor.ID), zap.Error(err))
		}
	}

	event := models.Event{
		Name:    models.EventDriverLocationUpdated,
		Payload: models.DriverLocation{DriverID: actor.ID, Location: at},
		At:      *at.Timestamp,
	}
	if err := s.broadcaster().Publish(ctx, event); err != nil {
		utils.GetLogger().Warn("failed to publish driver location", zap.Error(err))
	}
	return nil
}

// SetAvailability lets a driver go on or off duty. The flag is owned by the
// booking workflow while the driver serves a booking, so going on duty is a
// conditional write that loses to a concurrent assignment.
func (s *DefaultUserService) SetAvailability(ctx context.Context, actor models.Actor, available bool) (*models.User, error) {
	if !actor.IsDriver() {
		return nil, utils.NewAuthorizationError("only drivers can change availability")
	}

	if s.Bookings != nil {
		active, err := s.Bookings.FindActiveByDriver(ctx, actor.ID)
		switch {
		case err == nil:
			return nil, utils.NewValidationError("finish booking %s before changing availability", active.ID)
		case !errors.Is(err, database.ErrNotFound):
			return nil, utils.NewDependencyError("failed to check active bookings", err)
		}
	}

	if err := s.writeAvailability(ctx, actor.ID, available); err != nil {
		return nil, err
	}
	u, err := s.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if s.Locations != nil {
		var err error
		switch {
		case !available:
			err = s.Locations.Remove(ctx, actor.ID)
		case u.Location != nil && !u.Location.IsZero():
			err = s.Locations.Set(ctx, actor.ID, *u.Location)
		}
		if err != nil {
			utils.GetLogger().Warn("failed to refresh driver index", zap.String("driverId", actor.ID), zap.Error(err))
		}
	}
	redacted := u.Redacted()
	return &redacted, nil
}

func (s *DefaultUserService) writeAvailability(ctx context.Context, id string, available bool) error {
	var err error
	if available {
		err = s.Repo.MarkAvailable(ctx, id)
	} else {
		err = s.Repo.UpdateAvailability(ctx, id, false)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return utils.NewNotFoundError("driver not found")
	case errors.Is(err, database.ErrVersionConflict):
		if _, lookupErr := s.GetUserByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return utils.NewConflictError("driver was assigned a booking concurrently, reload and retry")
	}
	return utils.NewDependencyError("failed to update availability", err)
}
