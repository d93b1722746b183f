package hospital

import (
	"context"
	"errors"
	"strings"

	"ambulink/database"
	hospitalRepo "ambulink/database/repository/hospital"
	"ambulink/models"
	"ambulink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRadiusKm = 25.0

// HospitalService manages the destination directory.
type HospitalService interface {
	List(ctx context.Context, query models.HospitalQuery) ([]models.Hospital, error)
	Create(ctx context.Context, actor models.Actor, h models.Hospital) (*models.Hospital, error)
	Nearest(ctx context.Context, at models.Coordinates, maxKm float64) (*models.Hospital, error)
	// SeedDefaults loads the built-in directory into an empty collection.
	SeedDefaults(ctx context.Context) (int, error)
}

type DefaultHospitalService struct {
	Repo hospitalRepo.HospitalRepository
}

func (s *DefaultHospitalService) List(ctx context.Context, query models.HospitalQuery) ([]models.Hospital, error) {
	if query.Type != "" && query.Type != models.HospitalPublic && query.Type != models.HospitalPrivate {
		return nil, utils.NewValidationError("type must be public or private")
	}
	if query.Near != nil {
		if !query.Near.Valid() {
			return nil, utils.NewValidationError("coordinates out of range")
		}
		if query.RadiusKm <= 0 {
			query.RadiusKm = defaultRadiusKm
		}
	}
	list, err := s.Repo.List(ctx, query)
	if err != nil {
		return nil, utils.NewDependencyError("failed to list hospitals", err)
	}
	for i := range list {
		list[i].DistanceKm = utils.RoundTo(list[i].DistanceKm, 2)
	}
	return list, nil
}

func (s *DefaultHospitalService) Create(ctx context.Context, actor models.Actor, h models.Hospital) (*models.Hospital, error) {
	if !actor.IsAdmin() {
		return nil, utils.NewAuthorizationError("only admins can add hospitals")
	}
	h.Name = strings.TrimSpace(h.Name)
	h.Address = strings.TrimSpace(h.Address)
	if h.Name == "" || h.Address == "" {
		return nil, utils.NewValidationError("name and address are required")
	}
	if h.Coordinates.IsZero() || !h.Coordinates.Valid() {
		return nil, utils.NewValidationError("valid coordinates are required")
	}
	if h.Type == "" {
		h.Type = models.HospitalPublic
	}
	if h.Type != models.HospitalPublic && h.Type != models.HospitalPrivate {
		return nil, utils.NewValidationError("type must be public or private")
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	h.DistanceKm = 0

	if err := s.Repo.Create(ctx, &h); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.NewConflictError("hospital %s already exists", h.ID)
		}
		return nil, utils.NewDependencyError("failed to create hospital", err)
	}
	utils.GetLogger().Info("hospital added", zap.String("hospitalId", h.ID), zap.String("name", h.Name))
	return &h, nil
}

func (s *DefaultHospitalService) Nearest(ctx context.Context, at models.Coordinates, maxKm float64) (*models.Hospital, error) {
	return s.Repo.Nearest(ctx, at, maxKm)
}

func (s *DefaultHospitalService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return 0, utils.NewDependencyError("failed to count hospitals", err)
	}
	if count > 0 {
		return 0, nil
	}
	inserted := 0
	for _, h := range DefaultDirectory() {
		h := h
		if err := s.Repo.Create(ctx, &h); err != nil {
			return inserted, utils.NewDependencyError("failed to seed hospital "+h.ID, err)
		}
		inserted++
	}
	return inserted, nil
}
