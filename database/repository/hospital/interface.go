package hospitalRepo

import (
	"context"

	"ambulink/models"
)

// HospitalRepository defines methods for the hospital directory.
type HospitalRepository interface {
	Create(ctx context.Context, h *models.Hospital) error
	// List returns hospitals sorted by distance when query.Near is set, else by name.
	List(ctx context.Context, query models.HospitalQuery) ([]models.Hospital, error)
	// Nearest returns the closest hospital within maxKm, or database.ErrNotFound.
	Nearest(ctx context.Context, at models.Coordinates, maxKm float64) (*models.Hospital, error)
	// Count reports how many hospitals are stored.
	Count(ctx context.Context) (int64, error)
}
