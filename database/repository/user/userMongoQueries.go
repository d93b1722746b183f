package userRepo

import (
	"context"
	"strings"

	"ambulink/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FindByID retrieves a user by its unique ID.
func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// FindByEmail retrieves a user by its email address.
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByRole lists every user holding role.
func (r *MongoUserRepo) FindByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.findMany(ctx, bson.M{"role": role})
}

// FindAvailableDrivers lists drivers currently accepting bookings.
func (r *MongoUserRepo) FindAvailableDrivers(ctx context.Context) ([]models.User, error) {
	return r.findMany(ctx, bson.M{"role": models.RoleDriver, "available": true})
}
