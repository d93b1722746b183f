package models

import "time"

// User is a patient, driver or admin account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Role         Role      `bson:"role" json:"role"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	// Driver fields.
	Available     bool         `bson:"available" json:"available"`
	Location      *Coordinates `bson:"location,omitempty" json:"location,omitempty"`
	Rating        float64      `bson:"rating" json:"rating"`
	TotalRides    int          `bson:"totalRides" json:"totalRides"`
	VehicleNumber string       `bson:"vehicleNumber,omitempty" json:"vehicleNumber,omitempty"`
	// ActiveBookingID is set by a claim and cleared on release.
	ActiveBookingID string `bson:"activeBookingId,omitempty" json:"activeBookingId,omitempty"`
}

// Actor returns the caller identity for this account.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Email: u.Email, Name: u.Name}
}

// Redacted returns a copy safe to hand to other users.
func (u User) Redacted() User {
	u.PasswordHash = ""
	u.FCMToken = ""
	return u
}

// RegisterInput is the payload accepted by POST /auth/register.
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
}

// LoginInput is the payload accepted by POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful register or login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// NearbyDriver is a driver with its distance from a search point.
type NearbyDriver struct {
	User       User    `json:"driver"`
	DistanceKm float64 `json:"distanceKm"`
}
