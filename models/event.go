package models

import (
	"strings"
	"time"
)

// Event names pushed to realtime subscribers.
const (
	EventNewBooking            = "newBooking"
	EventBookingUpdated        = "bookingUpdated"
	EventDriverLocationUpdated = "driverLocationUpdated"
	EventNewNotification       = "newNotification"
	EventEmergencyAlert        = "emergencyAlert"
)

// ScopeAll addresses every connected client.
const ScopeAll = "all"

// Event is a realtime message. An event without rooms goes to every client;
// otherwise each member of any listed room receives it once.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"data"`
	Rooms   []string    `json:"-"`
	At      time.Time   `json:"at"`
}

// Broadcast reports whether the event goes to every client.
func (e Event) Broadcast() bool {
	return len(e.Rooms) == 0
}

// Scope renders the delivery scope as "all" or "room:<a>,room:<b>".
func (e Event) Scope() string {
	if e.Broadcast() {
		return ScopeAll
	}
	scoped := make([]string, len(e.Rooms))
	for i, r := range e.Rooms {
		scoped[i] = "room:" + r
	}
	return strings.Join(scoped, ",")
}

// UserRoom is the private room of a user.
func UserRoom(userID string) string {
	return "user:" + userID
}

// RoleRoom groups all connected users of a role.
func RoleRoom(role Role) string {
	return "role:" + string(role)
}

// DriverLocation is the payload of driverLocationUpdated.
type DriverLocation struct {
	DriverID string      `json:"driverId"`
	Location Coordinates `json:"location"`
}

// EmergencyAlert is the payload of emergencyAlert.
type EmergencyAlert struct {
	BookingID string      `json:"bookingId"`
	PatientID string      `json:"patientId"`
	Location  Coordinates `json:"location"`
	Message   string      `json:"message"`
}
