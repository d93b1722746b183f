package models

import "time"

// NotificationKind classifies a notification.
type NotificationKind string

const (
	NotificationBooking   NotificationKind = "booking"
	NotificationSystem    NotificationKind = "system"
	NotificationEmergency NotificationKind = "emergency"
	NotificationPayment   NotificationKind = "payment"
)

// Notification is a persisted per-user message.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	Kind      NotificationKind `bson:"kind" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Link      string           `bson:"link,omitempty" json:"link,omitempty"`
	Read      bool             `bson:"read" json:"read"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}
