package models

import "time"

// BookingStatus is a state of the booking workflow.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAssigned  BookingStatus = "assigned"
	StatusEnRoute   BookingStatus = "en_route"
	StatusArrived   BookingStatus = "arrived"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusEnRoute, StatusArrived, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsDriver reports whether a booking in this status must reference a driver.
func (s BookingStatus) HoldsDriver() bool {
	switch s {
	case StatusAssigned, StatusEnRoute, StatusArrived, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether the assigned driver is busy with the booking.
func (s BookingStatus) Active() bool {
	return s == StatusAssigned || s == StatusEnRoute || s == StatusArrived
}

// Priority is the urgency classification of a booking.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// PaymentStatus tracks settlement of the fare.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Requirements are optional equipment and handling flags.
type Requirements struct {
	Wheelchair          bool   `bson:"wheelchair" json:"wheelchair"`
	Oxygen              bool   `bson:"oxygen" json:"oxygen"`
	Stretcher           bool   `bson:"stretcher" json:"stretcher"`
	SpecialInstructions string `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
}

// Route is the recorded route summary supplied by the client's maps provider.
type Route struct {
	DistanceKm  float64 `bson:"distanceKm" json:"distance"`
	DurationMin float64 `bson:"durationMin,omitempty" json:"duration,omitempty"`
}

// Fare is the price breakdown computed at creation time.
type Fare struct {
	BaseFare           float64 `bson:"baseFare" json:"baseFare"`
	DistanceFare       float64 `bson:"distanceFare" json:"distanceFare"`
	PriorityMultiplier float64 `bson:"priorityMultiplier" json:"priorityMultiplier"`
	TotalFare          float64 `bson:"totalFare" json:"totalFare"`
	DistanceKm         float64 `bson:"distanceKm" json:"distanceKm"`
	Currency           string  `bson:"currency" json:"currency"`
}

// Feedback is the patient's rating of a completed ride.
type Feedback struct {
	Rating      int       `bson:"rating" json:"rating"`
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}

// TimelineEntry records a single workflow step.
type TimelineEntry struct {
	Status    BookingStatus `bson:"status" json:"status"`
	At        time.Time     `bson:"at" json:"at"`
	ActorID   string        `bson:"actorId" json:"actorId"`
	ActorRole Role          `bson:"actorRole" json:"actorRole"`
	Note      string        `bson:"note,omitempty" json:"note,omitempty"`
}

// Booking represents a single ambulance transport request.
type Booking struct {
	ID        string    `bson:"id" json:"id"`
	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	PatientID    string `bson:"patientId" json:"patientId"`
	PatientName  string `bson:"patientName" json:"patientName"`
	PatientPhone string `bson:"patientPhone" json:"patientPhone"`
	DriverID     string `bson:"driverId,omitempty" json:"driverId,omitempty"`

	Pickup      Place  `bson:"pickup" json:"pickup"`
	Destination Place  `bson:"destination" json:"destination"`
	Route       *Route `bson:"route,omitempty" json:"route,omitempty"`

	MedicalCondition      string        `bson:"medicalCondition" json:"medicalCondition"`
	Priority              Priority      `bson:"priority" json:"priority"`
	Requirements          *Requirements `bson:"requirements,omitempty" json:"requirements,omitempty"`
	EmergencyContact      string        `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	EmergencyContactPhone string        `bson:"emergencyContactPhone,omitempty" json:"emergencyContactPhone,omitempty"`
	Emergency             bool          `bson:"emergency" json:"emergency"`

	Status        BookingStatus `bson:"status" json:"status"`
	Fare          Fare          `bson:"fare" json:"fare"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	Feedback      *Feedback     `bson:"feedback,omitempty" json:"feedback,omitempty"`

	EstimatedArrival   *time.Time `bson:"estimatedArrival,omitempty" json:"estimatedArrival,omitempty"`
	ActualArrival      *time.Time `bson:"actualArrival,omitempty" json:"actualArrival,omitempty"`
	CompletedAt        *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	if b.Route != nil {
		r := *b.Route
		cp.Route = &r
	}
	if b.Requirements != nil {
		r := *b.Requirements
		cp.Requirements = &r
	}
	if b.Feedback != nil {
		f := *b.Feedback
		cp.Feedback = &f
	}
	cp.EstimatedArrival = cloneTime(b.EstimatedArrival)
	cp.ActualArrival = cloneTime(b.ActualArrival)
	cp.CompletedAt = cloneTime(b.CompletedAt)
	cp.CancelledAt = cloneTime(b.CancelledAt)
	cp.Timeline = append([]TimelineEntry(nil), b.Timeline...)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// BookingInput is the payload accepted by POST /bookings.
type BookingInput struct {
	PatientName           string        `json:"patientName"`
	PatientPhone          string        `json:"patientPhone"`
	PickupAddress         string        `json:"pickupAddress"`
	PickupLocation        Coordinates   `json:"pickupLocation"`
	DestinationAddress    string        `json:"destinationAddress"`
	DestinationLocation   Coordinates   `json:"destinationLocation"`
	MedicalCondition      string        `json:"medicalCondition"`
	Priority              Priority      `json:"priority"`
	Requirements          *Requirements `json:"requirements,omitempty"`
	EmergencyContact      string        `json:"emergencyContact"`
	EmergencyContactPhone string        `json:"emergencyContactPhone"`
	Route                 *Route        `json:"route,omitempty"`
}

// BookingFilter narrows booking listings. Empty fields are ignored.
type BookingFilter struct {
	PatientID string
	DriverID  string
	Status    BookingStatus
	Limit     int64
}
