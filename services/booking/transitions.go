package booking

import "ambulink/models"

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:  {models.StatusEnRoute, models.StatusCancelled},
	models.StatusEnRoute:   {models.StatusArrived, models.StatusCancelled},
	models.StatusArrived:   {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from one step.
func AllowedTransitions(from models.BookingStatus) []models.BookingStatus {
	return append([]models.BookingStatus(nil), transitions[from]...)
}
