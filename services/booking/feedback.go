package booking

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"ambulink/database"
	"ambulink/models"
	"ambulink/utils"

	"go.uber.org/zap"
)

const maxCommentLength = 500

// SubmitFeedback records the patient's rating of a completed ride and folds it
// into the driver's running average.
func (s *DefaultBookingService) SubmitFeedback(ctx context.Context, actor models.Actor, bookingID string, rating int, comment string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPatient() || b.PatientID != actor.ID {
		return nil, utils.NewAuthorizationError("only the booking's patient can leave feedback")
	}
	if b.Status != models.StatusCompleted {
		return nil, utils.NewAuthorizationError("feedback is only accepted for completed rides")
	}

	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 {
		return nil, utils.NewValidationError("rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, utils.NewValidationError("comment must be at most %d characters", maxCommentLength)
	}
	if b.Feedback != nil {
		return nil, utils.NewConflictError("feedback already submitted")
	}

	feedback := models.Feedback{Rating: rating, Comment: comment, SubmittedAt: s.now()}
	updated, err := s.Bookings.SetFeedback(ctx, b.ID, feedback)
	if err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			return nil, utils.NewConflictError("feedback already submitted")
		}
		return nil, utils.NewDependencyError("failed to store feedback", err)
	}

	if updated.DriverID != "" {
		driver, err := s.Users.UpdateRating(ctx, updated.DriverID, rating)
		if err != nil {
			utils.GetLogger().Error("failed to update driver rating",
				zap.String("driverId", updated.DriverID),
				zap.String("bookingId", updated.ID),
				zap.Error(err))
		} else {
			utils.GetLogger().Info("driver rated",
				zap.String("driverId", driver.ID),
				zap.Float64("rating", driver.Rating),
				zap.Int("totalRides", driver.TotalRides))
		}
	}

	s.publishUpdated(ctx, updated)
	return updated, nil
}
