package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ambulink/config"
	"ambulink/database"
	bookingRepo "ambulink/database/repository/booking"
	"ambulink/models"
	"ambulink/services/notification"
	"ambulink/services/tasks"
	"ambulink/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt returns the asynq connection settings for the queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitEscalationWorker runs the escalation worker in background. The returned
// server must be shut down on exit.
func InitEscalationWorker(bookings bookingRepo.BookingRepository, notifier notification.NotificationService) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingEscalate, HandleEscalationTask(bookings, notifier))

	// Start async worker with retry logic
	go func() {
		logger.Info("[EscalationWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[EscalationWorker] failed to start worker",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[EscalationWorker] max retry attempts reached, escalation disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleEscalationTask warns admins about bookings still waiting for a driver.
func HandleEscalationTask(bookings bookingRepo.BookingRepository, notifier notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseEscalationPayload(task)
		if err != nil {
			utils.GetLogger().Warn("[EscalationHandler] dropping task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		b, err := bookings.FindByID(ctx, p.BookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			return err
		}
		if b.Status != models.StatusPending {
			return nil
		}

		waited := time.Since(b.CreatedAt).Round(time.Minute)
		utils.GetLogger().Warn("[EscalationHandler] booking still pending",
			zap.String("bookingId", b.ID),
			zap.Duration("waited", waited))
		notifier.NotifyRole(ctx, models.RoleAdmin, models.NotificationSystem,
			"Booking waiting for a driver",
			fmt.Sprintf("%s priority booking for %s has been pending for %s", b.Priority, b.PatientName, waited),
			"/bookings/"+b.ID)
		return nil
	}
}
