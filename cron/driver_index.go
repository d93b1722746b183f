package cron

import (
	"context"
	"time"

	userRepo "ambulink/database/repository/user"
	"ambulink/models"
	"ambulink/utils"

	"go.uber.org/zap"
)

// IndexReplacer rebuilds the driver position index in one step.
type IndexReplacer interface {
	Replace(ctx context.Context, positions map[string]models.Coordinates) error
}

// RebuildDriverIndex loads every available driver with a known position into
// the index. Drivers that went offline without an update drop out.
func RebuildDriverIndex(ctx context.Context, users userRepo.UserRepository, index IndexReplacer) (int, error) {
	drivers, err := users.FindAvailableDrivers(ctx)
	if err != nil {
		return 0, err
	}
	positions := make(map[string]models.Coordinates, len(drivers))
	for _, d := range drivers {
		if d.Location == nil || d.Location.IsZero() {
			continue
		}
		positions[d.ID] = *d.Location
	}
	if err := index.Replace(ctx, positions); err != nil {
		return 0, err
	}
	return len(positions), nil
}

// StartDriverIndexCron rebuilds the index once and then on every tick until
// ctx is cancelled.
func StartDriverIndexCron(ctx context.Context, interval time.Duration, users userRepo.UserRepository, index IndexReplacer) {
	logger := utils.GetLogger()
	run := func() {
		n, err := RebuildDriverIndex(ctx, users, index)
		if err != nil {
			logger.Warn("[DriverIndexCron] rebuild failed", zap.Error(err))
			return
		}
		logger.Debug("[DriverIndexCron] driver index rebuilt", zap.Int("drivers", n))
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[DriverIndexCron] shutdown signal received")
			return
		case <-ticker.C:
			run()
		}
	}
}
