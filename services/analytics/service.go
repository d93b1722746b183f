package analytics

import (
	"context"
	"encoding/json"
	"time"

	analyticsRepo "ambulink/database/repository/analytics"
	"ambulink/models"
	"ambulink/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardTTL      = 30 * time.Second
)

// AnalyticsService serves the admin dashboard.
type AnalyticsService interface {
	Dashboard(ctx context.Context, actor models.Actor) (*models.Dashboard, error)
}

// DefaultAnalyticsService caches aggregates in Redis when a client is set.
type DefaultAnalyticsService struct {
	Repo  analyticsRepo.AnalyticsRepository
	Cache *redis.Client
	Now   func() time.Time
}

func (s *DefaultAnalyticsService) Dashboard(ctx context.Context, actor models.Actor) (*models.Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, utils.NewAuthorizationError("only admins can view analytics")
	}

	if cached := s.cached(ctx); cached != nil {
		return cached, nil
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	dash, err := s.Repo.Dashboard(ctx, now)
	if err != nil {
		return nil, utils.NewDependencyError("failed to compute analytics", err)
	}
	dash.Revenue = utils.RoundTo(dash.Revenue, 2)
	dash.AverageDriverRating = utils.RoundTo(dash.AverageDriverRating, 2)
	dash.AverageResponseMinutes = utils.RoundTo(dash.AverageResponseMinutes, 1)

	s.store(ctx, dash)
	return dash, nil
}

func (s *DefaultAnalyticsService) cached(ctx context.Context) *models.Dashboard {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("analytics cache read failed", zap.Error(err))
		}
		return nil
	}
	var dash models.Dashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return nil
	}
	return &dash
}

func (s *DefaultAnalyticsService) store(ctx context.Context, dash *models.Dashboard) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(dash)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, dashboardCacheKey, raw, dashboardTTL).Err(); err != nil {
		utils.GetLogger().Warn("analytics cache write failed", zap.Error(err))
	}
}
