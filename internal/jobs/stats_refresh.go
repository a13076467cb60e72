package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hospitalhub/internal/services"
)

// StatsRefresher keeps the cached cross-hospital statistics warm.
type StatsRefresher struct {
	stats  services.StatsService
	logger zerolog.Logger
}

func NewStatsRefresher(stats services.StatsService, logger zerolog.Logger) *StatsRefresher {
	return &StatsRefresher{
		stats:  stats,
		logger: logger.With().Str("component", "stats_refresh").Logger(),
	}
}

func (r *StatsRefresher) Run(ctx context.Context) error {
	aggregate, err := r.stats.RefreshAggregate(ctx)
	if err != nil {
		return fmt.Errorf("refresh aggregate stats: %w", err)
	}
	r.logger.Debug().
		Int("hospitals", aggregate.TotalHospitals).
		Int("users", aggregate.TotalUsers).
		Msg("aggregate stats refreshed")
	return nil
}
