package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

const aggregateStatsTTL = 5 * time.Minute

type StatsService interface {
	TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error)
	// Aggregate serves the cross-tenant view from cache when possible.
	Aggregate(ctx context.Context) (*models.AggregateStats, error)
	// RefreshAggregate recomputes the cross-tenant view and caches it.
	RefreshAggregate(ctx context.Context) (*models.AggregateStats, error)
}

type statsService struct {
	statsRepo    repositories.StatsRepository
	hospitalRepo repositories.HospitalRepository
	userRepo     repositories.UserRepository
	cache        caching.CacheService
	logger       zerolog.Logger
	now          func() time.Time
}

func NewStatsService(
	statsRepo repositories.StatsRepository,
	hospitalRepo repositories.HospitalRepository,
	userRepo repositories.UserRepository,
	cache caching.CacheService,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		statsRepo:    statsRepo,
		hospitalRepo: hospitalRepo,
		userRepo:     userRepo,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *statsService) TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error) {
	stats, err := s.statsRepo.TenantStats(ctx, db)
	if err != nil {
		return nil, err
	}
	stats.HospitalCode = db.HospitalCode()
	return stats, nil
}

func (s *statsService) Aggregate(ctx context.Context) (*models.AggregateStats, error) {
	cached, err := s.cache.GetAggregateStats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("aggregate stats cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	return s.RefreshAggregate(ctx)
}

func (s *statsService) RefreshAggregate(ctx context.Context) (*models.AggregateStats, error) {
	hospitals, err := s.hospitalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	agg := &models.AggregateStats{
		TotalHospitals: len(hospitals),
		TotalUsers:     users,
		PerHospital:    []*models.TenantStats{},
		GeneratedAt:    s.now().UTC(),
	}
	for _, h := range hospitals {
		if !h.IsActive {
			continue
		}
		db, err := tenancy.ForTenant(h.Code)
		if err != nil {
			return nil, fmt.Errorf("hospital %s: %w", h.Code, err)
		}
		stats, err := s.TenantStats(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", h.Code, err)
		}
		agg.ActiveHospitals++
		agg.Totals.Add(*stats)
		agg.PerHospital = append(agg.PerHospital, stats)
	}

	if err := s.cache.SetAggregateStats(ctx, agg, aggregateStatsTTL); err != nil {
		s.logger.Warn().Err(err).Msg("aggregate stats cache write failed")
	}
	return agg, nil
}
