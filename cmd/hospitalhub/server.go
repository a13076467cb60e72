package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/common"
	"hospitalhub/internal/config"
	"hospitalhub/internal/handlers"
	"hospitalhub/internal/jobs"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/sequence"
	"hospitalhub/internal/services"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

const shutdownTimeout = 15 * time.Second

func runServer(parent context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := database.NewManager(managerConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	pool, err := manager.Pool(ctx)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	provisioner := tenancy.NewProvisioner(pool, logger)
	if err := provisioner.Provision(ctx, tenancy.Main()); err != nil {
		return fmt.Errorf("provision main database: %w", err)
	}

	var (
		cache       caching.CacheService = caching.NewLocalCache()
		cachePinger handlers.Pinger
	)
	if cfg.RedisAddr != "" {
		cache = caching.NewRedisCacheService(caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger))
		cachePinger = cache
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; caching is disabled and session revocations stay in process memory")
	}

	storage, err := services.NewMinioStorage(services.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
	}, logger)
	if err != nil {
		return err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Str("bucket", cfg.MinioBucket).Msg("object storage unavailable; document uploads will fail until it recovers")
	}

	// Repositories
	hospitalRepo := repositories.NewHospitalRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	bedRepo := repositories.NewBedRepo(pool)
	patientRepo := repositories.NewPatientRepo(pool)
	claimRepo := repositories.NewClaimRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	activityRepo := repositories.NewActivityRepo(pool)
	statsRepo := repositories.NewStatsRepo(pool)

	// Services
	ids := sequence.NewGenerator(sequence.NewPostgresCounter(pool))
	tx := services.NewTransactor(pool)

	activitySvc := services.NewActivityService(activityRepo)
	bedSvc := services.NewBedService(bedRepo, ids, tx)
	patientSvc := services.NewPatientService(patientRepo, bedRepo, activitySvc, ids, tx)
	claimSvc := services.NewClaimService(claimRepo, patientRepo, activitySvc, ids, tx)
	documentSvc := services.NewDocumentService(documentRepo, patientRepo, activitySvc, storage, tx, logger)
	userSvc := services.NewUserService(userRepo, ids, cache, logger)
	hospitalSvc := services.NewHospitalService(hospitalRepo, userSvc, provisioner, cache, tx, logger)
	statsSvc := services.NewStatsService(statsRepo, hospitalRepo, userRepo, cache, logger)

	sessionSvc, err := services.NewSessionService(services.SessionConfig{
		Secret:  cfg.SessionSecret,
		TTL:     cfg.SessionTTL,
		JWKSURL: cfg.AuthJWKSURL,
	}, userSvc, hospitalSvc, cache, logger)
	if err != nil {
		return err
	}
	defer sessionSvc.Close()

	if cfg.SuperAdminEmail != "" {
		if err := userSvc.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
			return fmt.Errorf("bootstrap superadmin: %w", err)
		}
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler(logger)
	if err != nil {
		return err
	}
	reconciler := jobs.NewReconciler(hospitalRepo, bedRepo, patientRepo, activitySvc, tx, logger)
	if err := scheduler.Register("bed-reconcile", cfg.ReconcileInterval, cfg.ReconcileInterval, reconciler.Run); err != nil {
		return err
	}
	refresher := jobs.NewStatsRefresher(statsSvc, logger)
	if err := scheduler.Register("stats-refresh", cfg.StatsRefreshInterval, cfg.StatsRefreshInterval, refresher.Run); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// HTTP
	rbac := middleware.NewRBACMiddleware(hospitalSvc)
	e := newEcho(cfg, logger)
	handlers.RegisterRoutes(e, handlers.Handlers{
		Auth:       handlers.NewAuthHandlers(sessionSvc, hospitalSvc, cfg.IsProduction()),
		Beds:       handlers.NewBedHandlers(bedSvc, patientSvc),
		Patients:   handlers.NewPatientHandlers(patientSvc),
		Claims:     handlers.NewClaimHandlers(claimSvc),
		Documents:  handlers.NewDocumentHandlers(documentSvc),
		Activities: handlers.NewActivityHandlers(activitySvc),
		Users:      handlers.NewUserHandlers(userSvc),
		Hospitals:  handlers.NewHospitalHandlers(hospitalSvc),
		Stats:      handlers.NewStatsHandlers(statsSvc, rbac),
		Health:     handlers.NewHealthHandlers(pool, cachePinger, storage, version),
	}, middleware.SessionMiddleware(sessionSvc), rbac)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("version", version).Msg("hospitalhub server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = common.NewHTTPErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))
	e.Use(middleware.VersionHeader("v1", version))

	return e
}
