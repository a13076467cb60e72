// @title HospitalHub API
// @version 1.0
// @description Multi-tenant hospital management API: beds, patients, claims, documents and users per hospital.
// @BasePath /api
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name hh_session
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "hospitalhub/docs"
	"hospitalhub/internal/config"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "hospitalhub",
		Short:        "Multi-tenant hospital management API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("info", true)
			cfg, err := config.Load(logger)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg.LogLevel, cfg.IsDev()))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Provision the main schema and the schema of every active hospital",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db database.Querier, logger zerolog.Logger) error {
				provisioner := tenancy.NewProvisioner(db, logger)
				if err := provisioner.Provision(ctx, tenancy.Main()); err != nil {
					return err
				}

				hospitals, err := repositories.NewHospitalRepo(db).ListActive(ctx)
				if err != nil {
					return fmt.Errorf("list hospitals: %w", err)
				}
				for _, h := range hospitals {
					tenant, err := tenancy.ForTenant(h.Code)
					if err != nil {
						return fmt.Errorf("hospital %s: %w", h.Code, err)
					}
					if err := provisioner.Provision(ctx, tenant); err != nil {
						return err
					}
				}
				fmt.Printf("Provisioned main schema and %d hospital schema(s).\n", len(hospitals))
				return nil
			})
		},
	}
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage hospital databases",
	}

	provisionCmd := &cobra.Command{
		Use:   "provision <code>",
		Short: "Create or complete the schema of one hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenancy.ForTenant(args[0])
			if err != nil {
				return err
			}
			return withDatabase(cmd.Context(), func(ctx context.Context, db database.Querier, logger zerolog.Logger) error {
				if err := tenancy.NewProvisioner(db, logger).Provision(ctx, tenant); err != nil {
					return err
				}
				fmt.Printf("Provisioned schema %s.\n", tenant.Schema())
				return nil
			})
		},
	}
	cmd.AddCommand(provisionCmd)

	return cmd
}

// withDatabase runs fn against a short-lived pool for one-off commands.
func withDatabase(ctx context.Context, fn func(ctx context.Context, db database.Querier, logger zerolog.Logger) error) error {
	logger := newLogger("info", true)
	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}

	manager, err := database.NewManager(managerConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := manager.Pool(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, pool, logger)
}

func managerConfig(cfg *config.Config) database.ManagerConfig {
	return database.ManagerConfig{
		DSN:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}
}

func newLogger(level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Str("service", "hospitalhub").Logger()
}
