package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"hospitalhub/internal/services"
)

const minSessionSecretLength = 32

// Config is the process configuration, read from the environment and an
// optional .env file in the working directory.
type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	DBConnectTimeout time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`

	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	AuthJWKSURL   string        `mapstructure:"AUTH_JWKS_URL"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`

	ReconcileInterval    time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	StatsRefreshInterval time.Duration `mapstructure:"STATS_REFRESH_INTERVAL"`

	SuperAdminEmail    string `mapstructure:"SUPERADMIN_EMAIL"`
	SuperAdminPassword string `mapstructure:"SUPERADMIN_PASSWORD"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_CONNECT_TIMEOUT",
	"REQUEST_TIMEOUT", "BODY_LIMIT",
	"SESSION_SECRET", "SESSION_TTL", "AUTH_JWKS_URL", "CORS_ORIGINS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL", "MINIO_BUCKET",
	"RECONCILE_INTERVAL", "STATS_REFRESH_INTERVAL",
	"SUPERADMIN_EMAIL", "SUPERADMIN_PASSWORD",
}

// Load reads and validates the configuration. Outside production a missing
// SESSION_SECRET is replaced by a random one, which invalidates every
// session on restart.
func Load(logger zerolog.Logger) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("BODY_LIMIT", defaultBodyLimit())
	v.SetDefault("SESSION_TTL", services.DefaultSessionTTL)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "hospital-documents")
	v.SetDefault("RECONCILE_INTERVAL", "15m")
	v.SetDefault("STATS_REFRESH_INTERVAL", "5m")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// A missing .env file is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = random.String(minSessionSecretLength)
		logger.Warn().Msg("SESSION_SECRET not set; using a generated secret, sessions will not survive a restart")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultBodyLimit leaves a megabyte of multipart overhead above the
// largest accepted document.
func defaultBodyLimit() string {
	return fmt.Sprintf("%dM", services.MaxDocumentSize>>20+1)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction drives the Secure flag on the session cookie.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate refuses configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	} else if len(c.SessionSecret) < minSessionSecretLength && c.IsProduction() {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLength))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.SessionTTL <= 0 || c.SessionTTL > services.MaxSessionTTL {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive and at most %s", services.MaxSessionTTL))
	}
	if limit, err := bytes.Parse(c.BodyLimit); err != nil {
		errs = append(errs, fmt.Errorf("BODY_LIMIT: %w", err))
	} else if limit <= services.MaxDocumentSize {
		errs = append(errs, fmt.Errorf("BODY_LIMIT must exceed the %d byte document limit", services.MaxDocumentSize))
	}
	if (c.SuperAdminEmail == "") != (c.SuperAdminPassword == "") {
		errs = append(errs, errors.New("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set together"))
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set"))
	}

	return errors.Join(errs...)
}
