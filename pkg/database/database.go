package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrMissingDSN is returned when no connection string is configured.
var ErrMissingDSN = errors.New("database connection string is not configured")

// Querier is the subset of pgx shared by *pgxpool.Pool, pgx.Tx and pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ManagerConfig holds the pool settings read from configuration.
type ManagerConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// Manager owns the single process-wide connection pool. The pool is created
// on the first call to Pool and reused afterwards.
type Manager struct {
	cfg    ManagerConfig
	logger zerolog.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewManager validates the configuration without connecting.
func NewManager(cfg ManagerConfig, logger zerolog.Logger) (*Manager, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	return &Manager{cfg: cfg, logger: logger}, nil
}

// Pool returns the shared pool, connecting on first use.
func (m *Manager) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return m.pool, nil
	}

	pool, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	m.pool = pool
	return pool, nil
}

func (m *Manager) connect(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(m.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if m.cfg.MaxConns > 0 {
		config.MaxConns = m.cfg.MaxConns
	}
	if m.cfg.MinConns > 0 {
		config.MinConns = m.cfg.MinConns
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = m.cfg.ConnectTimeout

	var pool *pgxpool.Pool
	attempt := 0
	operation := func() error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create connection pool: %w", err))
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			m.logger.Warn().Err(err).Int("attempt", attempt).Msg("database ping failed, retrying")
			return fmt.Errorf("ping database: %w", err)
		}
		pool = p
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	m.logger.Info().Int("attempts", attempt).Msg("database connected")
	return pool, nil
}

// Close releases the pool if it was ever opened.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
		m.logger.Info().Msg("database disconnected")
	}
}

type txKey struct{}

// ContextWithTx stores tx so repositories pick it up instead of the pool.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction started by WithTx, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// Conn returns the transaction bound to ctx, falling back to db.
func Conn(ctx context.Context, db Querier) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// WithTx runs fn in a single transaction. Repository calls made with the
// context passed to fn join that transaction.
func WithTx(ctx context.Context, db Querier, fn func(ctx context.Context) error) error {
	tx, err := Conn(ctx, db).Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
