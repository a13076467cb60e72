package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

// ErrNoPolicy is returned by Next for entity types missing from the registry.
var ErrNoPolicy = errors.New("no identifier policy for entity type")

// Counter increments the counter of entity in d and returns the new value.
// Implementations must perform the increment and the read as one atomic
// operation.
type Counter interface {
	Increment(ctx context.Context, d tenancy.Database, entity string) (int64, error)
}

// Generator hands out identifiers according to models.IDPolicies.
type Generator struct {
	counter Counter
}

func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter}
}

// NextID returns prefix followed by the next value of entity's counter in d.
// An empty prefix yields a bare number.
func (g *Generator) NextID(ctx context.Context, d tenancy.Database, entity, prefix string) (string, error) {
	n, err := g.counter.Increment(ctx, d, entity)
	if err != nil {
		return "", err
	}
	return prefix + strconv.FormatInt(n, 10), nil
}

// Next assigns an identifier for entity following its registered policy.
func (g *Generator) Next(ctx context.Context, d tenancy.Database, entity models.EntityType) (string, error) {
	policy, ok := models.IDPolicies[entity]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoPolicy, entity)
	}
	if policy.Scheme == models.IDUUID {
		return uuid.NewString(), nil
	}

	n, err := g.counter.Increment(ctx, d, string(entity))
	if err != nil {
		return "", err
	}
	return policy.Format(n), nil
}

// PostgresCounter keeps one row per entity type in the schema's counters table.
type PostgresCounter struct {
	db database.Querier
}

func NewPostgresCounter(db database.Querier) *PostgresCounter {
	return &PostgresCounter{db: db}
}

// Increment upserts the counter row. Concurrent callers serialize on the row
// lock taken by the upsert, so each observes a distinct value. Inside a
// transaction started by database.WithTx the increment joins that transaction.
func (c *PostgresCounter) Increment(ctx context.Context, d tenancy.Database, entity string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s AS c (entity, seq, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (entity)
		DO UPDATE SET seq = c.seq + 1, updated_at = NOW()
		RETURNING seq
	`, d.Table("counters"))

	var seq int64
	if err := database.Conn(ctx, c.db).QueryRow(ctx, query, entity).Scan(&seq); err != nil {
		return 0, fmt.Errorf("increment %s counter in %s: %w", entity, d, err)
	}
	return seq, nil
}
