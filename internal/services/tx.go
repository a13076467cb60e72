package services

import (
	"context"

	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

// Transactor runs fn inside one database transaction. Repository calls made
// with the context handed to fn join the transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type poolTransactor struct {
	db database.Querier
}

func NewTransactor(db database.Querier) Transactor {
	return &poolTransactor{db: db}
}

func (t *poolTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.db, fn)
}

// IDGenerator assigns identifiers following the central policy registry.
type IDGenerator interface {
	Next(ctx context.Context, db tenancy.Database, entity models.EntityType) (string, error)
}
