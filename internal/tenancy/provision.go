package tenancy

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"hospitalhub/pkg/database"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const schemaPlaceholder = "{{schema}}"

// Provisioner creates schemas and their tables. Every statement is
// idempotent, so provisioning an existing database is a no-op.
type Provisioner struct {
	db     database.Querier
	logger zerolog.Logger
}

func NewProvisioner(db database.Querier, logger zerolog.Logger) *Provisioner {
	return &Provisioner{db: db, logger: logger}
}

// Provision creates d's schema and tables inside one transaction.
func (p *Provisioner) Provision(ctx context.Context, d Database) error {
	ddl, err := DDL(d)
	if err != nil {
		return err
	}

	err = database.WithTx(ctx, p.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, p.db)
		if _, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+d.QuotedSchema()); err != nil {
			return fmt.Errorf("create schema %s: %w", d, err)
		}
		if _, err := conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create tables in %s: %w", d, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.logger.Info().Str("schema", d.Schema()).Msg("schema provisioned")
	return nil
}

// DDL renders the table definitions for d.
func DDL(d Database) (string, error) {
	file := "schema/tenant.sql"
	if d.IsMain() {
		file = "schema/main.sql"
	}
	raw, err := schemaFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return strings.ReplaceAll(string(raw), schemaPlaceholder, d.QuotedSchema()), nil
}
