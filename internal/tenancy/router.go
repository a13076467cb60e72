package tenancy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	// MainSchema holds cross-tenant records: hospitals, users and their counters.
	MainSchema = "hospital_main"

	tenantSchemaPrefix = "dh_"

	// MaxCodeLength keeps dh_<code> well inside the 63-byte identifier limit.
	MaxCodeLength = 40
)

// ErrInvalidCode is returned for hospital codes the router cannot map.
var ErrInvalidCode = errors.New("invalid hospital code")

var codePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Database is a logical database handle: one Postgres schema. The zero value
// is not usable; obtain one from Main or ForTenant.
type Database struct {
	schema string
	code   string
}

// Main returns the cross-tenant database.
func Main() Database {
	return Database{schema: MainSchema}
}

// ForTenant returns the database of the hospital identified by code. Distinct
// valid codes always map to distinct schemas.
func ForTenant(code string) (Database, error) {
	if err := ValidateCode(code); err != nil {
		return Database{}, err
	}
	return Database{
		schema: tenantSchemaPrefix + strings.ReplaceAll(code, "-", "_"),
		code:   code,
	}, nil
}

// ValidateCode checks that code is a lowercase slug of acceptable length.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	if len(code) > MaxCodeLength {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidCode, code, MaxCodeLength)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

// Schema is the unquoted schema name.
func (d Database) Schema() string {
	return d.schema
}

// HospitalCode is empty for the main database.
func (d Database) HospitalCode() string {
	return d.code
}

func (d Database) IsMain() bool {
	return d.schema == MainSchema
}

// Table returns the quoted, schema-qualified name of table.
func (d Database) Table(name string) string {
	return pgx.Identifier{d.schema, name}.Sanitize()
}

// QuotedSchema returns the quoted schema identifier.
func (d Database) QuotedSchema() string {
	return pgx.Identifier{d.schema}.Sanitize()
}

func (d Database) String() string {
	return d.schema
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a hospital code from a display name.
func Slugify(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxCodeLength {
		slug = strings.TrimRight(slug[:MaxCodeLength], "-")
	}
	return slug
}
