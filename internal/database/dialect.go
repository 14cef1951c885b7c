package database

import (
	"fmt"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/repository/builder"
)

// Dialect names a supported relational backend.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported SQL driver %q (want mysql, postgres or sqlite)", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

func (d Dialect) Placeholder() builder.PlaceholderFormat {
	if d == DialectPostgres {
		return builder.Dollar
	}
	return builder.Question
}

// Builder returns a query builder rendering this dialect's placeholders.
func (d Dialect) Builder() *builder.SQLBuilder {
	return builder.New(d.Placeholder())
}

// Rebind rewrites "?" markers for the dialect.
func (d Dialect) Rebind(query string) string {
	return d.Placeholder().Rebind(query)
}

// InsertIgnoreSuffix makes an INSERT a no-op when it would violate a unique key.
// conflictCol is used by dialects that need the conflict target spelled out.
func (d Dialect) InsertIgnoreSuffix(conflictCol string) string {
	switch d {
	case DialectMySQL:
		return fmt.Sprintf("ON DUPLICATE KEY UPDATE %s = %s", conflictCol, conflictCol)
	default:
		return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", conflictCol)
	}
}

// SupportsLastInsertID reports whether sql.Result.LastInsertId works for the driver.
// lib/pq does not implement it; use RETURNING instead.
func (d Dialect) SupportsLastInsertID() bool {
	return d != DialectPostgres
}
