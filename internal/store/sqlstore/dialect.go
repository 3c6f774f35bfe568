package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect selects the SQL flavour and driver.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrUnknownDialect is returned for dialects other than sqlite and postgres.
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// ParseDialect accepts "sqlite" and "postgres" (or "postgresql", "pg").
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) schema() []string {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == DialectPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
		` + seq + `,
		id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER NOT NULL,
		city TEXT NOT NULL,
		occupation TEXT NOT NULL,
		status TEXT NOT NULL,
		joined_date TEXT NOT NULL
	)`,
	}
}

// sortColumns maps record column keys to SQL columns. Only these may appear
// in ORDER BY.
//
//nolint:gochecknoglobals // Immutable whitelist.
var sortColumns = map[string]string{
	"firstName":  "first_name",
	"lastName":   "last_name",
	"email":      "email",
	"age":        "age",
	"city":       "city",
	"occupation": "occupation",
	"status":     "status",
	"joinedDate": "joined_date",
}
