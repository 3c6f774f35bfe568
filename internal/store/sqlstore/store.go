// Package sqlstore implements store.Store on top of database/sql, using the
// pure go sqlite driver or pgx for postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
)

// Defaults used when no DSN is configured.
const (
	DefaultSQLitePath  = "recordlist.db"
	DefaultPostgresDSN = "postgres://localhost/recordlist?sslmode=disable"
)

const selectColumns = "id, first_name, last_name, email, age, city, occupation, status, joined_date"

// Store is a SQL backed record collection. Store order is insertion order;
// sorted pages break ties by insertion order too, so paging is stable.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
	now     func() time.Time
}

// Open connects to dsn and applies the schema. An empty dsn selects the
// dialect default.
func Open(ctx context.Context, dialect Dialect, dsn string, logger zerolog.Logger) (*Store, error) {
	switch dialect {
	case DialectSQLite:
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if dir := filepath.Dir(dsn); !isMemoryDSN(dsn) && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	case DialectPostgres:
		if dsn == "" {
			dsn = DefaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; also keeps in-memory databases on one connection.
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db, dialect, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies the schema.
func New(ctx context.Context, db *sql.DB, dialect Dialect, logger zerolog.Logger) (*Store, error) {
	if _, err := ParseDialect(string(dialect)); err != nil {
		return nil, err
	}
	for _, stmt := range dialect.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logging.ComponentLogger(logger, "sqlstore").With().Str("dialect", string(dialect)).Logger(),
		now:     time.Now,
	}, nil
}

// DB exposes the underlying database for tests and maintenance.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListRecords implements store.Store. The page and the total count are read
// in one transaction.
func (s *Store) ListRecords(ctx context.Context, params store.ListParams) (res *store.ListResult, retErr error) {
	const op = "list"
	if err := params.Validate(); err != nil {
		return nil, err
	}
	orderBy, err := s.orderBy(params)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &store.TransportError{Op: op, Err: err}
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, &store.TransportError{Op: op, Err: fmt.Errorf("count users: %w", err)}
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s LIMIT %s OFFSET %s`,
		selectColumns, orderBy, s.dialect.placeholder(1), s.dialect.placeholder(2))
	rows, err := tx.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, &store.TransportError{Op: op, Err: fmt.Errorf("select users: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	records := make([]record.Record, 0, params.PageSize)
	for rows.Next() {
		var r record.Record
		var status string
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Email, &r.Age,
			&r.City, &r.Occupation, &status, &r.JoinedDate); err != nil {
			return nil, &store.ProtocolError{Op: op, Field: "row", Reason: err.Error()}
		}
		r.Status = record.Status(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.TransportError{Op: op, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &store.TransportError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("operation", op).
		Int("page", params.Page).
		Str("order_by", orderBy).
		Int("records", len(records)).
		Int("total", total).
		Msg("page selected")

	return &store.ListResult{Records: records, TotalCount: total}, nil
}

// CreateRecord implements store.Store.
func (s *Store) CreateRecord(ctx context.Context, payload record.NewRecord) (*record.Record, error) {
	now := s.now()
	rec := payload.WithID(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(), now)
	if err := s.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info().
		Ctx(ctx).
		Str("operation", "create").
		Str("record_id", rec.ID).
		Msg("record created")
	return &rec, nil
}

// Insert stores complete records in order, keeping their ids. It is used to
// seed the collection.
func (s *Store) Insert(ctx context.Context, recs ...record.Record) (retErr error) {
	const op = "insert"
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &store.TransportError{Op: op, Err: err}
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	marks := make([]string, 9)
	for i := range marks {
		marks[i] = s.dialect.placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO users (%s) VALUES (%s)`,
		selectColumns, strings.Join(marks, ", ")))
	if err != nil {
		return &store.TransportError{Op: op, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.ID, r.FirstName, r.LastName, r.Email, r.Age,
			r.City, r.Occupation, string(r.Status), r.JoinedDate); err != nil {
			return &store.TransportError{Op: op, Err: fmt.Errorf("insert %s: %w", r.ID, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &store.TransportError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, &store.TransportError{Op: "count", Err: err}
	}
	return n, nil
}

func (s *Store) orderBy(params store.ListParams) (string, error) {
	if params.SortColumn == "" {
		return "seq ASC", nil
	}
	col, ok := sortColumns[params.SortColumn]
	if !ok {
		return "", fmt.Errorf("%w: %q", record.ErrUnknownColumn, params.SortColumn)
	}
	dir := "ASC"
	if params.SortOrder == store.OrderDesc {
		dir = "DESC"
	}
	return col + " " + dir + ", seq ASC", nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}
