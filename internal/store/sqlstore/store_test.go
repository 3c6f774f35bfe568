package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
)

func seedRecords(n int) []record.Record {
	cities := []string{"Moscow", "Kazan", "Omsk"}
	recs := make([]record.Record, n)
	for i := range recs {
		status := record.StatusActive
		if i%2 == 1 {
			status = record.StatusInactive
		}
		recs[i] = record.Record{
			ID:         fmt.Sprintf("u%02d", i+1),
			FirstName:  fmt.Sprintf("First%02d", i+1),
			LastName:   fmt.Sprintf("Last%02d", n-i),
			Email:      fmt.Sprintf("user%02d@example.com", i+1),
			Age:        20 + i%5,
			City:       cities[i%len(cities)],
			Occupation: "Engineer",
			Status:     status,
			JoinedDate: "2024-01-02",
		}
	}
	return recs
}

func newSQLite(t *testing.T, seed ...record.Record) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(ctx, db, DialectSQLite, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, seed...))
	return s
}

func ids(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

// storeContract runs the checks every SQL dialect must pass.
func storeContract(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	seed := seedRecords(25)
	require.NoError(t, s.Insert(ctx, seed...))

	t.Run("pages in insertion order", func(t *testing.T) {
		var got []string
		for page, want := range []int{10, 10, 5, 0} {
			res, err := s.ListRecords(ctx, store.ListParams{Page: page + 1, PageSize: 10})
			require.NoError(t, err)
			assert.Len(t, res.Records, want)
			assert.Equal(t, 25, res.TotalCount)
			got = append(got, ids(res.Records)...)
		}
		assert.Equal(t, ids(seed), got)
	})

	t.Run("sorted with stable ties", func(t *testing.T) {
		res, err := s.ListRecords(ctx, store.ListParams{Page: 1, PageSize: 25, SortColumn: "age", SortOrder: store.OrderAsc})
		require.NoError(t, err)
		for i := 1; i < len(res.Records); i++ {
			prev, cur := res.Records[i-1], res.Records[i]
			require.LessOrEqual(t, prev.Age, cur.Age)
			if prev.Age == cur.Age {
				assert.Less(t, prev.ID, cur.ID, "ties keep insertion order")
			}
		}

		desc, err := s.ListRecords(ctx, store.ListParams{Page: 1, PageSize: 5, SortColumn: "lastName", SortOrder: store.OrderDesc})
		require.NoError(t, err)
		assert.Equal(t, "Last25", desc.Records[0].LastName)
		assert.Equal(t, "u01", desc.Records[0].ID)
	})

	t.Run("round trips every field", func(t *testing.T) {
		res, err := s.ListRecords(ctx, store.ListParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, seed[:2], res.Records)
	})

	t.Run("create appends", func(t *testing.T) {
		created, err := s.CreateRecord(ctx, record.NewRecord{
			FirstName: "Zed", LastName: "Zulu", Email: "z@example.com", Age: 99,
			City: "Tver", Occupation: "Pilot", Status: record.StatusActive,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NotEmpty(t, created.JoinedDate)

		res, err := s.ListRecords(ctx, store.ListParams{Page: 3, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 26, res.TotalCount)
		require.Len(t, res.Records, 6)
		assert.Equal(t, *created, res.Records[5])

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 26, n)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, newSQLite(t))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("RECORDLIST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RECORDLIST_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, DialectPostgres, dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.DB().ExecContext(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)
	storeContract(t, s)
}

func TestOpen_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.db")

	s, err := Open(ctx, DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, seedRecords(3)...))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "schema is applied idempotently and data persists")
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "", zerolog.Nop())
	require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "sqlite", want: DialectSQLite},
		{in: "SQLite3", want: DialectSQLite},
		{in: "postgres", want: DialectPostgres},
		{in: "pg", want: DialectPostgres},
		{in: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownDialect)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListRecords_Errors(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	_, err := s.ListRecords(ctx, store.ListParams{Page: 0, PageSize: 10})
	require.ErrorIs(t, err, store.ErrInvalidPage)

	_, err = s.ListRecords(ctx, store.ListParams{Page: 1, PageSize: 10, SortColumn: "id; DROP TABLE users", SortOrder: store.OrderAsc})
	require.ErrorIs(t, err, record.ErrUnknownColumn)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.ListRecords(cancelled, store.ListParams{Page: 1, PageSize: 10})
	require.True(t, store.IsTransport(err), "got %v", err)
}

func TestInsert_DuplicateID(t *testing.T) {
	s := newSQLite(t, seedRecords(2)...)
	err := s.Insert(context.Background(), seedRecords(1)...)
	require.True(t, store.IsTransport(err))

	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOrderBy(t *testing.T) {
	s := &Store{dialect: DialectPostgres}

	got, err := s.orderBy(store.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "seq ASC", got)

	got, err = s.orderBy(store.ListParams{SortColumn: "joinedDate", SortOrder: store.OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, "joined_date DESC, seq ASC", got)

	for _, col := range record.Columns {
		_, err := s.orderBy(store.ListParams{SortColumn: col.Key, SortOrder: store.OrderAsc})
		assert.NoError(t, err, "every displayed column is sortable: %s", col.Key)
	}
}
