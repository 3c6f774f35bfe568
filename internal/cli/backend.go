package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/internal/store/httpstore"
	"github.com/rshade/recordlist/internal/store/sqlstore"
)

// sqliteFileName is the sqlite database created in the config directory when
// no DSN is configured.
const sqliteFileName = "recordlist.db"

// backendOptions selects and configures a record store.
type backendOptions struct {
	Backend string
	APIURL  string
	Timeout time.Duration
	DSN     string
	Seed    int
}

// clientBackendOptions returns the options of the client commands: the
// remote API unless --backend says otherwise.
func clientBackendOptions(cfg *config.Config) backendOptions {
	return backendOptions{
		Backend: config.BackendHTTP,
		APIURL:  cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		DSN:     cfg.Server.DSN,
		Seed:    cfg.Server.Seed,
	}
}

// openStore opens the configured store. The returned close function is never nil.
func openStore(ctx context.Context, opts backendOptions, log zerolog.Logger) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case config.BackendHTTP, "":
		client, err := httpstore.New(opts.APIURL, opts.Timeout, log)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case config.BackendMemory:
		return store.NewMemoryStore(record.Sample(opts.Seed)...), noop, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect, err := sqlstore.ParseDialect(opts.Backend)
		if err != nil {
			return nil, noop, err
		}
		dsn := opts.DSN
		if dsn == "" && dialect == sqlstore.DialectSQLite {
			dir, dirErr := config.GetConfigDir()
			if dirErr != nil {
				return nil, noop, dirErr
			}
			dsn = filepath.Join(dir, sqliteFileName)
		}
		s, err := sqlstore.Open(ctx, dialect, dsn, log)
		if err != nil {
			return nil, noop, err
		}
		if err := seedSQLStore(ctx, s, opts.Seed); err != nil {
			_ = s.Close()
			return nil, noop, err
		}
		return s, s.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown backend %q (valid: http, memory, sqlite, postgres)", opts.Backend)
	}
}

// seedSQLStore fills an empty database with n sample records.
func seedSQLStore(ctx context.Context, s *sqlstore.Store, n int) error {
	if n <= 0 {
		return nil
	}
	count, err := s.Len(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	logger.Info().Ctx(ctx).Str("operation", "seed").Int("records", n).Msg("seeding empty database")
	return s.Insert(ctx, record.Sample(n)...)
}
