package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/internal/store/sqlstore"
)

func TestOpenStore_Memory(t *testing.T) {
	s, closeFn, err := openStore(context.Background(), backendOptions{Backend: config.BackendMemory, Seed: 7}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer func() { _ = closeFn() }()

	mem, ok := s.(*store.MemoryStore)
	require.True(t, ok)
	assert.Equal(t, 7, mem.Len())
}

func TestOpenStore_SQLiteSeedsOnce(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "records.db")
	opts := backendOptions{Backend: config.BackendSQLite, DSN: dsn, Seed: 5}

	s, closeFn, err := openStore(ctx, opts, zerolog.Nop())
	require.NoError(t, err)
	db, ok := s.(*sqlstore.Store)
	require.True(t, ok)
	n, err := db.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, closeFn())

	opts.Seed = 20
	s, closeFn, err = openStore(ctx, opts, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = closeFn() }()
	n, err = s.(*sqlstore.Store).Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "non-empty database must not be reseeded")
}

func TestOpenStore_SQLiteDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	_, closeFn, err := openStore(context.Background(), backendOptions{Backend: config.BackendSQLite}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.FileExists(t, filepath.Join(home, sqliteFileName))
}

func TestOpenStore_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts backendOptions
	}{
		{name: "unknown backend", opts: backendOptions{Backend: "redis"}},
		{name: "relative api url", opts: backendOptions{Backend: config.BackendHTTP, APIURL: "localhost:3001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := openStore(context.Background(), tt.opts, zerolog.Nop())
			require.Error(t, err)
			assert.Nil(t, s)
			assert.NotNil(t, closeFn)
		})
	}
}

func TestClientBackendOptions(t *testing.T) {
	cfg := config.New()
	cfg.API.BaseURL = "http://api.example.com"
	opts := clientBackendOptions(cfg)
	assert.Equal(t, config.BackendHTTP, opts.Backend)
	assert.Equal(t, "http://api.example.com", opts.APIURL)
	assert.Equal(t, cfg.API.Timeout, opts.Timeout)
	assert.Equal(t, cfg.Server.Seed, opts.Seed)
}

// mislabelingFetcher answers its first request, or every request when always
// is set, with a page tagged for the wrong identity.
type mislabelingFetcher struct {
	inner  loader.PageFetcher
	always bool
	calls  int
}

func (f *mislabelingFetcher) Fetch(ctx context.Context, page int, id loader.QueryIdentity) (loader.Page, error) {
	f.calls++
	p, err := f.inner.Fetch(ctx, page, id)
	if f.calls == 1 || f.always {
		p.Identity = loader.QueryIdentity{Column: "city", Order: store.OrderAsc}
	}
	return p, err
}

type pageFetcherFunc func(ctx context.Context, page int, id loader.QueryIdentity) (loader.Page, error)

func (f pageFetcherFunc) Fetch(ctx context.Context, page int, id loader.QueryIdentity) (loader.Page, error) {
	return f(ctx, page, id)
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, int, loader.QueryIdentity) (loader.Page, error) {
	return loader.Page{}, &store.TransportError{Op: "list", Err: errors.New("connection refused")}
}

func TestLoadAll(t *testing.T) {
	s := store.NewMemoryStore(record.Sample(23)...)
	fetcher, err := loader.NewFetcher(s, 5, zerolog.Nop())
	require.NoError(t, err)

	id := loader.QueryIdentity{Column: "age", Order: store.OrderDesc}
	recs, snap, err := loadAll(context.Background(), fetcher, id, 5, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, recs, 23)
	assert.Equal(t, 23, snap.TotalCount)
	assert.False(t, snap.HasMore)
	assert.Equal(t, id, snap.Identity)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Age, recs[i].Age)
	}
}

func TestLoadAll_RecoversFromConsistencyReset(t *testing.T) {
	s := store.NewMemoryStore(record.Sample(12)...)
	inner, err := loader.NewFetcher(s, 5, zerolog.Nop())
	require.NoError(t, err)
	fetcher := &mislabelingFetcher{inner: inner}

	recs, _, err := loadAll(context.Background(), fetcher, loader.NoSort, 5, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, recs, 12)
	assert.Equal(t, 4, fetcher.calls)
}

func TestLoadAll_PersistentInconsistencyFails(t *testing.T) {
	s := store.NewMemoryStore(record.Sample(12)...)
	inner, err := loader.NewFetcher(s, 5, zerolog.Nop())
	require.NoError(t, err)
	fetcher := &mislabelingFetcher{inner: inner, always: true}

	_, _, err = loadAll(context.Background(), fetcher, loader.NoSort, 5, zerolog.Nop())
	require.ErrorIs(t, err, loader.ErrUnstablePages)
	require.ErrorIs(t, err, loader.ErrIdentityMismatch)
	assert.Equal(t, 2, fetcher.calls)
}

func TestLoadAll_EmptyFirstPageStops(t *testing.T) {
	calls := 0
	fetcher := pageFetcherFunc(func(_ context.Context, page int, id loader.QueryIdentity) (loader.Page, error) {
		calls++
		return loader.Page{Identity: id, Number: page, TotalCount: 30}, nil
	})

	recs, snap, err := loadAll(context.Background(), fetcher, loader.NoSort, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 30, snap.TotalCount)
	assert.Equal(t, 1, calls, "page 2 is never requested without a tail row")
}

func TestLoadAll_Failure(t *testing.T) {
	_, _, err := loadAll(context.Background(), failingFetcher{}, loader.NoSort, 5, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, store.IsTransport(err))
	assert.Contains(t, err.Error(), "fetching page 1")
}

func TestLoadAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := store.NewMemoryStore(record.Sample(3)...)
	fetcher, err := loader.NewFetcher(s, 5, zerolog.Nop())
	require.NoError(t, err)

	_, _, err = loadAll(ctx, fetcher, loader.NoSort, 5, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
}
