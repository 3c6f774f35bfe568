package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 5 * time.Second

// serveParams holds the flags of the serve command.
type serveParams struct {
	addr    string
	backend string
	dsn     string
	seed    int
}

// NewServeCmd creates the serve command, which runs the local record API.
func NewServeCmd() *cobra.Command {
	var params serveParams

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local record API server",
		Long: `Serve a record collection over HTTP with the paging API the browser and
list commands expect. The collection lives in memory, in a sqlite file, or in
PostgreSQL. Empty databases are seeded with sample records.`,
		Example: `  # 50 sample records in memory on :3001
  recordlist serve

  # Persistent sqlite database on another port
  recordlist serve --backend sqlite --dsn ./records.db --addr :8080

  # PostgreSQL
  recordlist serve --backend postgres --dsn postgres://localhost:5432/records`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeServe(cmd, params)
		},
	}

	cfg := config.GetGlobalConfig()
	cmd.Flags().StringVar(&params.addr, "addr", cfg.Server.Addr, "listen address")
	cmd.Flags().StringVar(&params.backend, "backend", cfg.Server.Backend, "record store: memory, sqlite, or postgres")
	cmd.Flags().StringVar(&params.dsn, "dsn", cfg.Server.DSN, "database DSN for sqlite or postgres")
	cmd.Flags().IntVar(&params.seed, "seed", cfg.Server.Seed, "sample records in a fresh store")

	return cmd
}

func executeServe(cmd *cobra.Command, params serveParams) error {
	if params.backend == config.BackendHTTP {
		return fmt.Errorf("serve cannot use the %q backend", config.BackendHTTP)
	}
	if params.seed < 0 {
		return fmt.Errorf("--seed must not be negative, got %d", params.seed)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logging.FromContext(ctx)

	s, closeStore, err := openStore(ctx, backendOptions{
		Backend: params.backend,
		DSN:     params.dsn,
		Seed:    params.seed,
	}, *log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	l, err := net.Listen("tcp", params.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", params.addr, err)
	}

	srv := server.New(s, params.addr, *log)
	cmd.Printf("Serving %s records on http://%s (Ctrl+C to stop)\n", params.backend, l.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(l)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Ctx(ctx).Str("operation", "serve").Msg("API server stopped")
	return nil
}
