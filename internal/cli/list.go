package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/cli/pagination"
	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
)

// listParams holds the flags of the list command.
type listParams struct {
	pagination.PaginationParams

	output  string
	all     bool
	backend string
	apiURL  string
}

// NewListCmd creates the list command, which prints one page of records or,
// with --all, every page in order.
func NewListCmd() *cobra.Command {
	var params listParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a page of records",
		Long: `Print one page of the record collection, sorted on the server.

With --all, pages are loaded one after another until the collection is
exhausted, the same way the interactive browser loads them while scrolling.`,
		Example: `  # First page in store order
  recordlist list

  # Third page of 25, oldest first
  recordlist list --page 3 --page-size 25 --sort age:desc

  # Everything as JSON, from a local sqlite database
  recordlist list --all --output json --backend sqlite`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeList(cmd, params)
		},
	}

	cfg := config.GetGlobalConfig()
	cmd.Flags().IntVar(&params.Page, "page", pagination.DefaultPage, "page number (1-based)")
	cmd.Flags().IntVar(&params.PageSize, "page-size", cfg.List.PageSize, "records per page")
	cmd.Flags().StringVar(&params.Sort, "sort", "",
		fmt.Sprintf("sort expression field[:asc|desc] (fields: %v)", pagination.ValidSortFields()))
	cmd.Flags().StringVar(&params.output, "output", cfg.Output.DefaultFormat, "output format: table, json, or yaml")
	cmd.Flags().BoolVar(&params.all, "all", false, "load every page")
	addBackendFlags(cmd, &params.backend, &params.apiURL)

	return cmd
}

// addBackendFlags registers --backend and --api-url on a client command.
func addBackendFlags(cmd *cobra.Command, backend, apiURL *string) {
	cmd.Flags().StringVar(backend, "backend", config.BackendHTTP,
		"record store: http, memory, sqlite, or postgres")
	cmd.Flags().StringVar(apiURL, "api-url", "", "API base URL (default from config)")
}

// resolveBackend applies the --backend and --api-url flags to the configured defaults.
func resolveBackend(cmd *cobra.Command, backend, apiURL string) backendOptions {
	opts := clientBackendOptions(config.GetGlobalConfig())
	if backend != "" {
		opts.Backend = backend
	}
	if cmd.Flags().Changed("api-url") {
		opts.APIURL = apiURL
	}
	return opts
}

func executeList(cmd *cobra.Command, params listParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if err := validateOutputFormat(params.output); err != nil {
		return err
	}
	if params.all && cmd.Flags().Changed("page") {
		return fmt.Errorf("--page cannot be combined with --all")
	}
	listReq, err := params.ListParams()
	if err != nil {
		return err
	}

	s, closeStore, err := openStore(ctx, resolveBackend(cmd, params.backend, params.apiURL), *log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	fetcher, err := loader.NewFetcher(s, listReq.PageSize, logging.ComponentLogger(*log, "loader"))
	if err != nil {
		return err
	}
	id := loader.QueryIdentity{Column: listReq.SortColumn, Order: listReq.SortOrder}

	logger.Debug().Ctx(ctx).
		Str("operation", "list").
		Str("identity", id.String()).
		Int("page", listReq.Page).
		Int("page_size", listReq.PageSize).
		Bool("all", params.all).
		Msg("listing records")

	if params.all {
		recs, snap, loadErr := loadAll(ctx, fetcher, id, listReq.PageSize, *log)
		if loadErr != nil {
			return loadErr
		}
		if err := renderRecords(cmd.OutOrStdout(), params.output, recs, nil); err != nil {
			return err
		}
		if params.output != config.FormatTable {
			return nil
		}
		total := newPrinter().Sprintf("%d", snap.TotalCount)
		if snap.Degraded {
			total = "~" + total
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %s records\n", len(recs), total)
		return nil
	}

	page, err := fetcher.Fetch(ctx, listReq.Page, id)
	if err != nil {
		return fmt.Errorf("fetching page %d: %w", listReq.Page, err)
	}
	meta := pagination.NewPaginationMeta(params.PaginationParams, page.TotalCount, page.Approximate)
	return renderRecords(cmd.OutOrStdout(), params.output, page.Records, &meta)
}

// loadAll drives a loader through every page of id, requesting the next page
// each time the previous tail row is reached.
func loadAll(
	ctx context.Context,
	fetcher loader.PageFetcher,
	id loader.QueryIdentity,
	pageSize int,
	log zerolog.Logger,
) ([]record.Record, loader.Snapshot, error) {
	l := loader.New(fetcher, pageSize, logging.ComponentLogger(log, "loader"))

	req := l.Start()
	if id.IsSorted() {
		// Toggling walks asc then desc; the request from Start goes stale.
		for l.Identity() != id {
			next, err := l.ToggleSort(id.Column)
			if err != nil {
				return nil, loader.Snapshot{}, err
			}
			req = next
		}
	}

	for req != nil {
		if err := ctx.Err(); err != nil {
			return nil, loader.Snapshot{}, err
		}
		outcome, next := l.Apply(l.Fetch(ctx, *req))
		switch outcome {
		case loader.OutcomeFailed:
			return nil, l.Snapshot(), fmt.Errorf("fetching page %d: %w", req.Page, l.Snapshot().Err)
		case loader.OutcomeReset:
			req = next
			continue
		case loader.OutcomeApplied, loader.OutcomeStale:
		}
		req = l.OnIntersect(l.Target())
	}

	snap := l.Snapshot()
	if snap.Err != nil {
		return nil, snap, snap.Err
	}
	if snap.HasMore {
		log.Warn().Ctx(ctx).
			Str("operation", "list").
			Int("loaded", len(snap.Records)).
			Int("total_count", snap.TotalCount).
			Msg("store reported more records but returned no tail row, stopping")
	}
	return snap.Records, snap, nil
}
