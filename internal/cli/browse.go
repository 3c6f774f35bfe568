package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/tui"
)

// ErrNotTerminal is returned when browse runs without an interactive terminal.
var ErrNotTerminal = errors.New("browse needs an interactive terminal; use 'recordlist list' instead")

// NewBrowseCmd creates the browse command, the interactive infinite-scroll
// view over the record collection.
func NewBrowseCmd() *cobra.Command {
	var backend, apiURL string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse records interactively",
		Long: `Open a full-screen list of records. Pages load as the last row scrolls
into view. Press 1-8 to cycle the sort of a column, n to create a record,
enter for details and r to retry after an error.

Logs go to the configured log file while the browser owns the terminal.`,
		Example: `  # Browse the configured API
  recordlist browse

  # Browse a local sqlite database directly
  recordlist browse --backend sqlite`,
		Annotations: map[string]string{annotationLogToFile: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			return executeBrowse(cmd, resolveBackend(cmd, backend, apiURL))
		},
	}

	addBackendFlags(cmd, &backend, &apiURL)

	return cmd
}

func executeBrowse(cmd *cobra.Command, opts backendOptions, programOpts ...tea.ProgramOption) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	s, closeStore, err := openStore(ctx, opts, *log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	pageSize := config.GetGlobalConfig().List.PageSize
	fetcher, err := loader.NewFetcher(s, pageSize, logging.ComponentLogger(*log, "loader"))
	if err != nil {
		return err
	}
	l := loader.New(fetcher, pageSize, logging.ComponentLogger(*log, "loader"))
	model := tui.NewRecordsModel(ctx, l, s, *log)

	logger.Info().Ctx(ctx).
		Str("operation", "browse").
		Str("backend", opts.Backend).
		Int("page_size", pageSize).
		Msg("starting interactive browser")

	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)
	p := tea.NewProgram(model, programOpts...)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}

	stats := l.Stats()
	logger.Info().Ctx(ctx).
		Str("operation", "browse").
		Int("requests", stats.Requests).
		Int("applied", stats.Applied).
		Int("stale", stats.Stale).
		Int("failed", stats.Failed).
		Int("resets", stats.Resets).
		Msg("interactive browser closed")
	return nil
}
