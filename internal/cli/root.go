package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationLogToFile marks commands that draw on the terminal and must log
// to a file instead.
const annotationLogToFile = "recordlist/log-to-file"

// NewRootCmd creates the root Cobra command for the recordlist CLI.
// It loads configuration, wires up logging and tracing, and registers the
// browse, list, create, serve and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult *logging.LogPathResult
		overlays  []string
	)

	cmd := &cobra.Command{
		Use:           "recordlist",
		Short:         "Browse and manage a paginated record collection",
		Long:          "recordlist: an infinitely scrolling, server-sorted view over a remote record collection",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, overlays); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringSliceVar(&overlays, "config", nil,
		"additional config file(s) whose top-level sections replace the loaded ones")
	cmd.AddCommand(
		NewBrowseCmd(), NewListCmd(), NewCreateCmd(), NewServeCmd(), newConfigCmd(),
	)

	return cmd
}

// loadConfig resolves the effective configuration: config.yaml, --config
// overlays in order, then environment overrides, then validation.
func loadConfig(cmd *cobra.Command, overlays []string) error {
	cfg := config.GetGlobalConfig()
	if err := config.GlobalConfigError(); err != nil {
		cmd.PrintErrf("Warning: %v (using defaults)\n", err)
	}

	for _, path := range overlays {
		if err := config.ShallowMergeYAML(cfg, path); err != nil {
			return fmt.Errorf("loading --config overlay: %w", err)
		}
	}
	if len(overlays) > 0 {
		// Overlays must not override the environment.
		if err := config.ApplyEnv(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	return nil
}

const rootCmdExample = `  # Start a local API server with 50 sample records
  recordlist serve

  # Browse the collection interactively (scroll to load more, 1-8 to sort)
  recordlist browse

  # Print page 2 sorted by age, newest first
  recordlist list --page 2 --sort age:desc

  # Export every record as YAML
  recordlist list --all --output yaml

  # Create a record
  recordlist create --first-name Иван --last-name Петров --email ivan@example.com \
    --age 30 --city Москва --occupation Инженер

  # Initialize configuration
  recordlist config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
