package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var (
		verbose bool
		file    string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration, or the file given with --file,
for syntax and allowed ranges.`,
		Example: `  # Validate current configuration
  recordlist config validate

  # Validate a file before installing it
  recordlist config validate --file ./config.yaml --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, file, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	cmd.Flags().StringVar(&file, "file", "", "validate this file instead of the loaded configuration")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, file string, verbose bool) error {
	cfg := config.GetGlobalConfig()
	if file != "" {
		loaded, err := config.Load(file)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  API base URL: %s\n", cfg.API.BaseURL)
	cmd.Printf("  API timeout: %s\n", cfg.API.Timeout)
	cmd.Printf("  Page size: %d\n", cfg.List.PageSize)
	cmd.Printf("  Server: %s (backend: %s, seed: %d)\n", cfg.Server.Addr, cfg.Server.Backend, cfg.Server.Seed)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
}
