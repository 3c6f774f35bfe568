package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates $RECORDLIST_HOME/config.yaml (default ~/.recordlist/config.yaml)
with the default settings.`,
		Example: `  # Create configuration
  recordlist config init

  # Create configuration, overwriting existing
  recordlist config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists and force isn't set
	if !force {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(statErr) {
			return fmt.Errorf("cannot access config path %s: %w", configPath, statErr)
		}
	}

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.New().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Info().Ctx(cmd.Context()).Str("operation", "config_init").Str("path", configPath).Msg("configuration written")
	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", configPath)

	return nil
}
