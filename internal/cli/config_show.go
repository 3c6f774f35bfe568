package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/config"
)

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration after files, overlays and environment are applied.
func NewConfigShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Example: `  # Show configuration as YAML
  recordlist config show

  # Show configuration with an overlay applied
  recordlist config show --config staging.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case config.FormatJSON:
				return writeJSON(cmd.OutOrStdout(), config.GetGlobalConfig())
			case config.FormatYAML:
				return writeYAML(cmd.OutOrStdout(), config.GetGlobalConfig())
			default:
				return fmt.Errorf("unsupported output format: %s (valid: yaml, json)", output)
			}
		},
	}

	cmd.Flags().StringVar(&output, "output", config.FormatYAML, "output format: yaml or json")

	return cmd
}
