package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
)

// createParams holds the flags of the create command.
type createParams struct {
	payload record.NewRecord
	status  string
	output  string
	backend string
	apiURL  string
}

// NewCreateCmd creates the create command, which adds one record to the
// collection and prints it as stored.
func NewCreateCmd() *cobra.Command {
	var params createParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Long: `Create a record in the collection. All fields except --status and
--joined-date are required. The store assigns the id.`,
		Example: `  recordlist create --first-name Анна --last-name Смирнова \
    --email anna@example.com --age 28 --city Казань --occupation Дизайнер

  # Explicit status and join date
  recordlist create ... --status inactive --joined-date 2024-03-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeCreate(cmd, params)
		},
	}

	cfg := config.GetGlobalConfig()
	cmd.Flags().StringVar(&params.payload.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&params.payload.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&params.payload.Email, "email", "", "email address")
	cmd.Flags().IntVar(&params.payload.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&params.payload.City, "city", "", "city")
	cmd.Flags().StringVar(&params.payload.Occupation, "occupation", "", "occupation")
	cmd.Flags().StringVar(&params.status, "status", string(record.StatusActive),
		"status: active or inactive (or the stored value)")
	cmd.Flags().StringVar(&params.payload.JoinedDate, "joined-date", "",
		"join date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&params.output, "output", cfg.Output.DefaultFormat, "output format: table, json, or yaml")
	addBackendFlags(cmd, &params.backend, &params.apiURL)

	return cmd
}

func executeCreate(cmd *cobra.Command, params createParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if err := validateOutputFormat(params.output); err != nil {
		return err
	}

	status, err := record.ParseStatus(params.status)
	if err != nil {
		return err
	}
	payload := params.payload
	payload.Status = status

	if err := payload.Validate(); err != nil {
		var ve *record.ValidationError
		if errors.As(err, &ve) {
			for _, fe := range ve.Fields {
				cmd.PrintErrf("  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}

	s, closeStore, err := openStore(ctx, resolveBackend(cmd, params.backend, params.apiURL), *log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	created, err := s.CreateRecord(ctx, payload)
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	logger.Info().Ctx(ctx).
		Str("operation", "create").
		Str("record_id", created.ID).
		Msg("record created")

	return renderRecord(cmd.OutOrStdout(), params.output, *created)
}
