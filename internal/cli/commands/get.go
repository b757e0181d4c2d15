package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/internal/cli/output"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch a resource from a DataLink backend",
		Long: `Fetch a read-only resource path from the backend and render the
reply. Table payloads are rendered in the configured output format.

Examples:
  datalink get api/data
  datalink get api/data/orders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client, err := newLinkClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Fetch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch %q failed: %w", args[0], err)
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return renderResult(r, res, cfg.Output)
		},
	}
}
