package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/internal/cli/output"
	"github.com/leapstack-labs/datalink/internal/dispatch"
	"github.com/leapstack-labs/datalink/pkg/grid"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "call <Service.method>",
		Short: "Send a command to a DataLink backend",
		Long: `Send a "Service.method" command record to the backend and render
the reply. Parameters are attached as string entries on the record.

Examples:
  datalink call Data.list
  datalink call Data.get -p name=orders
  datalink call Billing.invoice -p customer=acme -p month=2026-08`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rec, err := buildCommandRecord(args[0], params)
			if err != nil {
				return err
			}

			client, err := newLinkClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Send(cmd.Context(), rec)
			if err != nil {
				return fmt.Errorf("command %q failed: %w", args[0], err)
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return renderResult(r, res, cfg.Output)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Command parameter as key=value (repeatable)")

	return cmd
}

// buildCommandRecord assembles the request record for a command.
func buildCommandRecord(command string, params []string) (*grid.Record, error) {
	if !strings.Contains(command, ".") {
		return nil, fmt.Errorf("command must be of the form Service.method, got %q", command)
	}

	rec, err := grid.NewRecordOf(dispatch.CommandKey, command)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		if err := rec.PutString(key, value); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
