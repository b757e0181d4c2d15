// Package cli implements the datalink command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/internal/cli/commands"
)

// Version is the CLI version, overridable at build time via -ldflags.
var Version = "0.1.0"

// NewRootCmd creates the root datalink command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datalink",
		Short: "Typed tabular data over HTTP",
		Long: `DataLink serves typed tabular data over HTTP, dispatches keyed
"Service.method" commands, and pushes change notifications to
clients over a server-sent event stream.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Typed tabular data over HTTP
`)

	// Global persistent flags. Each one overrides the matching config
	// file key when explicitly set.
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./datalink.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Path to the JSON data directory")
	rootCmd.PersistentFlags().Int("port", 0, "Server listen port")
	rootCmd.PersistentFlags().Bool("watch", false, "Watch the data directory and notify clients on change")
	rootCmd.PersistentFlags().String("server", "", "Base URL of the backend server")
	rootCmd.PersistentFlags().Int("cache-size", 0, "Client response cache capacity")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewCallCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewReplCommand())

	return rootCmd
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
