// Command rxdemo runs a small rx pipeline on managed schedulers and prints
// where every value was delivered.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/rxkit/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "rxkit demonstration driver",
		Long:         "rxdemo starts the rxkit schedulers, runs a map/filter pipeline across them and prints each value with the worker that delivered it.",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCommand(), newVersionCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runDemo(cmd.Context(), opts, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("demo failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Config file (default: ./cmd/rxdemo/config.yml or ./config.yml)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Env file loaded before RX_* overrides are read")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
