package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/eringen/spindrift/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := defaultBuildOptions()
	cmd := &cobra.Command{
		Use:   "spindrift",
		Short: "spindrift - build a static site from YAML droplets",
		Long: `spindrift renders every droplet in a source directory through the
droplet template, then writes an index page listing the droplets that
rendered successfully.

Examples:
  spindrift -s droplets -o public
  spindrift -c site.yaml -s droplets -o public -t theme -w
  spindrift new myblog`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity := logger.VerbosityInfo + opts.verbose
			if opts.quiet {
				verbosity = logger.VerbosityUser
			}
			if err := logger.Initialize(verbosity, opts.jsonLogs); err != nil {
				return errors.Wrap(err, "initialize logger")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "Increase log detail (-v for debug output)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")
	opts.bindFlags(cmd)

	cmd.AddCommand(newNewCmd(), newVersionCmd())
	return cmd
}
