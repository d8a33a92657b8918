// Package cli implements the canopy command-line interface.
//
// # Commands
//
//   - render: draw a chart file to SVG, optionally at a point in its
//     animations or driven by an automation script
//   - timeline: print the animation queue events of a chart file
//   - serve: render chart files posted over HTTP
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command's context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. The
// main package calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the canopy CLI with ctx, returning the first command error.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "canopy",
		Short:        "canopy renders declarative, animated charts",
		Long:         `canopy builds layered charts from TOML or YAML files and renders them to SVG, with enter, loop and redraw animations played on a virtual clock.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("canopy %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newTimelineCmd())
	root.AddCommand(newServeCmd())
	return root
}
