package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
)

const defaultAt = 2 * time.Second

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output string        // output file, "-" for stdout
	at     time.Duration // virtual time to capture at
	script string        // automation script; snapshots land next to output
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{at: defaultAt}

	cmd := &cobra.Command{
		Use:   "render [chart file]",
		Short: "Render a chart file to SVG",
		Long: `Render builds the chart, draws it and advances its animations by --at of
virtual time before writing the SVG. With --script the automation script
drives the chart instead and every snapshot step writes <output>-<label>.svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: chart name with .svg, - for stdout)")
	cmd.Flags().DurationVar(&opts.at, "at", opts.at, "virtual time to capture the chart at")
	cmd.Flags().StringVar(&opts.script, "script", "", "automation script (JSON)")
	return cmd
}

func runRender(ctx context.Context, path string, opts renderOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load chart: %w", err)
	}
	if opts.output == "" {
		opts.output = strings.TrimSuffix(path, filepath.Ext(path)) + ".svg"
	}

	var errs int
	c, doc, err := buildSVG(cfg, logger, &errs)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	defer c.Destroy()
	c.Draw()

	if opts.script != "" {
		data, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		script, err := canopy.LoadScript(data)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(opts.output, filepath.Ext(opts.output))
		snap := func(label string) error {
			out := base + "-" + label + ".svg"
			if err := writeFile(out, doc.Encode); err != nil {
				return fmt.Errorf("snapshot %q: %w", label, err)
			}
			logger.Debug("snapshot written", "label", label, "path", out)
			return nil
		}
		if err := script.Run(c, doc, snap); err != nil {
			return fmt.Errorf("run script: %w", err)
		}
	} else {
		advance(c, opts.at)
	}

	if opts.output == "-" {
		return doc.Encode(stdout)
	}
	if err := writeFile(opts.output, doc.Encode); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	if errs > 0 {
		logger.Warn("chart reported errors", "count", errs)
	}
	prog.done("rendered", "path", opts.output)
	printSuccess(stdout, "Wrote %s", opts.output)
	return nil
}

// writeFile creates path and streams encode into it.
func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}
