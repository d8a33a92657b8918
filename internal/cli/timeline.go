package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
)

type timelineOpts struct {
	duration time.Duration
	progress bool
}

func newTimelineCmd() *cobra.Command {
	opts := timelineOpts{duration: defaultAt}

	cmd := &cobra.Command{
		Use:   "timeline [chart file]",
		Short: "Print the animation queue events of a chart",
		Long: `Timeline draws the chart once and plays its animation queues on a virtual
clock for --for, printing when every queue member starts and ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return fmt.Errorf("load chart: %w", err)
			}
			return runTimeline(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "for", opts.duration, "virtual time to play")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "include per-frame process events")
	return cmd
}

func runTimeline(ctx context.Context, cfg *config.Chart, opts timelineOpts, w io.Writer) error {
	logger := loggerFromContext(ctx)
	var errs int
	c, _, err := buildSVG(cfg, logger, &errs)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	defer c.Destroy()

	rows := collectTimeline(c, opts)
	logger.Debug("timeline collected", "events", len(rows), "errors", errs)
	printTimeline(w, rows)
	return nil
}

// collectTimeline draws c, plays it for opts.duration and returns the
// queue events observed, stamped with the virtual time they fired at.
func collectTimeline(c *canopy.Chart, opts timelineOpts) []timelineRow {
	var rows []timelineRow
	sched := c.Scheduler()
	for _, l := range c.Layers() {
		id := l.ID()
		l.On(canopy.EventTimeline, "cli", func(p any) {
			ev, ok := p.(canopy.QueueEvent)
			if !ok || (ev.State == canopy.EventProcess && !opts.progress) {
				return
			}
			rows = append(rows, timelineRow{At: sched.Now(), Layer: id, Event: ev})
		})
	}
	c.Draw()
	advance(c, opts.duration)
	for _, l := range c.Layers() {
		l.Off(canopy.EventTimeline, "cli")
	}
	return rows
}
