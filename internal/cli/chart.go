package cli

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
	"github.com/phanxgames/canopy/layers"
	"github.com/phanxgames/canopy/svg"
)

// buildSVG builds cfg into a chart drawing into a fresh SVG document
// painted with the theme background. It returns the number of
// recoverable errors the chart reports through *errs.
func buildSVG(cfg *config.Chart, logger *log.Logger, errs *int) (*canopy.Chart, *svg.Document, error) {
	if cfg.Backend != "" && cfg.Backend != config.BackendSVG {
		logger.Debug("rendering to svg", "configured", cfg.Backend)
	}
	doc := svg.New(cfg.Width, cfg.Height)
	c, err := layers.Build(cfg, canopy.ChartOptions{
		Backend: doc,
		Logger:  logger,
		OnError: func(error) { *errs++ },
	})
	if err != nil {
		return nil, nil, err
	}
	doc.SetBackground(c.Theme().Background)
	return c, doc, nil
}

// advance ticks c by frame-sized steps until d of virtual time passed or
// nothing is left to animate.
func advance(c *canopy.Chart, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d && c.Scheduler().Busy(); {
		step := min(canopy.FrameDuration, d-elapsed)
		c.Tick(step)
		elapsed += step
	}
}
