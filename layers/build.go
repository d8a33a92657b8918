package layers

import (
	"maps"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
)

// Build creates a chart from cfg. Size and theme come from cfg; the rest of
// opts, including the backend, is passed through. Layers are created in
// file order, so later layers draw on top.
func Build(cfg *config.Chart, opts canopy.ChartOptions) (*canopy.Chart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cs, err := canopy.ParseCoordinateSystem(cfg.Coordinate)
	if err != nil {
		return nil, err
	}
	opts.Width, opts.Height = cfg.Width, cfg.Height
	if cfg.Theme != "" {
		theme, err := canopy.ThemeByName(cfg.Theme)
		if err != nil {
			return nil, err
		}
		opts.Theme = &theme
	}

	c := canopy.NewChart(opts)
	for i, lc := range cfg.Layers {
		l, err := c.CreateLayer(lc.Type, canopy.LayerOptions{
			ID:         lc.ID,
			Axis:       lc.Axis,
			Layout:     lc.Layout.Canopy(),
			Coordinate: cs,
			Animation:  lc.Animation,
		})
		if err != nil {
			c.Destroy()
			return nil, canopy.WrapError(canopy.ErrCodeConfiguration, err, "layer %d", i)
		}
		if style := layerStyle(lc); style != nil {
			l.SetStyle(style)
		}
		if lc.Data != nil {
			t, err := lc.Data.Table()
			if err != nil {
				c.Destroy()
				return nil, canopy.WrapError(canopy.ErrCodeConfiguration, err, "layer %q data", l.ID())
			}
			l.SetData(t)
		}
	}
	return c, nil
}

// layerStyle merges the layer's nice override into its style table.
func layerStyle(lc config.Layer) map[string]any {
	if lc.Nice == nil {
		return lc.Style
	}
	out := maps.Clone(lc.Style)
	if out == nil {
		out = make(map[string]any)
	}
	out["nice"] = *lc.Nice
	return out
}
