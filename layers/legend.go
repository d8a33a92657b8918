package layers

import (
	"slices"

	"github.com/phanxgames/canopy"
)

// LegendStyle configures the legend.
type LegendStyle struct {
	Swatch     float64      `yaml:"swatch"`
	Gap        float64      `yaml:"gap"`
	Horizontal bool         `yaml:"horizontal"`
	Label      canopy.Style `yaml:"label"`
	// Layers limits the legend to these layer ids. Empty means every
	// layer with legend entries.
	Layers []string `yaml:"layers"`
}

func defaultLegendStyle() LegendStyle {
	return LegendStyle{Swatch: 12, Gap: 6, Label: canopy.Style{FontSize: 11}}
}

// legend lists the entries other layers contribute. Those change whenever
// the other layers update, so geometry is computed at draw time.
type legend struct {
	base  *canopy.Layer
	style LegendStyle
}

func newLegend(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &legend{base: base, style: defaultLegendStyle()}, nil
}

func (g *legend) SetData(data any) error {
	if data != nil {
		return canopy.NewError(canopy.ErrCodeConfiguration, "legend takes no data, got %T", data)
	}
	return nil
}

func (g *legend) SetScale(canopy.ScaleSet) error { return nil }

func (g *legend) SetStyle(style any) error {
	return decodeStyle(&g.style, style)
}

func (g *legend) Update() error { return nil }

// items returns the entries to show, deduplicated by label.
func (g *legend) items() []canopy.LegendItem {
	var out []canopy.LegendItem
	seen := make(map[string]bool)
	for _, it := range g.base.Chart().LegendData() {
		if len(g.style.Layers) > 0 && !slices.Contains(g.style.Layers, it.Layer) {
			continue
		}
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		out = append(out, it)
	}
	return out
}

func (g *legend) Draw() error {
	l := g.base.Options().Layout
	theme := g.base.Chart().Theme()
	size := g.style.Swatch
	font := g.style.Label.FontSize
	if font == 0 {
		font = 11
	}
	swatches := canopy.DrawGroup{Key: "swatches"}
	labels := canopy.DrawGroup{Key: "labels"}
	x, y := l.X, l.Y
	for _, it := range g.items() {
		swatches.Data = append(swatches.Data, canopy.Geometry{
			Key: it.Label, X: x, Y: y, Width: size, Height: size, Fill: it.Color,
		})
		labels.Data = append(labels.Data, canopy.Geometry{
			Key: it.Label, X: x + size + g.style.Gap, Y: y + size/2, Text: it.Label, Fill: theme.Text,
		})
		if g.style.Horizontal {
			// Approximate label width from the font size.
			x += size + 2*g.style.Gap + float64(len(it.Label))*font*0.6
		} else {
			y += size + g.style.Gap
		}
	}
	var sw, lb []canopy.DrawGroup
	if len(swatches.Data) > 0 {
		sw, lb = []canopy.DrawGroup{swatches}, []canopy.DrawGroup{labels}
	}
	g.base.DrawSublayer("swatch", canopy.ShapeRect, sw, canopy.Style{})
	g.base.DrawSublayer("label", canopy.ShapeText, lb, g.style.Label)
	return nil
}

func (g *legend) Destroy() error { return nil }
