// Package layers holds the concrete chart layers. Importing it registers
// them with canopy:
//
//	import _ "github.com/phanxgames/canopy/layers"
//
//	chart.CreateLayer("rect", canopy.LayerOptions{})
//
// Every layer takes a *canopy.Table through SetData and its own style
// struct, or a map decoded into that struct, through SetStyle.
package layers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/canopy"
)

// Layer kinds registered by this package.
const (
	KindAxis    = "axis"
	KindRect    = "rect"
	KindLine    = "line"
	KindArc     = "arc"
	KindScatter = "scatter"
	KindBasemap = "basemap"
	KindLegend  = "legend"
)

func init() {
	canopy.RegisterLayer(KindAxis, newAxis)
	canopy.RegisterLayer(KindRect, newRect)
	canopy.RegisterLayer(KindLine, newLine)
	canopy.RegisterLayer(KindArc, newArc)
	canopy.RegisterLayer(KindScatter, newScatter)
	canopy.RegisterLayer(KindBasemap, newBasemap)
	canopy.RegisterLayer(KindLegend, newLegend)
}

// decodeStyle fills out from in, which is either a value of out's type, a
// pointer to one, or a generic map as produced by the TOML and YAML
// decoders. Nil leaves out untouched.
func decodeStyle[T any](out *T, in any) error {
	switch v := in.(type) {
	case nil:
		return nil
	case T:
		*out = v
		return nil
	case *T:
		if v != nil {
			*out = *v
		}
		return nil
	case map[string]any:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode style: %w", err)
		}
		next := *out
		if err := yaml.Unmarshal(b, &next); err != nil {
			return canopy.WrapError(canopy.ErrCodeConfiguration, err, "invalid style")
		}
		*out = next
		return nil
	}
	return canopy.NewError(canopy.ErrCodeConfiguration, "invalid style: want %T or a map, got %T", *out, in)
}

// setTable validates incoming table data, keeping current on error.
func setTable(current *canopy.Table, incoming any) (*canopy.Table, error) {
	return canopy.ValidateData(current, incoming, nil)
}

// coordinate returns the chart's coordinate system, cartesian when there is
// no axis layer yet.
func coordinate(base *canopy.Layer) canopy.CoordinateSystem {
	axis := base.Chart().AxisLayer()
	if axis == nil {
		return canopy.Cartesian
	}
	if co, ok := axis.Impl().(canopy.CoordinateOwner); ok {
		return co.Coordinate()
	}
	return canopy.Cartesian
}

// origin is the offset a layer adds to scale output. Geographic scales are
// scattered relative to each layer's layout.
func origin(base *canopy.Layer) canopy.Vec2 {
	if coordinate(base) != canopy.Geographic {
		return canopy.Vec2{}
	}
	l := base.Options().Layout
	return canopy.Vec2{X: l.X, Y: l.Y}
}

// columns resolves column names, defaulting to every column after the
// first when names is empty.
func columns(t *canopy.Table, names []string) ([]int, []string, error) {
	if len(names) == 0 {
		if len(t.Columns) > 1 {
			names = t.Columns[1:]
		}
	}
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Column(n)
		if idx[i] < 0 {
			return nil, nil, canopy.NewError(canopy.ErrCodeConfiguration, "unknown column %q", n)
		}
	}
	return idx, names, nil
}

// column resolves one column name, defaulting to the first column.
func column(t *canopy.Table, name string) (int, error) {
	if name == "" {
		if len(t.Columns) == 0 {
			return -1, canopy.NewError(canopy.ErrCodeConfiguration, "table has no columns")
		}
		return 0, nil
	}
	i := t.Column(name)
	if i < 0 {
		return -1, canopy.NewError(canopy.ErrCodeConfiguration, "unknown column %q", name)
	}
	return i, nil
}

// fillOr returns the style's fill or the theme color at i.
func fillOr(s canopy.Style, theme canopy.Theme, i int) canopy.Color {
	if s.Fill != nil {
		return *s.Fill
	}
	return theme.Color(i)
}

// noStyleFill strips the fill so per-datum theme colors show through.
func noStyleFill(s canopy.Style) canopy.Style {
	s.Fill = nil
	return s
}
