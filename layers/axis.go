package layers

import (
	"math"
	"strconv"

	"github.com/phanxgames/canopy"
)

// AxisStyle configures the axis layer.
type AxisStyle struct {
	// Nice is applied to every linear scale of the merged set.
	Nice     canopy.Nice  `yaml:"nice"`
	Line     canopy.Style `yaml:"line"`
	Label    canopy.Style `yaml:"label"`
	TickSize float64      `yaml:"tickSize"`
}

func defaultAxisStyle() AxisStyle {
	grey := canopy.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}
	return AxisStyle{
		Nice:     canopy.Nice{Count: 5},
		Line:     canopy.Style{Stroke: &grey, StrokeWidth: 1},
		Label:    canopy.Style{Fill: &grey, FontSize: 11},
		TickSize: 4,
	}
}

// axis owns the coordinate system and the merged scale set. It draws
// cartesian axes with tick labels and polar radius rings; in geographic
// coordinates the base map is the only guide.
type axis struct {
	base   *canopy.Layer
	cs     canopy.CoordinateSystem
	style  AxisStyle
	scales canopy.ScaleSet

	lines  []canopy.DrawGroup
	labels []canopy.DrawGroup
	rings  []canopy.DrawGroup
}

func newAxis(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &axis{base: base, cs: base.Options().Coordinate, style: defaultAxisStyle()}, nil
}

func (a *axis) Coordinate() canopy.CoordinateSystem { return a.cs }

// Scales returns the merged set, after the nice policy.
func (a *axis) Scales() canopy.ScaleSet { return a.scales }

func (a *axis) SetData(data any) error {
	if data != nil {
		return canopy.NewError(canopy.ErrCodeConfiguration, "axis layer takes no data")
	}
	return nil
}

func (a *axis) SetScale(s canopy.ScaleSet) error {
	if s.Empty() {
		return nil
	}
	s.Nice = a.style.Nice
	if a.cs == canopy.Geographic {
		// The projection is exact; rounding would shift the map.
		a.scales = s
		return nil
	}
	for _, slot := range []canopy.Slot{canopy.SlotX, canopy.SlotY, canopy.SlotYR, canopy.SlotRadius} {
		if ls, ok := s.Get(slot).(canopy.LinearScale); ok {
			s = s.With(slot, canopy.Linear(ls.Domain(), ls.Range(), a.style.Nice))
		}
	}
	a.scales = s
	return nil
}

func (a *axis) SetStyle(style any) error {
	return decodeStyle(&a.style, style)
}

func (a *axis) Update() error {
	a.lines, a.labels, a.rings = nil, nil, nil
	l := a.base.Options().Layout
	switch a.cs {
	case canopy.Cartesian:
		bottom, right := l.Y+l.Height, l.X+l.Width
		if a.scales.X != nil {
			a.lines = append(a.lines, line("x", canopy.Vec2{X: l.X, Y: bottom}, canopy.Vec2{X: right, Y: bottom}))
			a.labels = append(a.labels, a.xLabels(a.scales.X, bottom+a.style.TickSize+8))
		}
		if a.scales.Y != nil {
			a.lines = append(a.lines, line("y", canopy.Vec2{X: l.X, Y: l.Y}, canopy.Vec2{X: l.X, Y: bottom}))
			a.labels = append(a.labels, a.yLabels("y", a.scales.Y, l.X-a.style.TickSize-12))
		}
		if a.scales.YR != nil {
			a.lines = append(a.lines, line("yr", canopy.Vec2{X: right, Y: l.Y}, canopy.Vec2{X: right, Y: bottom}))
			a.labels = append(a.labels, a.yLabels("yr", a.scales.YR, right+a.style.TickSize+12))
		}
	case canopy.Polar:
		rs, ok := a.scales.Radius.(canopy.LinearScale)
		if !ok {
			return nil
		}
		cx, cy := l.X+l.Width/2, l.Y+l.Height/2
		ring := canopy.DrawGroup{Key: "radius"}
		var stroke canopy.Color
		if a.style.Line.Stroke != nil {
			stroke = *a.style.Line.Stroke
		}
		for _, t := range rs.Ticks() {
			r := rs.Map(t)
			if r <= 0 {
				continue
			}
			ring.Data = append(ring.Data, canopy.Geometry{
				Key: label(t), X: cx, Y: cy,
				InnerRadius: r - 0.5, OuterRadius: r + 0.5,
				StartAngle: 0, EndAngle: 2 * math.Pi,
				Fill: stroke,
			})
		}
		a.rings = append(a.rings, ring)
	}
	return nil
}

func (a *axis) xLabels(sc canopy.Scale, y float64) canopy.DrawGroup {
	g := canopy.DrawGroup{Key: "x"}
	switch s := sc.(type) {
	case canopy.BandScale:
		for _, k := range s.Domain() {
			x, _ := s.Center(k)
			g.Data = append(g.Data, canopy.Geometry{Key: k, X: x, Y: y, Text: k})
		}
	case canopy.LinearScale:
		for _, t := range s.Ticks() {
			g.Data = append(g.Data, canopy.Geometry{Key: label(t), X: s.Map(t), Y: y, Text: label(t), Value: t})
		}
	}
	return g
}

func (a *axis) yLabels(key string, sc canopy.Scale, x float64) canopy.DrawGroup {
	g := canopy.DrawGroup{Key: key}
	if s, ok := sc.(canopy.LinearScale); ok {
		for _, t := range s.Ticks() {
			g.Data = append(g.Data, canopy.Geometry{Key: label(t), X: x, Y: s.Map(t), Text: label(t), Value: t})
		}
	}
	return g
}

func (a *axis) Draw() error {
	switch a.cs {
	case canopy.Cartesian:
		a.base.DrawSublayer("line", canopy.ShapeLine, a.lines, a.style.Line)
		a.base.DrawSublayer("label", canopy.ShapeText, a.labels, a.style.Label)
	case canopy.Polar:
		a.base.DrawSublayer("ring", canopy.ShapeArc, a.rings, a.style.Line)
	}
	return nil
}

func (a *axis) Destroy() error { return nil }

func line(key string, from, to canopy.Vec2) canopy.DrawGroup {
	return canopy.DrawGroup{Key: key, Data: []canopy.Geometry{{Key: key, Points: []canopy.Vec2{from, to}}}}
}

func label(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
