package layers

import (
	"github.com/phanxgames/canopy"
)

// LineStyle configures the line layer.
type LineStyle struct {
	X     string       `yaml:"x"` // category column, default the first
	Y     []string     `yaml:"y"` // series columns, default the rest
	Nice  canopy.Nice  `yaml:"nice"`
	Line  canopy.Style `yaml:"line"`
	Point canopy.Style `yaml:"point"`
	// PointRadius draws a dot at every vertex when positive.
	PointRadius float64 `yaml:"pointRadius"`
}

func defaultLineStyle() LineStyle {
	return LineStyle{
		Nice: canopy.Nice{Count: 5, PaddingInner: 1},
		Line: canopy.Style{StrokeWidth: 2},
	}
}

// lineLayer draws one polyline per series through the band centres.
type lineLayer struct {
	base     *canopy.Layer
	data     *canopy.Table
	style    LineStyle
	received canopy.ScaleSet

	series []string
	lines  []canopy.DrawGroup
	points []canopy.DrawGroup
}

func newLine(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &lineLayer{base: base, style: defaultLineStyle()}, nil
}

func (l *lineLayer) SetData(data any) error {
	t, err := setTable(l.data, data)
	l.data = t
	return err
}

func (l *lineLayer) SetScale(s canopy.ScaleSet) error {
	if !s.Empty() {
		l.received = s
	}
	return nil
}

func (l *lineLayer) SetStyle(style any) error {
	return decodeStyle(&l.style, style)
}

func (l *lineLayer) Scales() canopy.ScaleSet {
	if l.data.Len() == 0 {
		return canopy.ScaleSet{}
	}
	xi, err := column(l.data, l.style.X)
	if err != nil {
		return canopy.ScaleSet{}
	}
	yi, _, err := columns(l.data, l.style.Y)
	if err != nil || len(yi) == 0 {
		return canopy.ScaleSet{}
	}
	ext, err := l.data.Extent(yi...)
	if err != nil {
		return canopy.ScaleSet{}
	}
	lay := l.base.Options().Layout
	return canopy.ScaleSet{
		X:    canopy.Band(l.data.Distinct(xi), [2]float64{lay.X, lay.X + lay.Width}, l.style.Nice),
		Y:    canopy.Linear(ext, [2]float64{lay.Y + lay.Height, lay.Y}, l.style.Nice),
		Nice: l.style.Nice,
	}
}

func (l *lineLayer) Update() error {
	l.lines, l.points, l.series = nil, nil, nil
	if l.data.Len() == 0 {
		return nil
	}
	xi, err := column(l.data, l.style.X)
	if err != nil {
		return err
	}
	yi, names, err := columns(l.data, l.style.Y)
	if err != nil {
		return err
	}
	own := l.Scales()
	x, ok := l.received.X.(canopy.BandScale)
	if !ok {
		x, _ = own.X.(canopy.BandScale)
	}
	y, ok := l.received.Y.(canopy.LinearScale)
	if !ok {
		y, _ = own.Y.(canopy.LinearScale)
	}

	o := origin(l.base)
	theme := l.base.Chart().Theme()
	cats := l.data.Strings(xi)
	l.series = names
	for i, c := range yi {
		vals, err := l.data.Floats(c)
		if err != nil {
			return canopy.WrapError(canopy.ErrCodeConfiguration, err, "series %q", names[i])
		}
		color := fillOr(l.style.Line, theme, i)
		g := canopy.Geometry{Key: names[i], Fill: color}
		dots := canopy.DrawGroup{Key: names[i]}
		for row, cat := range cats {
			cx, ok := x.Center(cat)
			if !ok {
				continue
			}
			p := canopy.Vec2{X: cx + o.X, Y: y.Map(vals[row]) + o.Y}
			g.Points = append(g.Points, p)
			dots.Data = append(dots.Data, canopy.Geometry{
				Key: cat, X: p.X, Y: p.Y, OuterRadius: l.style.PointRadius, Value: vals[row], Fill: color,
			})
		}
		l.lines = append(l.lines, canopy.DrawGroup{Key: names[i], Data: []canopy.Geometry{g}})
		l.points = append(l.points, dots)
	}
	return nil
}

func (l *lineLayer) Draw() error {
	l.base.DrawSublayer("line", canopy.ShapeLine, l.lines, noStyleFill(l.style.Line))
	if l.style.PointRadius > 0 {
		l.base.DrawSublayer("point", canopy.ShapeCircle, l.points, noStyleFill(l.style.Point))
	}
	return nil
}

func (l *lineLayer) Destroy() error { return nil }

func (l *lineLayer) LegendData() []canopy.LegendItem {
	theme := l.base.Chart().Theme()
	items := make([]canopy.LegendItem, len(l.series))
	for i, s := range l.series {
		items[i] = canopy.LegendItem{Layer: l.base.ID(), Label: s, Color: fillOr(l.style.Line, theme, i)}
	}
	return items
}
