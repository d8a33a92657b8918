package layers

import (
	"math"

	"github.com/phanxgames/canopy"
)

// RectStyle configures the bar layer.
type RectStyle struct {
	X      string       `yaml:"x"` // category column, default the first
	Y      []string     `yaml:"y"` // series columns, default the rest
	Nice   canopy.Nice  `yaml:"nice"`
	Bar    canopy.Style `yaml:"bar"`
	Labels bool         `yaml:"labels"`
	Label  canopy.Style `yaml:"label"`
}

func defaultRectStyle() RectStyle {
	return RectStyle{
		Nice:  canopy.Nice{Count: 5, Zero: true, PaddingInner: 0.2},
		Label: canopy.Style{FontSize: 10},
	}
}

// rect draws grouped bars: one group per category, one bar per series.
type rect struct {
	base     *canopy.Layer
	data     *canopy.Table
	style    RectStyle
	received canopy.ScaleSet

	series []string
	bars   []canopy.DrawGroup
	labels []canopy.DrawGroup
}

func newRect(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &rect{base: base, style: defaultRectStyle()}, nil
}

func (r *rect) SetData(data any) error {
	t, err := setTable(r.data, data)
	r.data = t
	return err
}

func (r *rect) SetScale(s canopy.ScaleSet) error {
	if !s.Empty() {
		r.received = s
	}
	return nil
}

func (r *rect) SetStyle(style any) error {
	return decodeStyle(&r.style, style)
}

// Scales proposes a band scale over the categories and a linear scale over
// every series value.
func (r *rect) Scales() canopy.ScaleSet {
	if r.data.Len() == 0 {
		return canopy.ScaleSet{}
	}
	xi, err := column(r.data, r.style.X)
	if err != nil {
		return canopy.ScaleSet{}
	}
	yi, _, err := columns(r.data, r.style.Y)
	if err != nil || len(yi) == 0 {
		return canopy.ScaleSet{}
	}
	ext, err := r.data.Extent(yi...)
	if err != nil {
		return canopy.ScaleSet{}
	}
	l := r.base.Options().Layout
	return canopy.ScaleSet{
		X:    canopy.Band(r.data.Distinct(xi), [2]float64{l.X, l.X + l.Width}, r.style.Nice),
		Y:    canopy.Linear(ext, [2]float64{l.Y + l.Height, l.Y}, r.style.Nice),
		Nice: r.style.Nice,
	}
}

func (r *rect) Update() error {
	r.bars, r.labels, r.series = nil, nil, nil
	if r.data.Len() == 0 {
		return nil
	}
	xi, err := column(r.data, r.style.X)
	if err != nil {
		return err
	}
	yi, names, err := columns(r.data, r.style.Y)
	if err != nil {
		return err
	}
	own := r.Scales()
	x, ok := r.received.X.(canopy.BandScale)
	if !ok {
		x, _ = own.X.(canopy.BandScale)
	}
	y, ok := r.received.Y.(canopy.LinearScale)
	if !ok {
		y, _ = own.Y.(canopy.LinearScale)
	}
	values := make([][]float64, len(yi))
	for i, c := range yi {
		if values[i], err = r.data.Floats(c); err != nil {
			return canopy.WrapError(canopy.ErrCodeConfiguration, err, "series %q", names[i])
		}
	}

	o := origin(r.base)
	theme := r.base.Chart().Theme()
	r.series = names
	lo, hi := y.Range()[0], y.Range()[1]
	baseline := clamp(y.Map(0), math.Min(lo, hi), math.Max(lo, hi))
	cats := r.data.Strings(xi)
	for row, cat := range cats {
		left, ok := x.Map(cat)
		if !ok {
			continue
		}
		bw := x.Bandwidth() / float64(len(yi))
		bars := canopy.DrawGroup{Key: cat}
		text := canopy.DrawGroup{Key: cat}
		for i := range yi {
			v := values[i][row]
			top := y.Map(v)
			g := canopy.Geometry{
				Key:    names[i],
				X:      left + float64(i)*bw + o.X,
				Y:      math.Min(top, baseline) + o.Y,
				Width:  bw,
				Height: math.Abs(baseline - top),
				Value:  v,
				Fill:   fillOr(r.style.Bar, theme, i),
			}
			bars.Data = append(bars.Data, g)
			text.Data = append(text.Data, canopy.Geometry{
				Key: names[i], X: g.X + bw/2, Y: g.Y - 8, Text: label(v), Value: v, Fill: theme.Text,
			})
		}
		r.bars = append(r.bars, bars)
		r.labels = append(r.labels, text)
	}
	return nil
}

func (r *rect) Draw() error {
	r.base.DrawSublayer("rect", canopy.ShapeRect, r.bars, noStyleFill(r.style.Bar))
	if r.style.Labels {
		r.base.DrawSublayer("text", canopy.ShapeText, r.labels, r.style.Label)
	}
	return nil
}

func (r *rect) Destroy() error { return nil }

// LegendData lists one entry per series.
func (r *rect) LegendData() []canopy.LegendItem {
	theme := r.base.Chart().Theme()
	items := make([]canopy.LegendItem, len(r.series))
	for i, s := range r.series {
		items[i] = canopy.LegendItem{Layer: r.base.ID(), Label: s, Color: fillOr(r.style.Bar, theme, i)}
	}
	return items
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
