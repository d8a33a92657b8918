package layers

import (
	"math"

	"github.com/phanxgames/canopy"
)

// ArcStyle configures the pie layer.
type ArcStyle struct {
	Key   string `yaml:"key"`   // slice column, default the first
	Value string `yaml:"value"` // weight column, default the second
	// Nice.PaddingInner is the share of the circle left as gaps.
	Nice canopy.Nice `yaml:"nice"`
	// InnerRatio hollows the pie into a donut, as a share of the radius.
	InnerRatio float64      `yaml:"innerRatio"`
	Arc        canopy.Style `yaml:"arc"`
	Labels     bool         `yaml:"labels"`
	Label      canopy.Style `yaml:"label"`
}

func defaultArcStyle() ArcStyle {
	return ArcStyle{Label: canopy.Style{FontSize: 11}}
}

// arc draws a pie or donut from an angular scale over the slice weights.
type arc struct {
	base     *canopy.Layer
	data     *canopy.Table
	style    ArcStyle
	received canopy.ScaleSet

	keys   []string
	slices []canopy.DrawGroup
	labels []canopy.DrawGroup
}

func newArc(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &arc{base: base, style: defaultArcStyle()}, nil
}

func (a *arc) SetData(data any) error {
	t, err := setTable(a.data, data)
	a.data = t
	return err
}

func (a *arc) SetScale(s canopy.ScaleSet) error {
	if !s.Empty() {
		a.received = s
	}
	return nil
}

func (a *arc) SetStyle(style any) error {
	return decodeStyle(&a.style, style)
}

func (a *arc) columns() (ki, vi int, err error) {
	if ki, err = column(a.data, a.style.Key); err != nil {
		return
	}
	if a.style.Value == "" {
		if len(a.data.Columns) < 2 {
			return ki, -1, canopy.NewError(canopy.ErrCodeConfiguration, "pie data needs a value column")
		}
		return ki, 1, nil
	}
	vi, err = column(a.data, a.style.Value)
	return
}

// Scales proposes an angular scale over a full turn and a radius scale
// mapping [0, 1] onto the pie radius.
func (a *arc) Scales() canopy.ScaleSet {
	if a.data.Len() == 0 {
		return canopy.ScaleSet{}
	}
	ki, vi, err := a.columns()
	if err != nil {
		return canopy.ScaleSet{}
	}
	weights, err := a.data.Floats(vi)
	if err != nil {
		return canopy.ScaleSet{}
	}
	l := a.base.Options().Layout
	outer := math.Min(l.Width, l.Height) / 2 * 0.9
	return canopy.ScaleSet{
		Angle:  canopy.Angular(a.data.Strings(ki), weights, [2]float64{0, 2 * math.Pi}, a.style.Nice),
		Radius: canopy.Linear([2]float64{0, 1}, [2]float64{0, outer}, canopy.Nice{}),
		Nice:   a.style.Nice,
	}
}

func (a *arc) Update() error {
	a.slices, a.labels, a.keys = nil, nil, nil
	if a.data.Len() == 0 {
		return nil
	}
	ki, vi, err := a.columns()
	if err != nil {
		return err
	}
	values, err := a.data.Floats(vi)
	if err != nil {
		return canopy.WrapError(canopy.ErrCodeConfiguration, err, "pie values")
	}
	own := a.Scales()
	ang, ok := a.received.Angle.(canopy.AngularScale)
	if !ok {
		ang, _ = own.Angle.(canopy.AngularScale)
	}
	rad, ok := a.received.Radius.(canopy.LinearScale)
	if !ok {
		rad, _ = own.Radius.(canopy.LinearScale)
	}

	l := a.base.Options().Layout
	o := origin(a.base)
	cx, cy := l.X+l.Width/2+o.X, l.Y+l.Height/2+o.Y
	outer := rad.Map(1)
	inner := outer * clamp(a.style.InnerRatio, 0, 1)
	theme := a.base.Chart().Theme()

	slices := canopy.DrawGroup{Key: "pie"}
	text := canopy.DrawGroup{Key: "pie"}
	for i, k := range a.data.Strings(ki) {
		start, end, ok := ang.Arc(k)
		if !ok {
			continue
		}
		a.keys = append(a.keys, k)
		slices.Data = append(slices.Data, canopy.Geometry{
			Key: k, X: cx, Y: cy,
			InnerRadius: inner, OuterRadius: outer,
			StartAngle: start, EndAngle: end,
			Value: values[i],
			Fill:  fillOr(a.style.Arc, theme, i),
		})
		mid, r := (start+end)/2, (inner+outer)/2
		sin, cos := math.Sincos(mid)
		text.Data = append(text.Data, canopy.Geometry{
			Key: k, X: cx + r*sin, Y: cy - r*cos, Text: k, Value: values[i], Fill: theme.Text,
		})
	}
	a.slices = []canopy.DrawGroup{slices}
	a.labels = []canopy.DrawGroup{text}
	return nil
}

func (a *arc) Draw() error {
	a.base.DrawSublayer("arc", canopy.ShapeArc, a.slices, noStyleFill(a.style.Arc))
	if a.style.Labels {
		a.base.DrawSublayer("text", canopy.ShapeText, a.labels, a.style.Label)
	}
	return nil
}

func (a *arc) Destroy() error { return nil }

func (a *arc) LegendData() []canopy.LegendItem {
	theme := a.base.Chart().Theme()
	items := make([]canopy.LegendItem, len(a.keys))
	for i, k := range a.keys {
		items[i] = canopy.LegendItem{Layer: a.base.ID(), Label: k, Color: fillOr(a.style.Arc, theme, i)}
	}
	return items
}
