package layers

import (
	"github.com/phanxgames/canopy"
)

// ScatterStyle configures the point layer. In geographic coordinates X and
// Y name the longitude and latitude columns.
type ScatterStyle struct {
	X      string       `yaml:"x"`      // default the first column
	Y      string       `yaml:"y"`      // default the second column
	Series string       `yaml:"series"` // optional column grouping points
	Radius float64      `yaml:"radius"`
	Nice   canopy.Nice  `yaml:"nice"`
	Point  canopy.Style `yaml:"point"`
}

func defaultScatterStyle() ScatterStyle {
	return ScatterStyle{Radius: 4, Nice: canopy.Nice{Count: 5}}
}

// scatter draws one circle per row, grouped by an optional series column.
type scatter struct {
	base     *canopy.Layer
	data     *canopy.Table
	style    ScatterStyle
	received canopy.ScaleSet

	series []string
	points []canopy.DrawGroup
}

func newScatter(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &scatter{base: base, style: defaultScatterStyle()}, nil
}

func (s *scatter) SetData(data any) error {
	t, err := setTable(s.data, data)
	s.data = t
	return err
}

func (s *scatter) SetScale(sc canopy.ScaleSet) error {
	if !sc.Empty() {
		s.received = sc
	}
	return nil
}

func (s *scatter) SetStyle(style any) error {
	return decodeStyle(&s.style, style)
}

func (s *scatter) xy() (xi, yi int, err error) {
	if xi, err = column(s.data, s.style.X); err != nil {
		return
	}
	if s.style.Y == "" {
		if len(s.data.Columns) < 2 {
			return xi, -1, canopy.NewError(canopy.ErrCodeConfiguration, "scatter data needs a y column")
		}
		return xi, 1, nil
	}
	yi, err = column(s.data, s.style.Y)
	return
}

func (s *scatter) Scales() canopy.ScaleSet {
	if s.data.Len() == 0 {
		return canopy.ScaleSet{}
	}
	xi, yi, err := s.xy()
	if err != nil {
		return canopy.ScaleSet{}
	}
	xe, err := s.data.Extent(xi)
	if err != nil {
		return canopy.ScaleSet{}
	}
	ye, err := s.data.Extent(yi)
	if err != nil {
		return canopy.ScaleSet{}
	}
	l := s.base.Options().Layout
	return canopy.ScaleSet{
		X:    canopy.Linear(xe, [2]float64{l.X, l.X + l.Width}, s.style.Nice),
		Y:    canopy.Linear(ye, [2]float64{l.Y + l.Height, l.Y}, s.style.Nice),
		Nice: s.style.Nice,
	}
}

func (s *scatter) Update() error {
	s.points, s.series = nil, nil
	if s.data.Len() == 0 {
		return nil
	}
	xi, yi, err := s.xy()
	if err != nil {
		return err
	}
	xs, err := s.data.Floats(xi)
	if err != nil {
		return canopy.WrapError(canopy.ErrCodeConfiguration, err, "scatter x")
	}
	ys, err := s.data.Floats(yi)
	if err != nil {
		return canopy.WrapError(canopy.ErrCodeConfiguration, err, "scatter y")
	}
	own := s.Scales()
	x, ok := s.received.X.(canopy.LinearScale)
	if !ok {
		x, _ = own.X.(canopy.LinearScale)
	}
	y, ok := s.received.Y.(canopy.LinearScale)
	if !ok {
		y, _ = own.Y.(canopy.LinearScale)
	}

	keys := make([]string, s.data.Len())
	if s.style.Series != "" {
		si, err := column(s.data, s.style.Series)
		if err != nil {
			return err
		}
		keys = s.data.Strings(si)
		s.series = s.data.Distinct(si)
	} else {
		s.series = []string{s.base.ID()}
		for i := range keys {
			keys[i] = s.base.ID()
		}
	}

	o := origin(s.base)
	theme := s.base.Chart().Theme()
	slot := make(map[string]int, len(s.series))
	for i, k := range s.series {
		slot[k] = i
		s.points = append(s.points, canopy.DrawGroup{Key: k})
	}
	for row := range xs {
		i := slot[keys[row]]
		g := &s.points[i]
		g.Data = append(g.Data, canopy.Geometry{
			Key:         s.data.Rows[row][xi],
			X:           x.Map(xs[row]) + o.X,
			Y:           y.Map(ys[row]) + o.Y,
			OuterRadius: s.style.Radius,
			Value:       ys[row],
			Fill:        fillOr(s.style.Point, theme, i),
		})
	}
	return nil
}

func (s *scatter) Draw() error {
	s.base.DrawSublayer("point", canopy.ShapeCircle, s.points, noStyleFill(s.style.Point))
	return nil
}

func (s *scatter) Destroy() error { return nil }

func (s *scatter) LegendData() []canopy.LegendItem {
	theme := s.base.Chart().Theme()
	items := make([]canopy.LegendItem, len(s.series))
	for i, k := range s.series {
		items[i] = canopy.LegendItem{Layer: s.base.ID(), Label: k, Color: fillOr(s.style.Point, theme, i)}
	}
	return items
}
