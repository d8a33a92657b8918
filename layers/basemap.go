package layers

import (
	"math"

	"github.com/phanxgames/canopy"
)

// BasemapStyle configures the base map.
type BasemapStyle struct {
	// Bounds is [west, south, east, north] in degrees.
	Bounds    [4]float64   `yaml:"bounds"`
	Graticule float64      `yaml:"graticule"` // grid spacing in degrees, 0 hides it
	Grid      canopy.Style `yaml:"grid"`
	Outline   canopy.Style `yaml:"outline"`
}

func defaultBasemapStyle() BasemapStyle {
	grey := canopy.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}
	dark := canopy.Color{R: 0.4, G: 0.4, B: 0.4, A: 1}
	return BasemapStyle{
		Bounds:    [4]float64{-180, -90, 180, 90},
		Graticule: 30,
		Grid:      canopy.Style{Stroke: &grey, StrokeWidth: 1},
		Outline:   canopy.Style{Stroke: &dark, StrokeWidth: 1},
	}
}

// basemap projects longitude and latitude equirectangularly onto its
// layout. Its data is an optional table of region outlines with columns
// region, lon, lat, one row per vertex.
type basemap struct {
	base     *canopy.Layer
	data     *canopy.Table
	style    BasemapStyle
	received canopy.ScaleSet

	grid    []canopy.DrawGroup
	regions []canopy.DrawGroup
}

func newBasemap(base *canopy.Layer) (canopy.LayerImpl, error) {
	return &basemap{base: base, style: defaultBasemapStyle()}, nil
}

func (b *basemap) SetData(data any) error {
	t, err := setTable(b.data, data)
	b.data = t
	return err
}

func (b *basemap) SetScale(s canopy.ScaleSet) error {
	if !s.Empty() {
		b.received = s
	}
	return nil
}

func (b *basemap) SetStyle(style any) error {
	return decodeStyle(&b.style, style)
}

// Scales maps longitude west to east across the layout and latitude north
// to south down it.
func (b *basemap) Scales() canopy.ScaleSet {
	l := b.base.Options().Layout
	w, s, e, n := b.style.Bounds[0], b.style.Bounds[1], b.style.Bounds[2], b.style.Bounds[3]
	return canopy.ScaleSet{
		X: canopy.Linear([2]float64{w, e}, [2]float64{l.X, l.X + l.Width}, canopy.Nice{}),
		Y: canopy.Linear([2]float64{s, n}, [2]float64{l.Y + l.Height, l.Y}, canopy.Nice{}),
	}
}

// Project maps a coordinate to canvas space.
func (b *basemap) Project(lon, lat float64) (x, y float64) {
	s := b.Scales()
	return s.X.(canopy.LinearScale).Map(lon), s.Y.(canopy.LinearScale).Map(lat)
}

func (b *basemap) Update() error {
	b.grid, b.regions = nil, nil
	own := b.Scales()
	x, ok := b.received.X.(canopy.LinearScale)
	if !ok {
		x = own.X.(canopy.LinearScale)
	}
	y, ok := b.received.Y.(canopy.LinearScale)
	if !ok {
		y = own.Y.(canopy.LinearScale)
	}
	o := origin(b.base)
	pt := func(lon, lat float64) canopy.Vec2 {
		return canopy.Vec2{X: x.Map(lon) + o.X, Y: y.Map(lat) + o.Y}
	}

	var stroke canopy.Color
	if b.style.Grid.Stroke != nil {
		stroke = *b.style.Grid.Stroke
	}
	w, s, e, n := b.style.Bounds[0], b.style.Bounds[1], b.style.Bounds[2], b.style.Bounds[3]
	if step := b.style.Graticule; step > 0 {
		meridians := canopy.DrawGroup{Key: "meridians"}
		for lon := math.Ceil(w/step) * step; lon <= e; lon += step {
			meridians.Data = append(meridians.Data, canopy.Geometry{
				Key: label(lon), Points: []canopy.Vec2{pt(lon, n), pt(lon, s)}, Fill: stroke,
			})
		}
		parallels := canopy.DrawGroup{Key: "parallels"}
		for lat := math.Ceil(s/step) * step; lat <= n; lat += step {
			parallels.Data = append(parallels.Data, canopy.Geometry{
				Key: label(lat), Points: []canopy.Vec2{pt(w, lat), pt(e, lat)}, Fill: stroke,
			})
		}
		b.grid = []canopy.DrawGroup{meridians, parallels}
	}

	if b.data.Len() == 0 {
		return nil
	}
	ri, err := column(b.data, "region")
	if err != nil {
		return err
	}
	loni, err := column(b.data, "lon")
	if err != nil {
		return err
	}
	lati, err := column(b.data, "lat")
	if err != nil {
		return err
	}
	lons, err := b.data.Floats(loni)
	if err != nil {
		return canopy.WrapError(canopy.ErrCodeConfiguration, err, "basemap lon")
	}
	lats, err := b.data.Floats(lati)
	if err != nil {
		return canopy.WrapError(canopy.ErrCodeConfiguration, err, "basemap lat")
	}
	names := b.data.Strings(ri)
	shapes := make(map[string]*canopy.Geometry)
	group := canopy.DrawGroup{Key: "regions"}
	for row, name := range names {
		g, ok := shapes[name]
		if !ok {
			group.Data = append(group.Data, canopy.Geometry{Key: name})
			g = &group.Data[len(group.Data)-1]
			shapes[name] = g
		}
		g.Points = append(g.Points, pt(lons[row], lats[row]))
	}
	// Close each outline.
	for i := range group.Data {
		if p := group.Data[i].Points; len(p) > 2 {
			group.Data[i].Points = append(p, p[0])
		}
	}
	b.regions = []canopy.DrawGroup{group}
	return nil
}

func (b *basemap) Draw() error {
	b.base.DrawSublayer("graticule", canopy.ShapeLine, b.grid, b.style.Grid)
	b.base.DrawSublayer("region", canopy.ShapeLine, b.regions, b.style.Outline)
	return nil
}

func (b *basemap) Destroy() error { return nil }
