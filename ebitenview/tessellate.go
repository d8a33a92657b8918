package ebitenview

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

// arcSegments is the number of triangles per full turn of an arc or circle.
const arcSegments = 96

// mesh accumulates triangles for one DrawTriangles32 call.
type mesh struct {
	verts []ebiten.Vertex
	inds  []uint32
}

func (m *mesh) reset() {
	m.verts = m.verts[:0]
	m.inds = m.inds[:0]
}

// vertex appends a premultiplied vertex at local (lx, ly) under transform t.
func (m *mesh) vertex(t [6]float64, lx, ly float64, c canopy.Color) uint32 {
	x, y := canopy.TransformPoint(t, lx, ly)
	a := float32(c.A)
	m.verts = append(m.verts, ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(c.R) * a,
		ColorG: float32(c.G) * a,
		ColorB: float32(c.B) * a,
		ColorA: a,
	})
	return uint32(len(m.verts) - 1)
}

func (m *mesh) quad(t [6]float64, p [4]canopy.Vec2, c canopy.Color) {
	i0 := m.vertex(t, p[0].X, p[0].Y, c)
	i1 := m.vertex(t, p[1].X, p[1].Y, c)
	i2 := m.vertex(t, p[2].X, p[2].Y, c)
	i3 := m.vertex(t, p[3].X, p[3].Y, c)
	// Two triangles: 0-1-2, 0-2-3
	m.inds = append(m.inds, i0, i1, i2, i0, i2, i3)
}

// add tessellates one render command. Text commands are skipped; the
// presenter prints them separately.
func (m *mesh) add(cmd canopy.RenderCommand) {
	t := cmd.Transform
	switch cmd.Shape {
	case canopy.ShapeRect:
		hw, hh := cmd.Width/2, cmd.Height/2
		m.quad(t, [4]canopy.Vec2{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}, cmd.Fill)
	case canopy.ShapeArc:
		m.sector(t, cmd.InnerRadius, cmd.OuterRadius, cmd.StartAngle, cmd.EndAngle, cmd.Fill)
	case canopy.ShapeCircle:
		m.sector(t, 0, cmd.OuterRadius, 0, 2*math.Pi, cmd.Fill)
	case canopy.ShapeLine:
		w := math.Max(cmd.StrokeWidth, 1)
		c := cmd.Stroke
		if c.A == 0 {
			c = cmd.Fill
		}
		for i := 1; i < len(cmd.Points); i++ {
			m.segment(t, cmd.Points[i-1], cmd.Points[i], w, c)
		}
	}
}

// sector tessellates an annular sector. Angles run clockwise from twelve
// o'clock with Y down.
func (m *mesh) sector(t [6]float64, inner, outer, start, end float64, c canopy.Color) {
	sweep := end - start
	if sweep <= 0 || outer <= 0 {
		return
	}
	n := max(1, int(math.Ceil(arcSegments*sweep/(2*math.Pi))))
	point := func(r, a float64) canopy.Vec2 {
		sin, cos := math.Sincos(a)
		return canopy.Vec2{X: r * sin, Y: -r * cos}
	}
	for i := 0; i < n; i++ {
		a0 := start + sweep*float64(i)/float64(n)
		a1 := start + sweep*float64(i+1)/float64(n)
		m.quad(t, [4]canopy.Vec2{point(inner, a0), point(outer, a0), point(outer, a1), point(inner, a1)}, c)
	}
}

func (m *mesh) segment(t [6]float64, a, b canopy.Vec2, w float64, c canopy.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*w/2, dx/l*w/2
	m.quad(t, [4]canopy.Vec2{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, c)
}
