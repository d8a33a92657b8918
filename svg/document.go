// Package svg is the vector backend: charts draw into an element tree that
// serialises to SVG markup. Elements are animatable, so enter and loop
// animations and redraw transitions run exactly as on the scene backend;
// Encode captures whatever state the tree is in.
package svg

import (
	"github.com/charmbracelet/log"

	"github.com/phanxgames/canopy"
)

// Document is a canopy.Backend holding an SVG element tree.
type Document struct {
	root       *Element
	width      float64
	height     float64
	background *canopy.Color
	sched      *canopy.Scheduler
	log        *log.Logger
	bound      map[*Element]canopy.InteractionFunc

	pending []pointerEvent
	hover   *Element
	pressed *Element
}

// New creates an empty document of the given size.
func New(width, height float64) *Document {
	return &Document{
		root:   newElement("root", true, 0),
		width:  width,
		height: height,
		bound:  make(map[*Element]canopy.InteractionFunc),
	}
}

// SetBackground fills the canvas with c before any element.
func (d *Document) SetBackground(c canopy.Color) { d.background = &c }

// Size returns the canvas size.
func (d *Document) Size() (w, h float64) { return d.width, d.height }

// RootElement returns the root group.
func (d *Document) RootElement() *Element { return d.root }

// Attach implements canopy.Backend.
func (d *Document) Attach(sched *canopy.Scheduler, logger *log.Logger) {
	d.sched = sched
	if logger == nil {
		logger = log.Default()
	}
	d.log = logger.With("backend", "svg")
}

// Root implements canopy.Backend.
func (d *Document) Root() canopy.Group { return d.root }

// NewGroup implements canopy.Backend.
func (d *Document) NewGroup(parent canopy.Group, name string) canopy.Group {
	g := newElement(name, true, 0)
	element(parent).append(g)
	return g
}

// RemoveGroup implements canopy.Backend.
func (d *Document) RemoveGroup(g canopy.Group) {
	e := element(g)
	d.unbind(e)
	e.remove()
}

func (d *Document) unbind(e *Element) {
	delete(d.bound, e)
	if d.hover == e {
		d.hover = nil
	}
	if d.pressed == e {
		d.pressed = nil
	}
	for _, c := range e.children {
		d.unbind(c)
	}
}

// Draw implements canopy.Backend. Elements are reused in order and tween
// to their new geometry when desc carries a transition.
func (d *Document) Draw(g canopy.Group, shape canopy.Shape, desc canopy.DrawDescriptor) {
	parent := element(g)
	keep := min(len(parent.children), len(desc.Data))
	for i := 0; i < keep; i++ {
		if parent.children[i].Shape != shape {
			keep = i
			break
		}
	}
	for len(parent.children) > keep {
		last := parent.children[len(parent.children)-1]
		d.unbind(last)
		last.remove()
	}

	animate := desc.Transition.Duration > 0 && d.sched != nil
	for i, datum := range desc.Data {
		fresh := i >= len(parent.children)
		var e *Element
		if fresh {
			e = newElement(parent.Name+"-"+datum.Key, false, shape)
			parent.append(e)
		} else {
			e = parent.children[i]
		}
		if e.transition != nil {
			e.transition.Stop(d.sched)
			e.transition = nil
		}
		e.Index = i
		e.Datum = datum
		style(e, datum, desc.Style)

		target := placement(shape, datum)
		if shape == canopy.ShapeArc {
			e.X, e.Y = datum.X, datum.Y
		}
		if animate && !fresh {
			e.transition = canopy.NewTweenGroup(e, target, desc.Transition)
			e.transition.Start(d.sched)
			continue
		}
		for name, v := range target {
			*e.Property(name) = v
		}
		e.MarkDirty()
	}
}

// Elements implements canopy.Backend.
func (d *Document) Elements(g canopy.Group) []canopy.Animatable {
	var out []canopy.Animatable
	var walk func(e *Element)
	walk = func(e *Element) {
		for _, c := range e.children {
			if !c.Group {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(element(g))
	return out
}

// Bind implements canopy.Backend. A nil fn unbinds g.
func (d *Document) Bind(g canopy.Group, fn canopy.InteractionFunc) {
	e := element(g)
	if fn == nil {
		delete(d.bound, e)
		return
	}
	d.bound[e] = fn
}

// Dispatch delivers a DOM-style event on e to the nearest bound ancestor.
// It reports whether a handler received it.
func (d *Document) Dispatch(ev canopy.EventType, e *Element, x, y float64) bool {
	if e == nil || e.removed {
		return false
	}
	for g := e.parent; g != nil; g = g.parent {
		if fn, ok := d.bound[g]; ok {
			fn(canopy.Interaction{Type: ev, Group: e.parent, Index: e.Index, X: x, Y: y})
			return true
		}
	}
	return false
}

// Find returns the first element named name, depth first.
func (d *Document) Find(name string) *Element {
	var found *Element
	var walk func(e *Element)
	walk = func(e *Element) {
		for _, c := range e.children {
			if found != nil {
				return
			}
			if c.Name == name {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(d.root)
	return found
}

func element(g canopy.Group) *Element {
	e, ok := g.(*Element)
	if !ok {
		panic("svg: group is not an *Element")
	}
	return e
}

func style(e *Element, datum canopy.Geometry, s canopy.Style) {
	e.Fill = datum.Fill
	if s.Fill != nil {
		e.Fill = *s.Fill
	}
	e.Stroke = canopy.Color{}
	if s.Stroke != nil {
		e.Stroke = *s.Stroke
	}
	e.StrokeWidth = s.StrokeWidth
	e.Alpha = s.Alpha()
	e.Hidden = s.Hidden
	e.Text = datum.Text
	e.FontSize = s.FontSize
	if e.FontSize == 0 {
		e.FontSize = 12
	}
	if e.Shape == canopy.ShapeLine {
		var o canopy.Vec2
		if len(datum.Points) > 0 {
			o = datum.Points[0]
		}
		e.Points = e.Points[:0]
		for _, p := range datum.Points {
			e.Points = append(e.Points, canopy.Vec2{X: p.X - o.X, Y: p.Y - o.Y})
		}
	}
}

func placement(shape canopy.Shape, g canopy.Geometry) map[string]float64 {
	switch shape {
	case canopy.ShapeRect:
		return map[string]float64{"x": g.X + g.Width/2, "y": g.Y + g.Height/2, "width": g.Width, "height": g.Height}
	case canopy.ShapeArc:
		return map[string]float64{
			"innerRadius": g.InnerRadius, "outerRadius": g.OuterRadius,
			"startAngle": g.StartAngle, "endAngle": g.EndAngle,
		}
	case canopy.ShapeCircle:
		return map[string]float64{"x": g.X, "y": g.Y, "outerRadius": g.OuterRadius}
	case canopy.ShapeLine:
		if len(g.Points) > 0 {
			return map[string]float64{"x": g.Points[0].X, "y": g.Points[0].Y}
		}
	}
	return map[string]float64{"x": g.X, "y": g.Y}
}
