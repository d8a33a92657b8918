package svg

import (
	"math"

	"github.com/phanxgames/canopy"
)

// pointerEvent is one queued synthetic pointer sample.
type pointerEvent struct {
	x, y    float64
	pressed bool
}

// ElementAt returns the topmost visible shape containing canvas point
// (x, y), or nil. Text never hits. Group translations are honoured; element
// scale is applied about the element origin and rotation is ignored.
func (d *Document) ElementAt(x, y float64) *Element {
	var hit *Element
	var walk func(e *Element, ox, oy float64)
	walk = func(e *Element, ox, oy float64) {
		if e.Hidden || e.removed {
			return
		}
		ox, oy = ox+e.X, oy+e.Y
		if !e.Group {
			if contains(e, x-ox, y-oy) {
				hit = e
			}
			return
		}
		for _, c := range e.children {
			walk(c, ox, oy)
		}
	}
	walk(d.root, 0, 0)
	return hit
}

func contains(e *Element, lx, ly float64) bool {
	if e.ScaleX == 0 || e.ScaleY == 0 {
		return false
	}
	lx, ly = lx/e.ScaleX, ly/e.ScaleY
	switch e.Shape {
	case canopy.ShapeRect:
		return math.Abs(lx) <= e.Width/2 && math.Abs(ly) <= e.Height/2
	case canopy.ShapeCircle:
		return math.Hypot(lx, ly) <= e.OuterRadius
	case canopy.ShapeArc:
		r := math.Hypot(lx, ly)
		if r < e.InnerRadius || r > e.OuterRadius {
			return false
		}
		// Clockwise from twelve o'clock with y down.
		a := math.Atan2(lx, -ly)
		if a < 0 {
			a += 2 * math.Pi
		}
		start, end := e.StartAngle, e.EndAngle
		if end-start >= 2*math.Pi {
			return true
		}
		start = math.Mod(start, 2*math.Pi)
		if start < 0 {
			start += 2 * math.Pi
		}
		end = start + (e.EndAngle - e.StartAngle)
		return (a >= start && a <= end) || (a+2*math.Pi >= start && a+2*math.Pi <= end)
	}
	return false
}

// InjectMove queues a pointer move to (x, y). Moving onto an element
// dispatches pointer enter on it and pointer leave on the previous one.
func (d *Document) InjectMove(x, y float64) {
	d.pending = append(d.pending, pointerEvent{x: x, y: y})
}

// InjectClick queues a press and a release at (x, y). A click is
// dispatched when both land on the same element.
func (d *Document) InjectClick(x, y float64) {
	d.pending = append(d.pending, pointerEvent{x: x, y: y, pressed: true}, pointerEvent{x: x, y: y})
}

// PendingInput reports how many injected events are still queued.
func (d *Document) PendingInput() int { return len(d.pending) }

// Update consumes one injected event. Documents have no transforms to
// refresh, so this is all a frame does.
func (d *Document) Update() {
	if len(d.pending) == 0 {
		return
	}
	ev := d.pending[0]
	d.pending = d.pending[1:]

	hit := d.ElementAt(ev.x, ev.y)
	if hit != d.hover {
		if d.hover != nil {
			d.Dispatch(canopy.EventPointerLeave, d.hover, ev.x, ev.y)
		}
		d.hover = hit
		if hit != nil {
			d.Dispatch(canopy.EventPointerEnter, hit, ev.x, ev.y)
		}
	}
	switch {
	case ev.pressed:
		d.pressed = hit
		d.Dispatch(canopy.EventPointerDown, hit, ev.x, ev.y)
	case d.pressed != nil:
		d.Dispatch(canopy.EventPointerUp, hit, ev.x, ev.y)
		if hit == d.pressed {
			d.Dispatch(canopy.EventClick, hit, ev.x, ev.y)
		}
		d.pressed = nil
	default:
		d.Dispatch(canopy.EventPointerMove, hit, ev.x, ev.y)
	}
}
