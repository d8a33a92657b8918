package svg

import "github.com/phanxgames/canopy"

// Element is one node of the document tree: a group or a drawn shape.
// Shape geometry uses the same conventions as the scene backend: rects
// are centred on (X, Y), arcs and circles are centred on (X, Y) with
// angles clockwise from twelve o'clock, lines are relative to (X, Y).
type Element struct {
	Name  string
	Group bool
	Shape canopy.Shape

	parent   *Element
	children []*Element

	X, Y                     float64
	Width, Height            float64
	InnerRadius, OuterRadius float64
	StartAngle, EndAngle     float64
	Points                   []canopy.Vec2
	Text                     string

	Alpha          float64
	ScaleX, ScaleY float64
	Rotation       float64

	Fill        canopy.Color
	Stroke      canopy.Color
	StrokeWidth float64
	FontSize    float64
	Hidden      bool

	// Index is the datum index the element renders within its group.
	Index int
	Datum canopy.Geometry

	transition *canopy.TweenGroup
	version    uint64
	removed    bool
}

func newElement(name string, group bool, shape canopy.Shape) *Element {
	return &Element{Name: name, Group: group, Shape: shape, Alpha: 1, ScaleX: 1, ScaleY: 1}
}

// GroupName implements canopy.Group.
func (e *Element) GroupName() string { return e.Name }

// Parent returns the enclosing group, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child list. The returned slice MUST NOT be mutated.
func (e *Element) Children() []*Element { return e.children }

// Version counts MarkDirty calls; serialisation is always from current
// values, so it only serves callers polling for change.
func (e *Element) Version() uint64 { return e.version }

// Property implements canopy.Animatable.
func (e *Element) Property(name string) *float64 {
	switch name {
	case "alpha":
		return &e.Alpha
	case "x":
		return &e.X
	case "y":
		return &e.Y
	case "scaleX":
		return &e.ScaleX
	case "scaleY":
		return &e.ScaleY
	case "rotation":
		return &e.Rotation
	case "width":
		return &e.Width
	case "height":
		return &e.Height
	case "innerRadius":
		return &e.InnerRadius
	case "outerRadius":
		return &e.OuterRadius
	case "startAngle":
		return &e.StartAngle
	case "endAngle":
		return &e.EndAngle
	}
	return nil
}

// MarkDirty implements canopy.Animatable.
func (e *Element) MarkDirty() { e.version++ }

func (e *Element) append(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
}

// remove detaches e from its parent and stops its transitions.
func (e *Element) remove() {
	if p := e.parent; p != nil {
		for i, c := range p.children {
			if c == e {
				copy(p.children[i:], p.children[i+1:])
				p.children[len(p.children)-1] = nil
				p.children = p.children[:len(p.children)-1]
				break
			}
		}
	}
	e.parent = nil
	e.markRemoved()
}

func (e *Element) markRemoved() {
	e.removed = true
	for _, c := range e.children {
		c.markRemoved()
	}
}

// IsDisposed reports whether the element has been removed from its
// document.
func (e *Element) IsDisposed() bool { return e.removed }

func (e *Element) isAncestorOf(n *Element) bool {
	for p := n; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}
