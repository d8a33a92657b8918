package canopy

import (
	"github.com/charmbracelet/log"
)

const defaultCommandCap = 256

// Scene is the retained-mode backend charts draw into by default. It owns
// the node tree, pointer state and the render command buffers. Scene never
// touches a GPU; ebitenview and svg turn its commands into pixels or
// markup.
type Scene struct {
	root   *Node
	width  float64
	height float64
	debug  bool
	log    *log.Logger
	sched  *Scheduler

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand

	// Input state
	handlers    handlerRegistry
	pointer     pointerState
	hitBuf      []*Node
	injectQueue []syntheticPointerEvent
	bound       map[*Node]InteractionFunc
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		root:     root,
		log:      defaultLogger,
		commands: make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:  make([]RenderCommand, 0, defaultCommandCap),
		bound:    make(map[*Node]InteractionFunc),
	}
}

// RootNode returns the scene's root container node.
func (s *Scene) RootNode() *Node {
	return s.root
}

// SetSize sets the logical canvas size used by snapshots and viewers.
func (s *Scene) SetSize(w, h float64) {
	s.width, s.height = w, h
}

// Size returns the logical canvas size.
func (s *Scene) Size() (w, h float64) {
	return s.width, s.height
}

// Update refreshes world transforms and consumes at most one injected
// pointer event. Call it once per frame, after the chart's scheduler has
// advanced.
func (s *Scene) Update() {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.processInjectedInput()
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// --- Backend ---

// Attach implements Backend.
func (s *Scene) Attach(sched *Scheduler, logger *log.Logger) {
	s.sched = sched
	s.log = loggerOr(logger).With("backend", "scene")
}

// Root implements Backend.
func (s *Scene) Root() Group { return s.root }

// NewGroup implements Backend.
func (s *Scene) NewGroup(parent Group, name string) Group {
	g := NewContainer(name)
	g.Interactable = true
	s.node(parent).AddChild(g)
	return g
}

// RemoveGroup implements Backend.
func (s *Scene) RemoveGroup(g Group) {
	n := s.node(g)
	s.unbind(n)
	n.Dispose()
}

func (s *Scene) unbind(n *Node) {
	delete(s.bound, n)
	if s.pointer.hover != nil && isAncestor(n, s.pointer.hover) {
		s.pointer.hover = nil
	}
	if s.pointer.hit != nil && isAncestor(n, s.pointer.hit) {
		s.pointer.hit = nil
	}
	for _, c := range n.children {
		s.unbind(c)
	}
}

// Draw implements Backend. Existing children are reused in order; with a
// transition they tween from their current geometry to the new one.
// Children of the wrong type are replaced and surplus children removed.
func (s *Scene) Draw(g Group, shape Shape, desc DrawDescriptor) {
	parent := s.node(g)
	t := nodeTypeFor(shape)
	keep := min(len(parent.children), len(desc.Data))
	for i := 0; i < keep; i++ {
		if parent.children[i].Type != t {
			keep = i
			break
		}
	}
	for len(parent.children) > keep {
		last := parent.children[len(parent.children)-1]
		s.unbind(last)
		last.Dispose()
	}

	animate := desc.Transition.Duration > 0 && s.sched != nil
	for i, d := range desc.Data {
		var n *Node
		fresh := i >= len(parent.children)
		if fresh {
			n = NewShape(parent.Name+"-"+d.Key, t)
			parent.AddChild(n)
		} else {
			n = parent.children[i]
		}
		if n.transition != nil {
			n.transition.Stop(s.sched)
			n.transition = nil
		}
		n.Index = i
		n.UserData = d
		paint(n, d, desc.Style)
		if t == NodeTypeArc {
			n.SetPosition(d.X, d.Y)
		}

		target := placement(t, d)
		if animate && !fresh {
			n.transition = NewTweenGroup(n, target, desc.Transition)
			n.transition.Start(s.sched)
			continue
		}
		for name, v := range target {
			*n.Property(name) = v
		}
		n.MarkDirty()
	}
}

// Elements implements Backend.
func (s *Scene) Elements(g Group) []Animatable {
	var out []Animatable
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			if c.Type != NodeTypeContainer {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(s.node(g))
	return out
}

// Bind implements Backend. A nil fn unbinds g.
func (s *Scene) Bind(g Group, fn InteractionFunc) {
	n := s.node(g)
	if fn == nil {
		delete(s.bound, n)
		return
	}
	s.bound[n] = fn
}

func (s *Scene) node(g Group) *Node {
	n, ok := g.(*Node)
	if !ok {
		panic("canopy: scene group is not a *Node")
	}
	return n
}

// paint copies the non-geometric fields of d and style onto n.
func paint(n *Node, d Geometry, style Style) {
	n.Fill = d.Fill
	if style.Fill != nil {
		n.Fill = *style.Fill
	}
	n.Stroke = Color{}
	if style.Stroke != nil {
		n.Stroke = *style.Stroke
	}
	n.StrokeWidth = style.StrokeWidth
	n.Alpha = style.Alpha()
	n.Visible = !style.Hidden
	n.Text = d.Text
	n.FontSize = style.FontSize
	if n.FontSize == 0 {
		n.FontSize = 12
	}
	if n.Type == NodeTypeLine {
		o := firstPoint(d)
		n.Points = n.Points[:0]
		for _, p := range d.Points {
			n.Points = append(n.Points, Vec2{X: p.X - o.X, Y: p.Y - o.Y})
		}
	}
}

// placement returns the animatable fields a node of type t takes to show d.
// Rects are centred on their node origin so zoom effects scale about the
// middle; lines are stored relative to their first vertex.
func placement(t NodeType, d Geometry) map[string]float64 {
	switch t {
	case NodeTypeRect:
		return map[string]float64{
			"x": d.X + d.Width/2, "y": d.Y + d.Height/2,
			"width": d.Width, "height": d.Height,
		}
	case NodeTypeArc:
		return map[string]float64{
			"innerRadius": d.InnerRadius, "outerRadius": d.OuterRadius,
			"startAngle": d.StartAngle, "endAngle": d.EndAngle,
		}
	case NodeTypeCircle:
		return map[string]float64{"x": d.X, "y": d.Y, "outerRadius": d.OuterRadius}
	case NodeTypeLine:
		p := firstPoint(d)
		return map[string]float64{"x": p.X, "y": p.Y}
	}
	return map[string]float64{"x": d.X, "y": d.Y}
}

func firstPoint(d Geometry) Vec2 {
	if len(d.Points) == 0 {
		return Vec2{}
	}
	return d.Points[0]
}
