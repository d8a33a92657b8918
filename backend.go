package canopy

import "github.com/charmbracelet/log"

// Group is a backend render group: a node in the scene graph or a <g>
// element in the vector backend.
type Group interface {
	GroupName() string
}

// Geometry is one drawable datum. A single flat struct covers every shape;
// each draw routine reads the fields its shape needs.
type Geometry struct {
	// Key identifies the datum within its group (for example a category).
	Key string

	// Rect and text anchor.
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Arc and circle, centred on (X, Y). Angles are radians clockwise from
	// twelve o'clock.
	InnerRadius float64
	OuterRadius float64
	StartAngle  float64
	EndAngle    float64

	// Line vertices.
	Points []Vec2

	Text  string
	Value float64
	Fill  Color
}

// Transition is how long a backend takes to move existing elements to
// new geometry, in milliseconds.
type Transition struct {
	Duration float64
	Delay    float64
	Easing   string
}

// Style carries per-sublayer style overrides handed to draw routines.
type Style struct {
	Fill        *Color  `toml:"fill" yaml:"fill,omitempty"`
	Stroke      *Color  `toml:"stroke" yaml:"stroke,omitempty"`
	StrokeWidth float64 `toml:"strokeWidth" yaml:"strokeWidth,omitempty"`
	Opacity     float64 `toml:"opacity" yaml:"opacity,omitempty"`
	FontSize    float64 `toml:"fontSize" yaml:"fontSize,omitempty"`
	Hidden      bool    `toml:"hidden" yaml:"hidden,omitempty"`
}

// Alpha returns the opacity, treating zero as fully opaque.
func (s Style) Alpha() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

// DrawDescriptor is what Render Dispatch hands a backend for one data
// group of one sublayer.
type DrawDescriptor struct {
	Data       []Geometry
	Transition Transition
	Style      Style
}

// DrawGroup is one logical data group of a sublayer as produced by a
// layer's Update. Key is the group's leading dimension value.
type DrawGroup struct {
	Key  string
	Data []Geometry
}

// Interaction is a pointer event a backend reports on an element of a
// bound group.
type Interaction struct {
	Type  EventType
	Group Group // child group of the bound group holding the element
	Index int   // datum index within that child group
	X, Y  float64
}

// InteractionFunc receives interactions from a bound group.
type InteractionFunc func(Interaction)

// Backend is the drawing contract Render Dispatch depends on. The core
// never rasterises anything itself.
type Backend interface {
	// Attach hands the backend the chart's scheduler, for transitions.
	Attach(sched *Scheduler, logger *log.Logger)
	// Root returns the chart's root group.
	Root() Group
	// NewGroup appends an empty child group to parent.
	NewGroup(parent Group, name string) Group
	// RemoveGroup detaches and frees g and its descendants.
	RemoveGroup(g Group)
	// Draw replaces g's elements with desc.Data rendered as shape,
	// reusing existing elements so they transition to their new geometry.
	Draw(g Group, shape Shape, desc DrawDescriptor)
	// Elements returns the animatable elements under g, depth first.
	Elements(g Group) []Animatable
	// Bind replaces the interaction handler of g.
	Bind(g Group, fn InteractionFunc)
}
