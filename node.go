package canopy

import "math"

// NodeType identifies what a scene node draws.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // groups children, draws nothing
	NodeTypeRect                      // Width x Height rectangle centred on the origin
	NodeTypeArc                       // annular sector around the origin
	NodeTypeCircle                    // circle of OuterRadius around the origin
	NodeTypeLine                      // polyline through Points
	NodeTypeText                      // Text anchored at the origin
)

// nodeTypeFor maps a draw shape to the node type that renders it.
func nodeTypeFor(s Shape) NodeType {
	switch s {
	case ShapeRect:
		return NodeTypeRect
	case ShapeArc:
		return NodeTypeArc
	case ShapeCircle:
		return NodeTypeCircle
	case ShapeLine:
		return NodeTypeLine
	case ShapeText:
		return NodeTypeText
	}
	return NodeTypeContainer
}

// PointerContext carries pointer event data to scene-level and per-node
// callbacks.
type PointerContext struct {
	Node    *Node
	GlobalX float64
	GlobalY float64
	LocalX  float64
	LocalY  float64
	Button  MouseButton
}

// nodeIDCounter is a plain counter (no atomic; the scene is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the scene-graph element. A single flat struct is used for all node
// types to avoid interface dispatch on the hot path. Geometry fields are in
// local space; the transform places them.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Computed during traversal
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	// Ordering
	ZIndex      int
	RenderLayer uint8

	// Geometry
	Width, Height            float64
	InnerRadius, OuterRadius float64
	StartAngle, EndAngle     float64
	Points                   []Vec2
	Text                     string
	FontSize                 float64

	// Paint
	Fill        Color
	Stroke      Color
	StrokeWidth float64

	// Index is the datum index the node renders within its group.
	Index    int
	UserData any

	// Per-node callbacks (nil by default)
	OnPointerDown  func(PointerContext)
	OnPointerUp    func(PointerContext)
	OnClick        func(PointerContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)

	transition *TweenGroup

	disposed       bool
	childrenSorted bool
	sortedChildren []*Node
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Fill = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewShape creates an interactable node of type t.
func NewShape(name string, t NodeType) *Node {
	n := &Node{Name: name, Type: t, Interactable: true}
	nodeDefaults(n)
	return n
}

// GroupName implements Group.
func (n *Node) GroupName() string { return n.Name }

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("canopy: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("canopy: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("canopy: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.Points = nil
	n.UserData = nil
	n.transition = nil
	n.OnPointerDown = nil
	n.OnPointerUp = nil
	n.OnClick = nil
	n.OnPointerEnter = nil
	n.OnPointerLeave = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Animatable ---

// Property exposes the numeric node fields animation effects drive.
func (n *Node) Property(name string) *float64 {
	switch name {
	case "alpha":
		return &n.Alpha
	case "x":
		return &n.X
	case "y":
		return &n.Y
	case "scaleX":
		return &n.ScaleX
	case "scaleY":
		return &n.ScaleY
	case "rotation":
		return &n.Rotation
	case "width":
		return &n.Width
	case "height":
		return &n.Height
	case "innerRadius":
		return &n.InnerRadius
	case "outerRadius":
		return &n.OuterRadius
	case "startAngle":
		return &n.StartAngle
	case "endAngle":
		return &n.EndAngle
	}
	return nil
}

// --- Hit testing ---

// containsLocal reports whether the local point lies on the node's shape.
func (n *Node) containsLocal(lx, ly float64) bool {
	switch n.Type {
	case NodeTypeRect:
		return math.Abs(lx) <= n.Width/2 && math.Abs(ly) <= n.Height/2
	case NodeTypeCircle:
		return lx*lx+ly*ly <= n.OuterRadius*n.OuterRadius
	case NodeTypeArc:
		r := math.Hypot(lx, ly)
		if r < n.InnerRadius || r > n.OuterRadius {
			return false
		}
		// Angles run clockwise from twelve o'clock, Y down.
		a := math.Atan2(lx, -ly)
		if a < 0 {
			a += 2 * math.Pi
		}
		return angleWithin(a, n.StartAngle, n.EndAngle)
	case NodeTypeLine:
		half := math.Max(n.StrokeWidth, 4) / 2
		for i := 1; i < len(n.Points); i++ {
			if segmentDistance(lx, ly, n.Points[i-1], n.Points[i]) <= half {
				return true
			}
		}
	}
	return false
}

func angleWithin(a, start, end float64) bool {
	const full = 2 * math.Pi
	if end-start >= full {
		return true
	}
	s := math.Mod(start, full)
	if s < 0 {
		s += full
	}
	d := math.Mod(a-s, full)
	if d < 0 {
		d += full
	}
	return d <= end-start
}

func segmentDistance(px, py float64, a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-a.X, py-a.Y)
	}
	t := ((px-a.X)*dx + (py-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(a.X+t*dx), py-(a.Y+t*dy))
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
