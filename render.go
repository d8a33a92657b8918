package canopy

import "time"

// RenderCommand is a single draw instruction emitted during scene traversal.
// Geometry is in the node's local space; Transform places it in the canvas.
type RenderCommand struct {
	Shape       Shape
	Transform   [6]float64
	Fill        Color // alpha already multiplied by the node's world alpha
	Stroke      Color
	StrokeWidth float64
	RenderLayer uint8
	treeOrder   int // assigned during traversal for stable sort

	Width, Height            float64
	InnerRadius, OuterRadius float64
	StartAngle, EndAngle     float64
	Points                   []Vec2
	Text                     string
	FontSize                 float64

	// Node is the node the command was emitted for.
	Node *Node
}

// Commands traverses the scene, refreshing world transforms, and returns
// the draw commands in paint order. The slice is reused by the next call.
func (s *Scene) Commands() []RenderCommand {
	s.commands = s.commands[:0]

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder, &stats.nodeCount)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		s.debugLog(stats)
	}
	return s.commands
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible shape nodes.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, treeOrder, count *int) {
	if !n.Visible {
		return
	}
	*count++

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, localTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	if n.Type != NodeTypeContainer && n.worldAlpha > 0 {
		*treeOrder++
		fill := n.Fill
		fill.A *= n.worldAlpha
		stroke := n.Stroke
		stroke.A *= n.worldAlpha
		s.commands = append(s.commands, RenderCommand{
			Shape:       shapeFor(n.Type),
			Transform:   n.worldTransform,
			Fill:        fill,
			Stroke:      stroke,
			StrokeWidth: n.StrokeWidth,
			RenderLayer: n.RenderLayer,
			treeOrder:   *treeOrder,
			Width:       n.Width,
			Height:      n.Height,
			InnerRadius: n.InnerRadius,
			OuterRadius: n.OuterRadius,
			StartAngle:  n.StartAngle,
			EndAngle:    n.EndAngle,
			Points:      n.Points,
			Text:        n.Text,
			FontSize:    n.FontSize,
			Node:        n,
		})
	}

	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, treeOrder, count)
	}
}

func shapeFor(t NodeType) Shape {
	switch t {
	case NodeTypeArc:
		return ShapeArc
	case NodeTypeCircle:
		return ShapeCircle
	case NodeTypeLine:
		return ShapeLine
	case NodeTypeText:
		return ShapeText
	}
	return ShapeRect
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
func (s *Scene) rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	// Stable insertion sort by ZIndex.
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same
// position as b. Using <= for treeOrder keeps the sort stable.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in place using s.sortBuf as scratch space.
// Bottom-up merge sort: no allocations once the sort buffer has grown.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a, b := s.commands, s.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
