package canopy

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// localTransform computes the affine matrix [a, b, c, d, tx, ty] placing a
// node in its parent: Translate(-Pivot), Scale, Rotate, Translate(X, Y).
func localTransform(n *Node) [6]float64 {
	sin, cos := math.Sincos(n.Rotation)
	a, d := n.ScaleX, n.ScaleY
	tx, ty := -n.PivotX*a, -n.PivotY*d
	return [6]float64{
		cos * a, sin * a,
		-sin * d, cos * d,
		cos*tx - sin*ty + n.X,
		sin*tx + cos*ty + n.Y,
	}
}

// multiplyAffine returns parent * child.
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine inverts m, returning identity for a singular matrix
// (a node zoomed to scale 0 cannot be hit).
func invertAffine(m [6]float64) ([6]float64, bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform, false
	}
	inv := 1 / det
	a, b := m[3]*inv, -m[1]*inv
	c, d := -m[2]*inv, m[0]*inv
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}, true
}

// TransformPoint applies an affine matrix to a point.
func TransformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform refreshes worldTransform and worldAlpha below n. A
// recomputed parent forces its children to recompute.
func updateWorldTransform(n *Node, parent [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parent, localTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.transformDirty = true
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX, n.PivotY = px, py
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty forces the transform to be recomputed on the next traversal.
// Animation effects call it after writing fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldTransform returns the transform computed by the last traversal.
func (n *Node) WorldTransform() [6]float64 { return n.worldTransform }

// WorldToLocal converts a world-space point to this node's local space. ok
// is false when the node is collapsed to zero size.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64, ok bool) {
	inv, ok := invertAffine(n.worldTransform)
	lx, ly = TransformPoint(inv, wx, wy)
	return lx, ly, ok
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return TransformPoint(n.worldTransform, lx, ly)
}
