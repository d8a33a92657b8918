package canopy

// eventTypeCount is the number of EventType values.
const eventTypeCount = int(EventPointerLeave) + 1

// --- Pointer state ---

type pointerState struct {
	down   bool
	x, y   float64
	hit    *Node // node under the pointer at press time
	hover  *Node // last node the pointer was over, for enter/leave
	button MouseButton
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type handlerRegistry struct {
	lists  [eventTypeCount][]pointerHandler
	nextID uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil || int(h.event) >= eventTypeCount {
		return
	}
	s := h.reg.lists[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			h.reg.lists[h.event] = s[:len(s)-1]
			return
		}
	}
}

// --- Scene-level event registration ---

// On registers a scene-level callback for events of type ev. Scene
// callbacks fire after the node's own callback and before the bound
// group's interaction handler.
func (s *Scene) On(ev EventType, fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.lists[ev] = append(s.handlers.lists[ev], pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: ev}
}

// OnClick registers a scene-level callback for click events.
func (s *Scene) OnClick(fn func(PointerContext)) CallbackHandle {
	return s.On(EventClick, fn)
}

// OnPointerEnter registers a scene-level callback fired when the pointer
// moves over a new node.
func (s *Scene) OnPointerEnter(fn func(PointerContext)) CallbackHandle {
	return s.On(EventPointerEnter, fn)
}

// OnPointerLeave registers a scene-level callback fired when the pointer
// leaves a node.
func (s *Scene) OnPointerLeave(fn func(PointerContext)) CallbackHandle {
	return s.On(EventPointerLeave, fn)
}

// --- Hit testing ---

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending interactable shape nodes to buf. Skips Visible=false or
// Interactable=false subtrees.
func (s *Scene) collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}
	if n.Type != NodeTypeContainer {
		buf = append(buf, n)
	}
	if len(n.children) == 0 {
		return buf
	}
	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		buf = s.collectInteractable(child, buf)
	}
	return buf
}

// HitTest returns the topmost interactable node at canvas point (x, y), or
// nil. Once the scene has a size, points off the canvas never hit.
func (s *Scene) HitTest(x, y float64) *Node {
	if s.width > 0 && s.height > 0 && !(Rect{Width: s.width, Height: s.height}).Contains(x, y) {
		return nil
	}
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.hitBuf = s.collectInteractable(s.root, s.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly, ok := n.WorldToLocal(x, y)
		if ok && n.containsLocal(lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// Pointer feeds one pointer sample in canvas coordinates. It emits
// enter/leave when the node under the pointer changes, down and up on
// button transitions, click when a press and release land on the same
// node, and move otherwise.
func (s *Scene) Pointer(x, y float64, pressed bool, button MouseButton) {
	hit := s.HitTest(x, y)
	p := &s.pointer
	moved := x != p.x || y != p.y
	p.x, p.y = x, y

	if hit != p.hover {
		if p.hover != nil {
			s.emit(EventPointerLeave, p.hover, x, y, button)
		}
		p.hover = hit
		if hit != nil {
			s.emit(EventPointerEnter, hit, x, y, button)
		}
	}

	switch {
	case pressed && !p.down:
		p.down = true
		p.hit = hit
		p.button = button
		s.emit(EventPointerDown, hit, x, y, button)
	case !pressed && p.down:
		p.down = false
		s.emit(EventPointerUp, hit, x, y, p.button)
		if hit != nil && hit == p.hit {
			s.emit(EventClick, hit, x, y, p.button)
		}
		p.hit = nil
	case moved && !pressed:
		s.emit(EventPointerMove, hit, x, y, button)
	}
}

// emit delivers one event: the node's callback, scene-level callbacks, then
// the nearest bound ancestor group. Enter, leave and click need a node.
func (s *Scene) emit(ev EventType, n *Node, x, y float64, button MouseButton) {
	if n == nil && (ev == EventPointerEnter || ev == EventPointerLeave || ev == EventClick) {
		return
	}
	ctx := PointerContext{Node: n, GlobalX: x, GlobalY: y, Button: button}
	if n != nil {
		ctx.LocalX, ctx.LocalY, _ = n.WorldToLocal(x, y)
		if fn := nodeCallback(n, ev); fn != nil {
			fn(ctx)
		}
	}
	for _, h := range s.handlers.lists[ev] {
		h.fn(ctx)
	}
	if n == nil || n.disposed {
		return
	}
	for g := n.Parent; g != nil; g = g.Parent {
		if fn, ok := s.bound[g]; ok {
			fn(Interaction{Type: ev, Group: n.Parent, Index: n.Index, X: x, Y: y})
			return
		}
	}
}

func nodeCallback(n *Node, ev EventType) func(PointerContext) {
	switch ev {
	case EventPointerDown:
		return n.OnPointerDown
	case EventPointerUp:
		return n.OnPointerUp
	case EventClick:
		return n.OnClick
	case EventPointerEnter:
		return n.OnPointerEnter
	case EventPointerLeave:
		return n.OnPointerLeave
	}
	return nil
}
