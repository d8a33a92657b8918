package canopy

import (
	"testing"
)

// rectAt adds a 100x100 rect centred at (cx, cy) under parent.
func rectAt(parent *Node, name string, cx, cy float64) *Node {
	n := NewShape(name, NodeTypeRect)
	n.Width, n.Height = 100, 100
	n.SetPosition(cx, cy)
	parent.AddChild(n)
	return n
}

// --- Hit testing ---

func TestHitTest_TopmostNode(t *testing.T) {
	s := NewScene()
	bottom := rectAt(s.RootNode(), "bottom", 50, 50)
	top := rectAt(s.RootNode(), "top", 50, 50)

	if got := s.HitTest(50, 50); got != top {
		t.Errorf("HitTest = %v, want top", got)
	}
	_ = bottom
}

func TestHitTest_SkipsInvisible(t *testing.T) {
	s := NewScene()
	bottom := rectAt(s.RootNode(), "bottom", 50, 50)
	top := rectAt(s.RootNode(), "top", 50, 50)
	top.Visible = false

	if got := s.HitTest(50, 50); got != bottom {
		t.Error("invisible node should not be hit")
	}
}

func TestHitTest_SkipsNonInteractable(t *testing.T) {
	s := NewScene()
	bottom := rectAt(s.RootNode(), "bottom", 50, 50)
	top := rectAt(s.RootNode(), "top", 50, 50)
	top.Interactable = false

	if got := s.HitTest(50, 50); got != bottom {
		t.Error("non-interactable node should not be hit")
	}
}

func TestHitTest_SkipsNonInteractableSubtree(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	s.RootNode().AddChild(group)
	rectAt(group, "inner", 50, 50)

	if got := s.HitTest(50, 50); got != nil {
		t.Error("children of a non-interactable container should not be hit")
	}
}

func TestHitTest_RespectsZIndex(t *testing.T) {
	s := NewScene()
	a := rectAt(s.RootNode(), "a", 50, 50)
	rectAt(s.RootNode(), "b", 50, 50)
	a.SetZIndex(10)

	if got := s.HitTest(50, 50); got != a {
		t.Error("higher ZIndex should be hit first")
	}
}

func TestHitTest_Miss(t *testing.T) {
	s := NewScene()
	rectAt(s.RootNode(), "a", 50, 50)
	if got := s.HitTest(500, 500); got != nil {
		t.Errorf("HitTest = %v, want nil", got)
	}
}

func TestHitTest_OffCanvas(t *testing.T) {
	s := NewScene()
	wide := rectAt(s.RootNode(), "wide", 50, 50)
	wide.Width = 400
	if got := s.HitTest(150, 50); got != wide {
		t.Fatalf("unsized scene HitTest = %v, want wide", got)
	}
	s.SetSize(100, 100)
	if got := s.HitTest(150, 50); got != nil {
		t.Errorf("off-canvas HitTest = %v, want nil", got)
	}
	if got := s.HitTest(90, 50); got != wide {
		t.Errorf("on-canvas HitTest = %v, want wide", got)
	}
}

func TestHitTest_TransformedNode(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Interactable = true
	parent.SetPosition(200, 0)
	s.RootNode().AddChild(parent)
	child := rectAt(parent, "child", 50, 50)

	if s.HitTest(50, 50) != nil {
		t.Error("untranslated point should miss")
	}
	if s.HitTest(250, 50) != child {
		t.Error("translated point should hit child")
	}
}

func TestHitTest_ZoomedToZero(t *testing.T) {
	s := NewScene()
	n := rectAt(s.RootNode(), "n", 50, 50)
	n.SetScale(0, 0)
	if s.HitTest(50, 50) != nil {
		t.Error("collapsed node should not be hit")
	}
}

// --- Pointer dispatch ---

func TestSceneLevelCallback_PointerDown(t *testing.T) {
	s := NewScene()
	n := rectAt(s.RootNode(), "n", 50, 50)

	var called bool
	s.On(EventPointerDown, func(ctx PointerContext) {
		called = true
		if ctx.Node != n {
			t.Error("expected hit node")
		}
	})

	s.Pointer(50, 50, true, MouseButtonLeft)
	if !called {
		t.Error("scene-level pointer down callback not fired")
	}
}

func TestCallbackOrder_NodeThenScene(t *testing.T) {
	s := NewScene()
	n := rectAt(s.RootNode(), "n", 50, 50)

	var order []string
	s.On(EventPointerDown, func(PointerContext) { order = append(order, "scene") })
	n.OnPointerDown = func(PointerContext) { order = append(order, "node") }

	s.Pointer(50, 50, true, MouseButtonLeft)
	if len(order) != 2 || order[0] != "node" || order[1] != "scene" {
		t.Errorf("expected [node scene], got %v", order)
	}
}

func TestCallbackHandle_Remove(t *testing.T) {
	s := NewScene()

	count := 0
	handle := s.On(EventPointerDown, func(PointerContext) { count++ })

	s.Pointer(0, 0, true, MouseButtonLeft)
	s.Pointer(0, 0, false, MouseButtonLeft)
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	handle.Remove()
	s.Pointer(0, 0, true, MouseButtonLeft)
	if count != 1 {
		t.Fatalf("expected count still 1 after Remove, got %d", count)
	}
}

func TestClickDetection(t *testing.T) {
	s := NewScene()
	n := rectAt(s.RootNode(), "n", 50, 50)

	clicks := 0
	n.OnClick = func(PointerContext) { clicks++ }

	s.Pointer(50, 50, true, MouseButtonLeft)
	s.Pointer(50, 50, false, MouseButtonLeft)
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

func TestClickNotFiredOnDifferentNode(t *testing.T) {
	s := NewScene()
	a := rectAt(s.RootNode(), "a", 50, 50)
	b := rectAt(s.RootNode(), "b", 250, 50)

	clicks := 0
	s.OnClick(func(PointerContext) { clicks++ })

	s.Pointer(50, 50, true, MouseButtonLeft)
	s.Pointer(250, 50, false, MouseButtonLeft)
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 when release lands on another node", clicks)
	}
	_, _ = a, b
}

func TestHoverEnterLeave(t *testing.T) {
	s := NewScene()
	a := rectAt(s.RootNode(), "a", 50, 50)
	b := rectAt(s.RootNode(), "b", 250, 50)

	var events []string
	s.OnPointerEnter(func(ctx PointerContext) { events = append(events, "enter:"+ctx.Node.Name) })
	s.OnPointerLeave(func(ctx PointerContext) { events = append(events, "leave:"+ctx.Node.Name) })

	s.Pointer(50, 50, false, MouseButtonLeft)
	s.Pointer(250, 50, false, MouseButtonLeft)
	s.Pointer(500, 500, false, MouseButtonLeft)

	want := []string{"enter:a", "leave:a", "enter:b", "leave:b"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
	_, _ = a, b
}

func TestHoverMove(t *testing.T) {
	s := NewScene()
	rectAt(s.RootNode(), "a", 50, 50)

	moves := 0
	s.On(EventPointerMove, func(PointerContext) { moves++ })

	s.Pointer(40, 40, false, MouseButtonLeft)
	s.Pointer(40, 40, false, MouseButtonLeft)
	s.Pointer(60, 60, false, MouseButtonLeft)
	if moves != 2 {
		t.Errorf("moves = %d, want 2 (stationary samples do not move)", moves)
	}
}

func TestContextCoordinates(t *testing.T) {
	s := NewScene()
	n := rectAt(s.RootNode(), "n", 100, 100)

	var got PointerContext
	n.OnPointerDown = func(ctx PointerContext) { got = ctx }
	s.Pointer(110, 90, true, MouseButtonRight)

	assertNear(t, "GlobalX", got.GlobalX, 110)
	assertNear(t, "LocalX", got.LocalX, 10)
	assertNear(t, "LocalY", got.LocalY, -10)
	if got.Button != MouseButtonRight {
		t.Errorf("Button = %d, want right", got.Button)
	}
}

func TestBoundGroupReceivesInteraction(t *testing.T) {
	s := NewScene()
	s.Attach(NewScheduler(), nil)
	sub := s.NewGroup(s.Root(), "sublayer")
	child := s.NewGroup(sub, "sublayer-0")
	s.Draw(child, ShapeRect, DrawDescriptor{Data: []Geometry{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 20, Y: 0, Width: 10, Height: 10},
	}})

	var got []Interaction
	s.Bind(sub, func(in Interaction) { got = append(got, in) })

	s.Pointer(25, 5, true, MouseButtonLeft)
	s.Pointer(25, 5, false, MouseButtonLeft)

	types := []EventType{EventPointerEnter, EventPointerDown, EventPointerUp, EventClick}
	if len(got) != len(types) {
		t.Fatalf("interactions = %d, want %d", len(got), len(types))
	}
	for i, typ := range types {
		if got[i].Type != typ {
			t.Errorf("got[%d].Type = %v, want %v", i, got[i].Type.Name(), typ.Name())
		}
	}
	if got[3].Group != child || got[3].Index != 1 {
		t.Errorf("click = %+v, want child group index 1", got[3])
	}

	s.Bind(sub, nil)
	s.Pointer(25, 5, true, MouseButtonLeft)
	if len(got) != len(types) {
		t.Error("unbound group should receive nothing")
	}
}

func TestIndependentScenes(t *testing.T) {
	s1 := NewScene()
	s2 := NewScene()
	rectAt(s1.RootNode(), "a", 50, 50)
	rectAt(s2.RootNode(), "b", 50, 50)

	var c1, c2 int
	s1.OnClick(func(PointerContext) { c1++ })
	s2.OnClick(func(PointerContext) { c2++ })

	s1.Pointer(50, 50, true, MouseButtonLeft)
	s1.Pointer(50, 50, false, MouseButtonLeft)
	if c1 != 1 || c2 != 0 {
		t.Errorf("clicks = (%d, %d), want (1, 0)", c1, c2)
	}
}

func TestEventTypeNames(t *testing.T) {
	want := map[EventType]string{
		EventPointerDown:  "pointerdown",
		EventPointerUp:    "pointerup",
		EventPointerMove:  "pointermove",
		EventClick:        "click",
		EventPointerEnter: "pointerenter",
		EventPointerLeave: "pointerleave",
	}
	for ev, name := range want {
		if ev.Name() != name {
			t.Errorf("Name() = %q, want %q", ev.Name(), name)
		}
	}
}
