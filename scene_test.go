package canopy

import (
	"testing"
	"time"
)

func TestNewScene(t *testing.T) {
	s := NewScene()
	if s.root == nil {
		t.Fatal("root should not be nil")
	}
	if s.root.Name != "root" {
		t.Errorf("root.Name = %q, want %q", s.root.Name, "root")
	}
	if s.root.Type != NodeTypeContainer {
		t.Errorf("root.Type = %d, want NodeTypeContainer", s.root.Type)
	}
	if s.Root() != Group(s.root) {
		t.Error("Root() should return the internal root node")
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !s.debug || !globalDebug {
		t.Error("debug should be true")
	}
	s.SetDebugMode(false)
	if s.debug || globalDebug {
		t.Error("debug should be false")
	}
}

func TestSceneSize(t *testing.T) {
	s := NewScene()
	s.SetSize(640, 480)
	w, h := s.Size()
	if w != 640 || h != 480 {
		t.Errorf("Size = (%v, %v), want (640, 480)", w, h)
	}
}

// attachedScene returns a scene wired to a fresh scheduler.
func attachedScene() (*Scene, *Scheduler) {
	s := NewScene()
	sched := NewScheduler()
	s.Attach(sched, nil)
	return s, sched
}

func TestSceneDrawCreatesShapes(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "bars")

	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{
		{Key: "a", X: 0, Y: 10, Width: 20, Height: 40, Fill: Color{1, 0, 0, 1}},
		{Key: "b", X: 30, Y: 0, Width: 20, Height: 50},
	}})

	n := g.(*Node)
	if n.NumChildren() != 2 {
		t.Fatalf("children = %d, want 2", n.NumChildren())
	}
	a := n.ChildAt(0)
	if a.Type != NodeTypeRect {
		t.Errorf("Type = %d, want NodeTypeRect", a.Type)
	}
	// Rects are centred on the node origin.
	assertNear(t, "a.X", a.X, 10)
	assertNear(t, "a.Y", a.Y, 30)
	assertNear(t, "a.Width", a.Width, 20)
	if a.Fill != (Color{1, 0, 0, 1}) {
		t.Errorf("Fill = %v, want red", a.Fill)
	}
	if a.Name != "bars-a" {
		t.Errorf("Name = %q, want %q", a.Name, "bars-a")
	}
	if d, ok := a.UserData.(Geometry); !ok || d.Key != "a" {
		t.Error("UserData should hold the datum")
	}
	if n.ChildAt(1).Index != 1 {
		t.Errorf("Index = %d, want 1", n.ChildAt(1).Index)
	}
}

func TestSceneDrawReusesAndTrims(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "bars")
	n := g.(*Node)

	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{{Width: 1}, {Width: 2}, {Width: 3}}})
	first := n.ChildAt(0)

	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{{Width: 5}}})
	if n.NumChildren() != 1 {
		t.Fatalf("children = %d, want 1", n.NumChildren())
	}
	if n.ChildAt(0) != first {
		t.Error("existing node should be reused")
	}
	assertNear(t, "Width", first.Width, 5)
}

func TestSceneDrawReplacesWrongType(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "marks")
	n := g.(*Node)

	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{{Width: 1}}})
	old := n.ChildAt(0)
	s.Draw(g, ShapeCircle, DrawDescriptor{Data: []Geometry{{OuterRadius: 4}}})

	if !old.IsDisposed() {
		t.Error("rect node should be disposed when the shape changes")
	}
	if n.ChildAt(0).Type != NodeTypeCircle {
		t.Errorf("Type = %d, want NodeTypeCircle", n.ChildAt(0).Type)
	}
}

func TestSceneDrawTransition(t *testing.T) {
	s, sched := attachedScene()
	g := s.NewGroup(s.Root(), "bars")
	n := g.(*Node)

	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{{X: 0, Y: 0, Width: 10, Height: 10}}})
	node := n.ChildAt(0)

	s.Draw(g, ShapeRect, DrawDescriptor{
		Data:       []Geometry{{X: 0, Y: 0, Width: 30, Height: 10}},
		Transition: Transition{Duration: 100, Easing: "linear"},
	})
	assertNear(t, "Width before tick", node.Width, 10)

	sched.Advance(50 * time.Millisecond)
	assertNear(t, "Width halfway", node.Width, 20)

	sched.Advance(50 * time.Millisecond)
	assertNear(t, "Width settled", node.Width, 30)
	if sched.Busy() {
		t.Error("scheduler should be idle once the transition settles")
	}
}

func TestSceneDrawLineRelativePoints(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "line")

	s.Draw(g, ShapeLine, DrawDescriptor{Data: []Geometry{{Points: []Vec2{{10, 20}, {30, 40}}}}})

	node := g.(*Node).ChildAt(0)
	assertNear(t, "X", node.X, 10)
	assertNear(t, "Y", node.Y, 20)
	if len(node.Points) != 2 || node.Points[0] != (Vec2{}) || node.Points[1] != (Vec2{20, 20}) {
		t.Errorf("Points = %v, want [{0 0} {20 20}]", node.Points)
	}
}

func TestSceneDrawStyle(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "labels")
	fill := Color{0, 0, 1, 1}

	s.Draw(g, ShapeText, DrawDescriptor{
		Data:  []Geometry{{Text: "hi"}},
		Style: Style{Fill: &fill, Opacity: 0.5, Hidden: true},
	})

	node := g.(*Node).ChildAt(0)
	if node.Fill != fill {
		t.Errorf("Fill = %v, want %v", node.Fill, fill)
	}
	assertNear(t, "Alpha", node.Alpha, 0.5)
	if node.Visible {
		t.Error("hidden style should hide the node")
	}
	assertNear(t, "FontSize", node.FontSize, 12)
}

func TestSceneElements(t *testing.T) {
	s, _ := attachedScene()
	outer := s.NewGroup(s.Root(), "outer")
	inner := s.NewGroup(outer, "inner")
	s.Draw(inner, ShapeCircle, DrawDescriptor{Data: []Geometry{{}, {}}})

	if got := len(s.Elements(outer)); got != 2 {
		t.Errorf("Elements = %d, want 2 (containers excluded)", got)
	}
}

func TestSceneRemoveGroupClearsPointerState(t *testing.T) {
	s, _ := attachedScene()
	g := s.NewGroup(s.Root(), "g")
	s.Draw(g, ShapeRect, DrawDescriptor{Data: []Geometry{{Width: 10, Height: 10}}})
	s.Bind(g, func(Interaction) {})

	s.Pointer(5, 5, false, MouseButtonLeft)
	if s.pointer.hover == nil {
		t.Fatal("pointer should hover the rect")
	}

	s.RemoveGroup(g)
	if s.pointer.hover != nil {
		t.Error("hover should be cleared with its group")
	}
	if len(s.bound) != 0 {
		t.Error("binding should be dropped with its group")
	}
}

func TestSceneNodeRejectsForeignGroup(t *testing.T) {
	s := NewScene()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for a foreign group")
		}
	}()
	s.NewGroup(foreignGroup{}, "x")
}

type foreignGroup struct{}

func (foreignGroup) GroupName() string { return "foreign" }
