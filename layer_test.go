package canopy

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// --- Test layer kinds ---

// bar is one datum of the test bar layer.
type bar struct {
	Key   string
	Value float64
}

// fakeAxis owns the coordinate system and keeps whatever set it is handed.
type fakeAxis struct {
	cs       CoordinateSystem
	scales   ScaleSet
	received int
	draws    int
}

func (a *fakeAxis) Coordinate() CoordinateSystem { return a.cs }
func (a *fakeAxis) Scales() ScaleSet             { return a.scales }
func (a *fakeAxis) SetData(any) error            { return nil }
func (a *fakeAxis) SetStyle(any) error           { return nil }
func (a *fakeAxis) Update() error                { return nil }
func (a *fakeAxis) Draw() error                  { a.draws++; return nil }
func (a *fakeAxis) Destroy() error               { return nil }

func (a *fakeAxis) SetScale(s ScaleSet) error {
	if s.Empty() {
		return nil
	}
	a.scales = s
	a.received++
	return nil
}

// fakeBars draws one rect group per datum and proposes a Y scale from its
// values, plus an angular scale when angle is set.
type fakeBars struct {
	base     *Layer
	data     []bar
	received ScaleSet
	groups   []DrawGroup

	reverse bool
	angle   bool
	fail    string
	panics  bool
	reenter bool

	updates, draws int
}

func (f *fakeBars) SetData(data any) error {
	v, err := ValidateData(f.data, data, nil)
	f.data = v
	return err
}

func (f *fakeBars) SetScale(s ScaleSet) error {
	if s.Empty() {
		return nil
	}
	f.received = s
	return nil
}

func (f *fakeBars) SetStyle(any) error {
	if f.fail == "setStyle" {
		return errors.New("bad style")
	}
	return nil
}

func (f *fakeBars) Scales() ScaleSet {
	if len(f.data) == 0 {
		return ScaleSet{}
	}
	lo, hi := f.data[0].Value, f.data[0].Value
	keys := make([]string, len(f.data))
	weights := make([]float64, len(f.data))
	for i, d := range f.data {
		lo, hi = min(lo, d.Value), max(hi, d.Value)
		keys[i], weights[i] = d.Key, d.Value
	}
	domain := [2]float64{lo, hi}
	if f.reverse {
		domain = [2]float64{hi, lo}
	}
	s := ScaleSet{Y: Linear(domain, [2]float64{100, 0}, Nice{})}
	if f.angle {
		s.Angle = Angular(keys, weights, [2]float64{0, 6.283185307179586}, Nice{})
	}
	return s
}

func (f *fakeBars) Update() error {
	f.updates++
	if f.panics {
		panic("update exploded")
	}
	if f.fail == "update" {
		return errors.New("update failed")
	}
	f.groups = f.groups[:0]
	for i, d := range f.data {
		f.groups = append(f.groups, DrawGroup{Key: d.Key, Data: []Geometry{{
			Key: d.Key, X: float64(i) * 20, Width: 10, Height: d.Value, Value: d.Value,
		}}})
	}
	return nil
}

func (f *fakeBars) Draw() error {
	f.draws++
	if f.reenter {
		f.base.Draw()
	}
	f.base.DrawSublayer("bar", ShapeRect, f.groups, Style{})
	return nil
}

func (f *fakeBars) Destroy() error { return nil }

func (f *fakeBars) LegendData() []LegendItem {
	items := make([]LegendItem, len(f.data))
	for i, d := range f.data {
		items[i] = LegendItem{Layer: f.base.ID(), Label: d.Key}
	}
	return items
}

// fakeMap is a base map projecting lon/lat linearly onto its layout.
type fakeMap struct {
	base     *Layer
	received ScaleSet
}

func (m *fakeMap) Project(lon, lat float64) (float64, float64) {
	return lon, lat
}

func (m *fakeMap) Scales() ScaleSet {
	r := m.base.Options().Layout
	return ScaleSet{
		X: Linear([2]float64{-180, 180}, [2]float64{r.X, r.X + r.Width}, Nice{}),
		Y: Linear([2]float64{-90, 90}, [2]float64{r.Y + r.Height, r.Y}, Nice{}),
	}
}

func (m *fakeMap) SetScale(s ScaleSet) error {
	if !s.Empty() {
		m.received = s
	}
	return nil
}

func (m *fakeMap) SetData(any) error  { return nil }
func (m *fakeMap) SetStyle(any) error { return nil }
func (m *fakeMap) Update() error      { return nil }
func (m *fakeMap) Draw() error        { return nil }
func (m *fakeMap) Destroy() error     { return nil }

func init() {
	RegisterLayer("test-axis", func(base *Layer) (LayerImpl, error) {
		return &fakeAxis{cs: base.Options().Coordinate}, nil
	})
	RegisterLayer("test-bars", func(base *Layer) (LayerImpl, error) {
		return &fakeBars{base: base}, nil
	})
	RegisterLayer("test-map", func(base *Layer) (LayerImpl, error) {
		return &fakeMap{base: base}, nil
	})
	RegisterLayer("test-broken", func(*Layer) (LayerImpl, error) {
		return nil, errors.New("no impl")
	})
}

// --- Helpers ---

type testChart struct {
	*Chart
	errs []error
	logs *bytes.Buffer
}

func newTestChart(t *testing.T, backend Backend) *testChart {
	t.Helper()
	tc := &testChart{logs: &bytes.Buffer{}}
	tc.Chart = NewChart(ChartOptions{
		Width:   200,
		Height:  100,
		Backend: backend,
		Logger:  NewLogger(tc.logs, log.DebugLevel),
		OnError: func(err error) { tc.errs = append(tc.errs, err) },
	})
	return tc
}

func (tc *testChart) bars(t *testing.T, id string, opts LayerOptions, data ...bar) (*Layer, *fakeBars) {
	t.Helper()
	opts.ID = id
	l, err := tc.CreateLayer("test-bars", opts)
	if err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}
	if data != nil {
		l.SetData(data)
	}
	return l, l.Impl().(*fakeBars)
}

func (tc *testChart) axis(t *testing.T, cs CoordinateSystem) (*Layer, *fakeAxis) {
	t.Helper()
	l, err := tc.CreateLayer("test-axis", LayerOptions{ID: "axis", Coordinate: cs})
	if err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}
	return l, l.Impl().(*fakeAxis)
}

// lifecycle subscribes to the lifecycle events of l.
func lifecycle(l *Layer) *[]string {
	var got []string
	for _, name := range []string{"setData", "setScale", "setStyle", "update", "draw", "destroy"} {
		l.On("before:"+name, "test", func(any) { got = append(got, "before:"+name) })
		l.On(name, "test", func(any) { got = append(got, name) })
	}
	return &got
}

// --- Lifecycle ---

func TestLayerStartsDirty(t *testing.T) {
	tc := newTestChart(t, nil)
	l, _ := tc.bars(t, "sales", LayerOptions{})
	if !l.NeedRecalculated() {
		t.Error("new layer should need recalculation")
	}
}

func TestLayerSetEventsAndDirty(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{})
	l.Draw()
	if l.NeedRecalculated() {
		t.Fatal("Draw should clear the dirty flag")
	}

	events := lifecycle(l)
	l.SetData([]bar{{"a", 1}})
	l.SetStyle(nil)
	l.SetScale(ScaleSet{})

	if !l.NeedRecalculated() {
		t.Error("setters should mark the layer dirty")
	}
	want := "before:setData,setData,before:setStyle,setStyle,before:setScale,setScale"
	if got := strings.Join(*events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
	if len(f.data) != 1 {
		t.Error("data should be stored")
	}
}

func TestLayerUpdateIdempotent(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})

	l.Draw()
	l.Draw()
	l.Update()

	if f.updates != 1 {
		t.Errorf("updates = %d, want 1", f.updates)
	}
	if f.draws != 2 {
		t.Errorf("draws = %d, want 2", f.draws)
	}
	if !strings.Contains(tc.logs.String(), "update skipped") {
		t.Error("clean update should be logged at debug level")
	}
}

func TestLayerDrawEventOrder(t *testing.T) {
	tc := newTestChart(t, nil)
	l, _ := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})
	events := lifecycle(l)

	l.Draw()
	want := "before:update,update,before:draw,draw"
	if got := strings.Join(*events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestLayerInvalidDataKeepsCurrent(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})

	l.SetData("not bars")
	if len(f.data) != 1 || f.data[0].Key != "a" {
		t.Error("invalid data should keep the previous data")
	}
	if len(tc.errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(tc.errs))
	}
	if !IsCode(tc.errs[0], ErrCodeLayerFailure) {
		t.Errorf("err = %v, want layer failure", tc.errs[0])
	}
	if !IsCode(errors.Unwrap(tc.errs[0]), ErrCodeConfiguration) {
		t.Errorf("cause = %v, want configuration error", errors.Unwrap(tc.errs[0]))
	}

	l.SetData(nil)
	if len(f.data) != 1 {
		t.Error("nil data should keep the previous data")
	}
}

func TestLayerFailureIsolated(t *testing.T) {
	tc := newTestChart(t, nil)
	broken, bf := tc.bars(t, "broken", LayerOptions{}, bar{"a", 1})
	_, sf := tc.bars(t, "sibling", LayerOptions{}, bar{"a", 1})
	bf.fail = "update"

	tc.Draw()

	if sf.draws != 1 {
		t.Error("sibling layer should still draw")
	}
	if !broken.NeedRecalculated() {
		t.Error("failed update should leave the layer dirty")
	}
	if len(tc.errs) != 1 || !IsCode(tc.errs[0], ErrCodeLayerFailure) {
		t.Errorf("errs = %v, want one layer failure", tc.errs)
	}
	if !strings.Contains(tc.logs.String(), "lifecycle=update") {
		t.Error("failure should be logged with the lifecycle name")
	}

	bf.fail = ""
	tc.Draw()
	if broken.NeedRecalculated() {
		t.Error("next draw should retry and succeed")
	}
}

func TestLayerPanicRecovered(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})
	f.panics = true

	l.Draw()

	if len(tc.errs) != 1 || !strings.Contains(tc.errs[0].Error(), "update exploded") {
		t.Errorf("errs = %v, want the recovered panic", tc.errs)
	}
}

func TestLayerDrawNotReentrant(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})
	f.reenter = true

	l.Draw()
	if f.draws != 1 {
		t.Errorf("draws = %d, want 1", f.draws)
	}
	if !strings.Contains(tc.logs.String(), "already drawing") {
		t.Error("reentrant draw should be logged")
	}
}

func TestLayerDestroy(t *testing.T) {
	tc := newTestChart(t, nil)
	l, f := tc.bars(t, "sales", LayerOptions{}, bar{"a", 1})
	l.Draw()
	scene := tc.Backend().(*Scene)
	if scene.RootNode().NumChildren() != 1 {
		t.Fatal("layer should own one root group")
	}
	events := lifecycle(l)

	l.Destroy()
	l.Destroy()

	if got := strings.Join(*events, ","); got != "before:destroy,destroy" {
		t.Errorf("events = %s, want one destroy", got)
	}
	if scene.RootNode().NumChildren() != 0 {
		t.Error("destroy should remove the layer's group")
	}
	if !l.Destroyed() {
		t.Error("Destroyed should report true")
	}

	l.SetData([]bar{{"b", 2}})
	l.Draw()
	if f.data[0].Key != "a" || f.draws != 1 {
		t.Error("destroyed layer should ignore setters and draws")
	}
	if !strings.Contains(tc.logs.String(), "setData ignored: layer destroyed") {
		t.Error("setter on a destroyed layer should warn")
	}
}

func TestLayerScales(t *testing.T) {
	tc := newTestChart(t, nil)
	l, _ := tc.bars(t, "sales", LayerOptions{})
	if _, ok := l.Scales(); ok {
		t.Error("layer without data should propose nothing")
	}
	l.SetData([]bar{{"a", 1}, {"b", 4}})
	s, ok := l.Scales()
	if !ok {
		t.Fatal("layer with data should propose scales")
	}
	assertDomain(t, "Y", s.Y.(LinearScale).Domain(), [2]float64{1, 4})
}

// --- Data ---

func TestValidateData(t *testing.T) {
	cur := []bar{{"a", 1}}

	got, err := ValidateData(cur, nil, nil)
	if err != nil || len(got) != 1 {
		t.Error("nil incoming should keep current")
	}

	_, err = ValidateData(cur, 42, nil)
	if !IsCode(err, ErrCodeConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}

	keepPositive := func(v []bar) []bar {
		var out []bar
		for _, b := range v {
			if b.Value > 0 {
				out = append(out, b)
			}
		}
		return out
	}
	got, err = ValidateData(cur, []bar{{"x", -1}, {"y", 2}}, keepPositive)
	if err != nil || len(got) != 1 || got[0].Key != "y" {
		t.Errorf("filtered = %v, %v, want [y]", got, err)
	}
}
