package canopy

import (
	"github.com/charmbracelet/log"
)

// LayerImpl is the strategy a concrete chart type supplies. Layer owns the
// control envelope around it: dirty tracking, events, error isolation.
type LayerImpl interface {
	SetData(data any) error
	// SetScale receives a scale set; an empty set should be ignored.
	SetScale(scales ScaleSet) error
	SetStyle(style any) error
	// Update recomputes geometry. It only runs when the layer is dirty.
	Update() error
	Draw() error
	Destroy() error
}

// ScaleProvider is implemented by layers that propose scales to the axis
// layer. A data layer returns the scales derived from its own data, not the
// set it last received through SetScale, so proposals can shrink when the
// data does. The axis layer returns its merged set. An empty set
// contributes nothing.
type ScaleProvider interface {
	Scales() ScaleSet
}

// LegendItem is one entry a layer contributes to a legend.
type LegendItem struct {
	Layer string
	Label string
	Color Color
}

// LegendProvider is implemented by layers with legend entries.
type LegendProvider interface {
	LegendData() []LegendItem
}

// CoordinateOwner marks the axis layer, which owns the chart's coordinate
// system and the merged scale set.
type CoordinateOwner interface {
	Coordinate() CoordinateSystem
}

// Projector marks a base-map layer. Its scales are the only contribution
// in geographic coordinates.
type Projector interface {
	Project(lon, lat float64) (x, y float64)
}

// Axis assignment of a data layer in cartesian coordinates.
const (
	AxisMain  = "main"
	AxisMinor = "minor"
)

// LayerOptions configures a layer at creation.
type LayerOptions struct {
	ID         string
	Axis       string // AxisMain (default) or AxisMinor
	Layout     Rect
	Coordinate CoordinateSystem // axis layers only
	// Animation holds per-sublayer overrides of the theme defaults.
	Animation map[string]SublayerAnimation
}

// Layer is the lifecycle state machine wrapped around a LayerImpl.
//
// SetData, SetScale and SetStyle always mark the layer dirty and fire
// "before:<name>" then "<name>". Update runs the implementation only when
// dirty and clears the flag on success. Draw always updates first. Every
// error or panic from the implementation is logged with the lifecycle name,
// reported to the chart's error hook and swallowed.
type Layer struct {
	Emitter

	id    string
	kind  string
	opts  LayerOptions
	impl  LayerImpl
	chart *Chart
	log   *log.Logger

	needRecalculated bool
	drawing          bool
	destroyed        bool

	root      Group
	sublayers map[string]*sublayer
	names     []string
}

func newLayer(c *Chart, kind string, opts LayerOptions) *Layer {
	return &Layer{
		id:               opts.ID,
		kind:             kind,
		opts:             opts,
		chart:            c,
		log:              c.log.With("layer", opts.ID, "kind", kind),
		needRecalculated: true,
		sublayers:        make(map[string]*sublayer),
	}
}

func (l *Layer) ID() string            { return l.id }
func (l *Layer) Kind() string          { return l.kind }
func (l *Layer) Options() LayerOptions { return l.opts }
func (l *Layer) Chart() *Chart         { return l.chart }
func (l *Layer) Logger() *log.Logger   { return l.log }
func (l *Layer) Impl() LayerImpl       { return l.impl }
func (l *Layer) Destroyed() bool       { return l.destroyed }

// NeedRecalculated reports whether the next Update will recompute geometry.
func (l *Layer) NeedRecalculated() bool { return l.needRecalculated }

// Scales returns the layer's proposed scales, if it provides any.
func (l *Layer) Scales() (ScaleSet, bool) {
	sp, ok := l.impl.(ScaleProvider)
	if !ok {
		return ScaleSet{}, false
	}
	var s ScaleSet
	if err := guard(func() error { s = sp.Scales(); return nil }); err != nil {
		l.fail("scales", err)
		return ScaleSet{}, false
	}
	return s, !s.Empty()
}

// Root returns the layer's render group, creating it on first use.
func (l *Layer) Root() Group {
	if l.root == nil {
		l.root = l.chart.backend.NewGroup(l.chart.backend.Root(), l.id)
	}
	return l.root
}

func (l *Layer) SetData(data any) {
	l.set("setData", func() error { return l.impl.SetData(data) })
}

func (l *Layer) SetScale(scales ScaleSet) {
	l.set("setScale", func() error { return l.impl.SetScale(scales) })
}

func (l *Layer) SetStyle(style any) {
	l.set("setStyle", func() error { return l.impl.SetStyle(style) })
}

// MarkDirty forces the next Update to recompute.
func (l *Layer) MarkDirty() { l.needRecalculated = true }

func (l *Layer) set(name string, fn func() error) {
	if l.destroyed {
		l.log.Warn(name + " ignored: layer destroyed")
		return
	}
	l.needRecalculated = true
	l.Fire("before:"+name, l)
	l.call(name, fn)
	l.Fire(name, l)
}

// Update recomputes geometry if the layer is dirty. A failed update leaves
// the layer dirty so the next draw retries.
func (l *Layer) Update() {
	if l.destroyed {
		return
	}
	if !l.needRecalculated {
		l.log.Debug("update skipped: nothing changed")
		return
	}
	l.Fire("before:update", l)
	if l.call("update", l.impl.Update) {
		l.needRecalculated = false
	}
	l.Fire("update", l)
}

// Draw updates the layer and then draws it. Draw is not reentrant: a draw
// requested while the layer is drawing is ignored.
func (l *Layer) Draw() {
	if l.destroyed {
		l.log.Warn("draw ignored: layer destroyed")
		return
	}
	if l.drawing {
		l.log.Debug("draw skipped: already drawing")
		return
	}
	l.drawing = true
	defer func() { l.drawing = false }()

	l.Update()
	l.Fire("before:draw", l)
	l.call("draw", l.impl.Draw)
	l.Fire("draw", l)
}

// Destroy tears down the implementation, every sublayer's animation queue
// and the layer's render group.
func (l *Layer) Destroy() {
	if l.destroyed {
		return
	}
	l.Fire("before:destroy", l)
	l.call("destroy", l.impl.Destroy)
	for _, name := range l.names {
		l.stopAnimation(l.sublayers[name])
	}
	if l.root != nil {
		l.chart.backend.RemoveGroup(l.root)
		l.root = nil
	}
	l.destroyed = true
	l.Fire("destroy", l)
}

// call runs one lifecycle step of the implementation and reports whether
// it succeeded.
func (l *Layer) call(name string, fn func() error) bool {
	if err := guard(fn); err != nil {
		l.fail(name, err)
		return false
	}
	return true
}

func (l *Layer) fail(name string, err error) {
	l.log.Error("lifecycle failed", "lifecycle", name, "err", err)
	l.chart.report(WrapError(ErrCodeLayerFailure, err, "%s layer %q: %s", l.kind, l.id, name))
}

// Sublayers lists sublayer names in creation order.
func (l *Layer) Sublayers() []string {
	return append([]string(nil), l.names...)
}
