package canopy

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// LayerEvent is an interaction on a drawn element, re-fired on its layer
// and chart under the interaction's event name.
type LayerEvent struct {
	Type     EventType
	Layer    string
	Sublayer string
	Key      string // leading key of the element's data group
	Index    int    // datum index within the group
	Datum    Geometry
	X, Y     float64
}

// TooltipEvent is fired as "tooltip" when the pointer enters or leaves an
// element.
type TooltipEvent struct {
	LayerEvent
	Visible bool
}

// EventTooltip is the event name of TooltipEvent.
const EventTooltip = "tooltip"

// EventStore is the interface for optional ECS integration. When set on a
// Chart, every interaction is forwarded to it.
type EventStore interface {
	EmitEvent(event LayerEvent)
}

// ChartOptions configures NewChart.
type ChartOptions struct {
	Width, Height float64
	// Backend defaults to a new Scene.
	Backend Backend
	// Theme defaults to DefaultTheme.
	Theme *Theme
	// Logger defaults to a warn-level logger on stderr.
	Logger *log.Logger
	// OnError receives recoverable errors after they are logged.
	OnError ErrorHandler
}

// Chart owns the layers, the scheduler and the backend of one chart.
// It is not safe for concurrent use.
//
// Events: "timeline" (QueueEvent) and every LayerEvent name, relayed from
// the layers.
type Chart struct {
	Emitter

	width, height float64
	log           *log.Logger
	sched         *Scheduler
	backend       Backend
	theme         Theme
	onError       ErrorHandler
	store         EventStore

	layers    []*Layer
	needBind  bool
	destroyed bool
}

// NewChart creates an empty chart.
func NewChart(opts ChartOptions) *Chart {
	c := &Chart{
		width:   opts.Width,
		height:  opts.Height,
		log:     loggerOr(opts.Logger),
		sched:   NewScheduler(),
		backend: opts.Backend,
		onError: opts.OnError,
		theme:   DefaultTheme(),
	}
	if opts.Theme != nil {
		c.theme = *opts.Theme
	}
	if c.backend == nil {
		scene := NewScene()
		scene.SetSize(opts.Width, opts.Height)
		c.backend = scene
	}
	c.backend.Attach(c.sched, c.log)
	return c
}

func (c *Chart) Width() float64        { return c.width }
func (c *Chart) Height() float64       { return c.height }
func (c *Chart) Logger() *log.Logger   { return c.log }
func (c *Chart) Scheduler() *Scheduler { return c.sched }
func (c *Chart) Backend() Backend      { return c.backend }
func (c *Chart) Theme() Theme          { return c.theme }
func (c *Chart) Bounds() Rect          { return Rect{Width: c.width, Height: c.height} }

// SetEventStore sets the optional ECS bridge.
func (c *Chart) SetEventStore(s EventStore) {
	c.store = s
}

// CreateLayer builds a layer of a registered kind and appends it. Unknown
// kinds, duplicate ids and a second axis layer are configuration errors.
func (c *Chart) CreateLayer(kind string, opts LayerOptions) (*Layer, error) {
	l, err := c.buildLayer(kind, opts)
	if err != nil {
		return nil, err
	}
	c.layers = append(c.layers, l)
	c.needBind = true
	return l, nil
}

func (c *Chart) buildLayer(kind string, opts LayerOptions) (*Layer, error) {
	if c.destroyed {
		return nil, NewError(ErrCodeLifecycle, "chart destroyed")
	}
	factory, err := layerFactory(kind)
	if err != nil {
		return nil, err
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if c.Layer(opts.ID) != nil {
		return nil, NewError(ErrCodeConfiguration, "duplicate layer id %q", opts.ID)
	}
	if opts.Axis == "" {
		opts.Axis = AxisMain
	}
	if opts.Layout == (Rect{}) {
		opts.Layout = c.Bounds()
	}

	l := newLayer(c, kind, opts)
	var impl LayerImpl
	if err := guard(func() (err error) { impl, err = factory(l); return err }); err != nil {
		return nil, WrapError(ErrCodeConfiguration, err, "create %s layer %q", kind, opts.ID)
	}
	if impl == nil {
		return nil, NewError(ErrCodeConfiguration, "create %s layer %q: factory returned nil", kind, opts.ID)
	}
	l.impl = impl
	if _, ok := impl.(CoordinateOwner); ok {
		if axis := c.AxisLayer(); axis != nil {
			return nil, NewError(ErrCodeConfiguration, "chart already has axis layer %q", axis.ID())
		}
	}

	l.On("setData", "chart", func(any) { c.needBind = true })
	l.On(EventTimeline, "chart", func(p any) { c.Fire(EventTimeline, p) })
	return l, nil
}

// ReplaceLayer destroys the layer with id and puts a new one of kind in
// its place, keeping the id.
func (c *Chart) ReplaceLayer(id, kind string, opts LayerOptions) (*Layer, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return nil, NewError(ErrCodeConfiguration, "no layer %q to replace", id)
	}
	old := c.layers[idx]
	// Free the id and the axis slot before building the replacement.
	c.layers = append(c.layers[:idx:idx], c.layers[idx+1:]...)
	opts.ID = id
	l, err := c.buildLayer(kind, opts)
	if err != nil {
		c.layers = append(c.layers[:idx], append([]*Layer{old}, c.layers[idx:]...)...)
		return nil, err
	}
	old.Destroy()
	c.layers = append(c.layers[:idx], append([]*Layer{l}, c.layers[idx:]...)...)
	c.needBind = true
	return l, nil
}

// RemoveLayer destroys and drops the layer with id.
func (c *Chart) RemoveLayer(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	l := c.layers[idx]
	c.layers = append(c.layers[:idx], c.layers[idx+1:]...)
	l.Destroy()
	c.needBind = true
	return true
}

func (c *Chart) indexOf(id string) int {
	for i, l := range c.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}

// Layer returns the layer with id, or nil.
func (c *Chart) Layer(id string) *Layer {
	if i := c.indexOf(id); i >= 0 {
		return c.layers[i]
	}
	return nil
}

// Layers returns the layers in creation order.
func (c *Chart) Layers() []*Layer {
	return append([]*Layer(nil), c.layers...)
}

// AxisLayer returns the layer owning the coordinate system, or nil.
func (c *Chart) AxisLayer() *Layer {
	for _, l := range c.layers {
		if _, ok := l.impl.(CoordinateOwner); ok {
			return l
		}
	}
	return nil
}

// Draw binds coordinates if any layer's data changed since the last pass,
// then draws every layer. Clean layers skip their update.
func (c *Chart) Draw() {
	if c.destroyed {
		c.log.Warn("draw ignored: chart destroyed")
		return
	}
	if c.needBind {
		c.BindCoordinate(false, nil)
	}
	for _, l := range c.layers {
		l.Draw()
	}
}

// Tick advances the chart's scheduler by dt, stepping animations and firing
// due timers.
func (c *Chart) Tick(dt time.Duration) {
	c.sched.Advance(dt)
}

// Destroy destroys every layer in reverse creation order.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	for i := len(c.layers) - 1; i >= 0; i-- {
		c.layers[i].Destroy()
	}
	c.layers = nil
	c.destroyed = true
}

// LegendData collects legend entries from every legend provider.
func (c *Chart) LegendData() []LegendItem {
	var items []LegendItem
	for _, l := range c.layers {
		lp, ok := l.impl.(LegendProvider)
		if !ok {
			continue
		}
		var got []LegendItem
		if err := guard(func() error { got = lp.LegendData(); return nil }); err != nil {
			l.fail("legendData", err)
			continue
		}
		items = append(items, got...)
	}
	return items
}

// report hands an already logged recoverable error to the error hook.
func (c *Chart) report(err error) {
	if c.onError != nil && err != nil {
		c.onError(err)
	}
}

func (c *Chart) interact(ev LayerEvent) {
	c.Fire(ev.Type.Name(), ev)
	if c.store != nil {
		c.store.EmitEvent(ev)
	}
}
