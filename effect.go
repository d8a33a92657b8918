package canopy

import (
	"math"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// Animatable is a render element an animation effect can drive. Both the
// scene-graph Node and the vector backend's element implement it.
type Animatable interface {
	// Property returns a pointer to a numeric property such as "alpha",
	// "scaleX", "scaleY", "x" or "y", or nil if the element has none.
	Property(name string) *float64
	// MarkDirty tells the element a property was written directly.
	MarkDirty()
}

// Effect is the swappable, backend-facing half of an animation: what a
// tween's progress does to the targets. Init captures whatever it needs
// (and may allocate temporary resources), Apply writes the state for eased
// progress t in [0, 1], Release restores the targets and frees resources.
type Effect interface {
	Init(targets []Animatable) error
	Apply(targets []Animatable, t float64)
	Release(targets []Animatable)
}

// EffectFactory builds an effect for one animation instance.
type EffectFactory func(opts AnimationOptions) Effect

var effectRegistry = map[string]EffectFactory{
	"empty":   func(AnimationOptions) Effect { return emptyEffect{} },
	"fade":    func(AnimationOptions) Effect { return &propertyEffect{props: []string{"alpha"}, from: 0} },
	"zoom":    func(AnimationOptions) Effect { return &propertyEffect{props: []string{"scaleX", "scaleY"}, from: 0} },
	"scan":    func(AnimationOptions) Effect { return &propertyEffect{props: []string{"scaleX"}, from: 0} },
	"breathe": func(o AnimationOptions) Effect { return &breatheEffect{low: breatheLow(o)} },
	"move":    func(o AnimationOptions) Effect { return &moveEffect{offset: o.Offset} },
}

// RegisterEffect adds or replaces an animation kind.
func RegisterEffect(kind string, f EffectFactory) {
	effectRegistry[kind] = f
}

// EffectKinds lists the registered animation kinds in sorted order.
func EffectKinds() []string {
	kinds := make([]string, 0, len(effectRegistry))
	for k := range effectRegistry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func newEffect(kind string, opts AnimationOptions) (Effect, error) {
	f, ok := effectRegistry[kind]
	if !ok {
		return nil, NewError(ErrCodeConfiguration, "unknown animation kind %q", kind)
	}
	return f(opts), nil
}

// --- easing ---

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"quad-in":        ease.InQuad,
	"quad-out":       ease.OutQuad,
	"quad-in-out":    ease.InOutQuad,
	"cubic-in":       ease.InCubic,
	"cubic-out":      ease.OutCubic,
	"cubic-in-out":   ease.InOutCubic,
	"sine-in":        ease.InSine,
	"sine-out":       ease.OutSine,
	"sine-in-out":    ease.InOutSine,
	"back-out":       ease.OutBack,
	"bounce-out":     ease.OutBounce,
	"elastic-out":    ease.OutElastic,
	"exponential-in": ease.InExpo,
}

// defaultEasing is used when the options name none or an unknown one.
const defaultEasing = "cubic-in-out"

func easing(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return easings[defaultEasing], true
	}
	fn, ok := easings[strings.ToLower(name)]
	if !ok {
		return easings[defaultEasing], false
	}
	return fn, true
}

// --- built-in effects ---

type emptyEffect struct{}

func (emptyEffect) Init([]Animatable) error     { return nil }
func (emptyEffect) Apply([]Animatable, float64) {}
func (emptyEffect) Release([]Animatable)        {}

// propertyEffect interpolates properties from a multiple of their final
// value (from) up to the final value captured at Init.
type propertyEffect struct {
	props []string
	from  float64
	final [][]float64
}

func (e *propertyEffect) Init(targets []Animatable) error {
	e.final = make([][]float64, len(targets))
	for i, t := range targets {
		e.final[i] = make([]float64, len(e.props))
		for j, name := range e.props {
			if p := t.Property(name); p != nil {
				e.final[i][j] = *p
			}
		}
	}
	return nil
}

func (e *propertyEffect) Apply(targets []Animatable, t float64) {
	for i, tg := range targets {
		if i >= len(e.final) {
			return
		}
		for j, name := range e.props {
			if p := tg.Property(name); p != nil {
				end := e.final[i][j]
				start := end * e.from
				*p = start + (end-start)*t
			}
		}
		tg.MarkDirty()
	}
}

func (e *propertyEffect) Release(targets []Animatable) {
	for i, tg := range targets {
		if i >= len(e.final) {
			return
		}
		for j, name := range e.props {
			if p := tg.Property(name); p != nil {
				*p = e.final[i][j]
			}
		}
		tg.MarkDirty()
	}
	e.final = nil
}

// breatheEffect dips alpha to low and back once per cycle.
type breatheEffect struct {
	low   float64
	alpha []float64
}

func breatheLow(o AnimationOptions) float64 {
	if o.Low > 0 && o.Low < 1 {
		return o.Low
	}
	return 0.3
}

func (e *breatheEffect) Init(targets []Animatable) error {
	e.alpha = make([]float64, len(targets))
	for i, t := range targets {
		if p := t.Property("alpha"); p != nil {
			e.alpha[i] = *p
		}
	}
	return nil
}

func (e *breatheEffect) Apply(targets []Animatable, t float64) {
	k := 1 - (1-e.low)*math.Sin(math.Pi*t)
	for i, tg := range targets {
		if i >= len(e.alpha) {
			return
		}
		if p := tg.Property("alpha"); p != nil {
			*p = e.alpha[i] * k
			tg.MarkDirty()
		}
	}
}

func (e *breatheEffect) Release(targets []Animatable) {
	for i, tg := range targets {
		if i >= len(e.alpha) {
			return
		}
		if p := tg.Property("alpha"); p != nil {
			*p = e.alpha[i]
			tg.MarkDirty()
		}
	}
	e.alpha = nil
}

// moveEffect slides targets from final+offset to final.
type moveEffect struct {
	offset Vec2
	final  []Vec2
}

func (e *moveEffect) Init(targets []Animatable) error {
	e.final = make([]Vec2, len(targets))
	for i, t := range targets {
		if p := t.Property("x"); p != nil {
			e.final[i].X = *p
		}
		if p := t.Property("y"); p != nil {
			e.final[i].Y = *p
		}
	}
	return nil
}

func (e *moveEffect) Apply(targets []Animatable, t float64) {
	for i, tg := range targets {
		if i >= len(e.final) {
			return
		}
		if p := tg.Property("x"); p != nil {
			*p = e.final[i].X + e.offset.X*(1-t)
		}
		if p := tg.Property("y"); p != nil {
			*p = e.final[i].Y + e.offset.Y*(1-t)
		}
		tg.MarkDirty()
	}
}

func (e *moveEffect) Release(targets []Animatable) {
	for i, tg := range targets {
		if i >= len(e.final) {
			return
		}
		if p := tg.Property("x"); p != nil {
			*p = e.final[i].X
		}
		if p := tg.Property("y"); p != nil {
			*p = e.final[i].Y
		}
		tg.MarkDirty()
	}
	e.final = nil
}
