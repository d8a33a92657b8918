package canopy

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tanema/gween"
)

// Animation lifecycle events.
const (
	EventStart   = "start"
	EventProcess = "process"
	EventEnd     = "end"
	EventDestroy = "destroy"
)

// AnimationOptions configures one animation instance. Durations are in
// milliseconds.
type AnimationOptions struct {
	Duration float64 `toml:"duration" yaml:"duration,omitempty"`
	Delay    float64 `toml:"delay" yaml:"delay,omitempty"`
	Easing   string  `toml:"easing" yaml:"easing,omitempty"`
	Loop     bool    `toml:"loop" yaml:"loop,omitempty"`
	// Offset is the starting displacement of the "move" effect.
	Offset Vec2 `toml:"offset" yaml:"offset,omitempty"`
	// Low is the alpha multiplier the "breathe" effect dips to.
	Low float64 `toml:"low" yaml:"low,omitempty"`
}

// AnimationPhase is the lifecycle state of an Animation.
type AnimationPhase uint8

const (
	PhaseUninitialized AnimationPhase = iota
	PhaseInitialized
	PhasePlaying
	PhaseIdle
)

func (p AnimationPhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhasePlaying:
		return "playing"
	case PhaseIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// AnimationConfig describes an animation to construct.
type AnimationConfig struct {
	ID      string
	Kind    string
	Options AnimationOptions
	Targets []Animatable
}

// throttle collapses repeated calls within one scheduler tick.
type throttle struct {
	tick uint64
	used bool
}

func (t *throttle) allow(tick uint64) bool {
	if t.used && t.tick == tick {
		return false
	}
	t.used = true
	t.tick = tick
	return true
}

// Animation is a single animation instance: an effect driven by a gween
// tween on the chart scheduler. Init, Play and Destroy are throttled per
// tick, misuse is logged and ignored, and failures inside the effect are
// logged and swallowed.
//
// Events: "start", "process" (payload: eased progress as float64), "end",
// "destroy".
type Animation struct {
	Emitter

	id      string
	kind    string
	options AnimationOptions
	targets []Animatable
	effect  Effect
	sched   *Scheduler
	log     *log.Logger

	phase       AnimationPhase
	initialized bool
	available   bool
	playing     bool
	destroyed   bool

	tween  *gween.Tween
	waited float32

	initGate, playGate, destroyGate throttle
}

// NewAnimation builds an animation of a registered kind. Unknown kinds
// return a configuration error.
func NewAnimation(sched *Scheduler, cfg AnimationConfig, logger *log.Logger) (*Animation, error) {
	effect, err := newEffect(cfg.Kind, cfg.Options)
	if err != nil {
		return nil, err
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	a := &Animation{
		id:      id,
		kind:    cfg.Kind,
		options: cfg.Options,
		targets: cfg.Targets,
		effect:  effect,
		sched:   sched,
	}
	a.log = loggerOr(logger).With("animation", id, "kind", cfg.Kind)
	if _, ok := easing(cfg.Options.Easing); !ok {
		a.log.Warn("unknown easing, using default", "easing", cfg.Options.Easing, "default", defaultEasing)
	}
	return a, nil
}

func (a *Animation) ID() string                { return a.id }
func (a *Animation) Kind() string              { return a.kind }
func (a *Animation) Options() AnimationOptions { return a.options }
func (a *Animation) Phase() AnimationPhase     { return a.phase }
func (a *Animation) Playing() bool             { return a.playing }

// Available reports whether the animation is initialised and not destroyed.
func (a *Animation) Available() bool { return a.available }

// Init prepares the effect. Calling it twice is logged and ignored.
func (a *Animation) Init() {
	if !a.initGate.allow(a.sched.Tick()) {
		a.log.Debug("init throttled")
		return
	}
	a.init()
}

func (a *Animation) init() bool {
	if a.destroyed {
		a.log.Warn("init ignored: animation destroyed")
		return false
	}
	if a.initialized {
		a.log.Warn("init ignored: animation already initialized")
		return false
	}
	if err := guard(func() error { return a.effect.Init(a.targets) }); err != nil {
		a.log.Error("init failed", "err", err)
		return false
	}
	a.initialized = true
	a.available = true
	a.phase = PhaseInitialized
	return true
}

// Play starts the animation, initialising it first if needed. Playing an
// unavailable or already playing animation is logged and ignored.
func (a *Animation) Play() {
	if a.playing {
		a.log.Warn("play ignored: animation already playing")
		return
	}
	if !a.playGate.allow(a.sched.Tick()) {
		a.log.Debug("play throttled")
		return
	}
	if a.destroyed {
		a.log.Warn("play ignored: animation not available")
		return
	}
	if !a.initialized {
		a.initGate.allow(a.sched.Tick())
		a.init()
	}
	if !a.available {
		a.log.Warn("play ignored: animation not available")
		return
	}

	fn, _ := easing(a.options.Easing)
	a.playing = true
	a.phase = PhasePlaying
	a.waited = 0
	a.Fire(EventStart, a.id)
	if !a.playing {
		// A start handler destroyed the animation.
		return
	}
	a.apply(0)

	if a.options.Duration <= 0 && a.options.Delay <= 0 {
		a.apply(1)
		a.finish()
		return
	}
	a.tween = gween.New(0, 1, float32(a.options.Duration), fn)
	a.sched.add(a)
}

// step advances the tween by dt milliseconds; it reports completion.
func (a *Animation) step(dt float32) bool {
	if !a.playing {
		return true
	}
	delay := float32(a.options.Delay)
	if a.waited < delay {
		a.waited += dt
		if a.waited < delay {
			return false
		}
		dt = a.waited - delay
		a.waited = delay
	}

	var (
		v    float32 = 1
		done         = true
	)
	if a.options.Duration > 0 {
		v, done = a.tween.Update(dt)
	}
	a.apply(float64(v))
	if !a.playing {
		return true
	}
	if done {
		a.finish()
		return true
	}
	return false
}

func (a *Animation) apply(t float64) {
	if err := guard(func() error { a.effect.Apply(a.targets, t); return nil }); err != nil {
		a.log.Error("process failed", "err", err)
	}
	a.Fire(EventProcess, t)
}

// finish fires "end" and then runs the default end behaviour: a looping,
// still available animation plays again.
func (a *Animation) finish() {
	a.playing = false
	a.phase = PhaseIdle
	a.Fire(EventEnd, a.id)
	if a.options.Loop && a.available && !a.playing {
		a.Play()
	}
}

// Destroy stops the animation permanently and releases the effect.
func (a *Animation) Destroy() {
	if !a.destroyGate.allow(a.sched.Tick()) {
		a.log.Debug("destroy throttled")
		return
	}
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.available = false
	a.playing = false
	a.sched.remove(a)
	if a.initialized {
		if err := guard(func() error { a.effect.Release(a.targets); return nil }); err != nil {
			a.log.Error("destroy failed", "err", err)
		}
	}
	a.initialized = false
	a.phase = PhaseUninitialized
	a.Fire(EventDestroy, a.id)
}
