package canopy

import (
	"sort"

	"github.com/tanema/gween"
)

// TweenGroup animates up to 4 numeric properties of one Animatable
// simultaneously. Backends use it to move a reused element to new geometry
// on redraw. Start registers it with a scheduler; until then Update can be
// driven by hand. Times are in milliseconds.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	ends   [4]float64
	target Animatable
	delay  float32
	waited float32
	Done   bool
}

// NewTweenGroup tweens each named property of target from its current value
// to the value in to. Properties the target lacks, and any beyond the fourth,
// are ignored.
func NewTweenGroup(target Animatable, to map[string]float64, t Transition) *TweenGroup {
	fn, _ := easing(t.Easing)
	g := &TweenGroup{target: target, delay: float32(t.Delay)}
	for _, name := range sortedKeys(to) {
		if g.count == len(g.tweens) {
			break
		}
		p := target.Property(name)
		if p == nil {
			continue
		}
		g.tweens[g.count] = gween.New(float32(*p), float32(to[name]), float32(t.Duration), fn)
		g.fields[g.count] = p
		g.ends[g.count] = to[name]
		g.count++
	}
	return g
}

// Update advances all tweens by dt milliseconds and writes the values to the
// target. Once every tween has finished, Done is set.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if d, ok := g.target.(disposable); ok && d.IsDisposed() {
		g.Done = true
		return
	}
	if g.waited < g.delay {
		g.waited += dt
		if g.waited < g.delay {
			return
		}
		dt = g.waited - g.delay
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.target.MarkDirty()
}

// Finish jumps every tween to its end value.
func (g *TweenGroup) Finish() {
	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.ends[i]
	}
	g.Done = true
	g.target.MarkDirty()
}

func (g *TweenGroup) step(dt float32) bool {
	g.Update(dt)
	return g.Done
}

// Start hands the group to sched, which updates it every Advance until done.
func (g *TweenGroup) Start(sched *Scheduler) {
	sched.add(g)
}

// Stop detaches the group from sched, leaving the target where it is.
func (g *TweenGroup) Stop(sched *Scheduler) {
	sched.remove(g)
	g.Done = true
}

// disposable is implemented by targets that can leave their tree while a
// tween is running.
type disposable interface {
	IsDisposed() bool
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
