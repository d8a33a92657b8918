package canopy

import (
	"reflect"
	"strconv"
	"time"
)

// sublayer is the render state one sublayer keeps between draws. Nothing
// outside its layer reads it.
type sublayer struct {
	name     string
	shape    Shape
	group    Group
	children []Group
	keys     []string
	order    map[string]int   // leading key -> child slot of the previous draw
	prev     []DrawDescriptor // previous frame, without transition
	drawn    bool
	override SublayerAnimation
	queue    *AnimationQueue
	replay   *Timer
}

func (l *Layer) sublayer(name string) *sublayer {
	if sub, ok := l.sublayers[name]; ok {
		return sub
	}
	sub := &sublayer{name: name, override: l.opts.Animation[name]}
	l.sublayers[name] = sub
	l.names = append(l.names, name)
	return sub
}

// DrawSublayer renders one sublayer: one child group per data group, in a
// render order that stays stable across redraws, skipping groups whose
// geometry and style did not change. It then rebinds the sublayer's
// interaction handlers and rebuilds its animation queue. Playback is
// scheduled on the chart's scheduler; DrawSublayer itself never animates.
func (l *Layer) DrawSublayer(name string, shape Shape, groups []DrawGroup, style Style) {
	if l.destroyed {
		return
	}
	b := l.chart.backend
	sub := l.sublayer(name)
	sub.shape = shape
	if sub.group == nil {
		sub.group = b.NewGroup(l.Root(), name)
	}
	redraw := sub.drawn
	anim := l.animation(sub)

	// Release the running queue first so effects restore their targets
	// before new geometry is written.
	l.stopAnimation(sub)

	ordered := sub.arrange(groups)
	for len(sub.children) < len(ordered) {
		sub.children = append(sub.children, b.NewGroup(sub.group, name+"-"+strconv.Itoa(len(sub.children))))
	}
	for len(sub.children) > len(ordered) {
		last := len(sub.children) - 1
		b.RemoveGroup(sub.children[last])
		sub.children[last] = nil
		sub.children = sub.children[:last]
	}

	var tr Transition
	if redraw {
		tr = anim.transition()
	}
	prev := sub.prev
	sub.prev = make([]DrawDescriptor, len(ordered))
	sub.keys = make([]string, len(ordered))
	skipped := 0
	for i, g := range ordered {
		sub.keys[i] = g.Key
		sub.prev[i] = DrawDescriptor{Data: g.Data, Style: style}
		if redraw && i < len(prev) && reflect.DeepEqual(prev[i], sub.prev[i]) {
			skipped++
			continue
		}
		b.Draw(sub.children[i], shape, DrawDescriptor{Data: g.Data, Transition: tr, Style: style})
	}
	if skipped > 0 {
		l.log.Debug("unchanged groups skipped", "sublayer", name, "skipped", skipped, "groups", len(ordered))
	}

	b.Bind(sub.group, func(in Interaction) { l.interact(sub, in) })

	var delay float64
	if redraw {
		delay = tr.Duration + tr.Delay
	}
	l.startAnimation(sub, anim, !redraw, delay)
	sub.drawn = true
}

// arrange assigns each incoming group a child slot. A group whose leading
// key held slot j last time keeps slot j while it exists, so reordered
// data moves existing elements instead of replacing them. The rest fill
// the free slots in incoming order.
func (s *sublayer) arrange(groups []DrawGroup) []DrawGroup {
	n := len(groups)
	slots := make([]int, n) // slot -> incoming index + 1
	placed := make([]bool, n)
	for i, g := range groups {
		if j, ok := s.order[g.Key]; ok && j < n && slots[j] == 0 {
			slots[j] = i + 1
			placed[i] = true
		}
	}
	free := 0
	for i := range groups {
		if placed[i] {
			continue
		}
		for slots[free] != 0 {
			free++
		}
		slots[free] = i + 1
	}

	out := make([]DrawGroup, n)
	s.order = make(map[string]int, n)
	for j, idx := range slots {
		out[j] = groups[idx-1]
		if _, dup := s.order[out[j].Key]; !dup {
			s.order[out[j].Key] = j
		}
	}
	return out
}

// animation merges the theme defaults for the sublayer's shape with its
// override.
func (l *Layer) animation(sub *sublayer) SublayerAnimation {
	return l.chart.theme.AnimationFor(sub.shape).Merge(sub.override)
}

// SetAnimation overrides the theme animation of a sublayer. It takes effect
// on the next draw or PlayAnimation.
func (l *Layer) SetAnimation(name string, anim SublayerAnimation) {
	l.sublayer(name).override = anim
}

// PlayAnimation rebuilds the sublayer's queue with its enter and loop
// animations and schedules it, replacing whatever queue was live.
func (l *Layer) PlayAnimation(name string) {
	sub, ok := l.sublayers[name]
	if !ok || sub.group == nil {
		l.log.Warn("play animation ignored: sublayer not drawn", "sublayer", name)
		return
	}
	l.stopAnimation(sub)
	l.startAnimation(sub, l.animation(sub), true, 0)
}

// Queue returns the live animation queue of a sublayer, or nil.
func (l *Layer) Queue(name string) *AnimationQueue {
	if sub, ok := l.sublayers[name]; ok {
		return sub.queue
	}
	return nil
}

func (l *Layer) stopAnimation(sub *sublayer) {
	if sub == nil {
		return
	}
	sub.replay.Stop()
	sub.replay = nil
	if sub.queue != nil {
		sub.queue.Destroy()
		sub.queue = nil
	}
}

// startAnimation builds the sublayer's queue: enter (when requested) then
// loop, as consecutive priority groups so the loop waits for the enter
// animation to finish. The queue plays after delay milliseconds.
func (l *Layer) startAnimation(sub *sublayer, anim SublayerAnimation, enter bool, delay float64) {
	q := NewQueue(l.chart.sched, QueueOptions{ID: l.id + "/" + sub.name, Logger: l.log})
	targets := l.chart.backend.Elements(sub.group)

	push := func(spec *AnimationSpec, loop bool) {
		opts := spec.Options
		opts.Loop = opts.Loop || loop
		if _, err := q.PushAnimation(spec.Type, opts, targets...); err != nil {
			l.log.Warn("animation skipped", "sublayer", sub.name, "err", err)
			l.chart.report(err)
		}
	}
	if enter && anim.Enter != nil && anim.Enter.Type != "" {
		push(anim.Enter, false)
	}
	if anim.Loop != nil && anim.Loop.Type != "" {
		push(anim.Loop, true)
	}
	q.On(EventTimeline, "layer", func(p any) { l.Fire(EventTimeline, p) })
	sub.queue = q

	if q.Len() == 0 {
		return
	}
	sub.replay = l.chart.sched.After(time.Duration(delay*float64(time.Millisecond)), q.Play)
}

func (l *Layer) interact(sub *sublayer, in Interaction) {
	slot := -1
	for i, g := range sub.children {
		if g == in.Group {
			slot = i
			break
		}
	}
	ev := LayerEvent{
		Type:     in.Type,
		Layer:    l.id,
		Sublayer: sub.name,
		Index:    in.Index,
		X:        in.X,
		Y:        in.Y,
	}
	if slot >= 0 {
		ev.Key = sub.keys[slot]
		if data := sub.prev[slot].Data; in.Index >= 0 && in.Index < len(data) {
			ev.Datum = data[in.Index]
		}
	}
	l.Fire(in.Type.Name(), ev)
	switch in.Type {
	case EventPointerEnter:
		l.Fire(EventTooltip, TooltipEvent{LayerEvent: ev, Visible: true})
	case EventPointerLeave:
		l.Fire(EventTooltip, TooltipEvent{LayerEvent: ev})
	}
	l.chart.interact(ev)
}
