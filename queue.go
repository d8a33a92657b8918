package canopy

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// EventTimeline is fired on a queue for every start, process and end of
// its members, nested queues included. The payload is a QueueEvent.
const EventTimeline = "timeline"

// Playable is anything an AnimationQueue can sequence: an Animation or a
// nested AnimationQueue.
type Playable interface {
	ID() string
	Play()
	Destroy()
	On(event, scope string, fn Handler)
	Off(event, scope string)
}

// QueueEvent tags a member event re-emitted on a queue.
type QueueEvent struct {
	Queue    string
	ID       string
	Priority int
	State    string
	Progress float64
}

// QueueEntry describes one queued member.
type QueueEntry struct {
	ID       string
	Priority int
}

// QueueOptions configures NewQueue.
type QueueOptions struct {
	ID     string
	Loop   bool
	Logger *log.Logger
}

type queueEntry struct {
	id       string
	priority int
	member   Playable
}

// AnimationQueue plays members in ascending priority groups. A group starts
// only after every member of the previous group has fired "end" at least
// once; the last group's completion fires the queue's own "end". Entry 0 is
// a sentinel "empty" animation whose start and end stand for the queue's.
//
// Events: "start", "end", "destroy", and "timeline" (payload QueueEvent).
type AnimationQueue struct {
	Emitter

	id    string
	sched *Scheduler
	log   *log.Logger
	loop  bool

	entries []*queueEntry
	seq     int

	connected bool
	groups    [][]*queueEntry
	barriers  []*barrier
	destroyed bool
}

// NewQueue returns an empty queue holding only its sentinel.
func NewQueue(sched *Scheduler, opts QueueOptions) *AnimationQueue {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	q := &AnimationQueue{
		id:    id,
		sched: sched,
		loop:  opts.Loop,
		log:   loggerOr(opts.Logger).With("queue", id),
	}
	// The empty kind is built in, so this cannot fail.
	sentinel, _ := NewAnimation(sched, AnimationConfig{ID: id + ":sentinel", Kind: "empty"}, opts.Logger)
	q.entries = []*queueEntry{{id: sentinel.ID(), member: sentinel}}
	return q
}

func (q *AnimationQueue) ID() string { return q.id }

// Len returns the number of members, not counting the sentinel.
func (q *AnimationQueue) Len() int { return len(q.entries) - 1 }

// Entries lists the members in push order.
func (q *AnimationQueue) Entries() []QueueEntry {
	out := make([]QueueEntry, 0, q.Len())
	for _, e := range q.entries[1:] {
		out = append(out, QueueEntry{ID: e.id, Priority: e.priority})
	}
	return out
}

// Member returns the member with the given id.
func (q *AnimationQueue) Member(id string) (Playable, bool) {
	for _, e := range q.entries[1:] {
		if e.id == id {
			return e.member, true
		}
	}
	return nil, false
}

// PushAnimation wraps a new animation instance of kind and appends it.
func (q *AnimationQueue) PushAnimation(kind string, opts AnimationOptions, targets ...Animatable) (*Animation, error) {
	a, err := NewAnimation(q.sched, AnimationConfig{Kind: kind, Options: opts, Targets: targets}, q.log)
	if err != nil {
		return nil, err
	}
	q.push(a)
	return a, nil
}

// PushQueue nests another queue as a single member.
func (q *AnimationQueue) PushQueue(sub *AnimationQueue) {
	if sub == nil || sub == q {
		return
	}
	q.push(sub)
}

// Push appends any playable member.
func (q *AnimationQueue) Push(p Playable) {
	if p != nil {
		q.push(p)
	}
}

func (q *AnimationQueue) push(p Playable) {
	q.seq++
	q.entries = append(q.entries, &queueEntry{id: p.ID(), priority: q.seq, member: p})
	q.connected = false
}

// Remove drops the member with the given id without destroying it.
func (q *AnimationQueue) Remove(id string) (Playable, bool) {
	for i := 1; i < len(q.entries); i++ {
		e := q.entries[i]
		if e.id != id {
			continue
		}
		q.unsubscribe(e.member)
		copy(q.entries[i:], q.entries[i+1:])
		q.entries[len(q.entries)-1] = nil
		q.entries = q.entries[:len(q.entries)-1]
		q.connected = false
		return e.member, true
	}
	return nil, false
}

// Connect partitions the members into priority groups. With no arguments
// each member keeps its current priority (push order by default). With one
// priority per member, they are assigned in push order; any other count is
// logged and ignored.
func (q *AnimationQueue) Connect(priorities ...int) {
	switch {
	case len(priorities) == 0:
	case len(priorities) == q.Len():
		for i, p := range priorities {
			q.entries[i+1].priority = p
		}
	default:
		q.log.Warn("connect: priority count mismatch, keeping previous priorities",
			"priorities", len(priorities), "members", q.Len())
	}
	q.connect()
}

// ConnectFunc assigns each member the priority returned by fn, given its id
// and position in push order.
func (q *AnimationQueue) ConnectFunc(fn func(id string, index int) int) {
	for i, e := range q.entries[1:] {
		e.priority = fn(e.id, i)
	}
	q.connect()
}

func (q *AnimationQueue) scope(kind string) string { return q.id + ":" + kind }

func (q *AnimationQueue) unsubscribe(p Playable) {
	emit := q.scope("emit")
	for _, ev := range []string{EventStart, EventProcess, EventEnd, EventTimeline} {
		p.Off(ev, emit)
	}
	p.Off(EventEnd, q.scope("barrier"))
}

func (q *AnimationQueue) connect() {
	for _, e := range q.entries {
		q.unsubscribe(e.member)
	}

	members := append([]*queueEntry(nil), q.entries[1:]...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].priority < members[j].priority })
	q.groups = q.groups[:0]
	for i, e := range members {
		if i == 0 || e.priority != members[i-1].priority {
			q.groups = append(q.groups, nil)
		}
		last := len(q.groups) - 1
		q.groups[last] = append(q.groups[last], e)
	}

	emit := q.scope("emit")
	sentinel := q.entries[0].member
	sentinel.On(EventStart, emit, func(any) { q.Fire(EventStart, q.id) })
	sentinel.On(EventEnd, q.scope("barrier"), func(any) { q.advance(0) })

	for _, e := range members {
		q.forward(e)
	}

	q.barriers = q.barriers[:0]
	for k, group := range q.groups {
		next := k + 1
		list := make([]Playable, len(group))
		for i, e := range group {
			list[i] = e.member
		}
		q.barriers = append(q.barriers, newBarrier(list, q.scope("barrier"), func() { q.advance(next) }))
	}
	q.connected = true
}

// forward re-emits a member's events as timeline events.
func (q *AnimationQueue) forward(e *queueEntry) {
	emit := q.scope("emit")
	tag := func(state string) Handler {
		return func(payload any) {
			ev := QueueEvent{Queue: q.id, ID: e.id, Priority: e.priority, State: state}
			if state == EventEnd {
				ev.Progress = 1
			}
			if t, ok := payload.(float64); ok {
				ev.Progress = t
			}
			q.Fire(EventTimeline, ev)
		}
	}
	e.member.On(EventStart, emit, tag(EventStart))
	e.member.On(EventProcess, emit, tag(EventProcess))
	e.member.On(EventEnd, emit, tag(EventEnd))
	if _, nested := e.member.(*AnimationQueue); nested {
		e.member.On(EventTimeline, emit, func(payload any) { q.Fire(EventTimeline, payload) })
	}
}

// advance plays group k, or finishes the queue once every group is done.
func (q *AnimationQueue) advance(k int) {
	if q.destroyed {
		return
	}
	if k >= len(q.groups) {
		q.finish()
		return
	}
	for _, e := range q.groups[k] {
		e.member.Play()
	}
}

func (q *AnimationQueue) finish() {
	q.Fire(EventEnd, q.id)
	if q.loop && !q.destroyed {
		q.Play()
	}
}

// Play reconnects if members changed since the last Connect, then plays the
// sentinel, which cascades into the first group.
func (q *AnimationQueue) Play() {
	if q.destroyed {
		q.log.Warn("play ignored: queue destroyed")
		return
	}
	if !q.connected {
		q.connect()
	}
	q.entries[0].member.Play()
}

// Destroy destroys the sentinel and every member.
func (q *AnimationQueue) Destroy() {
	if q.destroyed {
		return
	}
	q.destroyed = true
	for _, e := range q.entries {
		q.unsubscribe(e.member)
		e.member.Destroy()
	}
	q.groups = nil
	q.barriers = nil
	q.Fire(EventDestroy, q.id)
}

// Destroyed reports whether Destroy was called.
func (q *AnimationQueue) Destroyed() bool { return q.destroyed }

// barrier calls done once every member has fired "end" at least once, then
// re-arms itself so looping members keep the same semantics.
type barrier struct {
	fired []bool
	count int
	done  func()
}

func newBarrier(members []Playable, scope string, done func()) *barrier {
	b := &barrier{fired: make([]bool, len(members)), done: done}
	for i, m := range members {
		m.On(EventEnd, scope, func(any) { b.mark(i) })
	}
	return b
}

func (b *barrier) mark(i int) {
	if b.fired[i] {
		return
	}
	b.fired[i] = true
	b.count++
	if b.count < len(b.fired) {
		return
	}
	clear(b.fired)
	b.count = 0
	b.done()
}
