package canopy

import (
	"sort"
	"time"
)

// stepper is advanced by the scheduler once per tick while registered.
// step returns true when it has finished and should be dropped.
type stepper interface {
	step(dt float32) bool
}

// Timer is a pending callback created by Scheduler.After.
type Timer struct {
	due      time.Duration
	seq      uint64
	fn       func()
	canceled bool
}

// Stop cancels the timer. Stopping a fired or stopped timer is a no-op.
func (t *Timer) Stop() {
	if t != nil {
		t.canceled = true
	}
}

// Scheduler is the cooperative event loop every chart runs on. It holds a
// tick counter, a virtual clock, pending timers and the active tweens, and
// only advances when Advance is called. There is no goroutine and no
// locking; everything runs on the caller's goroutine.
type Scheduler struct {
	tick    uint64
	now     time.Duration
	seq     uint64
	timers  []*Timer
	active  []stepper
	pending []stepper
	running bool
}

// NewScheduler returns an idle scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Tick returns the number of completed Advance calls. Calls made between two
// Advance calls share a tick.
func (s *Scheduler) Tick() uint64 { return s.tick }

// Now returns the virtual time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Busy reports whether tweens or timers are outstanding.
func (s *Scheduler) Busy() bool {
	if len(s.active) > 0 || len(s.pending) > 0 {
		return true
	}
	for _, t := range s.timers {
		if !t.canceled {
			return true
		}
	}
	return false
}

// After schedules fn to run once the virtual clock has advanced by d.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{due: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *Scheduler) add(st stepper) {
	if s.running {
		s.pending = append(s.pending, st)
		return
	}
	s.active = append(s.active, st)
}

func (s *Scheduler) remove(st stepper) {
	s.active = removeStepper(s.active, st)
	s.pending = removeStepper(s.pending, st)
}

// Advance moves the clock forward by dt: active tweens step first, then due
// timers fire in due order. Work scheduled during Advance starts on the
// next call.
func (s *Scheduler) Advance(dt time.Duration) {
	s.tick++
	s.now += dt
	ms := float32(dt) / float32(time.Millisecond)

	s.running = true
	steppers := append([]stepper(nil), s.active...)
	for _, st := range steppers {
		if !containsStepper(s.active, st) {
			continue
		}
		if st.step(ms) {
			s.active = removeStepper(s.active, st)
		}
	}
	s.running = false
	s.active = append(s.active, s.pending...)
	s.pending = s.pending[:0]

	s.fireTimers()
}

// Run advances in fixed increments until nothing is outstanding or limit
// of virtual time has elapsed. Looping animations keep the scheduler busy,
// so limit bounds the call.
func (s *Scheduler) Run(step, limit time.Duration) {
	if step <= 0 {
		return
	}
	for elapsed := time.Duration(0); elapsed < limit && s.Busy(); elapsed += step {
		s.Advance(step)
	}
}

func (s *Scheduler) fireTimers() {
	var due []*Timer
	kept := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.canceled:
		case t.due <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept

	// Timers scheduled by these callbacks fire on a later Advance.
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if !t.canceled {
			t.canceled = true
			t.fn()
		}
	}
}

func containsStepper(list []stepper, st stepper) bool {
	for _, x := range list {
		if x == st {
			return true
		}
	}
	return false
}

func removeStepper(list []stepper, st stepper) []stepper {
	for i := range list {
		if list[i] == st {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
