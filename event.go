package canopy

// Handler receives the payload passed to Emitter.Fire.
type Handler func(payload any)

type subscription struct {
	id    uint32
	scope string
	once  bool
	fn    Handler
}

// Emitter is the event contract shared by layers, animations and queues.
//
// A handler registered with a non-empty scope replaces any earlier handler
// registered for the same event and scope, so redraw paths can re-subscribe
// without accumulating duplicates. The zero value is ready to use.
type Emitter struct {
	subs   map[string][]subscription
	nextID uint32
}

// On registers fn for event under scope. An empty scope always appends.
func (e *Emitter) On(event, scope string, fn Handler) {
	e.add(event, scope, fn, false)
}

// Once registers fn to run on the next Fire of event only.
func (e *Emitter) Once(event string, fn Handler) {
	e.add(event, "", fn, true)
}

// Off removes handlers for event. An empty scope removes every handler for
// the event; otherwise only the handler registered under scope is removed.
func (e *Emitter) Off(event, scope string) {
	if e.subs == nil {
		return
	}
	if scope == "" {
		delete(e.subs, event)
		return
	}
	e.subs[event] = removeScoped(e.subs[event], scope)
}

// OffScope removes the handlers registered under scope for every event.
func (e *Emitter) OffScope(scope string) {
	for event, list := range e.subs {
		e.subs[event] = removeScoped(list, scope)
	}
}

// HasHandlers reports whether any handler is registered for event.
func (e *Emitter) HasHandlers(event string) bool {
	return len(e.subs[event]) > 0
}

// Fire calls every handler registered for event in registration order.
// Handlers added while firing run from the next Fire on; once-handlers
// are removed before they run.
func (e *Emitter) Fire(event string, payload any) {
	list := e.subs[event]
	if len(list) == 0 {
		return
	}
	snapshot := make([]subscription, len(list))
	copy(snapshot, list)

	kept := list[:0]
	for _, s := range list {
		if !s.once {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(list); i++ {
		list[i] = subscription{}
	}
	e.subs[event] = kept

	for _, s := range snapshot {
		if !s.once && !e.stillSubscribed(event, s.id) {
			continue
		}
		s.fn(payload)
	}
}

func (e *Emitter) add(event, scope string, fn Handler, once bool) {
	if fn == nil {
		return
	}
	if e.subs == nil {
		e.subs = make(map[string][]subscription)
	}
	list := e.subs[event]
	if scope != "" {
		list = removeScoped(list, scope)
	}
	e.nextID++
	e.subs[event] = append(list, subscription{id: e.nextID, scope: scope, once: once, fn: fn})
}

// stillSubscribed reports whether handler id was not removed by an earlier
// handler during the same Fire.
func (e *Emitter) stillSubscribed(event string, id uint32) bool {
	for _, s := range e.subs[event] {
		if s.id == id {
			return true
		}
	}
	return false
}

// removeScoped removes the handler registered under scope.
// Uses copy+zero to avoid retaining the closure in the backing array.
func removeScoped(list []subscription, scope string) []subscription {
	for i := range list {
		if list[i].scope == scope {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = subscription{}
			return list[:len(list)-1]
		}
	}
	return list
}
