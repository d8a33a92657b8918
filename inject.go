package canopy

// syntheticPointerEvent represents a single injected pointer event in
// canvas coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// InjectPress queues a pointer press at (x, y) with the left button. The
// event is consumed on the next Update.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move to (x, y) with no button held. Use it to
// hover an element.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectRelease queues a pointer release at (x, y).
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same point. Consumes two frames.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// PendingInput reports how many injected events are still queued.
func (s *Scene) PendingInput() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through Pointer. Returns true if an event was consumed.
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.Pointer(evt.x, evt.y, evt.pressed, evt.button)
	return true
}
