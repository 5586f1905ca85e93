package litebrite

// syntheticPointerEvent represents a single injected pointer event in
// display coordinates, the same space as real mouse input.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// InjectPress queues a left-button press at display position (x, y). The
// event is consumed on the next tick's input processing.
func (s *Session) InjectPress(x, y float64) {
	s.inject(syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectErase queues a right-button press, which erases instead of drawing.
func (s *Session) InjectErase(x, y float64) {
	s.inject(syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonRight})
}

// InjectMove queues a move with the button held down. Use this between
// InjectPress and InjectRelease to simulate a drag.
func (s *Session) InjectMove(x, y float64) {
	s.inject(syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectRelease queues a release at (x, y).
func (s *Session) InjectRelease(x, y float64) {
	s.inject(syntheticPointerEvent{x: x, y: y, pressed: false, button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release at the same position.
// Consumes two ticks.
func (s *Session) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves and a release at (toX, toY). The sequence consumes
// frames ticks; the minimum is 2.
func (s *Session) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// PendingInjections returns the number of queued synthetic events.
func (s *Session) PendingInjections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.injectQueue)
}

func (s *Session) inject(evt syntheticPointerEvent) {
	s.mu.Lock()
	s.injectQueue = append(s.injectQueue, evt)
	s.mu.Unlock()
}

// processInjectedInput pops one event from the queue and feeds it through
// the pointer state machine as pointer 0. Returns true if an event was
// consumed, in which case real mouse input is skipped for the tick.
func (s *Session) processInjectedInput() bool {
	s.mu.Lock()
	if len(s.injectQueue) == 0 {
		s.mu.Unlock()
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
	s.mu.Unlock()

	s.pointerEvent(0, evt.x, evt.y, evt.pressed, evt.button)
	return true
}
