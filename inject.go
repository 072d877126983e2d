package trellis

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthKeyDown
	synthKeyUp
	synthWheel
)

// syntheticEvent is a single injected input event in screen coordinates,
// dispatched exactly like real input.
type syntheticEvent struct {
	kind   syntheticKind
	screen Vec2
	key    Key
	delta  float64
	mods   KeyModifiers
}

// InjectPress queues a left-button press at the given screen coordinates.
// Each queued event is consumed by one Update, and real input is ignored
// while the queue is not empty.
func (e *Editor) InjectPress(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthPress, screen: Vec2{x, y}})
}

// InjectMove queues a pointer move to the given screen coordinates.
func (e *Editor) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthMove, screen: Vec2{x, y}})
}

// InjectRelease queues a left-button release at the given screen coordinates.
func (e *Editor) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthRelease, screen: Vec2{x, y}})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (e *Editor) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a move to the start, a press, frames-2 interpolated
// moves and a release at the end. Minimum frames is 2.
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectMove(fromX, fromY)
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	e.InjectMove(toX, toY)
	e.InjectRelease(toX, toY)
}

// InjectKey queues a key press (down=true) or release.
func (e *Editor) InjectKey(k Key, down bool) {
	kind := synthKeyUp
	if down {
		kind = synthKeyDown
	}
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: kind, key: k})
}

// InjectWheel queues a scroll at the given screen coordinates. Positive
// deltaY zooms out.
func (e *Editor) InjectWheel(x, y, deltaY float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthWheel, screen: Vec2{x, y}, delta: deltaY})
}

// PendingInjections returns the number of queued synthetic events.
func (e *Editor) PendingInjections() int { return len(e.injectQueue) }

// processInjectedInput pops one event from the inject queue and dispatches
// it. Returns true if an event was consumed.
func (e *Editor) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	// Shift state carries across injected events so scripts can hold it.
	mods := e.interactor.Modifiers()
	pe := PointerEvent{Screen: evt.screen, Button: MouseButtonLeft, Modifiers: mods}
	switch evt.kind {
	case synthPress:
		e.interactor.PointerDown(pe)
	case synthMove:
		e.interactor.PointerMove(pe)
	case synthRelease:
		e.interactor.PointerUp(pe)
	case synthKeyDown:
		e.interactor.KeyDown(KeyEvent{Key: evt.key, Modifiers: mods})
	case synthKeyUp:
		e.interactor.KeyUp(KeyEvent{Key: evt.key, Modifiers: mods})
	case synthWheel:
		e.interactor.Wheel(WheelEvent{Screen: evt.screen, DeltaY: evt.delta, Modifiers: mods})
	}
	return true
}
