package trellis

// PointerEvent is a mouse press, move or release in screen coordinates.
type PointerEvent struct {
	Screen    Vec2
	Button    MouseButton
	Modifiers KeyModifiers
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key       Key
	Modifiers KeyModifiers
}

// WheelEvent is a scroll. Positive DeltaY scrolls down (zooms out).
type WheelEvent struct {
	Screen    Vec2
	DeltaX    float64
	DeltaY    float64
	Modifiers KeyModifiers
}

// EventType identifies a kind of editor event.
type EventType uint8

const (
	EventHoverChanged     EventType = iota // hovered element changed (ID may be zero)
	EventSelectionChanged                  // selection set changed
	EventToolChanged                       // active tool was replaced
	EventEdgeConnected                     // ConnectTool created an edge (ID)
	EventElementsDeleted                   // selection was deleted from the graph
)

var eventTypeNames = [...]string{
	EventHoverChanged:     "hover-changed",
	EventSelectionChanged: "selection-changed",
	EventToolChanged:      "tool-changed",
	EventEdgeConnected:    "edge-connected",
	EventElementsDeleted:  "elements-deleted",
}

// String returns a readable event type name.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// EditorEvent describes a change in interaction state, delivered to the
// optional EventStore.
type EditorEvent struct {
	Type EventType
	// ID is the hovered element, the new edge, or zero.
	ID ElementID
	// Tool is the active tool after the event.
	Tool ToolKind
	// Selection is a copy of the selection for selection and delete events.
	Selection []ElementID
	// Generation is the interactor's tool generation when the event fired.
	Generation uint64
}

// EventStore receives editor events, typically to forward them into an ECS
// world (see the ecs package).
type EventStore interface {
	EmitEvent(event EditorEvent)
}
