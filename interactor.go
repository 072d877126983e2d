package trellis

import (
	"log/slog"
	"slices"
	"time"
)

// InteractorOptions configures an Interactor.
type InteractorOptions struct {
	// UpdateInterval throttles tool updates (and with them hover picks).
	// Zero runs an update on every Advance call.
	UpdateInterval time.Duration
	// ZoomStep is the zoom change per wheel unit.
	ZoomStep float64
	// ZoomDuration animates wheel zoom over this many seconds; 0 is instant.
	ZoomDuration float32
	// Connect decides which handle pairs ConnectTool may join.
	Connect ConnectPolicy
	// SpatialBounds and SpatialCapacity configure the quadtree SelectTool
	// builds when it starts.
	SpatialBounds   Rect
	SpatialCapacity int
}

// DefaultInteractorOptions returns the options used by NewEditor.
func DefaultInteractorOptions() InteractorOptions {
	return InteractorOptions{
		UpdateInterval:  time.Second / 30,
		ZoomStep:        0.1,
		Connect:         DefaultConnectPolicy(),
		SpatialBounds:   Rect{X: -10000, Y: -10000, Width: 20000, Height: 20000},
		SpatialCapacity: defaultQuadCapacity,
	}
}

type pendingPick struct {
	req        *PickRequest
	generation uint64
	apply      func(ElementID)
}

type deferredPick struct {
	generation uint64
	apply      func(ElementID)
}

// Interactor owns the pointer and key state, the hover and selection state,
// and the active tool. Raw input events are dispatched to the active tool;
// tools read picks through the interactor and mutate the graph.
//
// At most one exact pick is outstanding at a time. Every tool swap bumps the
// generation counter, and a pick that resolves under a different generation
// than the one it was issued in is discarded.
type Interactor struct {
	graph    *Graph
	viewport *Viewport
	picker   *PickResolver
	opts     InteractorOptions
	logger   *slog.Logger
	store    EventStore

	tool       Tool
	generation uint64

	mouse      Vec2
	pressing   bool
	modifiers  KeyModifiers
	mouseMoved bool
	elapsed    time.Duration

	hover     ElementID
	selection []ElementID
	selected  map[ElementID]struct{}

	pending  *pendingPick
	deferred *deferredPick
}

// NewInteractor creates an interactor with a BaseTool installed.
func NewInteractor(graph *Graph, viewport *Viewport, picker *PickResolver, opts InteractorOptions) *Interactor {
	if graph == nil || viewport == nil || picker == nil {
		panic("trellis: NewInteractor requires a graph, viewport and pick resolver")
	}
	if opts.SpatialBounds.Width <= 0 || opts.SpatialBounds.Height <= 0 {
		opts.SpatialBounds = DefaultInteractorOptions().SpatialBounds
	}
	i := &Interactor{
		graph:    graph,
		viewport: viewport,
		picker:   picker,
		opts:     opts,
		logger:   slog.Default(),
		selected: make(map[ElementID]struct{}),
	}
	i.tool = newBaseTool(i)
	return i
}

// SetLogger sets the interactor's logger. nil restores slog.Default().
func (i *Interactor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	i.logger = logger
}

// SetEventStore sets the optional receiver of editor events. nil disables
// event emission.
func (i *Interactor) SetEventStore(store EventStore) { i.store = store }

// Graph returns the edited graph.
func (i *Interactor) Graph() *Graph { return i.graph }

// Viewport returns the viewport used for screen/world conversion.
func (i *Interactor) Viewport() *Viewport { return i.viewport }

// Options returns the interactor's options.
func (i *Interactor) Options() InteractorOptions { return i.opts }

func (i *Interactor) emit(e EditorEvent) {
	if i.store == nil {
		return
	}
	e.Tool = i.tool.Kind()
	e.Generation = i.generation
	i.store.EmitEvent(e)
}

// --- Tools ---

// Tool returns the active tool.
func (i *Interactor) Tool() Tool { return i.tool }

// Generation returns the tool generation, incremented on every tool swap.
func (i *Interactor) Generation() uint64 { return i.generation }

// SetTool replaces the active tool.
func (i *Interactor) SetTool(t Tool) {
	if t == nil {
		panic("trellis: SetTool called with a nil tool")
	}
	prev := i.tool.Kind()
	i.tool = t
	i.generation++
	i.logger.Debug("tool changed", "from", prev.String(), "to", t.Kind().String(), "generation", i.generation)
	i.emit(EditorEvent{Type: EventToolChanged})
}

// ResetTool installs a fresh BaseTool.
func (i *Interactor) ResetTool() { i.SetTool(newBaseTool(i)) }

// --- Input dispatch ---

// PointerDown dispatches a press to the active tool.
func (i *Interactor) PointerDown(e PointerEvent) {
	i.mouse = e.Screen
	i.modifiers = e.Modifiers
	i.pressing = true
	i.tool.OnPointerDown(e)
}

// PointerMove records the mouse position and dispatches the move.
func (i *Interactor) PointerMove(e PointerEvent) {
	if e.Screen != i.mouse {
		i.mouseMoved = true
	}
	i.mouse = e.Screen
	i.modifiers = e.Modifiers
	i.tool.OnPointerMove(e)
}

// PointerUp dispatches a release to the active tool.
func (i *Interactor) PointerUp(e PointerEvent) {
	i.mouse = e.Screen
	i.modifiers = e.Modifiers
	i.pressing = false
	i.tool.OnPointerUp(e)
}

// KeyDown dispatches a key press to the active tool.
func (i *Interactor) KeyDown(e KeyEvent) {
	i.modifiers = e.Modifiers
	if e.Key == KeyShift {
		i.modifiers |= ModShift
	}
	i.tool.OnKeyDown(e)
}

// KeyUp dispatches a key release to the active tool.
func (i *Interactor) KeyUp(e KeyEvent) {
	i.modifiers = e.Modifiers
	if e.Key == KeyShift {
		i.modifiers &^= ModShift
	}
	i.tool.OnKeyUp(e)
}

// Wheel dispatches a scroll to the active tool.
func (i *Interactor) Wheel(e WheelEvent) {
	i.mouse = e.Screen
	i.modifiers = e.Modifiers
	i.tool.OnWheel(e)
}

// Advance moves the interactor clock forward by dt. It resolves the
// outstanding pick if its readback arrived and, once UpdateInterval has
// elapsed and the mouse moved, runs the active tool's Update.
func (i *Interactor) Advance(dt time.Duration) {
	i.pollPick()

	i.elapsed += dt
	if i.elapsed < i.opts.UpdateInterval {
		return
	}
	i.elapsed = 0
	if !i.mouseMoved {
		return
	}
	i.mouseMoved = false
	i.tool.Update()
}

// requestUpdate keeps the next tick eligible for a tool update even if the
// mouse does not move again.
func (i *Interactor) requestUpdate() { i.mouseMoved = true }

// --- Pointer state ---

// MouseScreen returns the last known mouse position in screen coordinates.
func (i *Interactor) MouseScreen() Vec2 { return i.mouse }

// MouseWorld returns the last known mouse position in world coordinates.
func (i *Interactor) MouseWorld() Vec2 { return i.viewport.ScreenToWorld(i.mouse) }

// IsPressing reports whether the primary button is held.
func (i *Interactor) IsPressing() bool { return i.pressing }

// Modifiers returns the last known modifier keys.
func (i *Interactor) Modifiers() KeyModifiers { return i.modifiers }

// --- Picking ---

// PickPending reports whether an exact pick is outstanding.
func (i *Interactor) PickPending() bool { return i.pending != nil }

// pickAtMouse issues an exact pick at the mouse position. apply runs with
// the result if the tool generation is unchanged when the readback arrives.
// It returns false, issuing nothing, while another pick is outstanding.
func (i *Interactor) pickAtMouse(apply func(ElementID)) bool {
	if i.pending != nil {
		return false
	}
	i.issuePick(i.generation, apply)
	return true
}

// pickAtMouseDeferred is like pickAtMouse but, when a pick is outstanding,
// queues the request and issues it once the slot frees up.
func (i *Interactor) pickAtMouseDeferred(apply func(ElementID)) {
	if i.pending != nil {
		i.deferred = &deferredPick{generation: i.generation, apply: apply}
		return
	}
	i.issuePick(i.generation, apply)
}

func (i *Interactor) issuePick(gen uint64, apply func(ElementID)) {
	x, y := int(i.mouse.X), int(i.mouse.Y)
	i.pending = &pendingPick{
		req:        i.picker.Pick(x, y),
		generation: gen,
		apply:      apply,
	}
}

func (i *Interactor) pollPick() {
	if i.pending == nil {
		return
	}
	id, done := i.pending.req.Poll()
	if !done {
		return
	}
	p := i.pending
	i.pending = nil
	if p.generation != i.generation {
		i.logger.Debug("discarding stale pick", "issued", p.generation, "current", i.generation)
	} else {
		p.apply(id)
	}

	if d := i.deferred; d != nil {
		i.deferred = nil
		if d.generation == i.generation {
			i.issuePick(d.generation, d.apply)
		}
	}
}

// --- Hover ---

// Hovered returns the hovered element, or the zero id when nothing is
// hovered or the hovered element no longer exists.
func (i *Interactor) Hovered() ElementID {
	if i.hover.IsZero() {
		return ElementID{}
	}
	if _, ok := i.graph.Element(i.hover); !ok {
		return ElementID{}
	}
	return i.hover
}

// updateHover picks at the mouse and applies the result as the hover. When
// the pick slot is busy it asks for another update next tick.
func (i *Interactor) updateHover() {
	if !i.pickAtMouse(i.SetHovered) {
		i.requestUpdate()
	}
}

// SetHovered replaces the hovered element.
func (i *Interactor) SetHovered(id ElementID) {
	if id == i.hover {
		return
	}
	i.hover = id
	i.emit(EditorEvent{Type: EventHoverChanged, ID: id})
}

// --- Selection ---

// Selection returns a copy of the selected ids in selection order.
func (i *Interactor) Selection() []ElementID { return slices.Clone(i.selection) }

// SelectionCount returns the number of selected elements.
func (i *Interactor) SelectionCount() int { return len(i.selection) }

// IsSelected reports whether id is selected.
func (i *Interactor) IsSelected(id ElementID) bool {
	_, ok := i.selected[id]
	return ok
}

// Select adds ids to the selection. Already selected ids are ignored.
func (i *Interactor) Select(ids ...ElementID) {
	changed := false
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := i.selected[id]; ok {
			continue
		}
		i.selected[id] = struct{}{}
		i.selection = append(i.selection, id)
		changed = true
	}
	if changed {
		i.emit(EditorEvent{Type: EventSelectionChanged, Selection: i.Selection()})
	}
}

// Unselect removes id from the selection.
func (i *Interactor) Unselect(id ElementID) {
	if _, ok := i.selected[id]; !ok {
		return
	}
	delete(i.selected, id)
	i.selection = removeID(i.selection, id)
	i.emit(EditorEvent{Type: EventSelectionChanged, Selection: i.Selection()})
}

// ClearSelection empties the selection.
func (i *Interactor) ClearSelection() {
	if len(i.selection) == 0 {
		return
	}
	clear(i.selected)
	i.selection = i.selection[:0]
	i.emit(EditorEvent{Type: EventSelectionChanged})
}

// DeleteSelection removes every selected element from the graph (edges
// first, then handles, then nodes, so cascades never double count) and
// clears the selection. It returns the number of elements removed.
func (i *Interactor) DeleteSelection() int {
	if len(i.selection) == 0 {
		return 0
	}
	targets := i.Selection()
	removed := 0
	for _, kind := range [...]ElementKind{KindEdge, KindHandle, KindNode} {
		for _, id := range targets {
			if id.Kind() != kind {
				continue
			}
			var ok bool
			switch kind {
			case KindEdge:
				ok = i.graph.RemoveEdge(id)
			case KindHandle:
				ok = i.graph.RemoveHandle(id)
			case KindNode:
				ok = i.graph.RemoveNode(id)
			}
			if ok {
				removed++
			}
		}
	}
	clear(i.selected)
	i.selection = i.selection[:0]
	if _, ok := i.graph.Element(i.hover); !ok {
		i.SetHovered(ElementID{})
	}
	i.logger.Debug("deleted selection", "requested", len(targets), "removed", removed)
	i.emit(EditorEvent{Type: EventElementsDeleted, Selection: targets})
	return removed
}
