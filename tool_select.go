package trellis

import "slices"

// SelectTool is the rectangle selection active while Shift is held. On
// creation it snapshots node bounds and outgoing edge bounds into a
// quadtree; dragging a marquee adds every overlapped element to the
// selection. The selection only grows while the marquee is dragged.
type SelectTool struct {
	noopTool
	i      *Interactor
	index  *QuadTree[ElementID]
	start  Vec2 // world
	end    Vec2 // world
	active bool
}

func newSelectTool(i *Interactor) *SelectTool {
	t := &SelectTool{
		i:     i,
		index: NewQuadTree[ElementID](i.opts.SpatialBounds, i.opts.SpatialCapacity),
		start: i.MouseWorld(),
		end:   i.MouseWorld(),
	}
	t.rebuild()
	return t
}

// rebuild inserts every node's bounds and the polyline bounds of every edge
// leaving one of its handles.
func (t *SelectTool) rebuild() {
	g := t.i.graph
	t.index.Clear()
	for _, n := range g.Nodes() {
		t.index.Insert(n.Bounds(), n.ID)
		for _, h := range n.handles {
			for _, eid := range g.EdgesAt(h.ID) {
				e, _ := g.Edge(eid)
				if e.Source.Handle != h.ID {
					continue
				}
				path, ok := g.EdgePath(e)
				if !ok {
					continue
				}
				t.index.Insert(PolylineBounds(path), e.ID)
			}
		}
	}
}

// Kind implements Tool.
func (t *SelectTool) Kind() ToolKind { return ToolSelect }

// Index returns the spatial snapshot built when the tool started.
func (t *SelectTool) Index() *QuadTree[ElementID] { return t.index }

// Marquee returns the normalized selection rectangle in world coordinates.
// ok is false when no marquee is being dragged.
func (t *SelectTool) Marquee() (Rect, bool) {
	if !t.active {
		return Rect{}, false
	}
	return RectFromPoints(t.start, t.end), true
}

// Update keeps the hover state current.
func (t *SelectTool) Update() { t.i.updateHover() }

// OnPointerDown starts a marquee and toggles the hovered element if the
// snapshot places it under the press point. Hover can lag the pointer by a
// few ticks, so a stale hover never toggles.
func (t *SelectTool) OnPointerDown(PointerEvent) {
	t.start = t.i.MouseWorld()
	t.end = t.start
	t.active = true

	h := t.i.Hovered()
	if h.IsZero() || !slices.Contains(t.index.QueryPoint(t.start), h) {
		return
	}
	if t.i.IsSelected(h) {
		t.i.Unselect(h)
	} else {
		t.i.Select(h)
	}
}

// OnPointerMove grows the marquee and selects everything it overlaps.
func (t *SelectTool) OnPointerMove(PointerEvent) {
	if !t.i.IsPressing() || !t.active {
		return
	}
	t.end = t.i.MouseWorld()
	area := RectFromPoints(t.start, t.end)
	if hits := t.index.QueryArea(area); len(hits) > 0 {
		t.i.Select(hits...)
	}
}

// OnPointerUp clears the marquee. The tool stays active until Shift is
// released.
func (t *SelectTool) OnPointerUp(PointerEvent) {
	t.active = false
	t.start, t.end = Vec2{}, Vec2{}
}

// OnKeyUp returns to BaseTool when Shift is released.
func (t *SelectTool) OnKeyUp(e KeyEvent) {
	if e.Key == KeyShift {
		t.i.ResetTool()
	}
}
