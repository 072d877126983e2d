package trellis

// DragTool moves every selected node by the mouse delta on each tick.
type DragTool struct {
	noopTool
	i    *Interactor
	last Vec2 // world position at the previous tick
}

func newDragTool(i *Interactor) *DragTool {
	return &DragTool{i: i, last: i.MouseWorld()}
}

// Kind implements Tool.
func (t *DragTool) Kind() ToolKind { return ToolDrag }

// Update applies the world-space delta since the previous tick. Selected ids
// that are not nodes, or no longer exist, are skipped.
func (t *DragTool) Update() {
	cur := t.i.MouseWorld()
	delta := cur.Sub(t.last)
	t.last = cur
	if delta == (Vec2{}) {
		return
	}
	for _, id := range t.i.selection {
		if id.Kind() != KindNode {
			continue
		}
		n, ok := t.i.graph.Node(id)
		if !ok {
			continue
		}
		t.i.graph.MoveNode(id, n.Position.Add(delta))
	}
}

// OnPointerUp applies any movement not yet seen by a tick and ends the drag.
func (t *DragTool) OnPointerUp(PointerEvent) {
	t.Update()
	t.i.ResetTool()
}

// OnKeyDown ends the drag on Escape. Nodes keep their current positions.
func (t *DragTool) OnKeyDown(e KeyEvent) {
	if e.Key == KeyEscape {
		t.i.ResetTool()
	}
}
