package trellis

// BaseTool is the idle tool. It keeps the hover state current with one exact
// pick per tick and hands pointer gestures to the specialised tools.
type BaseTool struct {
	noopTool
	i *Interactor
}

func newBaseTool(i *Interactor) *BaseTool { return &BaseTool{i: i} }

// Kind implements Tool.
func (t *BaseTool) Kind() ToolKind { return ToolBase }

// Update picks at the mouse position and updates the hover state when the
// result differs.
func (t *BaseTool) Update() { t.i.updateHover() }

// OnPointerDown starts a pan on empty space, a connection on a handle, or a
// drag on anything else.
func (t *BaseTool) OnPointerDown(e PointerEvent) {
	hovered := t.i.Hovered()
	if hovered.IsZero() {
		t.i.ClearSelection()
		t.i.SetTool(newViewportTool(t.i))
		t.i.Tool().OnPointerDown(e)
		return
	}

	if !t.i.IsSelected(hovered) {
		t.i.ClearSelection()
	}

	switch hovered.Kind() {
	case KindNode:
		t.i.Select(hovered)
	case KindHandle:
		if ct := newConnectTool(t.i, hovered); ct != nil {
			t.i.SetTool(ct)
			t.i.Tool().OnPointerDown(e)
			return
		}
	case KindEdge:
		t.i.Select(hovered)
	}

	t.i.SetTool(newDragTool(t.i))
	t.i.Tool().OnPointerDown(e)
}

// OnKeyDown enters rectangle selection on Shift, deletes the selection on
// Delete or Backspace, and clears it on Escape.
func (t *BaseTool) OnKeyDown(e KeyEvent) {
	switch e.Key {
	case KeyShift:
		t.i.SetTool(newSelectTool(t.i))
	case KeyDelete, KeyBackspace:
		t.i.DeleteSelection()
	case KeyEscape:
		t.i.ClearSelection()
	}
}

// OnWheel hands the scroll to a ViewportTool.
func (t *BaseTool) OnWheel(e WheelEvent) {
	t.i.SetTool(newViewportTool(t.i))
	t.i.Tool().OnWheel(e)
}
