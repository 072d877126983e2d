package trellis

// ViewportTool pans the view while the pointer is held and zooms on wheel.
type ViewportTool struct {
	noopTool
	i    *Interactor
	last Vec2 // screen
}

func newViewportTool(i *Interactor) *ViewportTool {
	return &ViewportTool{i: i, last: i.MouseScreen()}
}

// Kind implements Tool.
func (t *ViewportTool) Kind() ToolKind { return ToolViewport }

// OnPointerDown anchors the pan.
func (t *ViewportTool) OnPointerDown(e PointerEvent) { t.last = e.Screen }

// OnPointerMove pans by the screen delta converted to world units.
func (t *ViewportTool) OnPointerMove(e PointerEvent) {
	if !t.i.IsPressing() {
		return
	}
	v := t.i.viewport
	v.Pan = v.Pan.Add(t.last.Sub(e.Screen).Scale(1 / v.zoom()))
	t.last = e.Screen
}

// OnPointerUp returns to BaseTool.
func (t *ViewportTool) OnPointerUp(PointerEvent) { t.i.ResetTool() }

// OnWheel zooms around the cursor and returns to BaseTool.
func (t *ViewportTool) OnWheel(e WheelEvent) {
	v := t.i.viewport
	target := v.Zoom - e.DeltaY*t.i.opts.ZoomStep
	if d := t.i.opts.ZoomDuration; d > 0 {
		v.ZoomTo(target, e.Screen, d, nil)
	} else {
		v.ZoomAt(target, e.Screen)
	}
	t.i.ResetTool()
}
