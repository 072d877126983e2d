package trellis

// ToolKind identifies the active interaction tool.
type ToolKind uint8

const (
	ToolBase     ToolKind = iota // idle: hover picking, dispatches to the others
	ToolDrag                     // moves the selected nodes
	ToolConnect                  // drags a new edge out of a handle
	ToolSelect                   // rectangle selection while Shift is held
	ToolViewport                 // pans and zooms the view
)

var toolKindNames = [...]string{
	ToolBase:     "base",
	ToolDrag:     "drag",
	ToolConnect:  "connect",
	ToolSelect:   "select",
	ToolViewport: "viewport",
}

// String returns the tool name.
func (k ToolKind) String() string {
	if int(k) < len(toolKindNames) {
		return toolKindNames[k]
	}
	return "unknown"
}

// Tool is one state of the interaction state machine. Exactly one tool is
// active per Interactor; tools replace themselves through
// Interactor.SetTool and Interactor.ResetTool.
type Tool interface {
	Kind() ToolKind
	OnPointerDown(e PointerEvent)
	OnPointerMove(e PointerEvent)
	OnPointerUp(e PointerEvent)
	OnKeyDown(e KeyEvent)
	OnKeyUp(e KeyEvent)
	OnWheel(e WheelEvent)
	// Update runs on the interactor's throttled clock when the mouse moved.
	Update()
}

// noopTool provides empty handlers; tools embed it and override what they use.
type noopTool struct{}

func (noopTool) OnPointerDown(PointerEvent) {}
func (noopTool) OnPointerMove(PointerEvent) {}
func (noopTool) OnPointerUp(PointerEvent)   {}
func (noopTool) OnKeyDown(KeyEvent)         {}
func (noopTool) OnKeyUp(KeyEvent)           {}
func (noopTool) OnWheel(WheelEvent)         {}
func (noopTool) Update()                    {}
