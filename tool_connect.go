package trellis

// ConnectPolicy decides which handle pairs may be joined by an edge.
type ConnectPolicy struct {
	// NormalizeDirection swaps the endpoints of an input→output drag so
	// that every edge runs from an output to an input.
	NormalizeDirection bool
	// RejectSameKind refuses output→output and input→input edges.
	RejectSameKind bool
	// SingleInput refuses a second edge into an input handle.
	SingleInput bool
	// AllowSelfLoops permits edges between two handles of the same node.
	AllowSelfLoops bool
	// AllowDuplicates permits more than one edge between the same handles.
	AllowDuplicates bool
}

// DefaultConnectPolicy returns the policy used unless configured otherwise.
func DefaultConnectPolicy() ConnectPolicy {
	return ConnectPolicy{
		NormalizeDirection: true,
		RejectSameKind:     true,
		SingleInput:        true,
	}
}

// Resolve checks whether an edge from the source handle to the target handle
// is allowed and returns the endpoints in their final direction.
func (p ConnectPolicy) Resolve(g *Graph, source, target ElementID) (src, dst EdgeEnd, ok bool) {
	if source == target {
		return EdgeEnd{}, EdgeEnd{}, false
	}
	sh, ok := g.Handle(source)
	if !ok {
		return EdgeEnd{}, EdgeEnd{}, false
	}
	th, ok := g.Handle(target)
	if !ok {
		return EdgeEnd{}, EdgeEnd{}, false
	}
	sn, _ := g.HandleOwner(source)
	tn, _ := g.HandleOwner(target)

	if p.RejectSameKind && sh.Kind == th.Kind {
		return EdgeEnd{}, EdgeEnd{}, false
	}
	if !p.AllowSelfLoops && sn == tn {
		return EdgeEnd{}, EdgeEnd{}, false
	}

	src = EdgeEnd{Node: sn, Handle: source}
	dst = EdgeEnd{Node: tn, Handle: target}
	if p.NormalizeDirection && sh.Kind == HandleInput && th.Kind == HandleOutput {
		src, dst = dst, src
	}

	for _, id := range g.EdgesAt(dst.Handle) {
		e, _ := g.Edge(id)
		if p.SingleInput && e.Target.Handle == dst.Handle {
			if dh, _ := g.Handle(dst.Handle); dh.Kind == HandleInput {
				return EdgeEnd{}, EdgeEnd{}, false
			}
		}
		if !p.AllowDuplicates && e.Source.Handle == src.Handle && e.Target.Handle == dst.Handle {
			return EdgeEnd{}, EdgeEnd{}, false
		}
	}
	return src, dst, true
}

// ConnectTool drags a new edge out of a handle. The drop target is resolved
// with an exact pick on release; whatever the outcome, the tool returns to
// BaseTool once that pick resolves.
type ConnectTool struct {
	noopTool
	i          *Interactor
	sourceNode ElementID
	source     ElementID
	dropping   bool
}

// newConnectTool returns nil if the handle does not exist.
func newConnectTool(i *Interactor, handle ElementID) *ConnectTool {
	owner, ok := i.graph.HandleOwner(handle)
	if !ok {
		return nil
	}
	return &ConnectTool{i: i, sourceNode: owner, source: handle}
}

// Kind implements Tool.
func (t *ConnectTool) Kind() ToolKind { return ToolConnect }

// Source returns the originating handle and its node.
func (t *ConnectTool) Source() (node, handle ElementID) { return t.sourceNode, t.source }

// Preview returns the segment from the source handle to the mouse, in world
// coordinates. ok is false if the source handle is gone.
func (t *ConnectTool) Preview() (from, to Vec2, ok bool) {
	from, ok = t.i.graph.HandleWorldPosition(t.source)
	if !ok {
		return Vec2{}, Vec2{}, false
	}
	return from, t.i.MouseWorld(), true
}

// OnPointerUp resolves the drop target.
func (t *ConnectTool) OnPointerUp(PointerEvent) {
	if t.dropping {
		return
	}
	t.dropping = true
	t.i.pickAtMouseDeferred(t.drop)
}

func (t *ConnectTool) drop(target ElementID) {
	defer t.i.ResetTool()

	if target.Kind() != KindHandle {
		return
	}
	src, dst, ok := t.i.opts.Connect.Resolve(t.i.graph, t.source, target)
	if !ok {
		t.i.logger.Debug("connection refused", "source", t.source.String(), "target", target.String())
		return
	}
	e, err := t.i.graph.AddEdge(EdgeOptions{Source: src, Target: dst})
	if err != nil {
		t.i.logger.Warn("connect failed", "error", err)
		return
	}
	t.i.emit(EditorEvent{Type: EventEdgeConnected, ID: e.ID})
}

// OnKeyDown aborts the connection on Escape.
func (t *ConnectTool) OnKeyDown(e KeyEvent) {
	if e.Key == KeyEscape {
		t.i.ResetTool()
	}
}
