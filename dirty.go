package trellis

// DirtyState records what changed in a Graph since the renderer last synced.
//
// All is set on structural changes (adds and removes) and means a full
// resync is expected; when All is set the per-entity sets are ignored.
// The per-entity sets accumulate position-only changes such as a drag.
// The Graph is the only producer; the renderer is the only consumer and
// calls Graph.ClearDirty after a successful sync.
type DirtyState struct {
	All     bool
	Nodes   map[ElementID]struct{}
	Handles map[ElementID]struct{}
	Edges   map[ElementID]struct{}
}

func newDirtyState() DirtyState {
	return DirtyState{
		All:     true, // a fresh graph has never been synced
		Nodes:   make(map[ElementID]struct{}),
		Handles: make(map[ElementID]struct{}),
		Edges:   make(map[ElementID]struct{}),
	}
}

func (d *DirtyState) markAll() { d.All = true }

func (d *DirtyState) markNode(id ElementID)   { d.Nodes[id] = struct{}{} }
func (d *DirtyState) markHandle(id ElementID) { d.Handles[id] = struct{}{} }
func (d *DirtyState) markEdge(id ElementID)   { d.Edges[id] = struct{}{} }

// clear resets the state. Maps are cleared in place to keep their buckets.
func (d *DirtyState) clear() {
	d.All = false
	clear(d.Nodes)
	clear(d.Handles)
	clear(d.Edges)
}

// IsClean reports whether nothing changed since the last clear.
func (d *DirtyState) IsClean() bool {
	return !d.All && len(d.Nodes) == 0 && len(d.Handles) == 0 && len(d.Edges) == 0
}

// IsNodeDirty reports whether the node must be re-synced, either because of
// a global change or because it was marked individually.
func (d *DirtyState) IsNodeDirty(id ElementID) bool {
	if d.All {
		return true
	}
	_, ok := d.Nodes[id]
	return ok
}

// IsEdgeDirty reports whether the edge must be re-synced.
func (d *DirtyState) IsEdgeDirty(id ElementID) bool {
	if d.All {
		return true
	}
	_, ok := d.Edges[id]
	return ok
}

// IsHandleDirty reports whether the handle must be re-synced.
func (d *DirtyState) IsHandleDirty(id ElementID) bool {
	if d.All {
		return true
	}
	_, ok := d.Handles[id]
	return ok
}
