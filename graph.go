package trellis

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

var (
	// ErrDuplicateID is returned when an add operation is given an id that
	// already exists for that kind of element.
	ErrDuplicateID = errors.New("trellis: duplicate id")
	// ErrNotFound is returned by mutations that reference a missing element.
	ErrNotFound = errors.New("trellis: element not found")
	// ErrInvalidEndpoint is returned by AddEdge when an endpoint does not
	// name a handle owned by the given node.
	ErrInvalidEndpoint = errors.New("trellis: invalid edge endpoint")
)

// HandleKind is the direction of a handle.
type HandleKind uint8

const (
	HandleInput  HandleKind = iota // laid out on the left side of its node
	HandleOutput                   // laid out on the right side of its node
)

// String returns "input" or "output".
func (k HandleKind) String() string {
	if k == HandleOutput {
		return "output"
	}
	return "input"
}

// Element is implemented by *Node, *Handle and *Edge.
type Element interface {
	ElementID() ElementID
}

// Node is a rectangle that owns an ordered list of handles.
type Node struct {
	ID       ElementID
	Position Vec2
	Size     Vec2
	Style    NodeStyle

	handles []*Handle
}

// ElementID implements Element.
func (n *Node) ElementID() ElementID { return n.ID }

// Handles returns the node's handles in insertion order. The returned slice
// MUST NOT be mutated by the caller.
func (n *Node) Handles() []*Handle { return n.handles }

// Bounds returns the node's world-space rectangle.
func (n *Node) Bounds() Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.X, Height: n.Size.Y}
}

// Handle is a typed connection point on a node. Its position is relative to
// the owning node and is computed by the graph's handle layout.
type Handle struct {
	ID     ElementID
	Kind   HandleKind
	Radius float64
	Color  Color

	position   Vec2
	positioned bool
}

// ElementID implements Element.
func (h *Handle) ElementID() ElementID { return h.ID }

// Position returns the node-relative position. ok is false until the handle
// has been laid out.
func (h *Handle) Position() (pos Vec2, ok bool) {
	return h.position, h.positioned
}

// EdgeEnd names one endpoint of an edge.
type EdgeEnd struct {
	Node   ElementID
	Handle ElementID
}

// Edge connects a source handle to a target handle. Its path is derived from
// the live handle positions; see Graph.EdgePath.
type Edge struct {
	ID     ElementID
	Source EdgeEnd
	Target EdgeEnd
	Color  Color
}

// ElementID implements Element.
func (e *Edge) ElementID() ElementID { return e.ID }

// NodeOptions configures AddNode. A zero ID is generated; a zero Style is
// resolved from the id.
type NodeOptions struct {
	ID       ElementID
	Position Vec2
	Size     Vec2
	Style    NodeStyle
}

// HandleOptions configures AddHandle. A zero ID is generated; zero Radius and
// Color use the defaults.
type HandleOptions struct {
	ID     ElementID
	Kind   HandleKind
	Radius float64
	Color  Color
}

// EdgeOptions configures AddEdge. A zero ID is generated; a zero Color uses
// the default. An EdgeEnd with a zero Node is completed from the handle's owner.
type EdgeOptions struct {
	ID     ElementID
	Source EdgeEnd
	Target EdgeEnd
	Color  Color
}

type handleEntry struct {
	handle *Handle
	node   ElementID
}

// Graph is the aggregate root owning nodes, handles and edges. It keeps a
// handle registry (handle → owner), a handle → edges reverse index, and the
// dirty state consumed by the renderer. Graph is not safe for concurrent use.
type Graph struct {
	nodes     map[ElementID]*Node
	nodeOrder []ElementID
	edges     map[ElementID]*Edge
	edgeOrder []ElementID

	handles     map[ElementID]handleEntry
	handleEdges map[ElementID]map[ElementID]struct{}

	dirty    DirtyState
	revision uint64
	logger   *slog.Logger
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[ElementID]*Node),
		edges:       make(map[ElementID]*Edge),
		handles:     make(map[ElementID]handleEntry),
		handleEdges: make(map[ElementID]map[ElementID]struct{}),
		dirty:       newDirtyState(),
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger used for stale-reference warnings.
// A nil logger restores slog.Default().
func (g *Graph) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	g.logger = logger
}

// Dirty returns the accumulated dirty state. The renderer reads it and calls
// ClearDirty after syncing; other callers must treat it as read-only.
func (g *Graph) Dirty() *DirtyState { return &g.dirty }

// ClearDirty resets the dirty state after a successful render sync.
func (g *Graph) ClearDirty() { g.dirty.clear() }

// Revision returns a counter that increases on every mutation. Unlike the
// dirty state it is never reset, so any number of mirrors can poll it.
func (g *Graph) Revision() uint64 { return g.revision }

func (g *Graph) structuralChange() {
	g.dirty.markAll()
	g.revision++
}

// --- Adds ---

// AddNode inserts a node. Returns ErrDuplicateID if opts.ID already exists.
func (g *Graph) AddNode(opts NodeOptions) (*Node, error) {
	id := opts.ID
	if id.IsZero() {
		id = NewID(KindNode)
	}
	if id.Kind() != KindNode {
		return nil, fmt.Errorf("add node %s: %w", id, ErrInvalidID)
	}
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("add node %s: %w", id, ErrDuplicateID)
	}
	style := opts.Style
	if style == (NodeStyle{}) {
		style = styleForID(id)
	}
	n := &Node{ID: id, Position: opts.Position, Size: opts.Size, Style: style}
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	g.structuralChange()
	return n, nil
}

// AddHandle attaches a new handle to the node and re-lays out that node's
// handles. Returns ErrDuplicateID if opts.ID already exists and ErrNotFound
// if the node does not.
func (g *Graph) AddHandle(nodeID ElementID, opts HandleOptions) (*Handle, error) {
	id := opts.ID
	if id.IsZero() {
		id = NewID(KindHandle)
	}
	if id.Kind() != KindHandle {
		return nil, fmt.Errorf("add handle %s: %w", id, ErrInvalidID)
	}
	if _, exists := g.handles[id]; exists {
		return nil, fmt.Errorf("add handle %s: %w", id, ErrDuplicateID)
	}
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("add handle %s to node %s: %w", id, nodeID, ErrNotFound)
	}
	h := &Handle{ID: id, Kind: opts.Kind, Radius: opts.Radius, Color: opts.Color}
	if h.Radius <= 0 {
		h.Radius = defaultHandleRadius
	}
	if h.Color == (Color{}) {
		h.Color = defaultHandleColor
	}
	n.handles = append(n.handles, h)
	g.handles[id] = handleEntry{handle: h, node: nodeID}
	layoutHandles(n)
	g.structuralChange()
	return h, nil
}

// AddEdge connects two handles. Both endpoints must name existing handles
// owned by the named nodes (a zero EdgeEnd.Node is filled in from the
// registry). Returns ErrDuplicateID, ErrNotFound or ErrInvalidEndpoint.
func (g *Graph) AddEdge(opts EdgeOptions) (*Edge, error) {
	id := opts.ID
	if id.IsZero() {
		id = NewID(KindEdge)
	}
	if id.Kind() != KindEdge {
		return nil, fmt.Errorf("add edge %s: %w", id, ErrInvalidID)
	}
	if _, exists := g.edges[id]; exists {
		return nil, fmt.Errorf("add edge %s: %w", id, ErrDuplicateID)
	}
	src, err := g.resolveEnd(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("add edge %s source: %w", id, err)
	}
	dst, err := g.resolveEnd(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("add edge %s target: %w", id, err)
	}
	if src.Handle == dst.Handle {
		return nil, fmt.Errorf("add edge %s: source and target are the same handle: %w", id, ErrInvalidEndpoint)
	}
	c := opts.Color
	if c == (Color{}) {
		c = defaultEdgeColor
	}
	e := &Edge{ID: id, Source: src, Target: dst, Color: c}
	g.edges[id] = e
	g.edgeOrder = append(g.edgeOrder, id)
	g.indexEdge(src.Handle, id)
	g.indexEdge(dst.Handle, id)
	g.structuralChange()
	return e, nil
}

func (g *Graph) resolveEnd(end EdgeEnd) (EdgeEnd, error) {
	entry, ok := g.handles[end.Handle]
	if !ok {
		return EdgeEnd{}, fmt.Errorf("handle %s: %w", end.Handle, ErrNotFound)
	}
	if end.Node.IsZero() {
		end.Node = entry.node
	}
	if end.Node != entry.node {
		return EdgeEnd{}, fmt.Errorf("handle %s is not owned by node %s: %w", end.Handle, end.Node, ErrInvalidEndpoint)
	}
	return end, nil
}

func (g *Graph) indexEdge(handleID, edgeID ElementID) {
	set := g.handleEdges[handleID]
	if set == nil {
		set = make(map[ElementID]struct{})
		g.handleEdges[handleID] = set
	}
	set[edgeID] = struct{}{}
}

func (g *Graph) unindexEdge(handleID, edgeID ElementID) {
	set := g.handleEdges[handleID]
	delete(set, edgeID)
	if len(set) == 0 {
		delete(g.handleEdges, handleID)
	}
}

// --- Moves ---

// MoveNode sets the node's position and marks the node, its handles, and
// every edge attached to its handles dirty. Returns false (and changes
// nothing) if the node does not exist.
func (g *Graph) MoveNode(id ElementID, pos Vec2) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Position = pos
	g.dirty.markNode(id)
	for _, h := range n.handles {
		g.dirty.markHandle(h.ID)
		for edgeID := range g.handleEdges[h.ID] {
			g.dirty.markEdge(edgeID)
		}
	}
	g.revision++
	return true
}

// --- Removes ---

// RemoveNode deletes the node, its handles, and every edge touching those
// handles. Returns false if the node does not exist.
func (g *Graph) RemoveNode(id ElementID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for _, h := range n.handles {
		g.dropHandle(h.ID)
	}
	n.handles = nil
	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	g.structuralChange()
	return true
}

// RemoveHandle deletes the handle and every edge referencing it, then
// re-spaces the owning node's remaining handles. Returns false if the
// handle does not exist.
func (g *Graph) RemoveHandle(id ElementID) bool {
	entry, ok := g.handles[id]
	if !ok {
		return false
	}
	g.dropHandle(id)
	if n, ok := g.nodes[entry.node]; ok {
		n.handles = slices.DeleteFunc(n.handles, func(h *Handle) bool { return h.ID == id })
		layoutHandles(n)
	}
	g.structuralChange()
	return true
}

// dropHandle removes a handle's registry entry and its edges. The owner's
// handle slice is left to the caller.
func (g *Graph) dropHandle(id ElementID) {
	for edgeID := range g.handleEdges[id] {
		g.dropEdge(edgeID)
	}
	delete(g.handleEdges, id)
	delete(g.handles, id)
}

// RemoveEdge deletes the edge. Returns false if it does not exist.
func (g *Graph) RemoveEdge(id ElementID) bool {
	if _, ok := g.edges[id]; !ok {
		return false
	}
	g.dropEdge(id)
	g.structuralChange()
	return true
}

func (g *Graph) dropEdge(id ElementID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	g.unindexEdge(e.Source.Handle, id)
	g.unindexEdge(e.Target.Handle, id)
	delete(g.edges, id)
	g.edgeOrder = removeID(g.edgeOrder, id)
}

// removeID removes the first occurrence of id, preserving order.
func removeID(ids []ElementID, id ElementID) []ElementID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// --- Lookups ---

// Node returns the node with the given id.
func (g *Graph) Node(id ElementID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Handle returns the handle with the given id.
func (g *Graph) Handle(id ElementID) (*Handle, bool) {
	entry, ok := g.handles[id]
	return entry.handle, ok
}

// HandleOwner returns the id of the node owning the handle.
func (g *Graph) HandleOwner(id ElementID) (ElementID, bool) {
	entry, ok := g.handles[id]
	return entry.node, ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id ElementID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Element resolves any id by dispatching on its kind. Missing elements and
// the zero id return (nil, false).
func (g *Graph) Element(id ElementID) (Element, bool) {
	switch id.Kind() {
	case KindNode:
		if n, ok := g.nodes[id]; ok {
			return n, true
		}
	case KindHandle:
		if entry, ok := g.handles[id]; ok {
			return entry.handle, true
		}
	case KindEdge:
		if e, ok := g.edges[id]; ok {
			return e, true
		}
	}
	return nil, false
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Handles returns all handles, grouped by node in node insertion order.
func (g *Graph) Handles() []*Handle {
	out := make([]*Handle, 0, len(g.handles))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id].handles...)
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// HandleCount returns the number of handles.
func (g *Graph) HandleCount() int { return len(g.handles) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// EdgesAt returns the ids of the edges attached to the handle, sorted.
func (g *Graph) EdgesAt(handleID ElementID) []ElementID {
	set := g.handleEdges[handleID]
	if len(set) == 0 {
		return nil
	}
	out := make([]ElementID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b ElementID) int { return strings.Compare(a.raw, b.raw) })
	return out
}

// --- Handle layout ---

// LayoutHandles recomputes the node's handle positions. Returns false if the
// node does not exist. Layout is idempotent; AddHandle and RemoveHandle call
// it automatically.
func (g *Graph) LayoutHandles(nodeID ElementID) bool {
	n, ok := g.nodes[nodeID]
	if !ok {
		return false
	}
	layoutHandles(n)
	return true
}

// layoutHandles spaces each kind of handle evenly down its side of the node:
// inputs on the left edge, outputs on the right. With count handles of a
// kind the spacing is Size.Y/(count+1) and the i-th (1-indexed, insertion
// order) sits at y = spacing*i.
func layoutHandles(n *Node) {
	var inputs, outputs int
	for _, h := range n.handles {
		if h.Kind == HandleOutput {
			outputs++
		} else {
			inputs++
		}
	}
	inSpacing := n.Size.Y / float64(inputs+1)
	outSpacing := n.Size.Y / float64(outputs+1)

	var inSlot, outSlot int
	for _, h := range n.handles {
		if h.Kind == HandleOutput {
			outSlot++
			h.position = Vec2{n.Size.X, outSpacing * float64(outSlot)}
		} else {
			inSlot++
			h.position = Vec2{0, inSpacing * float64(inSlot)}
		}
		h.positioned = true
	}
}

// --- Derived geometry ---

// HandleWorldPosition returns the handle's world position (owner position +
// relative position). ok is false if the handle or its owner is missing, or
// the handle has not been laid out.
func (g *Graph) HandleWorldPosition(id ElementID) (Vec2, bool) {
	entry, ok := g.handles[id]
	if !ok {
		return Vec2{}, false
	}
	n, ok := g.nodes[entry.node]
	if !ok || !entry.handle.positioned {
		return Vec2{}, false
	}
	return n.Position.Add(entry.handle.position), true
}

// EdgeEndpoints resolves the world positions of the edge's source and target
// handles. A stale reference (missing node or handle, or a handle not yet
// laid out) is logged as a warning and reported with ok=false so callers
// can skip the edge for this frame.
func (g *Graph) EdgeEndpoints(e *Edge) (start, end Vec2, ok bool) {
	start, ok = g.endPosition(e, "source", e.Source)
	if !ok {
		return Vec2{}, Vec2{}, false
	}
	end, ok = g.endPosition(e, "target", e.Target)
	if !ok {
		return Vec2{}, Vec2{}, false
	}
	return start, end, true
}

func (g *Graph) endPosition(e *Edge, side string, end EdgeEnd) (Vec2, bool) {
	n, ok := g.nodes[end.Node]
	if !ok {
		g.logger.Warn("edge references a missing node",
			"edge", e.ID.String(), "side", side, "node", end.Node.String())
		return Vec2{}, false
	}
	entry, ok := g.handles[end.Handle]
	if !ok || entry.node != end.Node {
		g.logger.Warn("edge references a missing handle",
			"edge", e.ID.String(), "side", side, "handle", end.Handle.String())
		return Vec2{}, false
	}
	if !entry.handle.positioned {
		g.logger.Warn("edge handle has no computed position",
			"edge", e.ID.String(), "side", side, "handle", end.Handle.String())
		return Vec2{}, false
	}
	return n.Position.Add(entry.handle.position), true
}

// EdgePath returns the edge's orthogonal route from source to target.
// ok is false under the same conditions as EdgeEndpoints.
func (g *Graph) EdgePath(e *Edge) ([]Vec2, bool) {
	start, end, ok := g.EdgeEndpoints(e)
	if !ok {
		return nil, false
	}
	return OrthogonalPath(start, end), true
}
