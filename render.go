package trellis

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// SyncKind reports what Renderer.Prepare did.
type SyncKind uint8

const (
	SyncNone    SyncKind = iota // graph was clean
	SyncPartial                 // only dirty elements were patched
	SyncFull                    // every instance was rebuilt
)

type nodeInstance struct {
	id     ElementID
	bounds Rect
	style  NodeStyle
}

type handleInstance struct {
	id     ElementID
	center Vec2
	radius float64
	color  Color
	ok     bool
}

type edgeInstance struct {
	id     ElementID
	path   []Vec2
	bounds Rect
	color  Color
	ok     bool
}

// RenderState is the interaction state the renderer draws on top of the
// graph.
type RenderState struct {
	Hovered    ElementID
	Selected   map[ElementID]struct{}
	Marquee    Rect
	HasMarquee bool
	PreviewA   Vec2
	PreviewB   Vec2
	HasPreview bool
}

// RenderStateOf captures the interactor's hover, selection, marquee and
// connect preview.
func RenderStateOf(i *Interactor) RenderState {
	rs := RenderState{
		Hovered:  i.Hovered(),
		Selected: make(map[ElementID]struct{}, i.SelectionCount()),
	}
	for _, id := range i.selection {
		rs.Selected[id] = struct{}{}
	}
	switch t := i.Tool().(type) {
	case *SelectTool:
		rs.Marquee, rs.HasMarquee = t.Marquee()
	case *ConnectTool:
		rs.PreviewA, rs.PreviewB, rs.HasPreview = t.Preview()
	}
	return rs
}

// Renderer mirrors the graph into draw instances and draws them with
// ebiten/v2/vector. It is the only consumer of the graph's dirty state.
type Renderer struct {
	// GridSpacing is the world distance between background grid lines.
	// Zero disables the grid.
	GridSpacing float64
	Background  Color
	GridColor   Color
	HoverColor  Color

	nodes       []nodeInstance
	nodeIndex   map[ElementID]int
	handles     []handleInstance
	handleIndex map[ElementID]int
	edges       []edgeInstance
	edgeIndex   map[ElementID]int

	stats renderStats
}

// renderStats counts syncs and draws, reported by the debug logger.
type renderStats struct {
	fullSyncs    int
	partialSyncs int
	drawnNodes   int
	drawnEdges   int
	culledEdges  int
}

// NewRenderer creates a renderer with the default palette.
func NewRenderer() *Renderer {
	return &Renderer{
		GridSpacing: 32,
		Background:  ColorRGBA255(24, 24, 28, 255),
		GridColor:   ColorRGBA255(44, 44, 52, 255),
		HoverColor:  ColorRGBA255(255, 255, 255, 96),
		nodeIndex:   make(map[ElementID]int),
		handleIndex: make(map[ElementID]int),
		edgeIndex:   make(map[ElementID]int),
	}
}

// Prepare syncs the instances with the graph according to its dirty state
// and then clears it.
func (r *Renderer) Prepare(g *Graph) SyncKind {
	d := g.Dirty()
	kind := SyncNone
	switch {
	case d.All:
		r.Sync(g)
		kind = SyncFull
	case !d.IsClean():
		if r.SyncPartial(g) {
			kind = SyncPartial
		} else {
			r.Sync(g)
			kind = SyncFull
		}
	}
	g.ClearDirty()
	return kind
}

// Sync rebuilds every instance from the graph.
func (r *Renderer) Sync(g *Graph) {
	r.nodes = r.nodes[:0]
	r.handles = r.handles[:0]
	r.edges = r.edges[:0]
	clear(r.nodeIndex)
	clear(r.handleIndex)
	clear(r.edgeIndex)

	for _, n := range g.Nodes() {
		r.nodeIndex[n.ID] = len(r.nodes)
		r.nodes = append(r.nodes, nodeInstance{id: n.ID, bounds: n.Bounds(), style: n.Style})
		for _, h := range n.handles {
			r.handleIndex[h.ID] = len(r.handles)
			r.handles = append(r.handles, r.handleInstance(g, h))
		}
	}
	for _, e := range g.Edges() {
		r.edgeIndex[e.ID] = len(r.edges)
		r.edges = append(r.edges, r.edgeInstance(g, e))
	}
	r.stats.fullSyncs++
}

// SyncPartial patches only the elements marked dirty. It returns false if a
// dirty element has no instance yet, in which case a full Sync is needed.
func (r *Renderer) SyncPartial(g *Graph) bool {
	d := g.Dirty()
	for id := range d.Nodes {
		idx, ok := r.nodeIndex[id]
		n, exists := g.Node(id)
		if !ok || !exists {
			return false
		}
		r.nodes[idx].bounds = n.Bounds()
	}
	for id := range d.Handles {
		idx, ok := r.handleIndex[id]
		h, exists := g.Handle(id)
		if !ok || !exists {
			return false
		}
		r.handles[idx] = r.handleInstance(g, h)
	}
	for id := range d.Edges {
		idx, ok := r.edgeIndex[id]
		e, exists := g.Edge(id)
		if !ok || !exists {
			return false
		}
		r.edges[idx] = r.edgeInstance(g, e)
	}
	r.stats.partialSyncs++
	return true
}

func (r *Renderer) handleInstance(g *Graph, h *Handle) handleInstance {
	center, ok := g.HandleWorldPosition(h.ID)
	return handleInstance{id: h.ID, center: center, radius: h.Radius, color: h.Color, ok: ok}
}

func (r *Renderer) edgeInstance(g *Graph, e *Edge) edgeInstance {
	inst := edgeInstance{id: e.ID, color: e.Color}
	if path, ok := g.EdgePath(e); ok {
		inst.path = path
		inst.bounds = PolylineBounds(path)
		inst.ok = true
	}
	return inst
}

// NodeBounds returns the synced bounds of a node instance.
func (r *Renderer) NodeBounds(id ElementID) (Rect, bool) {
	idx, ok := r.nodeIndex[id]
	if !ok {
		return Rect{}, false
	}
	return r.nodes[idx].bounds, true
}

// EdgePath returns the synced path of an edge instance.
func (r *Renderer) EdgePath(id ElementID) ([]Vec2, bool) {
	idx, ok := r.edgeIndex[id]
	if !ok || !r.edges[idx].ok {
		return nil, false
	}
	return r.edges[idx].path, true
}

// InstanceCounts returns the number of synced nodes, handles and edges.
func (r *Renderer) InstanceCounts() (nodes, handles, edges int) {
	return len(r.nodes), len(r.handles), len(r.edges)
}

const edgeStrokeWidth = 2

// Draw renders the synced instances and the interaction overlay.
func (r *Renderer) Draw(screen *ebiten.Image, v *Viewport, state RenderState) {
	screen.Fill(r.Background.toRGBA())
	r.drawGrid(screen, v)

	visible := v.VisibleBounds()
	zoom := v.zoom()
	r.stats.drawnNodes, r.stats.drawnEdges, r.stats.culledEdges = 0, 0, 0

	for i := range r.edges {
		e := &r.edges[i]
		if !e.ok {
			continue
		}
		if !e.bounds.Intersects(visible) || !PolylineIntersectsRect(e.path, visible) {
			r.stats.culledEdges++
			continue
		}
		c := e.color
		if _, sel := state.Selected[e.id]; sel {
			c = Color{1, 1, 1, 1}
		}
		width := float32(edgeStrokeWidth * zoom)
		if e.id == state.Hovered {
			width *= 2
		}
		for j := 1; j < len(e.path); j++ {
			a := v.WorldToScreen(e.path[j-1])
			b := v.WorldToScreen(e.path[j])
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, c.toRGBA(), true)
		}
		r.stats.drawnEdges++
	}

	for i := range r.nodes {
		n := &r.nodes[i]
		if !n.bounds.Intersects(visible) {
			continue
		}
		_, sel := state.Selected[n.id]
		bg, outline := n.style.Background.Default, n.style.Outline.Default
		if sel {
			bg, outline = n.style.Background.Selected, n.style.Outline.Selected
		}
		sr := transformRect(v.ViewMatrix(), n.bounds)
		x, y, w, h := float32(sr.X), float32(sr.Y), float32(sr.Width), float32(sr.Height)
		vector.DrawFilledRect(screen, x, y, w, h, bg.toRGBA(), false)
		if outline.A > 0 {
			vector.StrokeRect(screen, x, y, w, h, float32(n.style.OutlineWidth), outline.toRGBA(), false)
		}
		if n.id == state.Hovered && !sel {
			vector.StrokeRect(screen, x, y, w, h, 1, r.HoverColor.toRGBA(), false)
		}
		r.stats.drawnNodes++
	}

	for i := range r.handles {
		h := &r.handles[i]
		if !h.ok {
			continue
		}
		c := v.WorldToScreen(h.center)
		radius := float32(h.radius * zoom)
		if h.id == state.Hovered {
			radius *= 1.25
		}
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), radius, h.color.toRGBA(), true)
	}

	if state.HasPreview {
		a := v.WorldToScreen(state.PreviewA)
		b := v.WorldToScreen(state.PreviewB)
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
			float32(edgeStrokeWidth*zoom), defaultEdgeColor.toRGBA(), true)
	}

	if state.HasMarquee {
		sr := transformRect(v.ViewMatrix(), state.Marquee)
		x, y, w, h := float32(sr.X), float32(sr.Y), float32(sr.Width), float32(sr.Height)
		vector.DrawFilledRect(screen, x, y, w, h, ColorRGBA255(120, 160, 255, 40).toRGBA(), false)
		vector.StrokeRect(screen, x, y, w, h, 1, ColorRGBA255(120, 160, 255, 200).toRGBA(), false)
	}
}

func (r *Renderer) drawGrid(screen *ebiten.Image, v *Viewport) {
	if r.GridSpacing <= 0 {
		return
	}
	step := r.GridSpacing * v.zoom()
	if step < 4 {
		return
	}
	c := r.GridColor.toRGBA()
	ox := math.Mod(-v.Pan.X*v.zoom(), step)
	oy := math.Mod(-v.Pan.Y*v.zoom(), step)
	for x := ox; x < v.Width; x += step {
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(v.Height), 1, c, false)
	}
	for y := oy; y < v.Height; y += step {
		vector.StrokeLine(screen, 0, float32(y), float32(v.Width), float32(y), 1, c, false)
	}
}
