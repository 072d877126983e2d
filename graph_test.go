package trellis

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAddNodeDefaults(t *testing.T) {
	g := NewGraph()
	n, err := g.AddNode(NodeOptions{Position: Vec2{10, 20}, Size: Vec2{30, 40}})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID.Kind() != KindNode {
		t.Errorf("kind = %v, want node", n.ID.Kind())
	}
	if n.Style == (NodeStyle{}) {
		t.Error("style should be resolved from the id")
	}
	if n.Style != styleForID(n.ID) {
		t.Error("style should match styleForID")
	}
	if got := n.Bounds(); got != (Rect{10, 20, 30, 40}) {
		t.Errorf("Bounds = %v", got)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d", g.NodeCount())
	}
}

func TestAddDuplicateID(t *testing.T) {
	g := NewGraph()
	id := MustParseID("node-a")
	if _, err := g.AddNode(NodeOptions{ID: id}); err != nil {
		t.Fatal(err)
	}
	_, err := g.AddNode(NodeOptions{ID: id})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}

	hid := MustParseID("handle-a")
	if _, err := g.AddHandle(id, HandleOptions{ID: hid}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddHandle(id, HandleOptions{ID: hid}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("handle err = %v, want ErrDuplicateID", err)
	}
}

func TestAddWrongKindID(t *testing.T) {
	g := NewGraph()
	if _, err := g.AddNode(NodeOptions{ID: MustParseID("edge-x")}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestAddHandleMissingNode(t *testing.T) {
	g := NewGraph()
	_, err := g.AddHandle(NewID(KindNode), HandleOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAddHandleDefaults(t *testing.T) {
	g := NewGraph()
	n, _ := g.AddNode(NodeOptions{Size: Vec2{100, 100}})
	h, err := g.AddHandle(n.ID, HandleOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if h.Kind != HandleInput {
		t.Errorf("Kind = %v, want input", h.Kind)
	}
	assertNear(t, "Radius", h.Radius, defaultHandleRadius)
	if h.Color != defaultHandleColor {
		t.Errorf("Color = %v", h.Color)
	}
	owner, ok := g.HandleOwner(h.ID)
	if !ok || owner != n.ID {
		t.Errorf("HandleOwner = %v, %v", owner, ok)
	}
}

func TestHandleLayout(t *testing.T) {
	f := newTwoNodes(t)

	pos, ok := f.g.HandleWorldPosition(f.out.ID)
	if !ok {
		t.Fatal("output handle has no position")
	}
	assertVec(t, "output", pos, Vec2{300, 150})

	pos, _ = f.g.HandleWorldPosition(f.in.ID)
	assertVec(t, "input", pos, Vec2{400, 350})
}

func TestHandleLayoutSpacing(t *testing.T) {
	g := NewGraph()
	n, _ := g.AddNode(NodeOptions{Size: Vec2{90, 120}})
	in1, _ := g.AddHandle(n.ID, HandleOptions{Kind: HandleInput})
	out1, _ := g.AddHandle(n.ID, HandleOptions{Kind: HandleOutput})
	in2, _ := g.AddHandle(n.ID, HandleOptions{Kind: HandleInput})
	in3, _ := g.AddHandle(n.ID, HandleOptions{Kind: HandleInput})

	tests := []struct {
		h    *Handle
		want Vec2
	}{
		{in1, Vec2{0, 30}},
		{in2, Vec2{0, 60}},
		{in3, Vec2{0, 90}},
		{out1, Vec2{90, 60}},
	}
	for _, tt := range tests {
		got, ok := tt.h.Position()
		if !ok {
			t.Fatalf("%v not positioned", tt.h.ID)
		}
		assertVec(t, tt.h.ID.String(), got, tt.want)
	}
}

func TestRemoveHandleRespaces(t *testing.T) {
	g := NewGraph()
	n, _ := g.AddNode(NodeOptions{Size: Vec2{50, 90}})
	a, _ := g.AddHandle(n.ID, HandleOptions{})
	b, _ := g.AddHandle(n.ID, HandleOptions{})
	if p, _ := b.Position(); p.Y != 60 {
		t.Fatalf("b.Y = %v, want 60", p.Y)
	}

	if !g.RemoveHandle(a.ID) {
		t.Fatal("RemoveHandle returned false")
	}
	p, _ := b.Position()
	assertVec(t, "b after removal", p, Vec2{0, 45})
	if len(n.Handles()) != 1 {
		t.Errorf("node has %d handles, want 1", len(n.Handles()))
	}
	if _, ok := g.Handle(a.ID); ok {
		t.Error("removed handle still registered")
	}
}

func TestLayoutHandlesIdempotent(t *testing.T) {
	f := newTwoNodes(t)
	before, _ := f.out.Position()
	if !f.g.LayoutHandles(f.a.ID) {
		t.Fatal("LayoutHandles returned false")
	}
	after, _ := f.out.Position()
	if before != after {
		t.Errorf("layout moved handle: %v -> %v", before, after)
	}
	if f.g.LayoutHandles(NewID(KindNode)) {
		t.Error("LayoutHandles on missing node should return false")
	}
}

func TestAddEdge(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)

	if e.Source.Node != f.a.ID || e.Target.Node != f.b.ID {
		t.Errorf("owners not filled in: %+v", e)
	}
	if e.Color != defaultEdgeColor {
		t.Errorf("Color = %v", e.Color)
	}
	if diff := cmp.Diff([]ElementID{e.ID}, f.g.EdgesAt(f.out.ID), cmp.AllowUnexported(ElementID{})); diff != "" {
		t.Errorf("EdgesAt(out) mismatch (-want +got):\n%s", diff)
	}
	if len(f.g.EdgesAt(f.in.ID)) != 1 {
		t.Error("edge not indexed on target handle")
	}

	path, ok := f.g.EdgePath(e)
	if !ok {
		t.Fatal("EdgePath failed")
	}
	want := []Vec2{{300, 150}, {350, 150}, {350, 350}, {400, 350}}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	f := newTwoNodes(t)

	tests := []struct {
		name string
		opts EdgeOptions
		want error
	}{
		{"unknown source", EdgeOptions{Source: EdgeEnd{Handle: NewID(KindHandle)}, Target: EdgeEnd{Handle: f.in.ID}}, ErrNotFound},
		{"unknown target", EdgeOptions{Source: EdgeEnd{Handle: f.out.ID}, Target: EdgeEnd{Handle: NewID(KindHandle)}}, ErrNotFound},
		{"wrong owner", EdgeOptions{Source: EdgeEnd{Node: f.b.ID, Handle: f.out.ID}, Target: EdgeEnd{Handle: f.in.ID}}, ErrInvalidEndpoint},
		{"same handle", EdgeOptions{Source: EdgeEnd{Handle: f.out.ID}, Target: EdgeEnd{Handle: f.out.ID}}, ErrInvalidEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.g.AddEdge(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if f.g.EdgeCount() != 0 {
		t.Errorf("failed adds left %d edges", f.g.EdgeCount())
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)

	if !f.g.RemoveNode(f.b.ID) {
		t.Fatal("RemoveNode returned false")
	}
	if _, ok := f.g.Handle(f.in.ID); ok {
		t.Error("handle of removed node still registered")
	}
	if _, ok := f.g.Edge(e.ID); ok {
		t.Error("edge into removed node still present")
	}
	if len(f.g.EdgesAt(f.out.ID)) != 0 {
		t.Error("reverse index still references removed edge")
	}
	if f.g.NodeCount() != 1 || f.g.HandleCount() != 1 || f.g.EdgeCount() != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/1/0", f.g.NodeCount(), f.g.HandleCount(), f.g.EdgeCount())
	}
	if f.g.RemoveNode(f.b.ID) {
		t.Error("second RemoveNode should return false")
	}
}

func TestRemoveHandleCascades(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)
	f.g.RemoveHandle(f.out.ID)
	if _, ok := f.g.Edge(e.ID); ok {
		t.Error("edge from removed handle still present")
	}
	if len(f.g.EdgesAt(f.in.ID)) != 0 {
		t.Error("target handle still indexes the removed edge")
	}
}

func TestRemoveEdge(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)
	if !f.g.RemoveEdge(e.ID) {
		t.Fatal("RemoveEdge returned false")
	}
	if f.g.RemoveEdge(e.ID) {
		t.Error("second RemoveEdge should return false")
	}
	if f.g.HandleCount() != 2 {
		t.Error("RemoveEdge must not touch handles")
	}
}

func TestDirtyTracking(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)

	d := f.g.Dirty()
	if !d.All {
		t.Fatal("structural changes should set All")
	}
	f.g.ClearDirty()
	if !f.g.Dirty().IsClean() {
		t.Fatal("ClearDirty should leave a clean state")
	}

	f.g.MoveNode(f.a.ID, Vec2{110, 95})
	d = f.g.Dirty()
	if d.All {
		t.Error("a move must not set All")
	}
	if !d.IsNodeDirty(f.a.ID) {
		t.Error("moved node not dirty")
	}
	if !d.IsHandleDirty(f.out.ID) {
		t.Error("handle of moved node not dirty")
	}
	if !d.IsEdgeDirty(e.ID) {
		t.Error("edge attached to moved node not dirty")
	}
	if d.IsNodeDirty(f.b.ID) || d.IsHandleDirty(f.in.ID) {
		t.Error("unmoved node should stay clean")
	}
}

func TestMoveNodeMissing(t *testing.T) {
	g := NewGraph()
	g.ClearDirty()
	rev := g.Revision()
	if g.MoveNode(NewID(KindNode), Vec2{1, 1}) {
		t.Error("MoveNode on missing node should return false")
	}
	if g.Revision() != rev || !g.Dirty().IsClean() {
		t.Error("failed move must not change the graph")
	}
}

func TestRevision(t *testing.T) {
	g := NewGraph()
	r0 := g.Revision()
	n, _ := g.AddNode(NodeOptions{})
	r1 := g.Revision()
	if r1 <= r0 {
		t.Errorf("AddNode did not bump revision: %d -> %d", r0, r1)
	}
	g.ClearDirty()
	if g.Revision() != r1 {
		t.Error("ClearDirty must not change the revision")
	}
	g.MoveNode(n.ID, Vec2{5, 5})
	if g.Revision() <= r1 {
		t.Error("MoveNode did not bump revision")
	}
}

func TestStaleEdgeWarning(t *testing.T) {
	var buf bytes.Buffer
	f := newTwoNodes(t)
	f.g.SetLogger(bufferLogger(&buf))
	e := f.connect(t)

	// Break the reference behind the graph's back.
	delete(f.g.handles, f.in.ID)

	if _, _, ok := f.g.EdgeEndpoints(e); ok {
		t.Fatal("EdgeEndpoints should fail for a stale handle")
	}
	if _, ok := f.g.EdgePath(e); ok {
		t.Error("EdgePath should fail for a stale handle")
	}
	if !strings.Contains(buf.String(), "edge references a missing handle") {
		t.Errorf("expected a warning, log was:\n%s", buf.String())
	}
}

func TestElementLookup(t *testing.T) {
	f := newTwoNodes(t)
	e := f.connect(t)

	for _, id := range []ElementID{f.a.ID, f.out.ID, e.ID} {
		el, ok := f.g.Element(id)
		if !ok {
			t.Errorf("Element(%v) not found", id)
			continue
		}
		if el.ElementID() != id {
			t.Errorf("Element(%v) returned %v", id, el.ElementID())
		}
	}
	if _, ok := f.g.Element(ElementID{}); ok {
		t.Error("zero id should not resolve")
	}
}

func TestIterationOrder(t *testing.T) {
	g := NewGraph()
	var want []ElementID
	for range 5 {
		n, _ := g.AddNode(NodeOptions{})
		want = append(want, n.ID)
	}
	var got []ElementID
	for _, n := range g.Nodes() {
		got = append(got, n.ID)
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(ElementID{})); diff != "" {
		t.Errorf("Nodes order mismatch (-want +got):\n%s", diff)
	}
}

// checkReferentialIntegrity verifies that every edge resolves to handles of
// existing nodes and that the handle→edge index matches the edge list.
func checkReferentialIntegrity(t *testing.T, g *Graph) {
	t.Helper()
	want := make(map[ElementID][]ElementID)
	for _, e := range g.Edges() {
		for _, end := range []EdgeEnd{e.Source, e.Target} {
			owner, ok := g.HandleOwner(end.Handle)
			if !ok {
				t.Fatalf("edge %v references missing handle %v", e.ID, end.Handle)
			}
			if owner != end.Node {
				t.Fatalf("edge %v: handle %v owned by %v, edge says %v", e.ID, end.Handle, owner, end.Node)
			}
			if _, ok := g.Node(owner); !ok {
				t.Fatalf("edge %v references missing node %v", e.ID, owner)
			}
			want[end.Handle] = append(want[end.Handle], e.ID)
		}
	}
	sortIDs := cmpopts.SortSlices(func(a, b ElementID) bool { return a.raw < b.raw })
	for _, h := range g.Handles() {
		if diff := cmp.Diff(want[h.ID], g.EdgesAt(h.ID), sortIDs, cmpopts.EquateEmpty(), cmp.AllowUnexported(ElementID{})); diff != "" {
			t.Fatalf("EdgesAt(%v) mismatch (-want +got):\n%s", h.ID, diff)
		}
	}
	for id, set := range g.handleEdges {
		if _, ok := g.handles[id]; !ok && len(set) > 0 {
			t.Fatalf("index keeps %d edges for removed handle %v", len(set), id)
		}
	}
}

func TestRandomMutationsKeepIntegrity(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42} {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		g := NewGraph()
		g.SetLogger(discardLogger())

		pick := func(n int) int { return rng.IntN(n) }
		for step := range 400 {
			nodes, handles, edges := g.Nodes(), g.Handles(), g.Edges()
			switch op := pick(10); {
			case op < 2 || len(nodes) == 0:
				if _, err := g.AddNode(NodeOptions{Size: Vec2{100, 60}}); err != nil {
					t.Fatal(err)
				}
			case op < 4:
				kind := HandleInput
				if rng.IntN(2) == 0 {
					kind = HandleOutput
				}
				if _, err := g.AddHandle(nodes[pick(len(nodes))].ID, HandleOptions{Kind: kind}); err != nil {
					t.Fatal(err)
				}
			case op < 7:
				if len(handles) < 2 {
					continue
				}
				a, b := handles[pick(len(handles))], handles[pick(len(handles))]
				_, err := g.AddEdge(EdgeOptions{Source: EdgeEnd{Handle: a.ID}, Target: EdgeEnd{Handle: b.ID}})
				if a.ID == b.ID && !errors.Is(err, ErrInvalidEndpoint) {
					t.Fatalf("step %d: self edge err = %v", step, err)
				}
				if a.ID != b.ID && err != nil {
					t.Fatalf("step %d: AddEdge: %v", step, err)
				}
			case op == 7:
				g.RemoveNode(nodes[pick(len(nodes))].ID)
			case op == 8:
				if len(handles) > 0 {
					g.RemoveHandle(handles[pick(len(handles))].ID)
				}
			default:
				if len(edges) > 0 {
					g.RemoveEdge(edges[pick(len(edges))].ID)
				}
			}
			checkReferentialIntegrity(t, g)
		}
	}
}
