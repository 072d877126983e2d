package trellis

import "testing"

func TestRendererPrepare(t *testing.T) {
	f := newTwoNodes(t)
	edge := f.connect(t)
	r := NewRenderer()

	if kind := r.Prepare(f.g); kind != SyncFull {
		t.Fatalf("first Prepare = %v, want full", kind)
	}
	if n, h, e := r.InstanceCounts(); n != 2 || h != 2 || e != 1 {
		t.Errorf("InstanceCounts = %d/%d/%d, want 2/2/1", n, h, e)
	}
	if !f.g.Dirty().IsClean() {
		t.Error("Prepare should clear the dirty state")
	}
	if kind := r.Prepare(f.g); kind != SyncNone {
		t.Errorf("clean Prepare = %v, want none", kind)
	}

	f.g.MoveNode(f.a.ID, Vec2{110, 95})
	if kind := r.Prepare(f.g); kind != SyncPartial {
		t.Fatalf("Prepare after move = %v, want partial", kind)
	}
	if b, _ := r.NodeBounds(f.a.ID); b != (Rect{110, 95, 200, 100}) {
		t.Errorf("NodeBounds = %v", b)
	}
	path, ok := r.EdgePath(edge.ID)
	if !ok || path[0] != (Vec2{310, 145}) {
		t.Errorf("EdgePath start = %v, %v; want (310,145)", path, ok)
	}

	if _, err := f.g.AddNode(NodeOptions{}); err != nil {
		t.Fatal(err)
	}
	if kind := r.Prepare(f.g); kind != SyncFull {
		t.Errorf("Prepare after add = %v, want full", kind)
	}
	if n, _, _ := r.InstanceCounts(); n != 3 {
		t.Errorf("nodes = %d, want 3", n)
	}
}

func TestRendererPartialFallsBack(t *testing.T) {
	f := newTwoNodes(t)
	r := NewRenderer()
	// Never synced: a partial patch has nothing to patch.
	f.g.ClearDirty()
	f.g.MoveNode(f.a.ID, Vec2{0, 0})
	if r.SyncPartial(f.g) {
		t.Error("SyncPartial should fail without instances")
	}
	if kind := r.Prepare(f.g); kind != SyncFull {
		t.Errorf("Prepare = %v, want full fallback", kind)
	}
}

func TestRendererStaleEdgeInstance(t *testing.T) {
	f := newTwoNodes(t)
	edge := f.connect(t)
	delete(f.g.handles, f.in.ID)
	r := NewRenderer()
	r.Prepare(f.g)
	if _, ok := r.EdgePath(edge.ID); ok {
		t.Error("stale edge should have no path")
	}
	if _, _, e := r.InstanceCounts(); e != 1 {
		t.Error("stale edge keeps its slot so a later partial sync can fix it")
	}
}

func TestRenderStateOf(t *testing.T) {
	f := newTwoNodes(t)
	e := newTestEditor(t, f.g, &softBackend{})
	i := e.Interactor()

	hoverAt(e, 150, 150)
	i.Select(f.b.ID)
	rs := RenderStateOf(i)
	if rs.Hovered != f.a.ID {
		t.Errorf("Hovered = %v", rs.Hovered)
	}
	if _, ok := rs.Selected[f.b.ID]; !ok || len(rs.Selected) != 1 {
		t.Errorf("Selected = %v", rs.Selected)
	}
	if rs.HasMarquee || rs.HasPreview {
		t.Error("base tool has no marquee or preview")
	}

	hoverAt(e, 300, 150)
	i.PointerDown(PointerEvent{Screen: Vec2{300, 150}})
	i.PointerMove(PointerEvent{Screen: Vec2{350, 200}})
	rs = RenderStateOf(i)
	if !rs.HasPreview {
		t.Fatal("connect tool should report a preview")
	}
	assertVec(t, "PreviewA", rs.PreviewA, Vec2{300, 150})
	assertVec(t, "PreviewB", rs.PreviewB, Vec2{350, 200})
}
