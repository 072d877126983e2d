package trellis

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

// frame is the tick length used by editor tests.
const frame = time.Second / 60

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// --- Software pick backend ---

type softRead struct {
	x, y int
	ch   chan PixelReadback
}

// softBackend rasterizes the id pass on the CPU one pixel at a time. In
// manual mode reads are held until flush, like the GPU backend holds them
// until the end of Draw.
type softBackend struct {
	pass   IDPass
	passes int
	reads  int
	manual bool
	queued []softRead
}

func (b *softBackend) RenderIDPass(pass IDPass) {
	b.pass = pass
	b.passes++
}

func (b *softBackend) ReadPixel(x, y int) <-chan PixelReadback {
	b.reads++
	ch := make(chan PixelReadback, 1)
	if b.manual {
		b.queued = append(b.queued, softRead{x: x, y: y, ch: ch})
		return ch
	}
	ch <- b.readback(x, y)
	return ch
}

func (b *softBackend) flush() {
	for _, r := range b.queued {
		r.ch <- b.readback(r.x, r.y)
	}
	b.queued = nil
}

func (b *softBackend) readback(x, y int) PixelReadback {
	rgb := EncodeColor(b.codeAt(x, y))
	return PixelReadback{R: rgb[0], G: rgb[1], B: rgb[2]}
}

// codeAt samples the pixel center. Later instances win.
func (b *softBackend) codeAt(x, y int) uint32 {
	p := transformVec(invertAffine(b.pass.View), Vec2{float64(x) + 0.5, float64(y) + 0.5})
	var code uint32
	for _, inst := range b.pass.Instances {
		switch inst.Shape {
		case PickRect:
			if inst.Bounds.Contains(p.X, p.Y) {
				code = inst.Code
			}
		case PickSegment:
			if distToSegment(p, inst.From, inst.To) <= inst.Width/2 {
				code = inst.Code
			}
		}
	}
	return code
}

func distToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.Scale(t))).Len()
}

// fixedBackend answers every read with the same pixel.
type fixedBackend struct {
	px     PixelReadback
	passes int
}

func (b *fixedBackend) RenderIDPass(IDPass) { b.passes++ }

func (b *fixedBackend) ReadPixel(int, int) <-chan PixelReadback {
	ch := make(chan PixelReadback, 1)
	ch <- b.px
	return ch
}

// --- Event recording ---

type recordStore struct {
	events []EditorEvent
}

func (s *recordStore) EmitEvent(e EditorEvent) { s.events = append(s.events, e) }

func (s *recordStore) ofType(t EventType) []EditorEvent {
	var out []EditorEvent
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// --- Fixtures ---

// twoNodes is node A at (100,100) 200x100 with one output handle and node B
// at (400,300) 100x100 with one input handle.
type twoNodes struct {
	g       *Graph
	a, b    *Node
	out, in *Handle
}

func newTwoNodes(t *testing.T) twoNodes {
	t.Helper()
	g := NewGraph()
	g.SetLogger(discardLogger())
	a, err := g.AddNode(NodeOptions{Position: Vec2{100, 100}, Size: Vec2{200, 100}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.AddHandle(a.ID, HandleOptions{Kind: HandleOutput})
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddNode(NodeOptions{Position: Vec2{400, 300}, Size: Vec2{100, 100}})
	if err != nil {
		t.Fatal(err)
	}
	in, err := g.AddHandle(b.ID, HandleOptions{Kind: HandleInput})
	if err != nil {
		t.Fatal(err)
	}
	return twoNodes{g: g, a: a, b: b, out: out, in: in}
}

func (f twoNodes) connect(t *testing.T) *Edge {
	t.Helper()
	e, err := f.g.AddEdge(EdgeOptions{Source: EdgeEnd{Handle: f.out.ID}, Target: EdgeEnd{Handle: f.in.ID}})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func newTestEditor(t *testing.T, g *Graph, backend PickBackend) *Editor {
	t.Helper()
	opts := DefaultInteractorOptions()
	opts.UpdateInterval = 0
	return NewEditor(g, EditorOptions{
		Width:        800,
		Height:       600,
		Interactor:   opts,
		Backend:      backend,
		Logger:       discardLogger(),
		DisableInput: true,
	})
}

func tickN(e *Editor, n int) {
	for range n {
		e.tick(frame)
	}
}

// hoverAt moves the pointer and ticks until the hover pick has resolved.
func hoverAt(e *Editor, x, y float64) {
	e.InjectMove(x, y)
	tickN(e, 2)
}
