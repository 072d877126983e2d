package trellis

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrCodeSpaceExhausted is returned by PickCodec.Code once every 24-bit code
// has been handed out.
var ErrCodeSpaceExhausted = errors.New("trellis: pick code space exhausted")

// maxPickCode is the largest code that fits in three color bytes.
const maxPickCode = 0xFFFFFF

// PickCodec maps element ids to compact integer codes and back. Codes start
// at 1 and are never reused; 0 is reserved for the background.
type PickCodec struct {
	next  uint32
	codes map[ElementID]uint32
	ids   map[uint32]ElementID
}

// NewPickCodec creates an empty codec.
func NewPickCodec() *PickCodec {
	return &PickCodec{
		next:  1,
		codes: make(map[ElementID]uint32),
		ids:   make(map[uint32]ElementID),
	}
}

// Code returns the code for id, assigning the next free one on first use.
func (c *PickCodec) Code(id ElementID) (uint32, error) {
	if code, ok := c.codes[id]; ok {
		return code, nil
	}
	if c.next > maxPickCode {
		return 0, fmt.Errorf("assign code to %s: %w", id, ErrCodeSpaceExhausted)
	}
	code := c.next
	c.next++
	c.codes[id] = code
	c.ids[code] = id
	return code, nil
}

// ID returns the element assigned to code. The background code and unknown
// codes return (zero, false).
func (c *PickCodec) ID(code uint32) (ElementID, bool) {
	id, ok := c.ids[code]
	return id, ok
}

// Len returns the number of assigned codes.
func (c *PickCodec) Len() int { return len(c.codes) }

// EncodeColor splits a code into red, green and blue bytes.
func EncodeColor(code uint32) [3]uint8 {
	return [3]uint8{uint8(code >> 16), uint8(code >> 8), uint8(code)}
}

// DecodeColor reassembles a code from its color bytes.
func DecodeColor(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// PickShape is the geometry of a PickInstance.
type PickShape uint8

const (
	PickRect    PickShape = iota // filled axis-aligned rectangle (Bounds)
	PickSegment                  // stroked line segment (From, To, Width)
)

// PickInstance is one shape of the id pass, in world coordinates, filled with
// the color encoding Code.
type PickInstance struct {
	Shape  PickShape
	Bounds Rect
	From   Vec2
	To     Vec2
	Width  float64
	Code   uint32
}

// IDPass is a complete id-buffer frame. Instances are drawn in order, so
// later instances win. View maps world to screen coordinates.
type IDPass struct {
	Instances []PickInstance
	View      [6]float64
}

// PixelReadback is the result of reading one pixel of the id buffer.
type PixelReadback struct {
	R, G, B uint8
	Err     error
}

// PickBackend renders id passes and reads pixels back from them. ReadPixel
// must not block: the returned channel delivers exactly one value once the
// pixel is available.
type PickBackend interface {
	RenderIDPass(pass IDPass)
	ReadPixel(x, y int) <-chan PixelReadback
}

// edgePickWidth is the stroke width of edges in the id pass, in world units.
const edgePickWidth = 4.0

// PickRequest is an in-flight exact pick.
type PickRequest struct {
	X, Y int

	ch     <-chan PixelReadback
	codec  *PickCodec
	logger *slog.Logger
	done   bool
	id     ElementID
	err    error
}

// Poll checks for the readback without blocking. Once done is true the
// result is final; a zero id means no hit.
func (r *PickRequest) Poll() (id ElementID, done bool) {
	if r.done {
		return r.id, true
	}
	select {
	case px, ok := <-r.ch:
		r.done = true
		if !ok {
			r.err = errors.New("trellis: pick readback channel closed")
			return ElementID{}, true
		}
		r.resolve(px)
		return r.id, true
	default:
		return ElementID{}, false
	}
}

func (r *PickRequest) resolve(px PixelReadback) {
	if px.Err != nil {
		r.err = px.Err
		r.logger.Warn("pick readback failed", "x", r.X, "y", r.Y, "error", px.Err)
		return
	}
	code := DecodeColor(px.R, px.G, px.B)
	if code == 0 {
		return
	}
	id, ok := r.codec.ID(code)
	if !ok {
		r.logger.Debug("pick resolved to an unmapped code", "code", code)
		return
	}
	r.id = id
}

// Err returns the readback error, if any. A failed read resolves to no hit.
func (r *PickRequest) Err() error { return r.err }

// PickResolver answers "which element is at this screen pixel" by rendering
// an id-coded pass through a PickBackend and reading one pixel back.
type PickResolver struct {
	graph    *Graph
	viewport *Viewport
	backend  PickBackend
	codec    *PickCodec
	logger   *slog.Logger

	synced   bool
	graphRev uint64
	viewRev  uint64
	pass     IDPass
}

// NewPickResolver creates a resolver for graph as seen through viewport.
func NewPickResolver(graph *Graph, viewport *Viewport, backend PickBackend) *PickResolver {
	if graph == nil || viewport == nil || backend == nil {
		panic("trellis: NewPickResolver requires a graph, viewport and backend")
	}
	return &PickResolver{
		graph:    graph,
		viewport: viewport,
		backend:  backend,
		codec:    NewPickCodec(),
		logger:   slog.Default(),
	}
}

// SetLogger sets the resolver's logger. nil restores slog.Default().
func (p *PickResolver) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	p.logger = logger
}

// Codec returns the resolver's codec.
func (p *PickResolver) Codec() *PickCodec { return p.codec }

// Invalidate forces the next pick to rebuild the id pass.
func (p *PickResolver) Invalidate() { p.synced = false }

// Pick renders the id pass if the graph or viewport changed since the last
// pass and requests the pixel at screen position (x, y).
func (p *PickResolver) Pick(x, y int) *PickRequest {
	if !p.synced || p.graphRev != p.graph.Revision() || p.viewRev != p.viewport.Revision() {
		p.sync()
		p.backend.RenderIDPass(p.pass)
	}
	return &PickRequest{
		X:      x,
		Y:      y,
		ch:     p.backend.ReadPixel(x, y),
		codec:  p.codec,
		logger: p.logger,
	}
}

// sync rebuilds the id pass: edges first, then each node followed by its
// handles, so handles sit above their node and nodes above edges.
func (p *PickResolver) sync() {
	instances := make([]PickInstance, 0, len(p.pass.Instances))

	for _, e := range p.graph.Edges() {
		path, ok := p.graph.EdgePath(e)
		if !ok {
			continue
		}
		code, ok := p.code(e.ID)
		if !ok {
			continue
		}
		for i := 1; i < len(path); i++ {
			instances = append(instances, PickInstance{
				Shape: PickSegment,
				From:  path[i-1],
				To:    path[i],
				Width: edgePickWidth,
				Code:  code,
			})
		}
	}

	for _, n := range p.graph.Nodes() {
		code, ok := p.code(n.ID)
		if !ok {
			continue
		}
		instances = append(instances, PickInstance{Shape: PickRect, Bounds: n.Bounds(), Code: code})
		for _, h := range n.handles {
			if !h.positioned {
				continue
			}
			hcode, ok := p.code(h.ID)
			if !ok {
				continue
			}
			half := h.Radius + 2
			center := n.Position.Add(h.position)
			instances = append(instances, PickInstance{
				Shape:  PickRect,
				Bounds: Rect{X: center.X - half, Y: center.Y - half, Width: half * 2, Height: half * 2},
				Code:   hcode,
			})
		}
	}

	p.pass = IDPass{Instances: instances, View: p.viewport.ViewMatrix()}
	p.graphRev = p.graph.Revision()
	p.viewRev = p.viewport.Revision()
	p.synced = true
}

func (p *PickResolver) code(id ElementID) (uint32, bool) {
	code, err := p.codec.Code(id)
	if err != nil {
		p.logger.Warn("element left out of the id pass", "id", id.String(), "error", err)
		return 0, false
	}
	return code, true
}
