package trellis

import (
	"image"
	"image/color"
	"math"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Id-buffer pool ---

// bufferSize is a power-of-two id-buffer size.
type bufferSize struct{ w, h int }

// sizeClass rounds a screen size up to the buffer size that holds it.
func sizeClass(w, h int) bufferSize {
	return bufferSize{nextPowerOfTwo(w), nextPowerOfTwo(h)}
}

// idBufferPool keeps id buffers that a resize retired, so dragging the
// window edge back and forth reuses them instead of reallocating.
type idBufferPool struct {
	free map[bufferSize][]*ebiten.Image
}

// acquire returns a cleared buffer large enough for a w x h screen.
func (p *idBufferPool) acquire(w, h int) *ebiten.Image {
	size := sizeClass(w, h)
	if n := len(p.free[size]); n > 0 {
		img := p.free[size][n-1]
		p.free[size] = p.free[size][:n-1]
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(image.Rect(0, 0, size.w, size.h), &ebiten.NewImageOptions{Unmanaged: true})
}

// release retires a buffer. nil is ignored.
func (p *idBufferPool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.free == nil {
		p.free = make(map[bufferSize][]*ebiten.Image)
	}
	b := img.Bounds()
	size := bufferSize{b.Dx(), b.Dy()}
	p.free[size] = append(p.free[size], img)
}

// dispose deallocates every retired buffer.
func (p *idBufferPool) dispose() {
	for _, imgs := range p.free {
		for _, img := range imgs {
			img.Deallocate()
		}
	}
	p.free = nil
}

// nextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// --- White pixel (single-threaded, no sync.Once) ---

var whitePixelImage *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// --- Ebitengine id-buffer backend ---

type pixelRead struct {
	x, y int
	ch   chan PixelReadback
}

// EbitenPickBackend renders id passes into an offscreen image with copy
// blending and no anti-aliasing, so every pixel holds an exact code.
// ReadPixel requests are served by Flush, which the editor calls at the end
// of Draw; results therefore arrive one frame after the request.
type EbitenPickBackend struct {
	pool          idBufferPool
	target        *ebiten.Image
	width, height int

	verts []ebiten.Vertex
	inds  []uint32
	reads []pixelRead
}

// NewEbitenPickBackend creates a backend for a screen of the given size.
func NewEbitenPickBackend(width, height int) *EbitenPickBackend {
	return &EbitenPickBackend{width: width, height: height}
}

// Resize changes the id-buffer size. The next RenderIDPass reallocates.
func (b *EbitenPickBackend) Resize(width, height int) {
	if width == b.width && height == b.height {
		return
	}
	b.width, b.height = width, height
	b.pool.release(b.target)
	b.target = nil
}

// RenderIDPass implements PickBackend.
func (b *EbitenPickBackend) RenderIDPass(pass IDPass) {
	if b.width <= 0 || b.height <= 0 {
		return
	}
	if b.target == nil {
		b.target = b.pool.acquire(b.width, b.height)
	} else {
		b.target.Clear()
	}

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	for i := range pass.Instances {
		inst := &pass.Instances[i]
		switch inst.Shape {
		case PickRect:
			r := transformRect(pass.View, inst.Bounds)
			b.appendQuad(
				Vec2{r.X, r.Y}, Vec2{r.X + r.Width, r.Y},
				Vec2{r.X + r.Width, r.Y + r.Height}, Vec2{r.X, r.Y + r.Height},
				inst.Code)
		case PickSegment:
			from := transformVec(pass.View, inst.From)
			to := transformVec(pass.View, inst.To)
			half := inst.Width * math.Abs(pass.View[0]) / 2
			n := to.Sub(from).Normalize().Normal().Scale(half)
			if n == (Vec2{}) {
				continue
			}
			b.appendQuad(from.Add(n), to.Add(n), to.Sub(n), from.Sub(n), inst.Code)
		}
	}
	if len(b.inds) == 0 {
		return
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = ebiten.BlendCopy
	b.target.DrawTriangles32(b.verts, b.inds, ensureWhitePixel(), &op)
}

func (b *EbitenPickBackend) appendQuad(p0, p1, p2, p3 Vec2, code uint32) {
	rgb := EncodeColor(code)
	cr := float32(rgb[0]) / 255
	cg := float32(rgb[1]) / 255
	cb := float32(rgb[2]) / 255
	base := uint32(len(b.verts))
	for _, p := range [4]Vec2{p0, p1, p2, p3} {
		b.verts = append(b.verts, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		})
	}
	b.inds = append(b.inds, base, base+1, base+2, base, base+2, base+3)
}

// ReadPixel implements PickBackend. The value is delivered by the next Flush.
func (b *EbitenPickBackend) ReadPixel(x, y int) <-chan PixelReadback {
	ch := make(chan PixelReadback, 1)
	b.reads = append(b.reads, pixelRead{x: x, y: y, ch: ch})
	return ch
}

// Pending returns the number of reads waiting for Flush.
func (b *EbitenPickBackend) Pending() int { return len(b.reads) }

// Flush serves every queued read from the current id buffer. Reads outside
// the buffer, or before anything was rendered, return the background code.
func (b *EbitenPickBackend) Flush() {
	if len(b.reads) == 0 {
		return
	}
	var px [4]byte
	for _, r := range b.reads {
		if b.target == nil || r.x < 0 || r.y < 0 || r.x >= b.width || r.y >= b.height {
			r.ch <- PixelReadback{}
			continue
		}
		sub := b.target.SubImage(image.Rect(r.x, r.y, r.x+1, r.y+1)).(*ebiten.Image)
		sub.ReadPixels(px[:])
		r.ch <- PixelReadback{R: px[0], G: px[1], B: px[2]}
	}
	clear(b.reads)
	b.reads = b.reads[:0]
}

// Image returns the id buffer, for debugging. It may be nil.
func (b *EbitenPickBackend) Image() *ebiten.Image { return b.target }

// Dispose releases the id buffer.
func (b *EbitenPickBackend) Dispose() {
	if b.target != nil {
		b.target.Deallocate()
		b.target = nil
	}
	b.pool.dispose()
}
