package trellis

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// zoomAnim is an active ZoomTo tween. The anchor is the screen point that
// stays fixed while zooming.
type zoomAnim struct {
	tween  *gween.Tween
	anchor Vec2
}

// Viewport is the pan/zoom view onto the graph. A screen point s maps to the
// world point s/Zoom + Pan.
type Viewport struct {
	// Pan is the world position shown at the top-left corner of the screen.
	Pan Vec2
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in).
	Zoom float64
	// Width and Height are the screen size in pixels.
	Width, Height float64
	// MinZoom and MaxZoom clamp SetZoom, ZoomBy and ZoomTo.
	MinZoom, MaxZoom float64

	zoomTween *zoomAnim

	// revision tracking: a change of Pan or Zoom since the last Revision
	// call bumps the counter.
	lastPan  Vec2
	lastZoom float64
	revision uint64
}

// NewViewport creates a viewport of the given screen size at zoom 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{
		Zoom:     1,
		Width:    width,
		Height:   height,
		MinZoom:  0.1,
		MaxZoom:  8,
		lastZoom: 1,
	}
}

// ScreenToWorld converts a screen position to world coordinates.
func (v *Viewport) ScreenToWorld(s Vec2) Vec2 {
	return s.Scale(1 / v.zoom()).Add(v.Pan)
}

// WorldToScreen converts a world position to screen coordinates.
func (v *Viewport) WorldToScreen(w Vec2) Vec2 {
	return w.Sub(v.Pan).Scale(v.zoom())
}

// ViewMatrix returns the world-to-screen affine matrix.
func (v *Viewport) ViewMatrix() [6]float64 {
	z := v.zoom()
	return scaleTranslate(z, -v.Pan.X*z, -v.Pan.Y*z)
}

// VisibleBounds returns the world rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	return transformRect(invertAffine(v.ViewMatrix()), Rect{Width: v.Width, Height: v.Height})
}

// Resize sets the screen size.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) {
	v.Zoom = v.clampZoom(z)
}

// ZoomBy adds delta to the zoom, clamped.
func (v *Viewport) ZoomBy(delta float64) {
	v.SetZoom(v.Zoom + delta)
}

// ZoomAt sets the zoom while keeping the world point under the screen
// position anchor fixed.
func (v *Viewport) ZoomAt(z float64, anchor Vec2) {
	before := v.ScreenToWorld(anchor)
	v.SetZoom(z)
	after := v.ScreenToWorld(anchor)
	v.Pan = v.Pan.Add(before.Sub(after))
}

// ZoomTo animates the zoom to target over duration seconds, keeping the
// screen point anchor fixed. A nil easeFn uses ease.OutQuad.
func (v *Viewport) ZoomTo(target float64, anchor Vec2, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	target = v.clampZoom(target)
	if duration <= 0 {
		v.zoomTween = nil
		v.ZoomAt(target, anchor)
		return
	}
	v.zoomTween = &zoomAnim{
		tween:  gween.New(float32(v.Zoom), float32(target), duration, easeFn),
		anchor: anchor,
	}
}

// Animating reports whether a ZoomTo tween is in progress.
func (v *Viewport) Animating() bool { return v.zoomTween != nil }

// Update advances the zoom animation by dt seconds.
func (v *Viewport) Update(dt float32) {
	if v.zoomTween == nil {
		return
	}
	val, done := v.zoomTween.tween.Update(dt)
	v.ZoomAt(float64(val), v.zoomTween.anchor)
	if done {
		v.zoomTween = nil
	}
}

// Revision returns a counter that increases whenever Pan or Zoom changed
// since the previous call.
func (v *Viewport) Revision() uint64 {
	if v.Pan != v.lastPan || v.Zoom != v.lastZoom {
		v.lastPan, v.lastZoom = v.Pan, v.Zoom
		v.revision++
	}
	return v.revision
}

func (v *Viewport) clampZoom(z float64) float64 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = 1e-3
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, z))
}

// zoom guards against a zero or negative Zoom set directly on the struct.
func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}
