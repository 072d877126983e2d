package trellis

import "math"

// OrthogonalPath returns the three-segment route between start and end: a
// horizontal run to the midpoint x, a vertical run, and a horizontal run into
// end. The two bend points share x = (start.X+end.X)/2.
func OrthogonalPath(start, end Vec2) []Vec2 {
	midX := (start.X + end.X) / 2
	return []Vec2{
		start,
		{midX, start.Y},
		{midX, end.Y},
		end,
	}
}

// PolylineBounds returns the axis-aligned bounding box of the given points.
// Returns the zero Rect for an empty slice.
func PolylineBounds(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// orientation returns the sign of the cross product (b-a)x(c-a):
// 1 counter-clockwise, -1 clockwise, 0 collinear.
func orientation(a, b, c Vec2) int {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case cross > 1e-12:
		return 1
	case cross < -1e-12:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether c, known to be collinear with a-b, lies on a-b.
func onSegment(a, b, c Vec2) bool {
	return c.X >= math.Min(a.X, b.X) && c.X <= math.Max(a.X, b.X) &&
		c.Y >= math.Min(a.Y, b.Y) && c.Y <= math.Max(a.Y, b.Y)
}

// SegmentsIntersect reports whether segment p1-p2 and segment q1-q2 share at
// least one point. Touching endpoints and collinear overlaps count.
func SegmentsIntersect(p1, p2, q1, q2 Vec2) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, p2, q2):
		return true
	case o3 == 0 && onSegment(q1, q2, p1):
		return true
	case o4 == 0 && onSegment(q1, q2, p2):
		return true
	}
	return false
}

// SegmentIntersectsRect reports whether segment a-b touches rectangle r,
// either by an endpoint inside r or by crossing one of its sides.
func SegmentIntersectsRect(a, b Vec2, r Rect) bool {
	if r.Contains(a.X, a.Y) || r.Contains(b.X, b.Y) {
		return true
	}
	tl := Vec2{r.X, r.Y}
	tr := Vec2{r.X + r.Width, r.Y}
	br := Vec2{r.X + r.Width, r.Y + r.Height}
	bl := Vec2{r.X, r.Y + r.Height}
	return SegmentsIntersect(a, b, tl, tr) ||
		SegmentsIntersect(a, b, tr, br) ||
		SegmentsIntersect(a, b, br, bl) ||
		SegmentsIntersect(a, b, bl, tl)
}

// PolylineIntersectsRect reports whether any segment of the polyline touches r.
// A single point is tested for containment.
func PolylineIntersectsRect(points []Vec2, r Rect) bool {
	switch len(points) {
	case 0:
		return false
	case 1:
		return r.Contains(points[0].X, points[0].Y)
	}
	for i := 0; i+1 < len(points); i++ {
		if SegmentIntersectsRect(points[i], points[i+1], r) {
			return true
		}
	}
	return false
}
