package trellis

import "math"

// Affine matrices are six floats [a, b, c, d, tx, ty] mapping (x, y) to
// (a*x + c*y + tx, b*x + d*y + ty). The viewport only ever produces uniform
// scale plus translation, but the helpers accept any affine matrix.

var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

const singularDeterminant = 1e-12

// scaleTranslate scales uniformly by s, then offsets by (tx, ty).
func scaleTranslate(s, tx, ty float64) [6]float64 {
	return [6]float64{s, 0, 0, s, tx, ty}
}

// invertAffine returns the inverse of m, or the identity when m is singular.
func invertAffine(m [6]float64) [6]float64 {
	a, b, c, d, tx, ty := m[0], m[1], m[2], m[3], m[4], m[5]
	det := a*d - b*c
	if math.Abs(det) < singularDeterminant {
		return identityTransform
	}
	ia, ib, ic, id := d/det, -b/det, -c/det, a/det
	return [6]float64{ia, ib, ic, id, -(ia*tx + ic*ty), -(ib*tx + id*ty)}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	p := transformVec(m, Vec2{X: x, Y: y})
	return p.X, p.Y
}

func transformVec(m [6]float64, v Vec2) Vec2 {
	return Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// transformRect maps the corners of r and returns their bounds. Exact for
// scale and translation, which is all a view matrix holds.
func transformRect(m [6]float64, r Rect) Rect {
	return RectFromPoints(transformVec(m, r.Min()), transformVec(m, r.Max()))
}
