package trellis

const (
	defaultQuadCapacity = 4
	maxQuadDepth        = 16
)

type quadItem[T any] struct {
	bounds Rect
	data   T
}

// QuadTree is a region quadtree over axis-aligned rectangles. Leaves hold up
// to the configured capacity before subdividing into four equal quadrants.
// An item is pushed into the first child that fully contains it; items that
// straddle a quadrant boundary stay at the level where they were inserted.
//
// Overlap tests are strict: rectangles that only touch do not overlap.
type QuadTree[T any] struct {
	bounds   Rect
	capacity int
	depth    int
	items    []quadItem[T]
	children *[4]*QuadTree[T]
	size     int
}

// NewQuadTree creates an empty tree covering bounds. capacity <= 0 uses 4.
func NewQuadTree[T any](bounds Rect, capacity int) *QuadTree[T] {
	if capacity <= 0 {
		capacity = defaultQuadCapacity
	}
	return &QuadTree[T]{bounds: bounds, capacity: capacity}
}

// Bounds returns the region covered by the tree.
func (q *QuadTree[T]) Bounds() Rect { return q.bounds }

// Len returns the number of items stored in the tree.
func (q *QuadTree[T]) Len() int { return q.size }

// Insert adds data with the given bounds. It returns false, and stores
// nothing, when bounds does not overlap the tree's region.
func (q *QuadTree[T]) Insert(bounds Rect, data T) bool {
	if !q.bounds.Overlaps(bounds) {
		return false
	}
	q.insert(quadItem[T]{bounds: bounds, data: data})
	return true
}

func (q *QuadTree[T]) insert(it quadItem[T]) {
	q.size++
	if q.children != nil {
		if child := q.childFor(it.bounds); child != nil {
			child.insert(it)
			return
		}
		q.items = append(q.items, it)
		return
	}
	q.items = append(q.items, it)
	if len(q.items) > q.capacity && q.depth < maxQuadDepth {
		q.subdivide()
	}
}

// childFor returns the first child fully containing r, or nil.
func (q *QuadTree[T]) childFor(r Rect) *QuadTree[T] {
	for _, c := range q.children {
		if c.bounds.ContainsRect(r) {
			return c
		}
	}
	return nil
}

func (q *QuadTree[T]) subdivide() {
	hw, hh := q.bounds.Width/2, q.bounds.Height/2
	x, y := q.bounds.X, q.bounds.Y
	quads := [4]Rect{
		{X: x, Y: y, Width: hw, Height: hh},
		{X: x + hw, Y: y, Width: hw, Height: hh},
		{X: x, Y: y + hh, Width: hw, Height: hh},
		{X: x + hw, Y: y + hh, Width: hw, Height: hh},
	}
	q.children = new([4]*QuadTree[T])
	for i, r := range quads {
		q.children[i] = &QuadTree[T]{bounds: r, capacity: q.capacity, depth: q.depth + 1}
	}

	kept := q.items[:0]
	for _, it := range q.items {
		if child := q.childFor(it.bounds); child != nil {
			child.size++
			child.items = append(child.items, it)
			continue
		}
		kept = append(kept, it)
	}
	clear(q.items[len(kept):])
	q.items = kept

	// A child can receive more than capacity items in one pass.
	for _, c := range q.children {
		if len(c.items) > c.capacity && c.depth < maxQuadDepth {
			c.subdivide()
		}
	}
}

// QueryPoint returns the data of every item whose bounds strictly contain p.
func (q *QuadTree[T]) QueryPoint(p Vec2) []T {
	var out []T
	q.queryPoint(p, &out)
	return out
}

func (q *QuadTree[T]) queryPoint(p Vec2, out *[]T) {
	if !q.bounds.Contains(p.X, p.Y) {
		return
	}
	for _, it := range q.items {
		if it.bounds.ContainsStrict(p.X, p.Y) {
			*out = append(*out, it.data)
		}
	}
	if q.children != nil {
		for _, c := range q.children {
			c.queryPoint(p, out)
		}
	}
}

// QueryArea returns the data of every item whose bounds strictly overlap area.
func (q *QuadTree[T]) QueryArea(area Rect) []T {
	var out []T
	q.queryArea(area, &out)
	return out
}

func (q *QuadTree[T]) queryArea(area Rect, out *[]T) {
	if !q.bounds.Overlaps(area) {
		return
	}
	for _, it := range q.items {
		if it.bounds.Overlaps(area) {
			*out = append(*out, it.data)
		}
	}
	if q.children != nil {
		for _, c := range q.children {
			c.queryArea(area, out)
		}
	}
}

// Clear removes every item and collapses the tree to a single leaf.
func (q *QuadTree[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.children = nil
	q.size = 0
}
