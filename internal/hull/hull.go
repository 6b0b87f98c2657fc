// Package hull maintains an incremental upper approximation of the
// Pareto-extremal points of a streamed 2-D point cloud, using bounded
// memory independent of stream length (spec.md §4.6).
package hull

// Point is one projected record: its (x, y) coordinates on a particular
// statistic-pair axis, plus a value-copy of the underlying record bytes so
// the pipeline's batch buffer can be freed once a point is retained.
type Point struct {
	X, Y   float64
	Record []byte
}

// Reducer is a per-axis consumer maintaining layers of convex-hull shells.
// Not safe for concurrent use: each Reducer belongs to exactly one
// goroutine (spec.md §5).
type Reducer struct {
	layers         int
	maxDirtyPoints int
	hullLayers     [][]Point
	dirty          []Point
	passthrough    bool // layers == 0: disabled, Insert just buffers
}

// New creates a Reducer with the given number of hull shells and the
// dirty-buffer threshold that triggers a reconvex. layers == 0 disables
// the reducer: Insert becomes a plain append and Drain returns everything
// ever inserted (CLI flag "hull=0", spec.md §6).
func New(layers, maxDirtyPoints int) *Reducer {
	return &Reducer{
		layers:         layers,
		maxDirtyPoints: maxDirtyPoints,
		hullLayers:     make([][]Point, layers),
		passthrough:    layers == 0,
	}
}

// Insert appends p to the dirty buffer, triggering a reconvex once the
// buffer exceeds maxDirtyPoints.
func (r *Reducer) Insert(p Point) {
	if r.passthrough {
		r.dirty = append(r.dirty, p)
		return
	}
	r.dirty = append(r.dirty, p)
	if len(r.dirty) > r.maxDirtyPoints {
		r.reconvex()
	}
}

// Len reports the current total retained point count (all layers plus the
// dirty buffer) — the bounded working set spec.md §8 property 4 (S4) checks.
func (r *Reducer) Len() int {
	n := len(r.dirty)
	for _, layer := range r.hullLayers {
		n += len(layer)
	}
	return n
}

// Drain forces a reconvex and returns the concatenation of all layer point
// lists; the layers stay in place afterwards. With layers == 0 it returns
// the buffered points and empties the buffer.
func (r *Reducer) Drain() []Point {
	if r.passthrough {
		out := r.dirty
		r.dirty = nil
		return out
	}
	r.reconvex()
	var out []Point
	for _, layer := range r.hullLayers {
		out = append(out, layer...)
	}
	return out
}

// reconvex gathers all points from every layer plus the dirty buffer into
// one working set, then for each layer in turn computes the convex hull of
// what remains and removes those vertices from the working set (spec.md
// §4.6). Layers with fewer than 3 points keep the whole remaining set.
func (r *Reducer) reconvex() {
	working := make([]Point, 0, r.Len())
	working = append(working, r.dirty...)
	for _, layer := range r.hullLayers {
		working = append(working, layer...)
	}
	r.dirty = r.dirty[:0]

	for k := 0; k < r.layers; k++ {
		if len(working) < 3 {
			r.hullLayers[k] = working
			working = nil
			continue
		}
		idx := convexHullIndices(working)
		vertices := make([]Point, len(idx))
		keep := make([]bool, len(working))
		for i := range keep {
			keep[i] = true
		}
		for i, vi := range idx {
			vertices[i] = working[vi]
			keep[vi] = false
		}
		r.hullLayers[k] = vertices
		working = compact(working, keep)
	}
}

// compact returns the points whose keep flag is true, reusing points'
// backing array.
func compact(points []Point, keep []bool) []Point {
	out := points[:0]
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return append([]Point(nil), out...)
}

// convexHullIndices computes the 2-D convex hull of points via
// gift-wrapping (Jarvis march): start at the point with minimum x (ties
// broken by minimum y), then repeatedly advance to the point that makes
// the most-counter-clockwise turn relative to the current edge, until the
// walk returns to the start (spec.md §4.6). It returns hull membership as
// indices into points rather than Point values, since Point carries a
// []byte field and is therefore not comparable.
func convexHullIndices(points []Point) []int {
	n := len(points)
	if n < 3 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	start := 0
	for i := 1; i < n; i++ {
		if points[i].X < points[start].X || (points[i].X == points[start].X && points[i].Y < points[start].Y) {
			start = i
		}
	}

	var hullIdx []int
	current := start
	for {
		hullIdx = append(hullIdx, current)
		candidate := (current + 1) % n
		for i := 0; i < n; i++ {
			cross := crossProduct(points[current], points[candidate], points[i])
			if cross > 0 {
				candidate = i
			}
		}
		current = candidate
		if current == start {
			break
		}
	}
	return hullIdx
}

// crossProduct returns the sign of the cross product of (b-a) and (c-a):
// positive means c is a counter-clockwise turn from edge a->b.
func crossProduct(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
