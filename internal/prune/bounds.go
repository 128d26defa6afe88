package prune

import "math"

// Outcode bits for the Cohen-Sutherland trivial reject test.
const (
	outcodeInside = 0
	outcodeLeft   = 1
	outcodeRight  = 2
	outcodeBottom = 4
	outcodeTop    = 8
)

// tileSpan maps a coordinate at the given pyramid depth to the inclusive
// pixel interval covered by its tile, [c<<depth, c<<depth + (1<<depth) - 1].
// At depth 0 the interval is the single pixel c, which keeps the depth-0
// filter pixel accurate. This is the only place depth scaling happens.
// The span is computed in float64 so extreme coordinates cannot wrap and
// flip an endpoint to the wrong side of the region.
func tileSpan(c, depth int) (lo, hi float64) {
	lo = math.Ldexp(float64(c), depth)
	return lo, lo + math.Ldexp(1, depth) - 1
}

// bufferedRegion is the expanded search area in pixel coordinates.
type bufferedRegion struct {
	minX, minY, maxX, maxY float64
}

func newBufferedRegion(r Region) bufferedRegion {
	minX, minY, maxX, maxY := r.Bounds()
	return bufferedRegion{minX: minX, minY: minY, maxX: maxX, maxY: maxY}
}

// outcode classifies an endpoint tile against the region. A side bit is set
// only when the whole tile lies beyond that edge.
func (b bufferedRegion) outcode(x, y, depth int) int {
	code := outcodeInside

	xlo, xhi := tileSpan(x, depth)
	if xhi < b.minX {
		code |= outcodeLeft
	} else if xlo > b.maxX {
		code |= outcodeRight
	}

	ylo, yhi := tileSpan(y, depth)
	if yhi < b.minY {
		code |= outcodeTop
	} else if ylo > b.maxY {
		code |= outcodeBottom
	}

	return code
}

// rejects reports whether both endpoints lie beyond the same edge, in which
// case the segment between them cannot cross the region.
func (b bufferedRegion) rejects(t Trajectory) bool {
	code0 := b.outcode(t.IX, t.IY, t.Depth)
	code1 := b.outcode(t.FX, t.FY, t.Depth)
	return code0&code1 != 0
}

// FilterBounds returns the trajectories that could intersect the buffered
// region, in input order. A trajectory is dropped only when both endpoints
// are outside the region on the same side of one axis. Segments with one
// endpoint inside, or that may pass through the region, are kept.
//
// The input slice is never modified; the result is always a fresh slice.
func FilterBounds(ts []Trajectory, r Region) ([]Trajectory, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return filterBounds(ts, newBufferedRegion(r))
}

func filterBounds(ts []Trajectory, b bufferedRegion) ([]Trajectory, error) {
	out := make([]Trajectory, 0, len(ts))
	for _, t := range ts {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if b.rejects(t) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
