package prune

import (
	"fmt"
	"math"
)

// SquareSDF computes the signed Chebyshev distance from (px, py) to the
// boundary of an axis-aligned square of side size centred at (cx, cy).
//
// sdf < 0 => strictly inside
// sdf = 0 => on the boundary
// sdf > 0 => strictly outside
//
// The L-infinity metric matches the axis-aligned tiles produced by
// BiggestFit: membership reduces to two independent comparisons.
// A negative or NaN size is a caller bug and panics.
func SquareSDF(size, cx, cy, px, py float64) float64 {
	if !(size >= 0) {
		panic(fmt.Sprintf("prune: square size must be non-negative, got %v", size))
	}
	return math.Max(math.Abs(px-cx), math.Abs(py-cy)) - size/2
}

// Center returns the centre of the tile in pixel coordinates.
func (t Tile) Center() (float64, float64) {
	half := float64(t.Size) / 2
	return float64(t.X) + half, float64(t.Y) + half
}

// Distance returns the signed distance from (px, py) to the tile boundary.
func (t Tile) Distance(px, py float64) float64 {
	cx, cy := t.Center()
	return SquareSDF(float64(t.Size), cx, cy, px, py)
}

// Contains reports whether (px, py) lies inside the tile or on its boundary.
func (t Tile) Contains(px, py float64) bool {
	return t.Distance(px, py) <= 0
}

// Nearby returns the tiles whose signed distance to (px, py) is at most
// radius, preserving input order. A radius of 0 selects the tiles that
// contain the point.
func Nearby(tiles []Tile, px, py, radius float64) []Tile {
	var out []Tile
	for _, t := range tiles {
		if t.Distance(px, py) <= radius {
			out = append(out, t)
		}
	}
	return out
}
