package prune

import (
	"errors"
	"fmt"
	"math"
)

// ErrPrecondition is wrapped by every error returned for invalid input.
// Such errors indicate a bug in the caller (usually candidate generation),
// not a transient fault, and should not be retried.
var ErrPrecondition = errors.New("precondition violated")

// MaxDepth is the deepest pyramid level a trajectory may carry.
// Tile sides are 1<<depth, which must stay representable in an int32 pixel frame.
const MaxDepth = 30

// Trajectory is a candidate straight-line path across the image stack.
// Coordinates are in tiles of side 1<<Depth; Depth 0 is pixel resolution.
type Trajectory struct {
	IX    int `json:"ix"`
	IY    int `json:"iy"`
	FX    int `json:"fx"`
	FY    int `json:"fy"`
	Depth int `json:"depth"`
}

// Scale returns the tile side length in pixels for the trajectory's depth.
func (t Trajectory) Scale() int {
	return 1 << t.Depth
}

// PixelLength returns the Euclidean length of the trajectory in pixels,
// measured between the minimum corners of its endpoint tiles.
func (t Trajectory) PixelLength() float64 {
	s := float64(t.Scale())
	dx := (float64(t.FX) - float64(t.IX)) * s
	dy := (float64(t.FY) - float64(t.IY)) * s
	return math.Hypot(dx, dy)
}

// PixelEndpoints returns the centres of the endpoint tiles in pixel
// coordinates. At depth 0 these are the endpoint coordinates themselves.
func (t Trajectory) PixelEndpoints() (x0, y0, x1, y1 float64) {
	mid := func(c int) float64 {
		lo, hi := tileSpan(c, t.Depth)
		return (lo + hi) / 2
	}
	return mid(t.IX), mid(t.IY), mid(t.FX), mid(t.FY)
}

func (t Trajectory) validate() error {
	if t.Depth < 0 || t.Depth > MaxDepth {
		return fmt.Errorf("trajectory depth %d outside [0, %d]: %w", t.Depth, MaxDepth, ErrPrecondition)
	}
	return nil
}

// Region is the searchable image area plus a tolerance margin on every side.
// The buffered region spans [-BufferX, Width+BufferX] x [-BufferY, Height+BufferY].
type Region struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	BufferX float64 `json:"buffer_x"`
	BufferY float64 `json:"buffer_y"`
}

// Validate reports whether the region satisfies its preconditions.
func (r Region) Validate() error {
	if !(r.Width > 0) || math.IsInf(r.Width, 0) {
		return fmt.Errorf("region width must be positive and finite, got %v: %w", r.Width, ErrPrecondition)
	}
	if !(r.Height > 0) || math.IsInf(r.Height, 0) {
		return fmt.Errorf("region height must be positive and finite, got %v: %w", r.Height, ErrPrecondition)
	}
	if !(r.BufferX >= 0) || math.IsInf(r.BufferX, 0) {
		return fmt.Errorf("region buffer_x must be non-negative, got %v: %w", r.BufferX, ErrPrecondition)
	}
	if !(r.BufferY >= 0) || math.IsInf(r.BufferY, 0) {
		return fmt.Errorf("region buffer_y must be non-negative, got %v: %w", r.BufferY, ErrPrecondition)
	}
	return nil
}

// Bounds returns the buffered region as min/max corners.
func (r Region) Bounds() (minX, minY, maxX, maxY float64) {
	return -r.BufferX, -r.BufferY, r.Width + r.BufferX, r.Height + r.BufferY
}
