package prune

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxCoverTiles bounds the number of tiles Cover will materialise.
const MaxCoverTiles = 1 << 20

// ErrCoverTooLarge is returned by Cover when the decomposition would exceed
// MaxCoverTiles.
var ErrCoverTooLarge = errors.New("cover exceeds tile limit")

// unboundedExp is the alignment exponent reported for a zero coordinate,
// which is divisible by every tile size.
const unboundedExp = 64

// Tile is an axis-aligned square on the image pyramid, anchored at its
// minimum corner (X, Y) with side Size pixels.
type Tile struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// alignExp returns the exponent of the largest power of two dividing n.
// Two's complement keeps the trailing zero count of a negative n equal to
// that of its magnitude.
func alignExp(n int) int {
	if n == 0 {
		return unboundedExp
	}
	return bits.TrailingZeros64(uint64(n))
}

// floorLog2 returns the exponent of the largest power of two <= n, n > 0.
func floorLog2(n uint64) int {
	return bits.Len64(n) - 1
}

// BiggestFit returns the largest power-of-two tile size s <= maxSize such
// that s divides both x and y, and a tile of side s anchored at (x, y) ends
// at or before width and height. The finest possible answer is 1.
//
// maxSize must be a positive power of two, width and height must be
// positive, and (x, y) must lie before the far edges of the region.
func BiggestFit(x, y, width, height, maxSize int) (int, error) {
	if !isPowerOfTwo(maxSize) {
		return 0, fmt.Errorf("max tile size %d is not a power of two: %w", maxSize, ErrPrecondition)
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("region %dx%d must have positive extent: %w", width, height, ErrPrecondition)
	}
	if x >= width || y >= height {
		return 0, fmt.Errorf("point (%d, %d) is outside region %dx%d: %w", x, y, width, height, ErrPrecondition)
	}

	// Both differences are positive; unsigned arithmetic avoids overflow
	// when x or y is far negative.
	remaining := min(uint64(width)-uint64(x), uint64(height)-uint64(y))

	exp := min(
		bits.TrailingZeros64(uint64(maxSize)),
		alignExp(x),
		alignExp(y),
		floorLog2(remaining),
	)
	return 1 << exp, nil
}

// Cover decomposes [0, width) x [0, height) into non-overlapping tiles no
// larger than maxSize. Each maxSize-aligned block is kept whole when it fits,
// otherwise it is split into quadrants recursively. Blocks are visited in
// row-major order and quadrants in Z-order. At most MaxCoverTiles tiles are
// produced; larger decompositions fail with ErrCoverTooLarge.
func Cover(width, height, maxSize int) ([]Tile, error) {
	if !isPowerOfTwo(maxSize) {
		return nil, fmt.Errorf("max tile size %d is not a power of two: %w", maxSize, ErrPrecondition)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("region %dx%d must have positive extent: %w", width, height, ErrPrecondition)
	}
	// Block counts are ceilings computed without overflow.
	blocksX, blocksY := (width-1)/maxSize+1, (height-1)/maxSize+1
	if blocksX > MaxCoverTiles/blocksY {
		return nil, fmt.Errorf("region %dx%d at tile size %d: %w", width, height, maxSize, ErrCoverTooLarge)
	}

	var tiles []Tile
	var err error
	for j := 0; j < blocksY; j++ {
		for i := 0; i < blocksX; i++ {
			tiles, err = appendCover(tiles, i*maxSize, j*maxSize, maxSize, width, height)
			if err != nil {
				return nil, err
			}
		}
	}
	return tiles, nil
}

// appendCover refines the block at (x, y) of side size. The block corner is
// aligned to size, so BiggestFit only falls below size when the block
// crosses a far edge.
func appendCover(tiles []Tile, x, y, size, width, height int) ([]Tile, error) {
	s, err := BiggestFit(x, y, width, height, size)
	if err != nil {
		return nil, err
	}
	if s == size {
		if len(tiles) >= MaxCoverTiles {
			return nil, fmt.Errorf("region %dx%d: %w", width, height, ErrCoverTooLarge)
		}
		return append(tiles, Tile{X: x, Y: y, Size: size}), nil
	}

	half := size / 2
	quadrants := [4][2]int{
		{x, y},
		{x + half, y},
		{x, y + half},
		{x + half, y + half},
	}
	for _, q := range quadrants {
		if q[0] >= width || q[1] >= height {
			continue
		}
		tiles, err = appendCover(tiles, q[0], q[1], half, width, height)
		if err != nil {
			return nil, err
		}
	}
	return tiles, nil
}
