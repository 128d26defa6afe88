// Package prune owns the hierarchical pruning layer of the trajectory search.
//
// Responsibilities: power-of-two tile sizing on the image pyramid, signed
// distance to square tiles, and trivial rejection of candidate trajectories
// that cannot reach the buffered search region.
// Key types: Trajectory, Region, Tile.
//
// Every function in this package is pure. Callers may invoke them from any
// number of goroutines without coordination.
// No image access or scoring code is allowed in this package.
package prune
