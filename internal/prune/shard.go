package prune

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FilterBoundsSharded is FilterBounds split across contiguous shards that are
// filtered concurrently and concatenated in input order. The result is
// identical to FilterBounds for every shard count. A non-positive shards
// uses GOMAXPROCS.
func FilterBoundsSharded(ctx context.Context, ts []Trajectory, r Region, shards int) ([]Trajectory, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if shards <= 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	shards = max(1, min(shards, len(ts)))
	b := newBufferedRegion(r)

	if shards == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return filterBounds(ts, b)
	}

	results := make([][]Trajectory, shards)
	g, gctx := errgroup.WithContext(ctx)
	for i := range shards {
		lo := i * len(ts) / shards
		hi := (i + 1) * len(ts) / shards
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			kept, err := filterBounds(ts[lo:hi], b)
			if err != nil {
				return err
			}
			results[i] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, part := range results {
		total += len(part)
	}
	out := make([]Trajectory, 0, total)
	for _, part := range results {
		out = append(out, part...)
	}
	return out, nil
}
