// Package report summarises a pruning pass for operators and downstream
// tuning: how many candidates survived, at which depths, and how long the
// surviving trajectories are.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/prune"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DepthCount tallies candidates at one pyramid depth.
type DepthCount struct {
	Depth    int `json:"depth"`
	Input    int `json:"input"`
	Retained int `json:"retained"`
}

// Summary describes the outcome of one FilterBounds pass.
type Summary struct {
	Input            int          `json:"input"`
	Retained         int          `json:"retained"`
	Rejected         int          `json:"rejected"`
	RetainedFraction float64      `json:"retained_fraction"`
	ByDepth          []DepthCount `json:"by_depth"`

	// Pixel length statistics of retained trajectories
	MeanLength   float64 `json:"mean_length_px"`
	StdDevLength float64 `json:"stddev_length_px"`
	MaxLength    float64 `json:"max_length_px"`
}

// Summarize compares the input of a filtering pass with its output.
// out must be a subsequence of in, as FilterBounds guarantees.
func Summarize(in, out []prune.Trajectory) Summary {
	s := Summary{
		Input:    len(in),
		Retained: len(out),
		Rejected: len(in) - len(out),
	}
	if len(in) > 0 {
		s.RetainedFraction = float64(len(out)) / float64(len(in))
	}

	depths := make(map[int]*DepthCount)
	count := func(t prune.Trajectory) *DepthCount {
		dc, ok := depths[t.Depth]
		if !ok {
			dc = &DepthCount{Depth: t.Depth}
			depths[t.Depth] = dc
		}
		return dc
	}
	for _, t := range in {
		count(t).Input++
	}
	for _, t := range out {
		count(t).Retained++
	}
	s.ByDepth = make([]DepthCount, 0, len(depths))
	for _, dc := range depths {
		s.ByDepth = append(s.ByDepth, *dc)
	}
	sort.Slice(s.ByDepth, func(i, j int) bool { return s.ByDepth[i].Depth < s.ByDepth[j].Depth })

	if len(out) == 0 {
		return s
	}
	lengths := make([]float64, len(out))
	for i, t := range out {
		lengths[i] = t.PixelLength()
	}
	s.MaxLength = floats.Max(lengths)
	if len(lengths) == 1 {
		s.MeanLength = lengths[0]
		return s
	}
	s.MeanLength, s.StdDevLength = stat.MeanStdDev(lengths, nil)
	return s
}

// Complement returns the elements of in that are absent from out, in order.
// out must be a subsequence of in.
func Complement(in, out []prune.Trajectory) []prune.Trajectory {
	rest := make([]prune.Trajectory, 0, len(in)-len(out))
	j := 0
	for _, t := range in {
		if j < len(out) && out[j] == t {
			j++
			continue
		}
		rest = append(rest, t)
	}
	return rest
}

// TileHistogram counts cover tiles by side length, smallest first.
type TileHistogram struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}

// HistogramTiles groups a pyramid cover by tile size.
func HistogramTiles(tiles []prune.Tile) []TileHistogram {
	bySize := make(map[int]int)
	for _, t := range tiles {
		bySize[t.Size]++
	}
	out := make([]TileHistogram, 0, len(bySize))
	for size, n := range bySize {
		out = append(out, TileHistogram{Size: size, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}

// Report is the JSON document written after a pruning run.
type Report struct {
	RunID       uuid.UUID       `json:"run_id"`
	Generated   time.Time       `json:"generated"`
	InputBatch  uuid.UUID       `json:"input_batch"`
	OutputBatch uuid.UUID       `json:"output_batch"`
	Region      prune.Region    `json:"region"`
	MaxTileSize int             `json:"max_tile_size"`
	Tiles       []TileHistogram `json:"tiles,omitempty"`
	Summary     Summary         `json:"summary"`
}

// New creates a report with a fresh run ID.
func New(region prune.Region, maxTileSize int, summary Summary) *Report {
	return &Report{
		RunID:       uuid.New(),
		Generated:   time.Now().UTC(),
		Region:      region,
		MaxTileSize: maxTileSize,
		Summary:     summary,
	}
}

// Write stores the report as indented JSON.
func (r *Report) Write(fsys fsutil.FileSystem, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report dir: %w", err)
		}
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
