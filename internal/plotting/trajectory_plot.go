// Package plotting renders pruning results for visual inspection.
package plotting

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/monitoring"
	"github.com/banshee-data/tracksearch/internal/prune"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultMaxSegments bounds how many trajectories of each kind are drawn.
const DefaultMaxSegments = 2000

var (
	regionColor   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	bufferColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	tileColor     = color.RGBA{R: 200, G: 200, B: 220, A: 255}
	retainedColor = color.RGBA{R: 30, G: 140, B: 60, A: 255}
	rejectedColor = color.RGBA{R: 200, G: 60, B: 50, A: 160}
)

// TrajectoryPlotter draws the search region with retained and rejected
// candidate trajectories in pixel coordinates.
type TrajectoryPlotter struct {
	Title       string
	Width       vg.Length
	Height      vg.Length
	MaxSegments int // per category; 0 means DefaultMaxSegments
}

// NewTrajectoryPlotter returns a plotter with a square 8 inch canvas.
func NewTrajectoryPlotter(title string) *TrajectoryPlotter {
	return &TrajectoryPlotter{
		Title:  title,
		Width:  8 * vg.Inch,
		Height: 8 * vg.Inch,
	}
}

// Scene is everything drawn on one plot.
type Scene struct {
	Region   prune.Region
	Tiles    []prune.Tile
	Retained []prune.Trajectory
	Rejected []prune.Trajectory
}

// Render builds the plot for a scene.
func (tp *TrajectoryPlotter) Render(sc Scene) (*plot.Plot, error) {
	if err := sc.Region.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = tp.Title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	maxSegments := tp.MaxSegments
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	if len(sc.Tiles) > maxSegments {
		monitoring.Debugf("plotting: drawing %d of %d tiles", maxSegments, len(sc.Tiles))
	}
	for _, t := range sc.Tiles[:min(len(sc.Tiles), maxSegments)] {
		x, y, s := float64(t.X), float64(t.Y), float64(t.Size)
		l, err := rectLine(x, y, x+s, y+s)
		if err != nil {
			return nil, err
		}
		l.Color = tileColor
		l.Width = vg.Points(0.5)
		p.Add(l)
	}

	minX, minY, maxX, maxY := sc.Region.Bounds()
	buffered, err := rectLine(minX, minY, maxX, maxY)
	if err != nil {
		return nil, err
	}
	buffered.Color = bufferColor
	buffered.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(buffered)
	p.Legend.Add("buffered region", buffered)

	region, err := rectLine(0, 0, sc.Region.Width, sc.Region.Height)
	if err != nil {
		return nil, err
	}
	region.Color = regionColor
	region.Width = vg.Points(1.5)
	p.Add(region)
	p.Legend.Add("search region", region)

	if err := addTrajectories(p, "rejected", sc.Rejected, rejectedColor, maxSegments); err != nil {
		return nil, err
	}
	if err := addTrajectories(p, "retained", sc.Retained, retainedColor, maxSegments); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePNG renders the scene and writes it to path.
func (tp *TrajectoryPlotter) WritePNG(fsys fsutil.FileSystem, path string, sc Scene) error {
	p, err := tp.Render(sc)
	if err != nil {
		return fmt.Errorf("render trajectory plot: %w", err)
	}
	wt, err := p.WriterTo(tp.Width, tp.Height, "png")
	if err != nil {
		return fmt.Errorf("encode trajectory plot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return f.Close()
}

func rectLine(x0, y0, x1, y1 float64) (*plotter.Line, error) {
	return plotter.NewLine(plotter.XYs{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	})
}

// addTrajectories draws up to limit segments and marks every start point.
func addTrajectories(p *plot.Plot, label string, ts []prune.Trajectory, c color.Color, limit int) error {
	if len(ts) == 0 {
		return nil
	}
	if len(ts) > limit {
		monitoring.Debugf("plotting: drawing %d of %d %s trajectories", limit, len(ts), label)
	}

	var first *plotter.Line
	for _, t := range ts[:min(len(ts), limit)] {
		x0, y0, x1, y1 := t.PixelEndpoints()
		l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
		if err != nil {
			return err
		}
		l.Color = c
		l.Width = vg.Points(1)
		p.Add(l)
		if first == nil {
			first = l
		}
	}

	starts := make(plotter.XYs, len(ts))
	for i, t := range ts {
		starts[i].X, starts[i].Y, _, _ = t.PixelEndpoints()
	}
	sc, err := plotter.NewScatter(starts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	p.Legend.Add(fmt.Sprintf("%s (%d)", label, len(ts)), first)
	return nil
}
