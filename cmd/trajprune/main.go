// Command trajprune discards candidate trajectories that cannot reach the
// search region before they are handed to the scoring pass.
//
// Usage:
//
//	trajprune -input candidates.csv -output kept.json -width 2048 -height 4096 -buffer-x 5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banshee-data/tracksearch/internal/batch"
	"github.com/banshee-data/tracksearch/internal/config"
	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/monitoring"
	"github.com/banshee-data/tracksearch/internal/plotting"
	"github.com/banshee-data/tracksearch/internal/prune"
	"github.com/banshee-data/tracksearch/internal/report"
	"github.com/banshee-data/tracksearch/internal/version"
)

// Flags
var (
	inputPath   = flag.String("input", "", "Candidate batch to filter (.json or .csv)")
	outputPath  = flag.String("output", "", "Write retained trajectories here (.json or .csv)")
	configPath  = flag.String("config", "", "Search config JSON (built-in defaults when empty)")
	width       = flag.Float64("width", 0, "Search region width in pixels (overrides config)")
	height      = flag.Float64("height", 0, "Search region height in pixels (overrides config)")
	bufferX     = flag.Float64("buffer-x", 0, "Margin added left and right of the region (overrides config)")
	bufferY     = flag.Float64("buffer-y", 0, "Margin added above and below the region (overrides config)")
	maxTile     = flag.Int("max-tile", 0, "Largest pyramid tile size, a power of two (overrides config)")
	shards      = flag.Int("shards", 0, "Concurrent filter shards, 0 = GOMAXPROCS (overrides config)")
	reportPath  = flag.String("report", "", "Write a JSON run report here")
	plotPath    = flag.String("plot", "", "Write a PNG plot here")
	verbose     = flag.Bool("verbose", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options is everything a run needs once flags and config are resolved.
type options struct {
	Input  string
	Output string
	Report string
	Plot   string
	Config *config.SearchConfig
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *inputPath == "" {
		log.Fatal("-input is required")
	}
	monitoring.SetVerbose(*verbose)

	cfg := config.EmptySearchConfig()
	if *configPath != "" {
		loaded, err := config.LoadSearchConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg.Override(flagOverrides(set))
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	opts := options{
		Input:  *inputPath,
		Output: *outputPath,
		Report: *reportPath,
		Plot:   resolvePlotPath(*plotPath, *outputPath, cfg.GetPlotEnabled()),
		Config: cfg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fsutil.OSFileSystem{}, opts); err != nil {
		log.Fatalf("trajprune: %v", err)
	}
}

// flagOverrides builds a config holding only the flags the user set.
func flagOverrides(set map[string]bool) *config.SearchConfig {
	o := config.EmptySearchConfig()
	if set["width"] {
		v := *width
		o.Width = &v
	}
	if set["height"] {
		v := *height
		o.Height = &v
	}
	if set["buffer-x"] {
		v := *bufferX
		o.BufferX = &v
	}
	if set["buffer-y"] {
		v := *bufferY
		o.BufferY = &v
	}
	if set["max-tile"] {
		v := *maxTile
		o.MaxTileSize = &v
	}
	if set["shards"] {
		v := *shards
		o.Shards = &v
	}
	return o
}

// resolvePlotPath falls back to a PNG beside the output batch when plotting
// is enabled in config but no -plot path was given.
func resolvePlotPath(plot, output string, enabled bool) string {
	if plot != "" || !enabled {
		return plot
	}
	if output == "" {
		return "trajprune.png"
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".png"
}

func run(ctx context.Context, fsys fsutil.FileSystem, opts options) error {
	cfg := opts.Config
	region := cfg.Region()

	in, err := batch.Load(fsys, opts.Input)
	if err != nil {
		return err
	}
	monitoring.Debugf("loaded batch %s with %d candidates from %s", in.ID, len(in.Trajectories), opts.Input)

	kept, err := prune.FilterBoundsSharded(ctx, in.Trajectories, region, cfg.GetShards())
	if err != nil {
		return fmt.Errorf("filter batch %s: %w", in.ID, err)
	}
	out := in.Derive(kept)
	log.Printf("batch %s: kept %d of %d candidates", in.ID, len(kept), len(in.Trajectories))

	if opts.Output != "" {
		if err := batch.Save(fsys, opts.Output, out); err != nil {
			return err
		}
		log.Printf("retained batch %s written to %s", out.ID, opts.Output)
	}

	var tiles []prune.Tile
	if opts.Report != "" || opts.Plot != "" {
		tiles, err = prune.Cover(int(math.Ceil(region.Width)), int(math.Ceil(region.Height)), cfg.GetMaxTileSize())
		switch {
		case errors.Is(err, prune.ErrCoverTooLarge):
			log.Printf("warning: skipping tile cover: %v", err)
		case err != nil:
			return fmt.Errorf("cover search region: %w", err)
		default:
			monitoring.Debugf("search region covered by %d tiles", len(tiles))
		}
	}

	if opts.Report != "" {
		r := report.New(region, cfg.GetMaxTileSize(), report.Summarize(in.Trajectories, kept))
		r.InputBatch = in.ID
		r.OutputBatch = out.ID
		r.Tiles = report.HistogramTiles(tiles)
		if err := r.Write(fsys, opts.Report); err != nil {
			return err
		}
		log.Printf("report %s written to %s", r.RunID, opts.Report)
	}

	if opts.Plot != "" {
		tp := plotting.NewTrajectoryPlotter(fmt.Sprintf("batch %s", in.ID))
		scene := plotting.Scene{
			Region:   region,
			Tiles:    tiles,
			Retained: kept,
			Rejected: report.Complement(in.Trajectories, kept),
		}
		if err := tp.WritePNG(fsys, opts.Plot, scene); err != nil {
			return err
		}
		log.Printf("plot written to %s", opts.Plot)
	}

	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -input FILE [flags]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}
