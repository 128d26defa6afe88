package plotting

import (
	"bytes"
	"testing"

	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/prune"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testScene(t *testing.T) Scene {
	t.Helper()
	region := prune.Region{Width: 32, Height: 24, BufferX: 4, BufferY: 2}
	tiles, err := prune.Cover(32, 24, 16)
	require.NoError(t, err)
	return Scene{
		Region: region,
		Tiles:  tiles,
		Retained: []prune.Trajectory{
			{IX: 1, IY: 1, FX: 30, FY: 20},
			{IX: 0, IY: 0, FX: 3, FY: 2, Depth: 3},
		},
		Rejected: []prune.Trajectory{
			{IX: 50, IY: 50, FX: 80, FY: 90},
		},
	}
}

func TestTrajectoryPlotter_WritePNG(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	tp := NewTrajectoryPlotter("batch 1")

	require.NoError(t, tp.WritePNG(fsys, "plots/batch.png", testScene(t)))

	data, err := fsys.ReadFile("plots/batch.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "output is not a PNG")

	info, err := fsys.Stat("plots")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTrajectoryPlotter_SegmentLimit(t *testing.T) {
	t.Parallel()

	sc := testScene(t)
	for i := range 50 {
		sc.Rejected = append(sc.Rejected, prune.Trajectory{IX: -100 - i, IY: 0, FX: -90, FY: 5})
	}

	tp := NewTrajectoryPlotter("limited")
	tp.MaxSegments = 3

	p, err := tp.Render(sc)
	require.NoError(t, err)
	assert.Equal(t, "limited", p.Title.Text)
}

func TestTrajectoryPlotter_EmptyScene(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	tp := NewTrajectoryPlotter("")
	err := tp.WritePNG(fsys, "empty.png", Scene{Region: prune.Region{Width: 1, Height: 1}})
	require.NoError(t, err)
}

func TestTrajectoryPlotter_InvalidRegion(t *testing.T) {
	t.Parallel()

	tp := NewTrajectoryPlotter("bad")
	_, err := tp.Render(Scene{Region: prune.Region{Width: 0, Height: 1}})
	assert.ErrorIs(t, err, prune.ErrPrecondition)

	err = tp.WritePNG(fsutil.NewMemoryFileSystem(), "bad.png", Scene{})
	assert.ErrorContains(t, err, "render trajectory plot")
}
