package batch

import (
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/prune"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []prune.Trajectory{
	{IX: 50, IY: 50, FX: 100, FY: 100},
	{IX: -40, IY: 25, FX: 10, FY: 55},
	{IX: 3, IY: 1, FX: 7, FY: 2, Depth: 2},
}

func TestSaveLoad_JSON(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	b := New(sample)

	require.NoError(t, Save(fsys, "out/batch.json", b))

	got, err := Load(fsys, "out/batch.json")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.True(t, b.Created.Equal(got.Created))
	if diff := cmp.Diff(sample, got.Trajectories); diff != "" {
		t.Errorf("trajectories mismatch (-want +got):\n%s", diff)
	}

	info, err := fsys.Stat("out")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveLoad_CSV(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, Save(fsys, "batch.csv", New(sample)))

	raw, err := fsys.ReadFile("batch.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "ix,iy,fx,fy,depth\n50,50,100,100,0\n"))

	got, err := Load(fsys, "batch.csv")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	if diff := cmp.Diff(sample, got.Trajectories); diff != "" {
		t.Errorf("trajectories mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONWithoutID(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("b.json", []byte(`{"trajectories":[{"ix":1,"iy":2,"fx":3,"fy":4,"depth":1}]}`), 0o644))

	got, err := Load(fsys, "b.json")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, []prune.Trajectory{{IX: 1, IY: 2, FX: 3, FY: 4, Depth: 1}}, got.Trajectories)

	require.NoError(t, fsys.WriteFile("empty.json", []byte(`{}`), 0o644))
	got, err = Load(fsys, "empty.json")
	require.NoError(t, err)
	assert.NotNil(t, got.Trajectories)
	assert.Empty(t, got.Trajectories)
}

func TestLoad_CSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty file", "", "CSV header"},
		{"wrong header", "x0,y0,x1,y1,depth\n", "header column 1"},
		{"bad integer", "ix,iy,fx,fy,depth\n1,2,3,4,0\n1,2,three,4,0\n", "line 3: column fx"},
		{"short row", "ix,iy,fx,fy,depth\n1,2,3,4\n", "failed to read CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fsutil.NewMemoryFileSystem()
			require.NoError(t, fsys.WriteFile("b.csv", []byte(tt.body), 0o644))
			_, err := Load(fsys, "b.csv")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("b.txt", []byte("x"), 0o644))

	_, err := Load(fsys, "b.txt")
	assert.ErrorContains(t, err, "unsupported batch format")

	_, err = Load(fsys, "missing.json")
	assert.ErrorContains(t, err, "failed to read batch")

	err = Save(fsys, "b.yaml", New(nil))
	assert.ErrorContains(t, err, "unsupported batch format")
}

func TestDerive(t *testing.T) {
	b := &Batch{ID: uuid.New(), Created: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Trajectories: sample}
	d := b.Derive(sample[:1])

	assert.NotEqual(t, b.ID, d.ID)
	assert.Equal(t, b.Created, d.Created)
	assert.Len(t, d.Trajectories, 1)
	assert.Len(t, b.Trajectories, 3)
}
