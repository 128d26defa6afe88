// Package batch reads and writes candidate trajectory batches.
//
// A batch is stored as JSON (with its identity and creation time) or as a
// bare CSV table with the header ix,iy,fx,fy,depth. CSV batches receive a
// fresh ID when loaded.
package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/tracksearch/internal/fsutil"
	"github.com/banshee-data/tracksearch/internal/prune"
	"github.com/google/uuid"
)

// csvHeader is the required first row of a CSV batch.
var csvHeader = []string{"ix", "iy", "fx", "fy", "depth"}

// Batch is one generation of candidate trajectories.
type Batch struct {
	ID           uuid.UUID          `json:"id"`
	Created      time.Time          `json:"created"`
	Trajectories []prune.Trajectory `json:"trajectories"`
}

// New wraps trajectories in a batch with a fresh ID.
func New(ts []prune.Trajectory) *Batch {
	return &Batch{
		ID:           uuid.New(),
		Created:      time.Now().UTC(),
		Trajectories: ts,
	}
}

// Derive returns a batch holding ts that keeps b's creation time and gets a
// new ID, for the output of a filtering pass.
func (b *Batch) Derive(ts []prune.Trajectory) *Batch {
	return &Batch{
		ID:           uuid.New(),
		Created:      b.Created,
		Trajectories: ts,
	}
}

// Load reads a batch from path. The format follows the file extension.
func Load(fsys fsutil.FileSystem, path string) (*Batch, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return decodeJSON(data)
	case ".csv":
		ts, err := decodeCSV(data)
		if err != nil {
			return nil, err
		}
		return New(ts), nil
	default:
		return nil, fmt.Errorf("unsupported batch format %q (want .json or .csv)", ext)
	}
}

// Save writes b to path in the format implied by its extension.
func Save(fsys fsutil.FileSystem, path string, b *Batch) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(b, "", "  ")
	case ".csv":
		data, err = encodeCSV(b.Trajectories)
	default:
		return fmt.Errorf("unsupported batch format %q (want .json or .csv)", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create batch dir: %w", err)
		}
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

func decodeJSON(data []byte) (*Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse batch JSON: %w", err)
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Trajectories == nil {
		b.Trajectories = []prune.Trajectory{}
	}
	return &b, nil
}

func decodeCSV(data []byte) ([]prune.Trajectory, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvHeader[i]) {
			return nil, fmt.Errorf("CSV header column %d is %q, want %q", i+1, col, csvHeader[i])
		}
	}

	ts := []prune.Trajectory{}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := r.FieldPos(0)

		var v [5]int
		for i, field := range rec {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, csvHeader[i], err)
			}
			v[i] = n
		}
		ts = append(ts, prune.Trajectory{IX: v[0], IY: v[1], FX: v[2], FY: v[3], Depth: v[4]})
	}
	return ts, nil
}

func encodeCSV(ts []prune.Trajectory) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range ts {
		row := []string{
			strconv.Itoa(t.IX),
			strconv.Itoa(t.IY),
			strconv.Itoa(t.FX),
			strconv.Itoa(t.FY),
			strconv.Itoa(t.Depth),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
