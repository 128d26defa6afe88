package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryFileSystem_ReadWrite(t *testing.T) {
	m := NewMemoryFileSystem()

	data := []byte("ix,iy,fx,fy,depth\n")
	if err := m.WriteFile("batches/a.csv", data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data[0] = 'X' // caller mutation must not leak in

	got, err := m.ReadFile("batches/./a.csv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "ix,iy,fx,fy,depth\n" {
		t.Errorf("ReadFile = %q", got)
	}

	if _, err := m.ReadFile("missing.csv"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystem_Create(t *testing.T) {
	m := NewMemoryFileSystem()

	w, err := m.Create("plot.png")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("def")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := m.Stat("plot.png")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 6 || info.IsDir() {
		t.Errorf("Stat = size %d dir %v, want 6 false", info.Size(), info.IsDir())
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	m := NewMemoryFileSystem()
	if err := m.MkdirAll("out/run/plots", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, dir := range []string{"out", "out/run", "out/run/plots"} {
		info, err := m.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s): %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s should be a directory", dir)
		}
	}
}

func TestOSFileSystem(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "nested")

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(dir, "batch.json")
	if err := fsys.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fsys.ReadFile(path)
	if err != nil || string(got) != "{}" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}

	w, err := fsys.Create(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := fsys.Stat(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Errorf("Stat(missing) error = %v, want not-exist", err)
	}
}
