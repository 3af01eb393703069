package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
)

func TestRunCheckOnValidSlab(t *testing.T) {
	dir := t.TempDir()
	object := "slab.tif"
	backend := storage.NewFileBackend(dir)

	idx := &tileindex.Index{
		TilesPerWidth:  2,
		TilesPerHeight: 2,
		Offsets:        make([]uint32, 4),
		Lengths:        make([]uint32, 4),
	}
	body := []byte{1, 2, 3, 4}
	idx.Offsets[0] = uint32(tileindex.HeaderSize) + uint32(idx.N())*8
	idx.Lengths[0] = uint32(len(body))
	if err := tileindex.Write(context.Background(), backend, object, idx); err != nil {
		t.Fatalf("Write index: %v", err)
	}
	if err := backend.Write(context.Background(), object, int64(idx.Offsets[0]), body); err != nil {
		t.Fatalf("Write body: %v", err)
	}

	// Exercises the same filepath.Dir/Base split runCheck uses, with an
	// absolute path, so an absolute -file argument resolves correctly
	// instead of being mangled by filepath.Join under a "." root.
	absPath := filepath.Join(dir, object)
	if err := runCheck([]string{"-file", absPath, "-tiles-per-width", "2", "-tiles-per-height", "2"}); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
}

func TestRunCheckMissingFileFlag(t *testing.T) {
	if err := runCheck(nil); err == nil {
		t.Fatal("expected error when -file is not provided")
	}
}

func TestRunCheckTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.tif")
	if err := os.WriteFile(path, make([]byte, 10), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runCheck([]string{"-file", path}); err == nil {
		t.Fatal("expected error for a file too small to hold an index header")
	}
}
