package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRawImageGetLineU8(t *testing.T) {
	samples := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	im := newRawImage(2, 2, 2, samples)

	line0, err := im.GetLineU8(0)
	if err != nil {
		t.Fatalf("GetLineU8(0): %v", err)
	}
	if line0[0] != 1 || line0[1] != 2 || line0[2] != 3 || line0[3] != 4 {
		t.Fatalf("line0 = %v", line0)
	}
	line1, err := im.GetLineU8(1)
	if err != nil {
		t.Fatalf("GetLineU8(1): %v", err)
	}
	if line1[0] != 5 || line1[3] != 8 {
		t.Fatalf("line1 = %v", line1)
	}
	if _, err := im.GetLineU8(2); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestRawImageGetLineF32(t *testing.T) {
	im := newRawImage(1, 1, 1, []uint8{200})
	line, err := im.GetLineF32(0)
	if err != nil {
		t.Fatalf("GetLineF32: %v", err)
	}
	if len(line) != 1 || line[0] != 200 {
		t.Fatalf("line = %v, want [200]", line)
	}
}

func TestDecodeTileFileRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.raw")
	body := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	samples, err := decodeTileFile(path, "raw", 3, 3, 1)
	if err != nil {
		t.Fatalf("decodeTileFile: %v", err)
	}
	if len(samples) != 9 {
		t.Fatalf("len(samples) = %d, want 9", len(samples))
	}
}

func TestDecodeTileFileSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.raw")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := decodeTileFile(path, "raw", 3, 3, 1); err == nil {
		t.Fatal("expected size-mismatch error")
	}
}

func TestDecodeTileFileUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.bin")
	if err := os.WriteFile(path, []byte{1}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := decodeTileFile(path, "bogus", 1, 1, 1); err == nil {
		t.Fatal("expected unknown-format error")
	}
}
