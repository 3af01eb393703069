package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunDumpRawToPNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tile.raw")
	out := filepath.Join(dir, "tile.png")

	// 2x2 single-channel tile.
	if err := os.WriteFile(in, []byte{0, 64, 128, 255}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := runDump([]string{
		"-in", in, "-out", out,
		"-format", "raw", "-out-format", "png",
		"-width", "2", "-height", "2", "-channels", "1",
	})
	if err != nil {
		t.Fatalf("runDump: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty PNG output")
	}
	// PNG signature.
	sig := []byte{0x89, 'P', 'N', 'G'}
	for i, b := range sig {
		if data[i] != b {
			t.Fatalf("output is not a PNG file: byte %d = %x, want %x", i, data[i], b)
		}
	}
}

func TestRunDumpRequiresInAndOut(t *testing.T) {
	if err := runDump(nil); err == nil {
		t.Fatal("expected error when -in/-out are missing")
	}
}
