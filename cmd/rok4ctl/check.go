package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
	"github.com/rok4/rok4go/internal/tms"
)

// runCheck validates a slab object's index structure, the Go equivalent of
// be4/tiffck: catch a truncated or corrupt index before it reaches the
// serving path (spec.md §8's file-size boundary rule).
func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	path := fs.String("file", "", "Slab file to validate")
	tilesPerWidth := fs.Int("tiles-per-width", tms.DefaultSlabSize, "Tiles per row in the slab")
	tilesPerHeight := fs.Int("tiles-per-height", tms.DefaultSlabSize, "Tiles per column in the slab")
	fs.Parse(args)

	if *path == "" {
		return fmt.Errorf("-file is required")
	}

	info, err := os.Stat(*path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", *path, err)
	}
	if err := tileindex.Validate(info.Size(), *tilesPerWidth, *tilesPerHeight); err != nil {
		return err
	}

	backend := storage.NewFileBackend(filepath.Dir(*path))
	idx, err := tileindex.Read(context.Background(), backend, filepath.Base(*path), *tilesPerWidth, *tilesPerHeight)
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	present := 0
	for _, length := range idx.Lengths {
		if length > 0 {
			present++
		}
	}
	fmt.Printf("%s: OK, %d/%d tile(s) present\n", *path, present, idx.N())
	return nil
}
