// Package tileindex implements the on-disk tile index layout described in
// spec.md §4.1 and §6: a fixed 2048-byte header area, followed by
// tiles_per_width*tiles_per_height little-endian uint32 offsets and the
// same count of uint32 lengths, with tile bodies at arbitrary offsets.
package tileindex

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/rok4/rok4go/internal/storage"
)

// HeaderSize is the fixed offset at which the offset/length arrays begin.
const HeaderSize = 2048

// Index is the parsed offset/length table for one tile file/object.
type Index struct {
	TilesPerWidth  int
	TilesPerHeight int
	Offsets        []uint32
	Lengths        []uint32
}

// N returns the total entry count (tiles_per_width * tiles_per_height).
func (idx *Index) N() int { return idx.TilesPerWidth * idx.TilesPerHeight }

// EntryFor returns the offset and length for tile (col, row) within the
// index's tile grid.
func (idx *Index) EntryFor(col, row int) (offset, length uint32, ok bool) {
	if col < 0 || col >= idx.TilesPerWidth || row < 0 || row >= idx.TilesPerHeight {
		return 0, 0, false
	}
	i := row*idx.TilesPerWidth + col
	return idx.Offsets[i], idx.Lengths[i], true
}

// Read loads the index from offset HeaderSize of the given object. It
// issues a single read of the combined offsets+lengths region, matching
// spec.md §4.1's "one combined read" option.
func Read(ctx context.Context, backend storage.Backend, object string, tilesPerWidth, tilesPerHeight int) (*Index, error) {
	n := tilesPerWidth * tilesPerHeight
	tableSize := int64(n) * 4 * 2 // n uint32 offsets + n uint32 lengths

	raw, err := backend.Read(ctx, object, HeaderSize, tableSize)
	if err != nil {
		return nil, fmt.Errorf("tileindex: reading index table of %s: %w", object, err)
	}
	if len(raw) < int(tableSize) {
		return nil, fmt.Errorf("tileindex: %s: %w: index table truncated", object, ErrInvalidFormat)
	}

	idx := &Index{
		TilesPerWidth:  tilesPerWidth,
		TilesPerHeight: tilesPerHeight,
		Offsets:        make([]uint32, n),
		Lengths:        make([]uint32, n),
	}
	for i := 0; i < n; i++ {
		idx.Offsets[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	base := n * 4
	for i := 0; i < n; i++ {
		idx.Lengths[i] = binary.LittleEndian.Uint32(raw[base+i*4:])
	}
	return idx, nil
}

// Write serializes the index table and writes it at offset HeaderSize.
func Write(ctx context.Context, backend storage.Backend, object string, idx *Index) error {
	n := idx.N()
	buf := make([]byte, n*4*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], idx.Offsets[i])
	}
	base := n * 4
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[base+i*4:], idx.Lengths[i])
	}
	return backend.Write(ctx, object, HeaderSize, buf)
}

// ReadTileBody fetches the raw (still-encoded) bytes for one tile using an
// already-loaded Index: two lookups into the index plus one body read, per
// spec.md §4.1.
func ReadTileBody(ctx context.Context, backend storage.Backend, object string, idx *Index, col, row int) ([]byte, error) {
	offset, length, ok := idx.EntryFor(col, row)
	if !ok {
		return nil, fmt.Errorf("tileindex: (%d,%d) out of range for %dx%d index", col, row, idx.TilesPerWidth, idx.TilesPerHeight)
	}
	if length == 0 {
		return nil, storage.ErrNotFound
	}
	return backend.Read(ctx, object, int64(offset), int64(length))
}

// Validate enforces the boundary rule from spec.md §8: a tile file shorter
// than HeaderSize cannot even hold the index table.
func Validate(fileSize int64, tilesPerWidth, tilesPerHeight int) error {
	minSize := int64(HeaderSize) + int64(tilesPerWidth*tilesPerHeight)*4*2
	if fileSize < minSize {
		return fmt.Errorf("tileindex: file size %d below minimum %d: %w", fileSize, minSize, ErrInvalidFormat)
	}
	return nil
}

// ErrInvalidFormat is returned when a tile file/object fails structural
// validation (too short to hold a header or index table).
var ErrInvalidFormat = fmt.Errorf("invalid tile file format")
