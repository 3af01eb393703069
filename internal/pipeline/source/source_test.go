package source

import (
	"context"
	"testing"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
	"github.com/rok4/rok4go/internal/tms"
)

func buildPyramid(t *testing.T) (*tms.Pyramid, *tms.Level) {
	t.Helper()
	set := &tms.TileMatrixSet{
		Name: "test",
		CRS:  "CRS:84",
		Levels: []tms.TileMatrix{
			{ID: "0", Resolution: 1, TopLeftX: 0, TopLeftY: 4, TileWidth: 2, TileHeight: 2, MatrixW: 2, MatrixH: 2},
		},
	}
	lvl := &tms.Level{
		TileMatrixID: "0",
		Backend:      storage.NewFileBackend(t.TempDir()),
		Codec:        tms.CodecRaw,
		Format:       tms.SampleUint8,
		Channels:     1,
	}
	p, err := tms.NewPyramid("test", set, []*tms.Level{lvl})
	if err != nil {
		t.Fatalf("NewPyramid: %v", err)
	}
	return p, lvl
}

func TestTileSourceReadsAndDecodesRaw(t *testing.T) {
	_, lvl := buildPyramid(t)
	ctx := context.Background()

	body := []byte{1, 2, 3, 4} // 2x2 raw uint8
	idx := &tileindex.Index{
		TilesPerWidth:  2,
		TilesPerHeight: 2,
		Offsets:        make([]uint32, 4),
		Lengths:        make([]uint32, 4),
	}
	idx.Offsets[0] = uint32(tileindex.HeaderSize) + uint32(idx.N())*8
	idx.Lengths[0] = uint32(len(body))
	if err := tileindex.Write(ctx, lvl.Backend, "slab.tif", idx); err != nil {
		t.Fatalf("Write index: %v", err)
	}
	if err := lvl.Backend.Write(ctx, "slab.tif", int64(idx.Offsets[0]), body); err != nil {
		t.Fatalf("Write body: %v", err)
	}

	box := georef.BoundingBox{XMin: 0, YMin: 2, XMax: 2, YMax: 4, CRS: "CRS:84"}
	src, err := NewTileSource(lvl, "slab.tif", 0, 0, box)
	if err != nil {
		t.Fatalf("NewTileSource: %v", err)
	}

	line0, err := src.GetLineU8(0)
	if err != nil {
		t.Fatalf("GetLineU8(0): %v", err)
	}
	if line0[0] != 1 || line0[1] != 2 {
		t.Fatalf("line0 = %v, want [1 2]", line0)
	}
	line1, err := src.GetLineU8(1)
	if err != nil {
		t.Fatalf("GetLineU8(1): %v", err)
	}
	if line1[0] != 3 || line1[1] != 4 {
		t.Fatalf("line1 = %v, want [3 4]", line1)
	}
}

func TestTileSourceMissingTileIsNoData(t *testing.T) {
	_, lvl := buildPyramid(t)
	ctx := context.Background()

	idx := &tileindex.Index{
		TilesPerWidth:  2,
		TilesPerHeight: 2,
		Offsets:        make([]uint32, 4),
		Lengths:        make([]uint32, 4), // entry (0,0) has length 0: absent
	}
	if err := tileindex.Write(ctx, lvl.Backend, "slab.tif", idx); err != nil {
		t.Fatalf("Write index: %v", err)
	}

	box := georef.BoundingBox{XMin: 0, YMin: 2, XMax: 2, YMax: 4, CRS: "CRS:84"}
	src, err := NewTileSource(lvl, "slab.tif", 0, 0, box)
	if err != nil {
		t.Fatalf("NewTileSource: %v", err)
	}
	if _, err := src.GetLineU8(0); err != ErrNoData {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
