package compose

import (
	"context"
	"testing"

	"github.com/rok4/rok4go/internal/config"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
	"github.com/rok4/rok4go/internal/tms"
)

func buildLayer(t *testing.T) *config.Layer {
	t.Helper()
	set := &tms.TileMatrixSet{
		Name: "test",
		CRS:  "CRS:84",
		Levels: []tms.TileMatrix{
			{ID: "0", Resolution: 1, TopLeftX: 0, TopLeftY: 4, TileWidth: 2, TileHeight: 2, MatrixW: 2, MatrixH: 2},
		},
	}
	backend := storage.NewFileBackend(t.TempDir())
	lvl := &tms.Level{
		TileMatrixID: "0",
		Backend:      backend,
		Codec:        tms.CodecRaw,
		Format:       tms.SampleUint8,
		Channels:     1,
	}
	pyr, err := tms.NewPyramid("test", set, []*tms.Level{lvl})
	if err != nil {
		t.Fatalf("NewPyramid: %v", err)
	}

	ctx := context.Background()
	idx := &tileindex.Index{
		TilesPerWidth:  2,
		TilesPerHeight: 2,
		Offsets:        make([]uint32, 4),
		Lengths:        make([]uint32, 4),
	}
	body := []byte{10, 10, 10, 10} // one 2x2 opaque tile at (0,0)
	idx.Offsets[0] = uint32(tileindex.HeaderSize) + uint32(idx.N())*8
	idx.Lengths[0] = uint32(len(body))
	object, _, _ := lvl.SlabObject(0, 0)
	if err := tileindex.Write(ctx, backend, object, idx); err != nil {
		t.Fatalf("Write index: %v", err)
	}
	if err := backend.Write(ctx, object, int64(idx.Offsets[0]), body); err != nil {
		t.Fatalf("Write body: %v", err)
	}

	return &config.Layer{
		Identifier:    "test",
		Pyramid:       pyr,
		TileMatrixSet: set,
		Styles:        map[string]*config.Style{},
		WGS84BBox:     georef.BoundingBox{XMin: -180, YMin: -90, XMax: 180, YMax: 90, CRS: "CRS:84"},
		Resampling:    "linear",
	}
}

func TestBuildSameCRSNoReprojection(t *testing.T) {
	layer := buildLayer(t)
	transformer := georef.NewCoordinateTransformer()

	req := Request{
		Layer:      layer,
		BBox:       georef.BoundingBox{XMin: 0, YMin: 2, XMax: 2, YMax: 4, CRS: "CRS:84"},
		CRS:        georef.CRS{Authority: "CRS", Code: "84"},
		Width:      2,
		Height:     2,
		Resampling: kernel.Nearest,
	}

	out, err := Build(context.Background(), transformer, req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Width() != 2 || out.Height() != 2 {
		t.Fatalf("output size = %dx%d, want 2x2", out.Width(), out.Height())
	}
	line, err := out.GetLineU8(0)
	if err != nil {
		t.Fatalf("GetLineU8: %v", err)
	}
	if line[0] != 10 {
		t.Fatalf("line[0] = %d, want 10", line[0])
	}
}

func TestBuildRejectsZeroSize(t *testing.T) {
	layer := buildLayer(t)
	transformer := georef.NewCoordinateTransformer()

	req := Request{
		Layer:  layer,
		BBox:   georef.BoundingBox{XMin: 0, YMin: 2, XMax: 2, YMax: 4, CRS: "CRS:84"},
		CRS:    georef.CRS{Authority: "CRS", Code: "84"},
		Width:  0,
		Height: 2,
	}
	if _, err := Build(context.Background(), transformer, req); err == nil {
		t.Fatal("expected error for zero width")
	}
}
