package ogc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rok4/rok4go/internal/cache"
	"github.com/rok4/rok4go/internal/config"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
	"github.com/rok4/rok4go/internal/tms"
)

func buildTestLayer(t *testing.T) *config.Layer {
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
	body := []byte{42, 42, 42, 42}
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

func TestWMTSGetTileMissingLayer(t *testing.T) {
	s := &Service{Layers: map[string]*config.Layer{}}
	req := httptest.NewRequest(http.MethodGet, "/?SERVICE=WMTS&REQUEST=GetTile&LAYER=missing&TILEMATRIXSET=test&TILEMATRIX=0&TILECOL=0&TILEROW=0", nil)
	w := httptest.NewRecorder()

	status := s.serveWMTS(w, req, newParams(req.URL.Query()), "GETTILE")
	if status != StatusFor(LayerNotDefined) {
		t.Fatalf("status = %d, want %d", status, StatusFor(LayerNotDefined))
	}
}

func TestWMTSGetTilePopulatesCache(t *testing.T) {
	layer := buildTestLayer(t)
	s := &Service{
		Layers:      map[string]*config.Layer{"test": layer},
		Transformer: georef.NewCoordinateTransformer(),
		Cache:       cache.New(8),
	}

	url := "/?SERVICE=WMTS&REQUEST=GetTile&LAYER=test&TILEMATRIXSET=test&TILEMATRIX=0&TILECOL=0&TILEROW=0&FORMAT=image/png"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	status := s.serveWMTS(w, req, newParams(req.URL.Query()), "GETTILE")
	if status != http.StatusOK {
		t.Fatalf("first request status = %d, body %s", status, w.Body.String())
	}
	if s.Cache.Len() != 1 {
		t.Fatalf("expected one cache entry after first request, got %d", s.Cache.Len())
	}

	req2 := httptest.NewRequest(http.MethodGet, url, nil)
	w2 := httptest.NewRecorder()
	status2 := s.serveWMTS(w2, req2, newParams(req2.URL.Query()), "GETTILE")
	if status2 != http.StatusOK {
		t.Fatalf("second request status = %d", status2)
	}
	if w2.Body.Len() != w.Body.Len() {
		t.Fatalf("cached response length %d differs from original %d", w2.Body.Len(), w.Body.Len())
	}
}

func TestWMTSGetTileOutOfRange(t *testing.T) {
	layer := buildTestLayer(t)
	s := &Service{
		Layers:      map[string]*config.Layer{"test": layer},
		Transformer: georef.NewCoordinateTransformer(),
	}

	url := "/?SERVICE=WMTS&REQUEST=GetTile&LAYER=test&TILEMATRIXSET=test&TILEMATRIX=0&TILECOL=99&TILEROW=0"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	status := s.serveWMTS(w, req, newParams(req.URL.Query()), "GETTILE")
	if status != StatusFor(TileOutOfRange) {
		t.Fatalf("status = %d, want %d", status, StatusFor(TileOutOfRange))
	}
}
