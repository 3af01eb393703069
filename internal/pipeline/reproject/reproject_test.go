package reproject

import (
	"testing"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/grid"
	"github.com/rok4/rok4go/internal/pipeline/img"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
)

type flatImage struct {
	img.Base
	v float32
}

func (f flatImage) GetLineU8(y int) ([]uint8, error) {
	line := make([]uint8, f.W*f.C)
	for i := range line {
		line[i] = uint8(f.v)
	}
	return line, nil
}
func (f flatImage) GetLineF32(y int) ([]float32, error) {
	line := make([]float32, f.W*f.C)
	for i := range line {
		line[i] = f.v
	}
	return line, nil
}

func TestReprojectIdentityCRSPreservesValue(t *testing.T) {
	box := georef.BoundingBox{XMin: 0, YMin: 0, XMax: 64, YMax: 64, CRS: "EPSG:4326"}
	src := flatImage{Base: img.Base{W: 64, H: 64, C: 1, Box: box}, v: 100}

	tr := georef.NewCoordinateTransformer()
	wgs84, _ := georef.ParseCRS("EPSG:4326")
	g, err := grid.Build(tr, box, 32, 32, wgs84, wgs84)
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}

	r, err := New(src, g, kernel.Linear, box, 32, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	line, err := r.GetLineU8(16)
	if err != nil {
		t.Fatalf("GetLineU8: %v", err)
	}
	for i, v := range line {
		if v != 100 {
			t.Fatalf("at %d: got %d want 100", i, v)
		}
	}
}
