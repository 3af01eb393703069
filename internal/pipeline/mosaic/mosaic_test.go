package mosaic

import (
	"testing"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
)

type constImage struct {
	img.Base
	v uint8
}

func (c constImage) GetLineU8(y int) ([]uint8, error) {
	line := make([]uint8, c.W*c.C)
	for i := range line {
		line[i] = c.v
	}
	return line, nil
}
func (c constImage) GetLineF32(y int) ([]float32, error) {
	line, _ := c.GetLineU8(y)
	out := make([]float32, len(line))
	img.ConvertU8ToF32(out, line)
	return out, nil
}

func box(w, h int) georef.BoundingBox {
	return georef.BoundingBox{XMin: 0, YMin: 0, XMax: float64(w), YMax: float64(h), CRS: "CRS:84"}
}

func TestMosaicStitchesCellsAndFillsGaps(t *testing.T) {
	base := img.Base{W: 4, H: 4, C: 1, Box: box(4, 4)}
	a := constImage{Base: img.Base{W: 2, H: 2, C: 1}, v: 10}
	d := constImage{Base: img.Base{W: 2, H: 2, C: 1}, v: 20}

	m, err := New(base, []Cell{{Source: a, X: 0, Y: 0}, {Source: d, X: 2, Y: 2}}, []uint8{99})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	line0, _ := m.GetLineU8(0)
	if line0[0] != 10 || line0[2] != 99 {
		t.Fatalf("line0 = %v", line0)
	}
	line3, _ := m.GetLineU8(3)
	if line3[2] != 20 || line3[0] != 99 {
		t.Fatalf("line3 = %v", line3)
	}
}

func TestMerge4BoxAveragesEachQuadrant(t *testing.T) {
	tl := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 10}
	tr := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 20}
	bl := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 30}
	br := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 40}

	merged, err := Merge4(tl, tr, bl, br, []uint8{255})
	if err != nil {
		t.Fatalf("Merge4: %v", err)
	}
	if merged.Width() != 2 || merged.Height() != 2 {
		t.Fatalf("merge4 output size = %dx%d, want 2x2 (same as each child)", merged.Width(), merged.Height())
	}

	line0, _ := merged.GetLineU8(0)
	if line0[0] != 10 || line0[1] != 20 {
		t.Fatalf("row0 = %v, want [10 20]", line0)
	}
	line1, _ := merged.GetLineU8(1)
	if line1[0] != 30 || line1[1] != 40 {
		t.Fatalf("row1 = %v, want [30 40]", line1)
	}
}

func TestMerge4NoDataSourcePropagates(t *testing.T) {
	nodataVal := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 255}
	real := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 42}

	merged, err := Merge4(nodataVal, real, nodataVal, nodataVal, []uint8{255})
	if err != nil {
		t.Fatalf("Merge4: %v", err)
	}
	line, _ := merged.GetLineU8(0)
	if line[0] != 255 {
		t.Fatalf("quadrant touching only nodata source must stay nodata, got %v", line[0])
	}
	if line[1] != 42 {
		t.Fatalf("quadrant averaging a uniform non-nodata child must reproduce its value, got %v", line[1])
	}
}

func TestMerge4AllNoDataStaysNoData(t *testing.T) {
	nodataVal := constImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box(2, 2)}, v: 255}
	merged, _ := Merge4(nodataVal, nodataVal, nodataVal, nodataVal, []uint8{255})
	line, _ := merged.GetLineU8(0)
	if line[0] != 255 {
		t.Fatalf("expected nodata fill 255, got %v", line)
	}
}
