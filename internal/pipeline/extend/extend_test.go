package extend

import (
	"testing"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
)

type solidImage struct {
	img.Base
	v uint8
}

func (s solidImage) GetLineU8(y int) ([]uint8, error) {
	line := make([]uint8, s.W*s.C)
	for i := range line {
		line[i] = s.v
	}
	return line, nil
}
func (s solidImage) GetLineF32(y int) ([]float32, error) {
	l, _ := s.GetLineU8(y)
	out := make([]float32, len(l))
	img.ConvertU8ToF32(out, l)
	return out, nil
}

func TestExtendedImagePadsWithNoData(t *testing.T) {
	box := georef.BoundingBox{XMin: 0, YMin: 0, XMax: 2, YMax: 2, CRS: "CRS:84"}
	src := solidImage{Base: img.Base{W: 2, H: 2, C: 1, Box: box}, v: 7}
	ext := New(src, 1, []uint8{0})

	if ext.Width() != 4 || ext.Height() != 4 {
		t.Fatalf("got %dx%d, want 4x4", ext.Width(), ext.Height())
	}
	top, _ := ext.GetLineU8(0)
	for _, v := range top {
		if v != 0 {
			t.Fatalf("expected top border to be no-data, got %v", top)
		}
	}
	mid, _ := ext.GetLineU8(1)
	if mid[0] != 0 || mid[1] != 7 || mid[2] != 7 || mid[3] != 0 {
		t.Fatalf("mid = %v, want [0 7 7 0]", mid)
	}
}
