package style

import (
	"testing"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
)

type rampImage struct {
	img.Base
}

func (r rampImage) GetLineU8(y int) ([]uint8, error) {
	line := make([]uint8, r.W*r.C)
	for x := range line {
		line[x] = uint8(x)
	}
	return line, nil
}
func (r rampImage) GetLineF32(y int) ([]float32, error) {
	l, _ := r.GetLineU8(y)
	out := make([]float32, len(l))
	img.ConvertU8ToF32(out, l)
	return out, nil
}

func TestPaletteLookupInterpolates(t *testing.T) {
	p := NewPalette(RGBContinuous, []Stop{
		{Value: 0, R: 0, G: 0, B: 0, A: 255},
		{Value: 100, R: 200, G: 100, B: 50, A: 255},
	})
	r, g, b, a := p.Lookup(50)
	if r != 100 || g != 50 || b != 25 || a != 255 {
		t.Fatalf("midpoint lookup = (%d,%d,%d,%d)", r, g, b, a)
	}
	r, _, _, _ = p.Lookup(-10)
	if r != 0 {
		t.Fatalf("below-range lookup should clamp to first stop, got %d", r)
	}
}

func TestStyledImageAppliesPalette(t *testing.T) {
	box := georef.BoundingBox{XMin: 0, YMin: 0, XMax: 4, YMax: 1, CRS: "CRS:84"}
	src := rampImage{Base: img.Base{W: 4, H: 1, C: 1, Box: box}}
	p := NewPalette(RGBContinuous, []Stop{
		{Value: 0, R: 0, G: 0, B: 0},
		{Value: 3, R: 255, G: 255, B: 255},
	})
	styled := New(src, p)
	if styled.Channels() != 3 {
		t.Fatalf("expected 3 channels, got %d", styled.Channels())
	}
	line, err := styled.GetLineU8(0)
	if err != nil {
		t.Fatalf("GetLineU8: %v", err)
	}
	if len(line) != 12 {
		t.Fatalf("expected 12 bytes (4px * 3ch), got %d", len(line))
	}
}

func TestHillshadeFlatSurfaceIsBrightlyLit(t *testing.T) {
	v := HillshadeValue(0, 0, 45, 315)
	if v < 180 {
		t.Fatalf("flat surface under a 45deg sun should be brightly lit, got %d", v)
	}
}

func TestAspectUndefinedOnFlatGround(t *testing.T) {
	if a := AspectDegrees(0, 0); a != -1 {
		t.Fatalf("expected -1 for flat ground, got %v", a)
	}
}
