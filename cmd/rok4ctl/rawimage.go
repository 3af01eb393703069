package main

import (
	"fmt"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// rawImage wraps a fully decoded, row-major uint8 sample buffer as an
// img.Image so standalone tile files can be fed through internal/codec
// without standing up a TileSource/Pyramid.
type rawImage struct {
	img.Base
	samples []uint8
}

func newRawImage(width, height, channels int, samples []uint8) *rawImage {
	return &rawImage{
		Base:    img.Base{W: width, H: height, C: channels},
		samples: samples,
	}
}

func (r *rawImage) GetLineU8(y int) ([]uint8, error) {
	if y < 0 || y >= r.H {
		return nil, fmt.Errorf("rawimage: line %d out of range [0,%d)", y, r.H)
	}
	stride := r.W * r.C
	return r.samples[y*stride : (y+1)*stride], nil
}

func (r *rawImage) GetLineF32(y int) ([]float32, error) {
	u8, err := r.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(u8))
	img.ConvertU8ToF32(out, u8)
	return out, nil
}
