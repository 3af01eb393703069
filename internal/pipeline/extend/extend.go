// Package extend implements ExtendedImage: padding an upstream image with
// a border of configurable width, filled with no-data rather than a
// mirrored/clamped edge, so that downstream resampling kernels always
// have enough support pixels near the original image's boundary without
// fabricating texture (spec.md §4.3).
package extend

import (
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
)

// ExtendedImage wraps Source in a border of Margin pixels on every side.
type ExtendedImage struct {
	img.Base
	source img.Image
	margin int
	nodata []uint8
}

// New pads source with margin pixels of nodata on every side. nodata
// must have length source.Channels(); when shorter it is repeated.
func New(source img.Image, margin int, nodata []uint8) *ExtendedImage {
	w := source.Width() + 2*margin
	h := source.Height() + 2*margin
	res := source.ResolutionX()
	b := source.BBox()
	box := georef.BoundingBox{
		XMin: b.XMin - float64(margin)*res,
		XMax: b.XMax + float64(margin)*res,
		YMin: b.YMin - float64(margin)*source.ResolutionY(),
		YMax: b.YMax + float64(margin)*source.ResolutionY(),
		CRS:  b.CRS,
	}
	nd := make([]uint8, source.Channels())
	for i := range nd {
		if len(nodata) > 0 {
			nd[i] = nodata[i%len(nodata)]
		}
	}
	return &ExtendedImage{
		Base:   img.Base{W: w, H: h, C: source.Channels(), Box: box},
		source: source,
		margin: margin,
		nodata: nd,
	}
}

func (e *ExtendedImage) fillLine() []uint8 {
	line := make([]uint8, e.W*e.C)
	for x := 0; x < e.W; x++ {
		copy(line[x*e.C:(x+1)*e.C], e.nodata)
	}
	return line
}

func (e *ExtendedImage) GetLineU8(y int) ([]uint8, error) {
	srcY := y - e.margin
	if srcY < 0 || srcY >= e.source.Height() {
		return e.fillLine(), nil
	}
	srcLine, err := e.source.GetLineU8(srcY)
	if err != nil {
		return nil, err
	}
	line := e.fillLine()
	copy(line[e.margin*e.C:e.margin*e.C+len(srcLine)], srcLine)
	return line, nil
}

func (e *ExtendedImage) GetLineF32(y int) ([]float32, error) {
	line, err := e.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(line))
	img.ConvertU8ToF32(out, line)
	return out, nil
}
