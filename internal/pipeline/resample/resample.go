// Package resample implements ResampledImage: separable horizontal/
// vertical convolution against the weight tables in internal/pipeline/
// kernel, one source row at a time, with horizontally resampled rows
// memoized. It does not use the four-row helpers in internal/pipeline/simd.
package resample

import (
	"fmt"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
)

// ResampledImage resizes a window of Source into a new pixel width/height,
// applying Kernel separably on X then Y. The window is dstBox, which in
// general is smaller than and offset within source's own bounding box
// (spec.md §4.5): left/top place dstBox's origin in source pixel space,
// and ratioX/ratioY are the target resolution expressed in source pixels
// per destination pixel, so target pixel (x, y) is centred at
// (left + (x+0.5)*ratioX - 0.5, top + (y+0.5)*ratioY - 0.5) in source
// coordinates where source pixel i is centred at i, rather than at a
// position derived from source's own full extent.
type ResampledImage struct {
	img.Base
	source img.Image
	kern   *kernel.Kernel
	left   float64
	top    float64
	ratioX float64
	ratioY float64

	// ring buffer of vertically-unresolved, horizontally-resolved rows,
	// memoizing the horizontal pass so a vertical support window never
	// recomputes a row it has already resampled.
	ring      map[int][]float32
	ringOrder []int
}

// New builds a ResampledImage of size (dstW, dstH) over dstBox, sampling
// from source, using the named interpolation kernel.
func New(source img.Image, dstBox georef.BoundingBox, dstW, dstH int, kind kernel.Kind) (*ResampledImage, error) {
	if dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("resample: invalid target size %dx%d", dstW, dstH)
	}
	srcBox := source.BBox()
	srcResX := srcBox.Width() / float64(source.Width())
	srcResY := srcBox.Height() / float64(source.Height())

	r := &ResampledImage{
		Base: img.Base{
			W:   dstW,
			H:   dstH,
			C:   source.Channels(),
			Box: dstBox,
		},
		source: source,
		kern:   kernel.For(kind),
		left:   (dstBox.XMin - srcBox.XMin) / srcResX,
		top:    (srcBox.YMax - dstBox.YMax) / srcResY,
		ratioX: (dstBox.Width() / float64(dstW)) / srcResX,
		ratioY: (dstBox.Height() / float64(dstH)) / srcResY,
		ring:   map[int][]float32{},
	}
	return r, nil
}

const maxRingSize = 64

// horizontalRow resamples source row srcY along X, memoized.
func (r *ResampledImage) horizontalRow(srcY int) ([]float32, error) {
	if row, ok := r.ring[srcY]; ok {
		return row, nil
	}
	srcLine, err := r.source.GetLineF32(srcY)
	if err != nil {
		return nil, err
	}
	c := r.C
	out := make([]float32, r.W*c)
	for dx := 0; dx < r.W; dx++ {
		center := r.left + (float64(dx)+0.5)*r.ratioX - 0.5
		xFirst, weights := r.kern.Weight(r.ratioX, center, r.source.Width(), r.source.Width())
		for ch := 0; ch < c; ch++ {
			var sum float64
			for i, w := range weights {
				sum += w * float64(srcLine[(xFirst+i)*c+ch])
			}
			out[dx*c+ch] = float32(sum)
		}
	}
	r.ring[srcY] = out
	r.ringOrder = append(r.ringOrder, srcY)
	if len(r.ringOrder) > maxRingSize {
		evict := r.ringOrder[0]
		r.ringOrder = r.ringOrder[1:]
		delete(r.ring, evict)
	}
	return out, nil
}

func (r *ResampledImage) GetLineF32(y int) ([]float32, error) {
	center := r.top + (float64(y)+0.5)*r.ratioY - 0.5
	yFirst, weights := r.kern.Weight(r.ratioY, center, r.source.Height(), r.source.Height())

	c := r.C
	out := make([]float32, r.W*c)
	for i, w := range weights {
		row, err := r.horizontalRow(yFirst + i)
		if err != nil {
			return nil, err
		}
		for j := range out {
			out[j] += float32(w) * row[j]
		}
	}
	return out, nil
}

func (r *ResampledImage) GetLineU8(y int) ([]uint8, error) {
	line, err := r.GetLineF32(y)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(line))
	img.ConvertF32ToU8(out, line)
	return out, nil
}
