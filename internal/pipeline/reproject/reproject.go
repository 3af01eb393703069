// Package reproject implements ReprojectedImage: for every destination
// pixel, the sparse warp Grid gives an approximate source-CRS position,
// and the interpolation Kernel gathers/weights the surrounding source
// pixels in both axes (spec.md §4.5).
package reproject

import (
	"fmt"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/grid"
	"github.com/rok4/rok4go/internal/pipeline/img"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
)

// ReprojectedImage produces a raster in dstBox/dstCRS pixel space by
// sampling Source (in its own, different, CRS) through Grid at every
// pixel and interpolating with Kernel.
type ReprojectedImage struct {
	img.Base
	source img.Image
	warp   *grid.Grid
	kern   *kernel.Kernel
}

// New composes source, a precomputed warp grid covering the destination
// raster, and an interpolation kernel into a ReprojectedImage of size
// (dstW, dstH) over dstBox.
func New(source img.Image, warp *grid.Grid, kind kernel.Kind, dstBox georef.BoundingBox, dstW, dstH int) (*ReprojectedImage, error) {
	if dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("reproject: invalid target size %dx%d", dstW, dstH)
	}
	return &ReprojectedImage{
		Base: img.Base{
			W:   dstW,
			H:   dstH,
			C:   source.Channels(),
			Box: dstBox,
		},
		source: source,
		warp:   warp,
		kern:   kernel.For(kind),
	}, nil
}

// GetLineF32 reprojects one destination scanline. For every pixel, it
// locates the corresponding source-CRS position via the warp grid, maps
// that to source pixel space, and gathers a small 2-D neighborhood using
// the kernel's separable weights (row-major gather, one dot product per
// channel per pixel, mirroring spec.md §4.8's four-row dot-product
// primitive conceptually even though this reference path is scalar).
func (r *ReprojectedImage) GetLineF32(y int) ([]float32, error) {
	c := r.C
	out := make([]float32, r.W*c)
	sw, sh := r.source.Width(), r.source.Height()
	srcRes := r.source.BBox()
	resX := srcRes.Width() / float64(sw)
	resY := srcRes.Height() / float64(sh)

	for dx := 0; dx < r.W; dx++ {
		srcX, srcY := r.warp.At(float64(dx)+0.5, float64(y)+0.5)
		px := (srcX - srcRes.XMin) / resX
		py := (srcRes.YMax - srcY) / resY

		xFirst, wx := r.kern.Weight(1.0, px, sw, sw)
		yFirst, wy := r.kern.Weight(1.0, py, sh, sh)

		sums := make([]float64, c)
		var weightSum float64
		for j, wyv := range wy {
			line, err := r.source.GetLineF32(yFirst + j)
			if err != nil {
				continue // a missing source row contributes no weight, not an error
			}
			for i, wxv := range wx {
				weight := wxv * wyv
				weightSum += weight
				for ch := 0; ch < c; ch++ {
					sums[ch] += weight * float64(line[(xFirst+i)*c+ch])
				}
			}
		}
		if weightSum > 0 {
			for ch := 0; ch < c; ch++ {
				out[dx*c+ch] = float32(sums[ch] / weightSum)
			}
		}
	}
	return out, nil
}

func (r *ReprojectedImage) GetLineU8(y int) ([]uint8, error) {
	line, err := r.GetLineF32(y)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(line))
	img.ConvertF32ToU8(out, line)
	return out, nil
}
