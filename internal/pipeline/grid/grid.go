// Package grid implements the sparse reprojection warp grid of spec.md
// §4.5: rather than inverse-projecting every destination pixel (expensive
// under the process-wide CoordinateTransformer mutex), a grid of control
// points is projected at a fixed step and the interior is filled in by
// bilinear interpolation.
package grid

import (
	"fmt"

	"github.com/rok4/rok4go/internal/georef"
)

// Step is the spacing, in destination pixels, between exactly-projected
// control points.
const Step = 16

// Grid holds exactly-reprojected source coordinates at a sparse set of
// destination pixel positions.
type Grid struct {
	width, height int // destination raster size this grid covers
	cols, rows    int // control point grid dimensions
	srcX, srcY    []float64
}

// Build samples (width/Step + 2) x (height/Step + 2) control points
// across the destination raster, reprojecting each one from dstCRS to
// srcCRS through transformer, and returns a Grid ready for GetLine.
func Build(transformer *georef.CoordinateTransformer, dstBox georef.BoundingBox, width, height int, srcCRS, dstCRS georef.CRS) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid raster size %dx%d", width, height)
	}
	cols := width/Step + 2
	rows := height/Step + 2
	resX := dstBox.Width() / float64(width)
	resY := dstBox.Height() / float64(height)

	g := &Grid{width: width, height: height, cols: cols, rows: rows}
	g.srcX = make([]float64, cols*rows)
	g.srcY = make([]float64, cols*rows)

	for j := 0; j < rows; j++ {
		py := float64(j * Step)
		dy := dstBox.YMax - py*resY
		for i := 0; i < cols; i++ {
			px := float64(i * Step)
			dx := dstBox.XMin + px*resX
			sx, sy, err := transformer.Transform(dstCRS, srcCRS, dx, dy)
			if err != nil {
				return nil, fmt.Errorf("grid: control point (%d,%d): %w", i, j, err)
			}
			g.srcX[j*cols+i] = sx
			g.srcY[j*cols+i] = sy
		}
	}
	return g, nil
}

// At bilinearly interpolates the source-CRS coordinate for destination
// pixel (px, py), which need not fall exactly on a control point.
func (g *Grid) At(px, py float64) (x, y float64) {
	gi := px / Step
	gj := py / Step
	i0 := int(gi)
	j0 := int(gj)
	if i0 >= g.cols-1 {
		i0 = g.cols - 2
	}
	if j0 >= g.rows-1 {
		j0 = g.rows - 2
	}
	if i0 < 0 {
		i0 = 0
	}
	if j0 < 0 {
		j0 = 0
	}
	fi := gi - float64(i0)
	fj := gj - float64(j0)

	idx00 := j0*g.cols + i0
	idx10 := j0*g.cols + i0 + 1
	idx01 := (j0+1)*g.cols + i0
	idx11 := (j0+1)*g.cols + i0 + 1

	x = bilerp(g.srcX[idx00], g.srcX[idx10], g.srcX[idx01], g.srcX[idx11], fi, fj)
	y = bilerp(g.srcY[idx00], g.srcY[idx10], g.srcY[idx01], g.srcY[idx11], fi, fj)
	return
}

func bilerp(v00, v10, v01, v11, fx, fy float64) float64 {
	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}
