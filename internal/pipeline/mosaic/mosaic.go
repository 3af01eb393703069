// Package mosaic implements MosaicImage, which stitches the handful of
// pyramid tiles overlapping a requested bounding box into one virtual
// image in the pyramid's native CRS (spec.md §4.2).
package mosaic

import (
	"fmt"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
)

// Cell places one source image at a pixel offset within the mosaic's
// virtual raster. Cells may be nil (absent tile) or overlap only
// partially at the mosaic's edges.
type Cell struct {
	Source img.Image
	X, Y   int // top-left offset within the mosaic, pixels
}

// MosaicImage composes Cells into one Image. Pixels not covered by any
// cell read as the configured no-data value.
type MosaicImage struct {
	img.Base
	cells  []Cell
	nodata []uint8
}

// New builds a MosaicImage of the given pixel size and bounding box
// (already expressed in Base via geometry), from the provided cells.
// nodata supplies the per-channel fill value for uncovered pixels.
func New(base img.Base, cells []Cell, nodata []uint8) (*MosaicImage, error) {
	for i, c := range cells {
		if c.Source == nil {
			continue
		}
		if c.Source.Channels() != base.C {
			return nil, fmt.Errorf("mosaic: cell %d channel count %d does not match mosaic %d", i, c.Source.Channels(), base.C)
		}
	}
	nd := nodata
	if len(nd) != base.C {
		nd = make([]uint8, base.C)
		copy(nd, nodata)
	}
	return &MosaicImage{Base: base, cells: cells, nodata: nd}, nil
}

func (m *MosaicImage) GetLineU8(y int) ([]uint8, error) {
	line := make([]uint8, m.W*m.C)
	for x := 0; x < m.W; x++ {
		copy(line[x*m.C:(x+1)*m.C], m.nodata)
	}
	for _, c := range m.cells {
		if c.Source == nil {
			continue
		}
		srcY := y - c.Y
		if srcY < 0 || srcY >= c.Source.Height() {
			continue
		}
		srcLine, err := c.Source.GetLineU8(srcY)
		if err != nil {
			continue // a failed/no-data source tile degrades to the mosaic's fill value
		}
		sw := c.Source.Width()
		for sx := 0; sx < sw; sx++ {
			dx := c.X + sx
			if dx < 0 || dx >= m.W {
				continue
			}
			copy(line[dx*m.C:(dx+1)*m.C], srcLine[sx*m.C:(sx+1)*m.C])
		}
	}
	return line, nil
}

func (m *MosaicImage) GetLineF32(y int) ([]float32, error) {
	line, err := m.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(line))
	img.ConvertU8ToF32(out, line)
	return out, nil
}

// Merge4 builds one overview tile from four same-size, same-resolution
// child tiles arranged as
//
//	topLeft  | topRight
//	---------+---------
//	bottomLeft | bottomRight
//
// Each child is box-averaged 2x2 across its own full raster into one
// quadrant of the output, which keeps the child tiles' own pixel
// dimensions (spec.md §4.2's pyramid overview reduction, grounded on
// merge4tiff.cpp's merge4float32: each output sample is the mean of the
// four source samples it downsamples, or nodata if any one of them is
// nodata). Unlike the fixed 255 sentinel the original hardcoded, nodata
// here is caller-supplied so each pyramid can declare its own
// no-data palette.
func Merge4(topLeft, topRight, bottomLeft, bottomRight img.Image, nodata []uint8) (img.Image, error) {
	children := []img.Image{topLeft, topRight, bottomLeft, bottomRight}
	w, h, c := topLeft.Width(), topLeft.Height(), topLeft.Channels()
	for i, ch := range children {
		if ch.Width() != w || ch.Height() != h || ch.Channels() != c {
			return nil, fmt.Errorf("merge4: child %d shape mismatch", i)
		}
	}
	if w%2 != 0 || h%2 != 0 {
		return nil, fmt.Errorf("merge4: child size %dx%d must be even", w, h)
	}

	box := georef.BoundingBox{
		XMin: topLeft.BBox().XMin,
		YMax: topLeft.BBox().YMax,
		XMax: topRight.BBox().XMax,
		YMin: bottomLeft.BBox().YMin,
		CRS:  topLeft.BBox().CRS,
	}
	return &merge4Image{
		Base:        img.Base{W: w, H: h, C: c, Box: box},
		topLeft:     topLeft,
		topRight:    topRight,
		bottomLeft:  bottomLeft,
		bottomRight: bottomRight,
		nodata:      nodata,
	}, nil
}

type merge4Image struct {
	img.Base
	topLeft, topRight, bottomLeft, bottomRight img.Image
	nodata                                     []uint8
}

func (m *merge4Image) isNoDataSample(v uint8, ch int) bool {
	return len(m.nodata) != 0 && v == m.nodata[ch%len(m.nodata)]
}

// GetLineU8 box-averages a 2x2 source block per output sample, drawn
// from whichever pair of children (top or bottom) covers y, and from
// the left or right child depending on the output column's half.
func (m *merge4Image) GetLineU8(y int) ([]uint8, error) {
	halfW, halfH := m.W/2, m.H/2
	left, right := m.topLeft, m.topRight
	oy := y
	if y >= halfH {
		left, right = m.bottomLeft, m.bottomRight
		oy = y - halfH
	}

	l0, err := left.GetLineU8(2 * oy)
	if err != nil {
		return nil, err
	}
	l1, err := left.GetLineU8(2*oy + 1)
	if err != nil {
		return nil, err
	}
	r0, err := right.GetLineU8(2 * oy)
	if err != nil {
		return nil, err
	}
	r1, err := right.GetLineU8(2*oy + 1)
	if err != nil {
		return nil, err
	}

	c := m.C
	out := make([]uint8, m.W*c)
	for ox := 0; ox < halfW; ox++ {
		m.average2x2(out[ox*c:(ox+1)*c], l0, l1, 2*ox, c)
	}
	for ox := halfW; ox < m.W; ox++ {
		m.average2x2(out[ox*c:(ox+1)*c], r0, r1, 2*(ox-halfW), c)
	}
	return out, nil
}

func (m *merge4Image) average2x2(dst, row0, row1 []uint8, sx, c int) {
	for ch := 0; ch < c; ch++ {
		a, b := row0[sx*c+ch], row0[(sx+1)*c+ch]
		d, e := row1[sx*c+ch], row1[(sx+1)*c+ch]
		if m.isNoDataSample(a, ch) || m.isNoDataSample(b, ch) || m.isNoDataSample(d, ch) || m.isNoDataSample(e, ch) {
			if len(m.nodata) != 0 {
				dst[ch] = m.nodata[ch%len(m.nodata)]
			}
			continue
		}
		dst[ch] = uint8((int(a) + int(b) + int(d) + int(e)) / 4)
	}
}

func (m *merge4Image) GetLineF32(y int) ([]float32, error) {
	line, err := m.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(line))
	img.ConvertU8ToF32(out, line)
	return out, nil
}
