package codec

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// materializeU8 pulls every scanline out of src and assembles a stdlib
// image.Image suitable for handing to image/jpeg, image/png or a TIFF
// writer. The pipeline stays lazy up to this point (spec.md §3); encoding
// is the one stage that requires a fully materialized raster.
func materializeU8(src img.Image) (image.Image, error) {
	w, h, c := src.Width(), src.Height(), src.Channels()
	switch c {
	case 1:
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			line, err := src.GetLineU8(y)
			if err != nil {
				return nil, err
			}
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], line)
		}
		return dst, nil
	case 3:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			line, err := src.GetLineU8(y)
			if err != nil {
				return nil, err
			}
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x := 0; x < w; x++ {
				row[x*4+0] = line[x*3+0]
				row[x*4+1] = line[x*3+1]
				row[x*4+2] = line[x*3+2]
				row[x*4+3] = 255
			}
		}
		return dst, nil
	case 4:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			line, err := src.GetLineU8(y)
			if err != nil {
				return nil, err
			}
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], line)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("codec: unsupported channel count for raster encode: %d", c)
	}
}

// stdColorAt is a convenience used by tests to read back a pixel without
// depending on a specific concrete image type.
func stdColorAt(im image.Image, x, y int) color.Color {
	return im.At(x, y)
}

// decodedToRaw flattens a decoded stdlib image.Image into row-major uint8
// samples, channel count chosen by the underlying color model: gray
// images collapse to 1 channel, everything else expands to RGB (alpha is
// dropped here since the pyramid's NoData plane carries transparency,
// spec.md §4.9).
func decodedToRaw(im image.Image) ([]byte, int, int, int, error) {
	b := im.Bounds()
	w, h := b.Dx(), b.Dy()
	if _, ok := im.(*image.Gray); ok {
		out := make([]byte, w*h)
		g := im.(*image.Gray)
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		return out, w, h, 1, nil
	}
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := im.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
		}
	}
	return out, w, h, 3, nil
}
