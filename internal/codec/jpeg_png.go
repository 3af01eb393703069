package codec

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// jpegEncoder wraps image/jpeg. Per spec.md §4.9, grayscale images with
// chroma subsampling enabled is a rejected combination — subsampling
// only applies to the Cb/Cr planes a grayscale source doesn't have.
type jpegEncoder struct {
	quality int
}

func (e *jpegEncoder) Format() Format { return FormatJPEG }

func (e *jpegEncoder) Encode(src img.Image) ([]byte, error) {
	if src.Channels() == 1 && e.quality < 0 {
		return nil, fmt.Errorf("codec: grayscale JPEG cannot use chroma subsampling")
	}
	q := e.quality
	if q <= 0 || q > 100 {
		q = 85
	}
	raster, err := materializeU8(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, raster, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngEncoder wraps image/png. Tile pyramids favor encode speed over size
// since tiles are generated once and served many times from cache.
type pngEncoder struct{}

func (e *pngEncoder) Format() Format { return FormatPNG }

func (e *pngEncoder) Encode(src img.Image) ([]byte, error) {
	raster, err := materializeU8(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, raster); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeJPEG and DecodePNG are used by TileSource when a level's codec
// wraps a self-contained image format rather than a raw/LZW/PackBits/Zip
// TIFF strip.
func DecodeJPEG(data []byte) ([]byte, int, int, int, error) {
	im, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return decodedToRaw(im)
}

func DecodePNG(data []byte) ([]byte, int, int, int, error) {
	im, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return decodedToRaw(im)
}
