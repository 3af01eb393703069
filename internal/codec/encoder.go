// Package codec implements the pixel-format encoders and decoders of
// spec.md §4.9: RAW, JPEG, PNG, TIFF-variant LZW, PackBits, Zip and the
// BIL/ASCII grid export formats used for float DTM output.
package codec

import (
	"fmt"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// Format names a pixel encoding, independent of the container (TIFF
// strip/tile layout wraps RAW/LZW/PackBits/Zip; JPEG and PNG are
// self-contained).
type Format int

const (
	FormatRaw Format = iota
	FormatJPEG
	FormatPNG
	FormatLZW
	FormatPackBits
	FormatZip
	FormatBIL
	FormatASCIIGrid
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatLZW:
		return "lzw"
	case FormatPackBits:
		return "packbits"
	case FormatZip:
		return "zip"
	case FormatBIL:
		return "bil"
	case FormatASCIIGrid:
		return "asciigrid"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// ParseFormat maps a configuration string (as found in pyramid/layer XML,
// grounded on original_source/rok4/PyramidXML.cpp) to a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "TIFF_RAW_INT8", "TIFF_RAW_FLOAT32", "raw":
		return FormatRaw, true
	case "TIFF_JPG_INT8", "TIFF_JPG90_INT8", "jpeg", "jpg":
		return FormatJPEG, true
	case "TIFF_PNG_INT8", "png":
		return FormatPNG, true
	case "TIFF_LZW_INT8", "TIFF_LZW_FLOAT32", "lzw":
		return FormatLZW, true
	case "TIFF_PKB_INT8", "TIFF_PKB_FLOAT32", "packbits", "pkb":
		return FormatPackBits, true
	case "TIFF_ZIP_INT8", "TIFF_ZIP_FLOAT32", "zip":
		return FormatZip, true
	case "BIL_FLOAT32", "bil":
		return FormatBIL, true
	case "ASCIIGRID_FLOAT32", "asciigrid":
		return FormatASCIIGrid, true
	case "webp":
		return FormatWebP, true
	}
	return 0, false
}

// Encoder turns a pipeline image into tile bytes for one Format.
type Encoder interface {
	Encode(src img.Image) ([]byte, error)
	Format() Format
}

// Decoder turns previously encoded tile bytes back into raw samples, used
// by TileSource (internal/pipeline/source) when reading from storage.
type Decoder interface {
	// DecodeU8 returns width*height*channels uint8 samples, row-major,
	// decoded from data.
	DecodeU8(data []byte, width, height, channels int) ([]byte, error)
	Format() Format
}

// NewEncoder builds the Encoder for a pyramid level's Format/quality pair.
func NewEncoder(f Format, quality int) (Encoder, error) {
	switch f {
	case FormatJPEG:
		return &jpegEncoder{quality: quality}, nil
	case FormatPNG:
		return &pngEncoder{}, nil
	case FormatRaw:
		return &rawEncoder{}, nil
	case FormatLZW:
		return &lzwEncoder{}, nil
	case FormatPackBits:
		return &packBitsEncoder{}, nil
	case FormatZip:
		return &zipEncoder{}, nil
	default:
		return nil, fmt.Errorf("codec: no byte-stream encoder for format %s (use BIL/ASCII grid export instead)", f)
	}
}

// Export renders a full response body for one Format, the single entry
// point both rok4d's GetMap/GetTile handlers and rok4ctl's tile-dump
// subcommand use: self-contained formats (JPEG, PNG, BIL, ASCII grid) are
// returned as-is, while the TIFF subcodecs (Raw/LZW/PackBits/Zip) get
// wrapped in the single-strip TIFF container built by WriteTIFF.
func Export(src img.Image, f Format, quality int) ([]byte, error) {
	switch f {
	case FormatBIL:
		data, _, err := EncodeBIL(src)
		return data, err
	case FormatASCIIGrid:
		return EncodeASCIIGrid(src)
	case FormatJPEG, FormatPNG:
		enc, err := NewEncoder(f, quality)
		if err != nil {
			return nil, err
		}
		return enc.Encode(src)
	case FormatRaw, FormatLZW, FormatPackBits, FormatZip:
		enc, err := NewEncoder(f, quality)
		if err != nil {
			return nil, err
		}
		strip, err := enc.Encode(src)
		if err != nil {
			return nil, err
		}
		return WriteTIFF(src, f, strip)
	default:
		return nil, fmt.Errorf("codec: unknown export format %v", f)
	}
}
