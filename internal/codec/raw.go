package codec

import (
	"bytes"

	"github.com/klauspost/compress/flate"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// rawSamples pulls every scanline of src into one contiguous byte slice,
// the common input to the RAW/LZW/PackBits/Zip TIFF subcodecs.
func rawSamples(src img.Image) ([]byte, error) {
	w, h, c := src.Width(), src.Height(), src.Channels()
	out := make([]byte, 0, w*h*c)
	for y := 0; y < h; y++ {
		line, err := src.GetLineU8(y)
		if err != nil {
			return nil, err
		}
		out = append(out, line...)
	}
	return out, nil
}

// rawEncoder is the identity subcodec: uncompressed samples, row-major.
type rawEncoder struct{}

func (e *rawEncoder) Format() Format { return FormatRaw }

func (e *rawEncoder) Encode(src img.Image) ([]byte, error) {
	return rawSamples(src)
}

// lzwEncoder wraps the TIFF-variant LZW codec (lzw.go) for strip/tile
// bodies, as distinct from JPEG/PNG which are self-contained formats.
type lzwEncoder struct{}

func (e *lzwEncoder) Format() Format { return FormatLZW }

func (e *lzwEncoder) Encode(src img.Image) ([]byte, error) {
	raw, err := rawSamples(src)
	if err != nil {
		return nil, err
	}
	return LZWEncode(raw), nil
}

// packBitsEncoder wraps packbits.go for strip/tile bodies.
type packBitsEncoder struct{}

func (e *packBitsEncoder) Format() Format { return FormatPackBits }

func (e *packBitsEncoder) Encode(src img.Image) ([]byte, error) {
	raw, err := rawSamples(src)
	if err != nil {
		return nil, err
	}
	return PackBitsEncode(raw), nil
}

// zipEncoder implements the TIFF Zip (Adobe Deflate) subcodec. It writes a
// raw DEFLATE stream per strip/tile with no zlib header or Adler-32
// trailer, using klauspost/compress/flate directly rather than
// compress/zlib's header+checksum framing.
type zipEncoder struct{}

func (e *zipEncoder) Format() Format { return FormatZip }

func (e *zipEncoder) Encode(src img.Image) ([]byte, error) {
	raw, err := rawSamples(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ZipDecode reverses zipEncoder.Encode.
func ZipDecode(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
