package codec

import (
	"bytes"
	"testing"

	"github.com/rok4/rok4go/internal/georef"
)

type fakeImage struct {
	w, h, c int
	lines   [][]uint8
}

func (f *fakeImage) Width() int                    { return f.w }
func (f *fakeImage) Height() int                   { return f.h }
func (f *fakeImage) Channels() int                 { return f.c }
func (f *fakeImage) BBox() georef.BoundingBox       { return georef.BoundingBox{XMin: 0, YMin: 0, XMax: float64(f.w), YMax: float64(f.h), CRS: "CRS:84"} }
func (f *fakeImage) ResolutionX() float64          { return 1 }
func (f *fakeImage) ResolutionY() float64          { return 1 }
func (f *fakeImage) GetLineU8(y int) ([]uint8, error) {
	return f.lines[y], nil
}
func (f *fakeImage) GetLineF32(y int) ([]float32, error) {
	out := make([]float32, len(f.lines[y]))
	for i, v := range f.lines[y] {
		out[i] = float32(v)
	}
	return out, nil
}

func newFakeImage(w, h, c int) *fakeImage {
	f := &fakeImage{w: w, h: h, c: c}
	for y := 0; y < h; y++ {
		line := make([]uint8, w*c)
		for i := range line {
			line[i] = uint8((y*w + i) % 256)
		}
		f.lines = append(f.lines, line)
	}
	return f
}

func TestPNGEncodeDecodeRoundTrip(t *testing.T) {
	im := newFakeImage(16, 8, 3)
	enc, _ := NewEncoder(FormatPNG, 0)
	data, err := enc.Encode(im)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, w, h, c, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w != 16 || h != 8 || c != 3 {
		t.Fatalf("got %dx%dx%d want 16x8x3", w, h, c)
	}
	want, _ := rawSamples(im)
	if !bytes.Equal(raw, want) {
		t.Fatal("PNG round trip lost pixel data")
	}
}

func TestRawLZWPackBitsZipRoundTrip(t *testing.T) {
	im := newFakeImage(32, 4, 1)
	want, _ := rawSamples(im)

	for _, f := range []Format{FormatRaw, FormatLZW, FormatPackBits, FormatZip} {
		enc, err := NewEncoder(f, 0)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		data, err := enc.Encode(im)
		if err != nil {
			t.Fatalf("%s encode: %v", f, err)
		}
		got, err := DecodeStrip(data, f)
		if err != nil {
			t.Fatalf("%s decode: %v", f, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s round trip mismatch", f)
		}
	}
}

func TestWriteTIFFProducesValidHeader(t *testing.T) {
	im := newFakeImage(4, 4, 1)
	strip, _ := rawSamples(im)
	data, err := WriteTIFF(im, FormatRaw, strip)
	if err != nil {
		t.Fatalf("WriteTIFF: %v", err)
	}
	if len(data) < 8 || data[0] != 'I' || data[1] != 'I' {
		t.Fatalf("missing little-endian TIFF magic")
	}
	if data[2] != 42 || data[3] != 0 {
		t.Fatalf("missing TIFF version marker")
	}
}

func TestEncodeASCIIGridHeader(t *testing.T) {
	im := newFakeImage(2, 2, 1)
	data, err := EncodeASCIIGrid(im)
	if err != nil {
		t.Fatalf("EncodeASCIIGrid: %v", err)
	}
	if !bytes.Contains(data, []byte("ncols 2\n")) {
		t.Fatalf("missing ncols header: %s", data)
	}
	if !bytes.Contains(data, []byte("NODATA_value -99999.00\n")) {
		t.Fatalf("missing NODATA_value header: %s", data)
	}
}
