package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// Minimal baseline TIFF tags. rok4d only ever writes a single-strip,
// single-IFD TIFF: one per exported tile, never a multi-image pyramid slab (the
// pyramid's own multi-tile-per-file layout is internal/tileindex's job).
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
)

const (
	tiffCompressionNone     = 1
	tiffCompressionLZW      = 5
	tiffCompressionPackBits = 32773
	tiffCompressionDeflate  = 8
)

func compressionTagFor(f Format) uint16 {
	switch f {
	case FormatLZW:
		return tiffCompressionLZW
	case FormatPackBits:
		return tiffCompressionPackBits
	case FormatZip:
		return tiffCompressionDeflate
	default:
		return tiffCompressionNone
	}
}

// WriteTIFF wraps strip bytes already produced by one of the RAW/LZW/
// PackBits/Zip subcodec encoders into a standalone single-strip TIFF
// file, used by rok4ctl's tile export subcommand (SPEC_FULL.md §4).
func WriteTIFF(src img.Image, format Format, strip []byte) ([]byte, error) {
	w, h, c := src.Width(), src.Height(), src.Channels()
	if w <= 0 || h <= 0 || c <= 0 {
		return nil, fmt.Errorf("codec: invalid image geometry %dx%dx%d", w, h, c)
	}
	photometric := uint16(1) // BlackIsZero
	if c == 3 || c == 4 {
		photometric = 2 // RGB
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))

	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		value uint32
	}
	const (
		typeShort = 3
		typeLong  = 4
	)

	entries := []entry{
		{tagImageWidth, typeLong, 1, uint32(w)},
		{tagImageLength, typeLong, 1, uint32(h)},
		{tagBitsPerSample, typeShort, uint32(c), 0}, // patched below if c>1
		{tagCompression, typeShort, 1, uint32(compressionTagFor(format))},
		{tagPhotometric, typeShort, 1, uint32(photometric)},
		{tagStripOffsets, typeLong, 1, 0}, // patched once header size is known
		{tagSamplesPerPixel, typeShort, 1, uint32(c)},
		{tagRowsPerStrip, typeLong, 1, uint32(h)},
		{tagStripByteCounts, typeLong, 1, uint32(len(strip))},
		{tagPlanarConfig, typeShort, 1, 1},
	}

	const headerSize = 8
	ifdEntryCount := len(entries)
	ifdSize := 2 + ifdEntryCount*12 + 4

	// BitsPerSample with count>1 needs an out-of-line array; for the
	// common 1/3/4-channel 8-bit case every sample is 8 bits, so the
	// array is identical regardless of channel count.
	var extraOffset uint32
	bitsArray := make([]byte, 2*c)
	for i := 0; i < c; i++ {
		binary.LittleEndian.PutUint16(bitsArray[i*2:], 8)
	}
	extraOffset = uint32(headerSize + ifdSize)
	if c == 1 {
		entries[2].value = 8
	} else {
		entries[2].value = extraOffset
	}
	stripOffset := extraOffset
	if c > 1 {
		stripOffset += uint32(len(bitsArray))
	}
	entries[5].value = stripOffset

	binary.Write(&buf, binary.LittleEndian, uint32(headerSize))

	binary.Write(&buf, binary.LittleEndian, uint16(ifdEntryCount))
	for _, e := range entries {
		binary.Write(&buf, binary.LittleEndian, e.tag)
		binary.Write(&buf, binary.LittleEndian, e.typ)
		binary.Write(&buf, binary.LittleEndian, e.count)
		var valBytes [4]byte
		if e.typ == typeShort && e.count == 1 {
			binary.LittleEndian.PutUint16(valBytes[:2], uint16(e.value))
		} else {
			binary.LittleEndian.PutUint32(valBytes[:], e.value)
		}
		buf.Write(valBytes[:])
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // next IFD offset

	if c > 1 {
		buf.Write(bitsArray)
	}
	buf.Write(strip)

	return buf.Bytes(), nil
}
