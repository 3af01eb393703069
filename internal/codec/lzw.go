package codec

// TIFF-variant LZW codec, with a decoder and a matching encoder.
//
// TIFF uses a LZW variant that differs from the GIF/PDF format handled by
// Go's compress/lzw package: TIFF defers the code-width increment until
// after the code that fills the current width has been emitted, while GIF
// increments before. Go's compress/lzw implements the GIF variant and
// rejects TIFF streams with "invalid code" errors, so both directions are
// implemented here from the TIFF 6.0 specification.

import (
	"errors"
	"io"
)

const (
	lzwMaxWidth  = 12
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
)

type lzwEntry struct {
	prefix int  // index of prefix entry (-1 for single-byte entries)
	suffix byte // the byte added by this entry
	length int  // total length of the string
}

// LZWDecode decompresses TIFF-style LZW data (MSB bit ordering).
func LZWDecode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	d := &lzwBitReader{src: data}
	return lzwDecodeStream(d)
}

type lzwBitReader struct {
	src    []byte
	bitPos int
}

func (d *lzwBitReader) readBits(n int) (int, error) {
	if n <= 0 || n > 16 {
		return 0, errors.New("lzw: invalid bit count")
	}
	result := 0
	for i := 0; i < n; i++ {
		bytePos := d.bitPos / 8
		bitOff := 7 - (d.bitPos % 8)
		if bytePos >= len(d.src) {
			return 0, io.ErrUnexpectedEOF
		}
		bit := (int(d.src[bytePos]) >> bitOff) & 1
		result = (result << 1) | bit
		d.bitPos++
	}
	return result, nil
}

func lzwDecodeStream(d *lzwBitReader) ([]byte, error) {
	table := make([]lzwEntry, 4097)
	for i := 0; i < 256; i++ {
		table[i] = lzwEntry{prefix: -1, suffix: byte(i), length: 1}
	}

	nextCode := lzwFirstCode
	codeWidth := 9

	var output []byte
	buf := make([]byte, 0, 4096)

	getString := func(code int) []byte {
		entry := &table[code]
		buf = buf[:entry.length]
		idx := entry.length - 1
		for code >= 0 {
			buf[idx] = table[code].suffix
			code = table[code].prefix
			idx--
		}
		return buf
	}

	var oldCode = -1
	for {
		code, err := d.readBits(codeWidth)
		if err != nil {
			return nil, errors.New("lzw: unexpected end of stream")
		}
		if code == lzwClearCode {
			nextCode = lzwFirstCode
			codeWidth = 9
			oldCode = -1
			continue
		}
		if code == lzwEOICode {
			break
		}

		var entry []byte
		if code < nextCode {
			entry = append([]byte(nil), getString(code)...)
		} else if code == nextCode && oldCode != -1 {
			old := getString(oldCode)
			entry = append(append([]byte(nil), old...), old[0])
		} else {
			return nil, errors.New("lzw: invalid code")
		}
		output = append(output, entry...)

		if oldCode != -1 && nextCode < 4096 {
			old := getString(oldCode)
			table[nextCode] = lzwEntry{prefix: oldCode, suffix: entry[0], length: len(old) + 1}
			nextCode++
			// Deferred increment: the width grows the code *after* emitting
			// the code that fills the current width, matching TIFF 6.0
			// (unlike GIF/PDF, which increments one code early).
			if nextCode == 511 || nextCode == 1023 || nextCode == 2047 {
				codeWidth++
			}
			// A dictionary reset at the max code is signalled by the
			// encoder explicitly re-emitting the Clear code, handled above.
		}
		oldCode = code
	}
	return output, nil
}

// LZWEncode compresses data using the TIFF LZW variant, dictionary-reset
// at the max code as spec.md §4.9 describes. decode(encode(x)) == x for
// any byte sequence x (spec.md §8 round-trip law).
func LZWEncode(data []byte) []byte {
	w := &lzwBitWriter{}
	w.writeBits(lzwClearCode, 9)

	type key struct {
		prefix int
		suffix byte
	}
	table := map[key]int{}
	nextCode := lzwFirstCode
	codeWidth := 9

	resetTable := func() {
		table = map[key]int{}
		nextCode = lzwFirstCode
		codeWidth = 9
	}

	if len(data) == 0 {
		w.writeBits(lzwEOICode, codeWidth)
		w.flush()
		return w.out
	}

	current := int(data[0])
	for i := 1; i < len(data); i++ {
		b := data[i]
		k := key{prefix: current, suffix: b}
		if code, ok := table[k]; ok {
			current = code
			continue
		}
		w.writeBits(current, codeWidth)

		table[k] = nextCode
		nextCode++
		// The decoder adds each entry one code later than the encoder, so
		// the encoder widens one entry later than the decoder's 511/1023/2047.
		if nextCode == 512 || nextCode == 1024 || nextCode == 2048 {
			codeWidth++
		}
		if nextCode >= 4094 {
			w.writeBits(lzwClearCode, codeWidth)
			resetTable()
		}
		current = int(b)
	}
	w.writeBits(current, codeWidth)
	// The decoder adds an entry after this last code before reading EOI.
	nextCode++
	if nextCode == 512 || nextCode == 1024 || nextCode == 2048 {
		codeWidth++
	}
	w.writeBits(lzwEOICode, codeWidth)
	w.flush()
	return w.out
}

type lzwBitWriter struct {
	out     []byte
	current byte
	nBits   int
}

func (w *lzwBitWriter) writeBits(code, width int) {
	for i := width - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		w.current = (w.current << 1) | byte(bit)
		w.nBits++
		if w.nBits == 8 {
			w.out = append(w.out, w.current)
			w.current = 0
			w.nBits = 0
		}
	}
}

func (w *lzwBitWriter) flush() {
	if w.nBits > 0 {
		w.current <<= uint(8 - w.nBits)
		w.out = append(w.out, w.current)
		w.current = 0
		w.nBits = 0
	}
}
