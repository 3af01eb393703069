package codec

import (
	"bytes"

	"github.com/gen2brain/webp"
)

// DecodeWebP decodes a standalone WebP image to raw row-major samples. No
// ROK4 pyramid codec stores WebP (spec.md §4.1's codec set is
// Raw/JPEG/PNG/LZW/PackBits/Zip), so this exists only for cmd/rok4ctl's
// dump/nodata subcommands to accept externally-sourced WebP tile files.
// There is no matching WebP encoder here: gen2brain/webp has no verified
// encode path in this codebase, only decode.
func DecodeWebP(data []byte) ([]byte, int, int, int, error) {
	im, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return decodedToRaw(im)
}
