package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rok4/rok4go/internal/codec"
)

// runStrip rewrites every pixel matching borderValue in all channels (the
// white-border or 0xFF-fill artifact left by some source mosaics at tile
// edges) to the tile's configured no-data value, then re-encodes. Grounded
// on the same family of single-purpose pyramid-build tools as nodata.go.
func runStrip(args []string, borderValue byte) error {
	fs := flag.NewFlagSet("strip", flag.ExitOnError)
	in := fs.String("in", "", "Input tile body file")
	out := fs.String("out", "", "Output tile body file")
	inFormat := fs.String("format", "raw", "Input codec (output uses the same): raw, lzw, packbits, zip, jpeg, png")
	width := fs.Int("width", 256, "Tile width in pixels")
	height := fs.Int("height", 256, "Tile height in pixels")
	channels := fs.Int("channels", 3, "Sample channels per pixel")
	nodataStr := fs.String("nodata", "0", "Comma-separated per-channel no-data replacement value")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	samples, err := decodeTileFile(*in, *inFormat, *width, *height, *channels)
	if err != nil {
		return err
	}
	nodata, err := parseNoData(*nodataStr, *channels, samples)
	if err != nil {
		return err
	}

	replaced := stripBorderValue(samples, *channels, borderValue, nodata)

	cf, ok := codec.ParseFormat(*inFormat)
	if !ok {
		return fmt.Errorf("unknown format %q", *inFormat)
	}
	image := newRawImage(*width, *height, *channels, samples)
	data, err := codec.Export(image, cf, 85)
	if err != nil {
		return fmt.Errorf("re-encoding tile: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	fmt.Printf("%s: replaced %d pixel(s), wrote %s\n", *in, replaced, *out)
	return nil
}

// stripBorderValue replaces every pixel whose channels all equal
// borderValue with nodata, in place, returning the count replaced.
func stripBorderValue(samples []byte, channels int, borderValue byte, nodata []byte) int {
	replaced := 0
	for i := 0; i+channels <= len(samples); i += channels {
		isBorder := true
		for ch := 0; ch < channels; ch++ {
			if samples[i+ch] != borderValue {
				isBorder = false
				break
			}
		}
		if !isBorder {
			continue
		}
		for ch := 0; ch < channels; ch++ {
			samples[i+ch] = nodata[ch%len(nodata)]
		}
		replaced++
	}
	return replaced
}
