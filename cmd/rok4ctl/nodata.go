package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rok4/rok4go/internal/codec"
)

// runNodata reports whether a decoded tile is uniformly one value per
// channel, the standalone equivalent of be4's nodataIdentifier used during
// pyramid-build bookkeeping (spec.md §4.1's TileSource no-data
// short-circuit operates on the same check, against a pyramid's
// configured Level.NoData instead of a flag).
func runNodata(args []string) error {
	fs := flag.NewFlagSet("nodata", flag.ExitOnError)
	in := fs.String("in", "", "Input tile body file")
	inFormat := fs.String("format", "raw", "Input codec: raw, lzw, packbits, zip, jpeg, png, webp")
	width := fs.Int("width", 256, "Tile width in pixels")
	height := fs.Int("height", 256, "Tile height in pixels")
	channels := fs.Int("channels", 3, "Sample channels per pixel")
	nodataStr := fs.String("nodata", "", "Comma-separated per-channel no-data value; defaults to the tile's own first pixel")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	samples, err := decodeTileFile(*in, *inFormat, *width, *height, *channels)
	if err != nil {
		return err
	}

	nodata, err := parseNoData(*nodataStr, *channels, samples)
	if err != nil {
		return err
	}

	if allNoData(samples, *channels, nodata) {
		fmt.Printf("%s: all no-data\n", *in)
		return nil
	}
	fmt.Printf("%s: has data\n", *in)
	return nil
}

func decodeTileFile(path, formatName string, width, height, channels int) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cf, ok := codec.ParseFormat(formatName)
	if !ok {
		return nil, fmt.Errorf("unknown input format %q", formatName)
	}
	var samples []byte
	switch cf {
	case codec.FormatJPEG:
		samples, _, _, _, err = codec.DecodeJPEG(body)
	case codec.FormatPNG:
		samples, _, _, _, err = codec.DecodePNG(body)
	case codec.FormatWebP:
		samples, _, _, _, err = codec.DecodeWebP(body)
	default:
		samples, err = codec.DecodeStrip(body, cf)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding tile body: %w", err)
	}
	want := width * height * channels
	if len(samples) != want {
		return nil, fmt.Errorf("decoded %d bytes, expected %d (width*height*channels)", len(samples), want)
	}
	return samples, nil
}

func parseNoData(spec string, channels int, samples []byte) ([]byte, error) {
	if spec == "" {
		if len(samples) < channels {
			return nil, fmt.Errorf("tile has fewer than %d samples", channels)
		}
		return samples[:channels], nil
	}
	fields := strings.Split(spec, ",")
	if len(fields) != channels {
		return nil, fmt.Errorf("-nodata must have %d comma-separated values, got %d", channels, len(fields))
	}
	out := make([]byte, channels)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("-nodata value %q is not a byte", f)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// allNoData mirrors internal/pipeline/source's isNoDataTile check, applied
// here against an explicit per-channel value rather than a Level's
// configured NoData.
func allNoData(samples []byte, channels int, nodata []byte) bool {
	if len(nodata) == 0 || len(samples) == 0 {
		return false
	}
	for i := 0; i+channels <= len(samples); i += channels {
		for ch := 0; ch < channels; ch++ {
			if samples[i+ch] != nodata[ch%len(nodata)] {
				return false
			}
		}
	}
	return true
}
