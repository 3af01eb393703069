package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rok4/rok4go/internal/codec"
)

// runDump decodes a single tile body (no slab index, no pyramid config)
// and re-encodes it in a display-friendly format for manual inspection
// without touching a running server's pipeline.
func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	in := fs.String("in", "", "Input tile body file")
	out := fs.String("out", "", "Output file")
	inFormat := fs.String("format", "raw", "Input codec: raw, lzw, packbits, zip, jpeg, png, webp")
	outFormat := fs.String("out-format", "png", "Output codec: png, jpeg, raw, lzw, packbits, zip (TIFF-wrapped)")
	width := fs.Int("width", 256, "Tile width in pixels")
	height := fs.Int("height", 256, "Tile height in pixels")
	channels := fs.Int("channels", 3, "Sample channels per pixel")
	quality := fs.Int("quality", 85, "JPEG quality")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	samples, err := decodeTileFile(*in, *inFormat, *width, *height, *channels)
	if err != nil {
		return err
	}

	image := newRawImage(*width, *height, *channels, samples)

	of, ok := codec.ParseFormat(*outFormat)
	if !ok {
		return fmt.Errorf("unknown output format %q", *outFormat)
	}
	data, err := codec.Export(image, of, *quality)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	fmt.Printf("Wrote %s: %dx%d, %d channel(s), %d bytes\n", *out, *width, *height, *channels, len(data))
	return nil
}
