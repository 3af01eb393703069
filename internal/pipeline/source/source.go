// Package source implements TileSource, the leaf of the compositing
// pipeline: it reads one pyramid tile from storage, decodes it, and
// exposes it as a pipeline image.Image.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rok4/rok4go/internal/codec"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/img"
	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tileindex"
	"github.com/rok4/rok4go/internal/tms"
)

// RetryPolicy bounds the backoff retried on transient storage errors.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}

// TileSource reads and decodes a single tile body from a pyramid level.
type TileSource struct {
	img.Base
	level   *tms.Level
	object  string
	col     int
	row     int
	retry   RetryPolicy
	decoded []byte // row-major samples, populated lazily on first GetLine call
}

// NewTileSource builds a TileSource for one (col, row) tile of level,
// stored at object in the level's backend. box is the tile's bounding
// box in the level's CRS.
func NewTileSource(level *tms.Level, object string, col, row int, box georef.BoundingBox) (*TileSource, error) {
	tm, err := level.TileMatrix()
	if err != nil {
		return nil, err
	}
	return &TileSource{
		Base: img.Base{
			W:   tm.TileWidth,
			H:   tm.TileHeight,
			C:   level.Channels,
			Box: box,
		},
		level:  level,
		object: object,
		col:    col,
		row:    row,
		retry:  DefaultRetryPolicy,
	}, nil
}

// ErrNoData indicates the addressed tile is absent from the index: the
// caller should treat this region as transparent/no-data rather than an
// error, per spec.md §7's error taxonomy.
var ErrNoData = fmt.Errorf("source: tile has no data")

func (s *TileSource) ensureDecoded(ctx context.Context) error {
	if s.decoded != nil {
		return nil
	}

	tm, err := s.level.TileMatrix()
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	slabW, slabH := s.level.SlabDimensions(tm)
	idx, err := tileindex.Read(ctx, s.level.Backend, s.object, slabW, slabH)
	if err != nil {
		return fmt.Errorf("source: reading tile index for %s: %w", s.object, err)
	}

	var body []byte
	var readErr error
	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		body, readErr = tileindex.ReadTileBody(ctx, s.level.Backend, s.object, idx, s.col, s.row)
		if readErr == nil || errors.Is(readErr, storage.ErrNotFound) {
			break
		}
		if attempt < s.retry.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retry.BaseDelay << uint(attempt)):
			}
		}
	}
	if errors.Is(readErr, storage.ErrNotFound) {
		return ErrNoData
	}
	if readErr != nil {
		return fmt.Errorf("source: reading tile body for %s[%d,%d]: %w", s.object, s.col, s.row, readErr)
	}
	if len(body) == 0 {
		return ErrNoData
	}

	samples, err := decodeBody(body, s.level)
	if err != nil {
		return fmt.Errorf("source: decoding tile %s[%d,%d]: %w", s.object, s.col, s.row, err)
	}
	if isNoDataTile(samples, s.level) {
		return ErrNoData
	}
	s.decoded = samples
	return nil
}

func decodeBody(body []byte, level *tms.Level) ([]byte, error) {
	switch level.Codec {
	case tms.CodecJPEG:
		raw, _, _, _, err := codec.DecodeJPEG(body)
		return raw, err
	case tms.CodecPNG:
		raw, _, _, _, err := codec.DecodePNG(body)
		return raw, err
	case tms.CodecRaw:
		return codec.DecodeStrip(body, codec.FormatRaw)
	case tms.CodecLZW:
		return codec.DecodeStrip(body, codec.FormatLZW)
	case tms.CodecPackBits:
		return codec.DecodeStrip(body, codec.FormatPackBits)
	case tms.CodecZip:
		return codec.DecodeStrip(body, codec.FormatZip)
	default:
		return nil, fmt.Errorf("source: unsupported codec %v", level.Codec)
	}
}

// isNoDataTile reports whether every sample in a decoded tile matches the
// level's declared nodata value.
func isNoDataTile(samples []byte, level *tms.Level) bool {
	nodata := level.NoDataUint8()
	if len(nodata) == 0 || len(samples) == 0 {
		return false
	}
	c := level.Channels
	for i := 0; i+c <= len(samples); i += c {
		for ch := 0; ch < c; ch++ {
			if samples[i+ch] != nodata[ch%len(nodata)] {
				return false
			}
		}
	}
	return true
}

// GetLineU8 returns one decoded scanline of uint8 samples.
func (s *TileSource) GetLineU8(y int) ([]uint8, error) {
	if err := s.ensureDecoded(context.Background()); err != nil {
		return nil, err
	}
	stride := s.W * s.C
	return s.decoded[y*stride : (y+1)*stride], nil
}

// GetLineF32 decodes one scanline and widens it to float32, used by
// float-sample pyramids (DTM levels).
func (s *TileSource) GetLineF32(y int) ([]float32, error) {
	line, err := s.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(line))
	for i, v := range line {
		out[i] = float32(v)
	}
	return out, nil
}
