package tms

import (
	"fmt"

	"github.com/rok4/rok4go/internal/storage"
)

// SampleFormat is the pixel sample type a Level stores.
type SampleFormat int

const (
	SampleUint8 SampleFormat = iota
	SampleFloat32
)

// Codec identifies the on-disk tile codec (spec.md §4.1).
type Codec int

const (
	CodecRaw Codec = iota
	CodecJPEG
	CodecPNG
	CodecLZW
	CodecPackBits
	CodecZip
)

// Level binds one TileMatrix to a storage backend, pixel format, and
// optional per-channel no-data values. A Level owns its storage handle but
// never the decoded-tile cache (spec.md §3 Ownership).
type Level struct {
	TileMatrixID string
	Backend      storage.Backend
	Codec        Codec
	Format       SampleFormat
	Channels     int
	NoData       []float64 // per-channel, length == Channels when set

	// SlabWidth/SlabHeight are the number of tiles per storage object on
	// each axis (spec.md §6's default 16x16=256 tile index). Zero means
	// "use DefaultSlabSize".
	SlabWidth, SlabHeight int

	pyramid *Pyramid // back-reference by index into Pyramid.levels, never owning
}

// DefaultSlabSize is the tiles-per-object grid spec.md §6 assumes when a
// Level does not declare its own SlabWidth/SlabHeight.
const DefaultSlabSize = 16

func (l *Level) slabWidth() int {
	if l.SlabWidth > 0 {
		return l.SlabWidth
	}
	return DefaultSlabSize
}

func (l *Level) slabHeight() int {
	if l.SlabHeight > 0 {
		return l.SlabHeight
	}
	return DefaultSlabSize
}

// SlabObject maps a (col, row) tile address to the storage object holding
// it and the tile's local offset within that object's tile index, per
// spec.md §6's on-disk layout (one index-and-body file per slab of
// SlabWidth x SlabHeight tiles).
func (l *Level) SlabObject(col, row int) (object string, localCol, localRow int) {
	sw, sh := l.slabWidth(), l.slabHeight()
	slabX, slabY := col/sw, row/sh
	localCol, localRow = col%sw, row%sh
	return fmt.Sprintf("%s/%d_%d.tif", l.TileMatrixID, slabX, slabY), localCol, localRow
}

// SlabDimensions returns the tile-grid size of a slab object, clamped to
// the TileMatrix's own extent when the matrix is smaller than one slab (as
// in single-slab test pyramids).
func (l *Level) SlabDimensions(tm TileMatrix) (width, height int) {
	sw, sh := l.slabWidth(), l.slabHeight()
	if sw > tm.MatrixW {
		sw = tm.MatrixW
	}
	if sh > tm.MatrixH {
		sh = tm.MatrixH
	}
	return sw, sh
}

// TileMatrix resolves this level's bound TileMatrix via its owning Pyramid.
func (l *Level) TileMatrix() (TileMatrix, error) {
	if l.pyramid == nil {
		return TileMatrix{}, fmt.Errorf("level %q: not attached to a pyramid", l.TileMatrixID)
	}
	m, ok := l.pyramid.tms.ByID(l.TileMatrixID)
	if !ok {
		return TileMatrix{}, fmt.Errorf("level references unknown tile matrix %q", l.TileMatrixID)
	}
	return m, nil
}

// BytesPerSample returns the storage width of one sample.
func (f SampleFormat) BytesPerSample() int {
	if f == SampleFloat32 {
		return 4
	}
	return 1
}

// NoDataUint8 returns the level's no-data values quantized to uint8,
// defaulting to zero for channels with no configured no-data.
func (l *Level) NoDataUint8() []uint8 {
	out := make([]uint8, l.Channels)
	for i := range out {
		if i < len(l.NoData) {
			v := l.NoData[i]
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out[i] = uint8(v)
		}
	}
	return out
}

// NoDataFloat32 returns the level's no-data values as float32, used by
// float-sample pyramids (e.g. DTM data).
func (l *Level) NoDataFloat32() []float32 {
	out := make([]float32, l.Channels)
	for i := range out {
		if i < len(l.NoData) {
			out[i] = float32(l.NoData[i])
		}
	}
	return out
}

// Pyramid binds a TileMatrixSet to a set of Levels built for it. Every
// referenced TileMatrix id must exist in the bound TileMatrixSet, and every
// level must share the pyramid's channel count and sample format
// (spec.md §3 invariants).
type Pyramid struct {
	Name     string
	tms      *TileMatrixSet
	levels   map[string]*Level // keyed by TileMatrixID
	Channels int
	Format   SampleFormat
}

// NewPyramid builds a Pyramid bound to the given TileMatrixSet, validating
// the cross-references and the shared channel/format invariant.
func NewPyramid(name string, set *TileMatrixSet, levels []*Level) (*Pyramid, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("pyramid %q: no levels", name)
	}
	p := &Pyramid{
		Name:     name,
		tms:      set,
		levels:   make(map[string]*Level, len(levels)),
		Channels: levels[0].Channels,
		Format:   levels[0].Format,
	}
	for _, lvl := range levels {
		if _, ok := set.ByID(lvl.TileMatrixID); !ok {
			return nil, fmt.Errorf("pyramid %q: level references unknown tile matrix %q", name, lvl.TileMatrixID)
		}
		if lvl.Channels != p.Channels || lvl.Format != p.Format {
			return nil, fmt.Errorf("pyramid %q: level %q channel/format mismatch with pyramid", name, lvl.TileMatrixID)
		}
		lvl.pyramid = p
		p.levels[lvl.TileMatrixID] = lvl
	}
	return p, nil
}

// TileMatrixSet returns the set this pyramid is bound to.
func (p *Pyramid) TileMatrixSet() *TileMatrixSet { return p.tms }

// Level returns the Level bound to the named TileMatrix.
func (p *Pyramid) Level(tileMatrixID string) (*Level, bool) {
	l, ok := p.levels[tileMatrixID]
	return l, ok
}

// Levels returns all levels, ordered like the bound TileMatrixSet.
func (p *Pyramid) Levels() []*Level {
	out := make([]*Level, 0, len(p.tms.Levels))
	for _, m := range p.tms.Levels {
		if l, ok := p.levels[m.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// BestLevel picks the Level whose TileMatrix resolution best matches a
// requested ground resolution, restricted to levels this pyramid actually
// has storage for.
func (p *Pyramid) BestLevel(targetResolution float64) (*Level, TileMatrix, error) {
	var best *Level
	var bestTM TileMatrix
	for _, m := range p.tms.Levels {
		l, ok := p.levels[m.ID]
		if !ok {
			continue
		}
		if m.Resolution >= targetResolution || best == nil {
			best, bestTM = l, m
		}
	}
	if best == nil {
		return nil, TileMatrix{}, fmt.Errorf("pyramid %q: no usable level", p.Name)
	}
	return best, bestTM, nil
}
