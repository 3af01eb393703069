// Package img defines the Image producer contract that every stage of the
// compositing pipeline in spec.md §2–§4 implements: TileSource, MosaicImage,
// ExtendedImage, ResampledImage, ReprojectedImage, and StyledImage.
//
// Dynamic dispatch is expressed as a plain interface rather than a sealed
// enum (spec.md §9's "tagged variant" note): Go interfaces are already
// closed over the concrete types a package chooses to implement them, and
// an interface keeps each producer's constructor free to return whatever
// concrete type composes best.
package img

import "github.com/rok4/rok4go/internal/georef"

// Image is a lazily evaluated scanline producer. A producer never buffers
// its full raster; downstream producers pull scanlines on demand. Each
// producer exclusively owns its upstream producer and tearing down the head
// cascades (spec.md §3 Ownership).
type Image interface {
	// Width, Height, Channels describe the producer's raster shape.
	Width() int
	Height() int
	Channels() int

	// BBox is this image's georeferenced bounding box.
	BBox() georef.BoundingBox

	// ResolutionX, ResolutionY are the derived ground resolutions
	// (BBox width/height divided by pixel width/height).
	ResolutionX() float64
	ResolutionY() float64

	// GetLineU8 delivers scanline y as 8-bit unsigned samples, width()*
	// channels() of them. Producers holding float data convert internally.
	GetLineU8(y int) ([]uint8, error)

	// GetLineF32 delivers scanline y as 32-bit float samples. Producers
	// holding u8 data convert internally (exact, no precision loss).
	GetLineF32(y int) ([]float32, error)
}

// Base implements the shape/geometry accessors shared by every concrete
// producer, leaving only GetLineU8/GetLineF32 for the embedder to supply.
// This mirrors how every pipeline stage in the original C++ library
// inherited a common Image base for its geometry fields.
type Base struct {
	W, H, C int
	Box     georef.BoundingBox
}

func (b Base) Width() int    { return b.W }
func (b Base) Height() int   { return b.H }
func (b Base) Channels() int { return b.C }
func (b Base) BBox() georef.BoundingBox { return b.Box }

func (b Base) ResolutionX() float64 {
	if b.W == 0 {
		return 0
	}
	return b.Box.Width() / float64(b.W)
}

func (b Base) ResolutionY() float64 {
	if b.H == 0 {
		return 0
	}
	return b.Box.Height() / float64(b.H)
}

// ConvertU8ToF32 is the canonical, branch-free u8->f32 widening used
// whenever a producer holding u8 samples must answer GetLineF32.
func ConvertU8ToF32(dst []float32, src []uint8) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}

// ConvertF32ToU8 rounds-to-nearest and clamps to [0,255], the canonical
// narrowing used whenever a producer holding f32 samples must answer
// GetLineU8. Round-trip u8->f32->u8 with this function is the identity on
// [0,255] (spec.md §8 round-trip law).
func ConvertF32ToU8(dst []uint8, src []float32) {
	for i, v := range src {
		if v <= 0 {
			dst[i] = 0
			continue
		}
		if v >= 255 {
			dst[i] = 255
			continue
		}
		dst[i] = uint8(v + 0.5)
	}
}
