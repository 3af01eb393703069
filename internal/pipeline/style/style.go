// Package style implements StyledImage: palette lookups for classified
// rasters and the elevation-derived renderings (slope, aspect, hillshade)
// described in spec.md §4.7.
package style

import (
	"sort"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// PaletteMode selects how a Palette maps a source sample to output color.
type PaletteMode int

const (
	// RGBContinuous interpolates RGB linearly between the two palette
	// stops bracketing the source value.
	RGBContinuous PaletteMode = iota
	// AlphaContinuous behaves like RGBContinuous but additionally
	// interpolates alpha, rather than forcing full opacity.
	AlphaContinuous
	// NoAlpha behaves like RGBContinuous but always emits 3 channels
	// (no alpha plane), dropping any configured alpha stops.
	NoAlpha
)

// Stop is one color breakpoint in a Palette, keyed by source sample value.
type Stop struct {
	Value      float64
	R, G, B, A uint8
}

// Palette maps single-channel source samples to RGB(A) colors via
// piecewise-linear interpolation between sorted Stops.
type Palette struct {
	Mode  PaletteMode
	Stops []Stop
}

// NewPalette sorts stops by Value and returns a ready-to-use Palette.
func NewPalette(mode PaletteMode, stops []Stop) *Palette {
	sorted := append([]Stop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
	return &Palette{Mode: mode, Stops: sorted}
}

// Lookup returns the interpolated color for sample v.
func (p *Palette) Lookup(v float64) (r, g, b, a uint8) {
	if len(p.Stops) == 0 {
		return 0, 0, 0, 0
	}
	if v <= p.Stops[0].Value {
		s := p.Stops[0]
		return s.R, s.G, s.B, s.A
	}
	last := p.Stops[len(p.Stops)-1]
	if v >= last.Value {
		return last.R, last.G, last.B, last.A
	}
	i := sort.Search(len(p.Stops), func(i int) bool { return p.Stops[i].Value >= v })
	lo, hi := p.Stops[i-1], p.Stops[i]
	t := (v - lo.Value) / (hi.Value - lo.Value)
	lerp := func(a, b uint8) uint8 { return uint8(float64(a) + t*(float64(b)-float64(a))) }
	r = lerp(lo.R, hi.R)
	g = lerp(lo.G, hi.G)
	b = lerp(lo.B, hi.B)
	switch p.Mode {
	case AlphaContinuous:
		a = lerp(lo.A, hi.A)
	case NoAlpha:
		a = 255
	default:
		a = 255
	}
	return
}

// StyledImage applies a Palette to a single-channel source, producing a
// 3- or 4-channel RGB(A) image.
type StyledImage struct {
	img.Base
	source  img.Image
	palette *Palette
}

// New builds a StyledImage over a single-channel source.
func New(source img.Image, palette *Palette) *StyledImage {
	channels := 3
	if palette.Mode == AlphaContinuous {
		channels = 4
	}
	return &StyledImage{
		Base:    img.Base{W: source.Width(), H: source.Height(), C: channels, Box: source.BBox()},
		source:  source,
		palette: palette,
	}
}

func (s *StyledImage) GetLineU8(y int) ([]uint8, error) {
	src, err := s.source.GetLineF32(y)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, s.W*s.C)
	for x := 0; x < s.W; x++ {
		r, g, b, a := s.palette.Lookup(float64(src[x]))
		out[x*s.C+0] = r
		out[x*s.C+1] = g
		out[x*s.C+2] = b
		if s.C == 4 {
			out[x*s.C+3] = a
		}
	}
	return out, nil
}

func (s *StyledImage) GetLineF32(y int) ([]float32, error) {
	line, err := s.GetLineU8(y)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(line))
	img.ConvertU8ToF32(out, line)
	return out, nil
}
