package style

import "github.com/rok4/rok4go/internal/pipeline/img"

// TerrainImage derives slope/aspect/hillshade from a single-channel
// elevation source using a 3-row Horn's-formula window (spec.md §4.7).
// Edge rows reuse their nearest interior row rather than extrapolating,
// since the source is expected to already carry an ExtendedImage border.
type TerrainImage struct {
	img.Base
	source    img.Image
	mode      TerrainMode
	altitude  float64
	azimuth   float64
	cellSizeX float64
}

// NewTerrain builds a TerrainImage. altitude/azimuth (degrees) are only
// meaningful for Hillshade.
func NewTerrain(source img.Image, mode TerrainMode, altitude, azimuth float64) *TerrainImage {
	channels := 1
	return &TerrainImage{
		Base:      img.Base{W: source.Width(), H: source.Height(), C: channels, Box: source.BBox()},
		source:    source,
		mode:      mode,
		altitude:  altitude,
		azimuth:   azimuth,
		cellSizeX: source.ResolutionX(),
	}
}

func (t *TerrainImage) rowAt(y int) (*line, error) {
	if y < 0 {
		y = 0
	}
	if y >= t.H {
		y = t.H - 1
	}
	src, err := t.source.GetLineF32(y)
	if err != nil {
		return nil, err
	}
	l := newLine(t.W)
	l.fill(src)
	return l, nil
}

func (t *TerrainImage) GetLineF32(y int) ([]float32, error) {
	prev, err := t.rowAt(y - 1)
	if err != nil {
		return nil, err
	}
	cur, err := t.rowAt(y)
	if err != nil {
		return nil, err
	}
	next, err := t.rowAt(y + 1)
	if err != nil {
		return nil, err
	}

	out := make([]float32, t.W)
	for x := 0; x < t.W; x++ {
		dzdx, dzdy := horn(prev, cur, next, x, t.cellSizeX)
		switch t.mode {
		case Slope:
			out[x] = float32(SlopeDegrees(dzdx, dzdy))
		case Aspect:
			out[x] = float32(AspectDegrees(dzdx, dzdy))
		case Hillshade:
			out[x] = float32(HillshadeValue(dzdx, dzdy, t.altitude, t.azimuth))
		}
	}
	return out, nil
}

func (t *TerrainImage) GetLineU8(y int) ([]uint8, error) {
	line, err := t.GetLineF32(y)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(line))
	img.ConvertF32ToU8(out, line)
	return out, nil
}
