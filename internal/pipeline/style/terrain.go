package style

import "math"

// TerrainMode selects which derived product a TerrainImage computes from
// an elevation source.
type TerrainMode int

const (
	Slope TerrainMode = iota
	Aspect
	Hillshade
)

// line holds one elevation scanline plus left/right no-data guards so a
// 3x3 Horn's-formula window never reads out of bounds. It is explicitly
// zero-initialized before any real samples are copied in: an earlier
// draft of this gradient code read line.samples[3*i] for the window's
// rightmost column before that slot had been written by the current
// row's copy, picking up whatever was left over from the previous row's
// buffer reuse. Always construct with newLine, never zero-value a line.
type line struct {
	samples []float32
}

func newLine(width int) *line {
	return &line{samples: make([]float32, width+2)}
}

func (l *line) fill(src []float32) {
	l.samples[0] = 0
	copy(l.samples[1:1+len(src)], src)
	l.samples[len(l.samples)-1] = 0
}

func (l *line) at(x int) float32 { return l.samples[x+1] }

// horn computes the Horn (1981) central-difference gradient of a 3x3
// elevation window, returning dz/dx and dz/dy in the source's own units
// per pixel. cellSize converts pixel spacing to ground units.
func horn(prev, cur, next *line, x int, cellSize float64) (dzdx, dzdy float64) {
	a, b, c := float64(prev.at(x-1)), float64(prev.at(x)), float64(prev.at(x+1))
	d, _, f := float64(cur.at(x-1)), float64(cur.at(x)), float64(cur.at(x+1))
	g, h, i := float64(next.at(x-1)), float64(next.at(x)), float64(next.at(x+1))

	dzdx = ((c + 2*f + i) - (a + 2*d + g)) / (8 * cellSize)
	dzdy = ((g + 2*h + i) - (a + 2*b + c)) / (8 * cellSize)
	return
}

// SlopeDegrees returns the terrain slope angle in degrees from a Horn
// gradient.
func SlopeDegrees(dzdx, dzdy float64) float64 {
	return math.Atan(math.Hypot(dzdx, dzdy)) * 180 / math.Pi
}

// AspectDegrees returns the downslope direction in degrees clockwise
// from north, or -1 for a perfectly flat cell (undefined aspect).
func AspectDegrees(dzdx, dzdy float64) float64 {
	if dzdx == 0 && dzdy == 0 {
		return -1
	}
	a := math.Atan2(dzdy, -dzdx) * 180 / math.Pi
	a = 90 - a
	for a < 0 {
		a += 360
	}
	for a >= 360 {
		a -= 360
	}
	return a
}

// HillshadeValue returns the Lambertian illumination in [0,255] for a sun
// at altitude/azimuth degrees, matching the classic GDAL/ArcGIS formula.
func HillshadeValue(dzdx, dzdy, altitudeDeg, azimuthDeg float64) uint8 {
	zenith := (90 - altitudeDeg) * math.Pi / 180
	// Compass azimuth (clockwise from north) to the counter-clockwise-from-
	// east angle that aspectRad below is measured in.
	azimuthRad := (360 - azimuthDeg + 90) * math.Pi / 180

	slopeRad := math.Atan(math.Hypot(dzdx, dzdy))
	var aspectRad float64
	if dzdx != 0 {
		aspectRad = math.Atan2(dzdy, -dzdx)
		if aspectRad < 0 {
			aspectRad += 2 * math.Pi
		}
	} else if dzdy > 0 {
		aspectRad = math.Pi / 2
	} else {
		aspectRad = 3 * math.Pi / 2
	}

	shade := math.Cos(zenith)*math.Cos(slopeRad) +
		math.Sin(zenith)*math.Sin(slopeRad)*math.Cos(azimuthRad-aspectRad)
	if shade < 0 {
		shade = 0
	}
	return uint8(shade * 255)
}
