package georef

import (
	"fmt"
	"math"
	"sync"
)

// projection is the per-CRS planar projection implementation: a small
// closed-form interface for web-mercator/Swiss-LV95 style conversions,
// generalized to the handful of CRSs this server must support.
//
// A real deployment would delegate to libproj; this server's CoordinateTransformer
// hides that behind an interface so tests can run without a PROJ dependency,
// per spec.md §9's guidance to parameterize with a synchronous affine stub.
type projection interface {
	toWGS84(x, y float64) (lon, lat float64)
	fromWGS84(lon, lat float64) (x, y float64)
}

var projections = map[string]projection{
	"EPSG:4326": identityProj{},
	"CRS:84":    identityProj{},
	"EPSG:3857": webMercatorProj{},
	"IGNF:LAMB93": lccProj{
		a: 6378137.0, f: 1 / 298.257222101,
		lat0: deg2rad(46.5), lon0: deg2rad(3.0),
		lat1: deg2rad(44.0), lat2: deg2rad(49.0),
		falseE: 700000.0, falseN: 6600000.0,
	},
	"IGNF:LAMBE": lccProj{
		a: 6378249.2, f: 1 / 293.4660213,
		lat0: deg2rad(46.8), lon0: deg2rad(2.337229167),
		lat1: deg2rad(45.8989188), lat2: deg2rad(47.6960144),
		falseE: 600000.0, falseN: 2200000.0,
	},
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }

type identityProj struct{}

func (identityProj) toWGS84(x, y float64) (lon, lat float64)   { return x, y }
func (identityProj) fromWGS84(lon, lat float64) (x, y float64) { return lon, lat }

type webMercatorProj struct{}

const earthRadiusWebMercator = 6378137.0

func (webMercatorProj) toWGS84(x, y float64) (lon, lat float64) {
	lon = rad2deg(x / earthRadiusWebMercator)
	lat = rad2deg(2*math.Atan(math.Exp(y/earthRadiusWebMercator)) - math.Pi/2)
	return
}

func (webMercatorProj) fromWGS84(lon, lat float64) (x, y float64) {
	x = deg2rad(lon) * earthRadiusWebMercator
	y = earthRadiusWebMercator * math.Log(math.Tan(math.Pi/4+deg2rad(lat)/2))
	return
}

// lccProj is an ellipsoidal Lambert Conformal Conic projection (2 standard
// parallels), used for the French IGNF Lambert systems. The forward and
// inverse formulas are the standard Snyder closed forms, analytically
// invertible, which is what lets Grid.reproject's round-trip tolerance
// invariant hold.
type lccProj struct {
	a, f                 float64
	lat0, lon0           float64
	lat1, lat2           float64
	falseE, falseN       float64
}

func (p lccProj) e() float64 {
	return math.Sqrt(2*p.f - p.f*p.f)
}

func (p lccProj) m(lat float64) float64 {
	e := p.e()
	sinLat := math.Sin(lat)
	return math.Cos(lat) / math.Sqrt(1-e*e*sinLat*sinLat)
}

func (p lccProj) t(lat float64) float64 {
	e := p.e()
	sinLat := math.Sin(lat)
	return math.Tan(math.Pi/4-lat/2) / math.Pow((1-e*sinLat)/(1+e*sinLat), e/2)
}

func (p lccProj) constants() (n, F, rho0 float64) {
	m1 := p.m(p.lat1)
	m2 := p.m(p.lat2)
	t1 := p.t(p.lat1)
	t2 := p.t(p.lat2)
	t0 := p.t(p.lat0)
	if p.lat1 == p.lat2 {
		n = math.Sin(p.lat1)
	} else {
		n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	F = m1 / (n * math.Pow(t1, n))
	rho0 = p.a * F * math.Pow(t0, n)
	return
}

func (p lccProj) fromWGS84(lon, lat float64) (x, y float64) {
	latR := deg2rad(lat)
	lonR := deg2rad(lon)
	n, F, rho0 := p.constants()
	t := p.t(latR)
	rho := p.a * F * math.Pow(t, n)
	theta := n * (lonR - p.lon0)
	x = p.falseE + rho*math.Sin(theta)
	y = p.falseN + rho0 - rho*math.Cos(theta)
	return
}

func (p lccProj) toWGS84(x, y float64) (lon, lat float64) {
	n, F, rho0 := p.constants()
	dx := x - p.falseE
	dy := rho0 - (y - p.falseN)
	rho := math.Copysign(math.Sqrt(dx*dx+dy*dy), n)
	theta := math.Atan2(dx, dy)
	t := math.Pow(rho/(p.a*F), 1/n)
	e := p.e()

	latR := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 8; i++ {
		sinLat := math.Sin(latR)
		latR = math.Pi/2 - 2*math.Atan(t*math.Pow((1-e*sinLat)/(1+e*sinLat), e/2))
	}
	lonR := theta/n + p.lon0
	return rad2deg(lonR), rad2deg(latR)
}

// CoordinateTransformer converts points between two CRSs. Spec.md §3/§5
// model this after PROJ: a process-wide facility that is not thread-safe,
// so every call serializes through one mutex shared by Grid.reproject and
// any ad-hoc BoundingBox reprojection.
type CoordinateTransformer struct {
	mu sync.Mutex
}

// ErrReprojection is returned when a transform produces a non-finite
// coordinate (the HUGE_VAL case in spec.md §4.6).
type ErrReprojection struct {
	From, To CRS
	X, Y     float64
}

func (e *ErrReprojection) Error() string {
	return fmt.Sprintf("reprojection error: (%g,%g) %s -> %s produced a non-finite coordinate", e.X, e.Y, e.From, e.To)
}

// NewCoordinateTransformer returns a ready-to-use transformer. A single
// instance should be shared process-wide; it serializes internally.
func NewCoordinateTransformer() *CoordinateTransformer {
	return &CoordinateTransformer{}
}

// Transform converts (x, y) from one CRS to another. Both CRSs must be
// registered planar/geographic projections (see Proj4Compatible); an
// unregistered CRS returns an error rather than silently passing the
// coordinate through.
func (t *CoordinateTransformer) Transform(from, to CRS, x, y float64) (float64, float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transformLocked(from, to, x, y)
}

func (t *CoordinateTransformer) transformLocked(from, to CRS, x, y float64) (float64, float64, error) {
	if from == to {
		return x, y, nil
	}
	fp, ok := projections[from.String()]
	if !ok {
		return 0, 0, fmt.Errorf("unsupported source CRS %s", from)
	}
	tp, ok := projections[to.String()]
	if !ok {
		return 0, 0, fmt.Errorf("unsupported target CRS %s", to)
	}
	lon, lat := fp.toWGS84(x, y)
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, &ErrReprojection{From: from, To: to, X: x, Y: y}
	}
	x2, y2 := tp.fromWGS84(lon, lat)
	if math.IsNaN(x2) || math.IsInf(x2, 0) || math.IsNaN(y2) || math.IsInf(y2, 0) {
		return 0, 0, &ErrReprojection{From: from, To: to, X: x, Y: y}
	}
	return x2, y2, nil
}

// TransformBatch converts a slice of points in place, holding the mutex for
// the whole batch so Grid.reproject does not re-acquire it per node.
func (t *CoordinateTransformer) TransformBatch(from, to CRS, xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("mismatched coordinate slice lengths")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range xs {
		nx, ny, err := t.transformLocked(from, to, xs[i], ys[i])
		if err != nil {
			return err
		}
		xs[i], ys[i] = nx, ny
	}
	return nil
}

// TransformBBox reprojects the four corners of a bbox and returns the
// axis-aligned envelope of the results, per spec.md §4.6's note that a
// bbox reprojection recomputes the bounds from the sampled envelope.
func (t *CoordinateTransformer) TransformBBox(b BoundingBox, to CRS) (BoundingBox, error) {
	from, err := ParseCRS(b.CRS)
	if err != nil {
		return BoundingBox{}, err
	}
	corners := b.Corners()
	pts := make([][2]float64, 0, 4)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range corners {
		x, y, err := t.transformLocked(from, to, c[0], c[1])
		if err != nil {
			return BoundingBox{}, err
		}
		pts = append(pts, [2]float64{x, y})
	}
	return FromPoints(to.String(), pts), nil
}
