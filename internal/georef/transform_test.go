package georef

import "testing"

func TestTransformRoundTrip(t *testing.T) {
	tr := NewCoordinateTransformer()
	wgs84 := CRS{Authority: "EPSG", Code: "4326"}
	webm := CRS{Authority: "EPSG", Code: "3857"}

	lon, lat := 2.3522, 48.8566 // Paris
	x, y, err := tr.Transform(wgs84, webm, lon, lat)
	if err != nil {
		t.Fatalf("forward transform: %v", err)
	}
	lon2, lat2, err := tr.Transform(webm, wgs84, x, y)
	if err != nil {
		t.Fatalf("inverse transform: %v", err)
	}
	if abs(lon2-lon) > 1e-6 || abs(lat2-lat) > 1e-6 {
		t.Fatalf("round trip drift too large: (%g,%g) -> (%g,%g)", lon, lat, lon2, lat2)
	}
}

func TestTransformLambert93RoundTrip(t *testing.T) {
	tr := NewCoordinateTransformer()
	wgs84 := CRS{Authority: "EPSG", Code: "4326"}
	lamb93 := CRS{Authority: "IGNF", Code: "LAMB93"}

	lon, lat := 2.3522, 48.8566
	x, y, err := tr.Transform(wgs84, lamb93, lon, lat)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	lon2, lat2, err := tr.Transform(lamb93, wgs84, x, y)
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	if abs(lon2-lon) > 1e-6 || abs(lat2-lat) > 1e-6 {
		t.Fatalf("round trip drift: (%g,%g) -> (%g,%g)", lon, lat, lon2, lat2)
	}
}

func TestTransformUnsupportedCRS(t *testing.T) {
	tr := NewCoordinateTransformer()
	a := CRS{Authority: "EPSG", Code: "4326"}
	b := CRS{Authority: "EPSG", Code: "99999"}
	if _, _, err := tr.Transform(a, b, 0, 0); err == nil {
		t.Fatal("expected error for unsupported CRS")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
