package kernel

import (
	"math"
	"testing"
)

func TestWeightsSumToOne(t *testing.T) {
	kinds := []Kind{Nearest, Linear, Cubic, Lanczos2, Lanczos3, Lanczos4}
	for _, kind := range kinds {
		k := For(kind)
		for _, ratio := range []float64{0.25, 0.5, 1.0, 1.5, 3.0} {
			for _, center := range []float64{0.3, 5.7, 99.99, 500.01} {
				_, weights := k.Weight(ratio, center, 1000, 64)
				var sum float64
				for _, w := range weights {
					sum += w
				}
				if math.Abs(sum-1.0) > 1e-6 {
					t.Fatalf("kind=%v ratio=%v center=%v: weights sum to %v, want 1", kind, ratio, center, sum)
				}
			}
		}
	}
}

func TestDegenerateSingleWeightIsOne(t *testing.T) {
	k := For(Linear)
	_, weights := k.Weight(1.0, 0, 1, 64)
	if len(weights) != 1 || weights[0] != 1.0 {
		t.Fatalf("expected single weight 1.0 for maxIndex=1, got %v", weights)
	}
}

func TestNearestNeverWidensUnderDownsampling(t *testing.T) {
	k := For(Nearest)
	if !k.ConstRatio {
		t.Fatal("Nearest must be marked const_ratio")
	}
	_, w1 := k.Weight(1.0, 10.3, 1000, 64)
	_, w4 := k.Weight(4.0, 10.3, 1000, 64)
	if len(w1) != len(w4) {
		t.Fatalf("nearest support widened under downsampling: len(w1)=%d len(w4)=%d", len(w1), len(w4))
	}
}

func TestWeightClampsNearEdges(t *testing.T) {
	k := For(Cubic)
	xFirst, weights := k.Weight(1.0, 0.2, 10, 64)
	if xFirst < 0 {
		t.Fatalf("xFirst must be clamped to >= 0, got %d", xFirst)
	}
	if xFirst+len(weights) > 10 {
		t.Fatalf("weights extend past maxIndex: xFirst=%d len=%d", xFirst, len(weights))
	}
}
