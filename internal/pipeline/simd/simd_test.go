package simd

import "testing"

func TestMultiplexDemultiplexRoundTrip(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{10, 20, 30}
	c := []float32{100, 200, 300}
	d := []float32{1000, 2000, 3000}

	mux := Multiplex4xN(a, b, c, d)
	want := []float32{1, 10, 100, 1000, 2, 20, 200, 2000, 3, 30, 300, 3000}
	for i := range want {
		if mux[i] != want[i] {
			t.Fatalf("multiplex mismatch at %d: got %v want %v", i, mux[i], want[i])
		}
	}

	a2, b2, c2, d2 := Demultiplex4xN(mux)
	for i := range a {
		if a2[i] != a[i] || b2[i] != b[i] || c2[i] != c[i] || d2[i] != d[i] {
			t.Fatalf("demultiplex round trip mismatch at %d", i)
		}
	}
}

func TestConvertF32U8ClampsAndRounds(t *testing.T) {
	src := []float32{-10, 0, 127.4, 127.6, 255, 400}
	dst := make([]uint8, len(src))
	ConvertF32U8(dst, src)
	want := []uint8{0, 0, 127, 128, 255, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("at %d: got %d want %d", i, dst[i], want[i])
		}
	}
}

func TestU8F32RoundTripIdentity(t *testing.T) {
	for v := 0; v <= 255; v++ {
		f := []float32{float32(v)}
		u := make([]uint8, 1)
		ConvertF32U8(u, f)
		if u[0] != uint8(v) {
			t.Fatalf("u8->f32->u8 not identity at %d: got %d", v, u[0])
		}
	}
}

func TestAlignedBufferAlignment(t *testing.T) {
	buf := NewAlignedBuffer(1024)
	if len(buf.Bytes()) != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", len(buf.Bytes()))
	}
}
