// Package simd provides aligned-buffer and four-lane vector primitives for
// processing four source rows at a time (spec.md §4.5, §4.7, §9). There is
// no actual SIMD intrinsic use here — Go has no portable intrinsics in the
// standard toolchain the way C++ has SSE — so this is the "portable scalar
// fallback" spec.md §9 asks every SIMD-gated module to carry, kept as the
// only implementation. ResampledImage and ReprojectedImage do not call
// these primitives; they run their own scalar loops.
package simd

import (
	"math"
	"unsafe"
)

// AlignedBuffer is a byte-aligned (16-byte) scratch allocation. The
// resampler and reprojector do not allocate one; their scratch rows are
// ordinary slices. Go's GC reclaims the backing array once the buffer is
// unreferenced.
type AlignedBuffer struct {
	raw  []byte
	data []byte // raw, sliced to start at a 16-byte boundary
}

const alignment = 16

// NewAlignedBuffer allocates n bytes, 16-byte aligned.
func NewAlignedBuffer(n int) *AlignedBuffer {
	raw := make([]byte, n+alignment)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := alignment - int(addr%alignment)
	if off == alignment {
		off = 0
	}
	return &AlignedBuffer{raw: raw, data: raw[off : off+n]}
}

// Bytes returns the aligned scratch region.
func (b *AlignedBuffer) Bytes() []byte { return b.data }

// Multiplex4xN interleaves four equal-length rows A,B,C,D into
// [A0 B0 C0 D0][A1 B1 C1 D1]... (spec.md §9's multiplex contract). The
// non-SIMD reference and any future vectorized implementation must match
// byte-for-byte.
func Multiplex4xN(a, b, c, d []float32) []float32 {
	n := len(a)
	out := make([]float32, n*4)
	for i := 0; i < n; i++ {
		out[i*4+0] = a[i]
		out[i*4+1] = b[i]
		out[i*4+2] = c[i]
		out[i*4+3] = d[i]
	}
	return out
}

// Demultiplex4xN is the inverse of Multiplex4xN.
func Demultiplex4xN(mux []float32) (a, b, c, d []float32) {
	n := len(mux) / 4
	a = make([]float32, n)
	b = make([]float32, n)
	c = make([]float32, n)
	d = make([]float32, n)
	for i := 0; i < n; i++ {
		a[i] = mux[i*4+0]
		b[i] = mux[i*4+1]
		c[i] = mux[i*4+2]
		d[i] = mux[i*4+3]
	}
	return
}

// DotProd computes the dot product of a multiplexed 4-lane source window
// (length == C*4) against a shared weight vector of length C, producing
// four lane sums.
func DotProd(mux []float32, weights []float32) [4]float32 {
	var sum [4]float32
	for i, w := range weights {
		base := i * 4
		sum[0] += mux[base+0] * w
		sum[1] += mux[base+1] * w
		sum[2] += mux[base+2] * w
		sum[3] += mux[base+3] * w
	}
	return sum
}

// Mult scales src by a scalar weight into dst, dst[i] = src[i]*w.
func Mult(dst, src []float32, w float32) {
	for i, v := range src {
		dst[i] = v * w
	}
}

// AddMult accumulates dst[i] += src[i]*w, chaining weighted row
// contributions.
func AddMult(dst, src []float32, w float32) {
	for i, v := range src {
		dst[i] += v * w
	}
}

// ConvertU8F32 widens a u8 row to f32 in place into dst.
func ConvertU8F32(dst []float32, src []uint8) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}

// ConvertF32U8 narrows an f32 row to u8 with round-to-nearest and clamp to
// [0,255]; unclamped float outputs must call this only for u8-format
// producers (spec.md §4.5 numerical semantics).
func ConvertF32U8(dst []uint8, src []float32) {
	for i, v := range src {
		r := float32(math.Round(float64(v)))
		switch {
		case r <= 0:
			dst[i] = 0
		case r >= 255:
			dst[i] = 255
		default:
			dst[i] = uint8(r)
		}
	}
}
