package im2col

import (
	"math/rand"

	"github.com/born-ml/im2col/internal/tensor"
)

func randomSlice(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.Float64()*2 - 1
	}
	return s
}

func randomInts[T tensor.Numeric](rng *rand.Rand, n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(rng.Intn(19) - 9)
	}
	return s
}

func arange[T tensor.Numeric](n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(i + 1)
	}
	return s
}

func filled[T tensor.Numeric](n int, v T) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// sourceIndex mirrors the reference indexing for column entry (row, c):
// the flat image index it reads, or -1 when it falls in the padding.
func sourceIndex(g Geometry, row, c int) int {
	h, w := row/g.OutWidth(), row%g.OutWidth()
	wOff := c % g.KernelW
	hOff := (c / g.KernelW) % g.KernelH
	cIm := c / g.KernelH / g.KernelW
	hPad := h*g.StrideH - g.PadH + hOff
	wPad := w*g.StrideW - g.PadW + wOff
	if hPad < 0 || hPad >= g.Height || wPad < 0 || wPad >= g.Width {
		return -1
	}
	return (cIm*g.Height+hPad)*g.Width + wPad
}

// testGeometries mixes padding, strides below, equal to and above the
// kernel extent, rectangular kernels and several channels.
var testGeometries = []struct {
	name string
	g    Geometry
}{
	{"1ch 4x4 k3 p1 s1", Square(1, 4, 4, 3, 1, 1)},
	{"3ch 5x5 k3 p0 s1", Square(3, 5, 5, 3, 0, 1)},
	{"2ch 7x7 k3 p1 s2", Square(2, 7, 7, 3, 1, 2)},
	{"2ch 6x6 k2 p0 s2", Square(2, 6, 6, 2, 0, 2)},
	{"1ch 8x8 k2 p0 s3", Square(1, 8, 8, 2, 0, 3)},
	{"4ch 9x6 k3x2 p(2,1) s(2,1)", Geometry{Channels: 4, Height: 9, Width: 6, KernelH: 3, KernelW: 2, PadH: 2, PadW: 1, StrideH: 2, StrideW: 1}},
	{"1ch 3x3 k5 p2 s1", Square(1, 3, 3, 5, 2, 1)},
	{"1ch 7x7 k2 p0 s2 trailing row", Square(1, 7, 7, 2, 0, 2)},
}
