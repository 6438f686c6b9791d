package im2col

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/im2col/internal/parallel"
)

// TestSpread_Basic checks the column layout for a 3x3 image and 2x2 kernel.
func TestSpread_Basic(t *testing.T) {
	// 1 2 3
	// 4 5 6
	// 7 8 9
	g := Square(1, 3, 3, 2, 0, 1)
	img := arange[float32](9)
	col := make([]float32, g.ColumnLen())

	require.NoError(t, Spread(col, img, g))

	want := []float32{
		1, 2, 4, 5,
		2, 3, 5, 6,
		4, 5, 7, 8,
		5, 6, 8, 9,
	}
	if diff := cmp.Diff(want, col); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

// TestSpread_ChannelLast checks that the channel index varies slower than
// the kernel offsets but within a single row.
func TestSpread_ChannelLast(t *testing.T) {
	g := Geometry{Channels: 2, Height: 2, Width: 3, KernelH: 1, KernelW: 2, StrideH: 1, StrideW: 1}
	// channel 0: 1 2 3 / 4 5 6, channel 1: 7 8 9 / 10 11 12
	img := arange[int](12)
	col := make([]int, g.ColumnLen())

	require.NoError(t, Spread(col, img, g))

	want := []int{
		1, 2, 7, 8,
		2, 3, 8, 9,
		4, 5, 10, 11,
		5, 6, 11, 12,
	}
	assert.Equal(t, want, col)
}

// TestSpread_PaddedOnes is the 4x4 all-ones image with a 3x3 kernel, pad 1, stride 1.
func TestSpread_PaddedOnes(t *testing.T) {
	g := Square(1, 4, 4, 3, 1, 1)
	require.Equal(t, 4, g.OutHeight())
	require.Equal(t, 4, g.OutWidth())
	require.Equal(t, 9, g.ColChannels())

	img := filled[float64](g.ImageLen(), 1)
	col := filled[float64](g.ColumnLen(), -1)
	require.NoError(t, Spread(col, img, g))

	zeros := func(h, w int) int {
		row := col[(h*4+w)*9 : (h*4+w+1)*9]
		n := 0
		for _, v := range row {
			switch v {
			case 0:
				n++
			case 1:
			default:
				t.Fatalf("row (%d,%d) holds %v", h, w, v)
			}
		}
		return n
	}

	for _, p := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		assert.Equal(t, 0, zeros(p[0], p[1]), "interior row %v", p)
	}
	for _, p := range [][2]int{{0, 0}, {0, 3}, {3, 0}, {3, 3}} {
		assert.Equal(t, 5, zeros(p[0], p[1]), "corner row %v", p)
	}
	for _, p := range [][2]int{{0, 1}, {0, 2}, {1, 0}, {2, 0}, {3, 1}, {3, 2}, {1, 3}, {2, 3}} {
		assert.Equal(t, 3, zeros(p[0], p[1]), "edge row %v", p)
	}
}

func TestSpread_ZeroPadding(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tt := range testGeometries {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.g
			// Offset keeps every image value non-zero so a missed copy shows up.
			img := randomSlice(rng, g.ImageLen())
			for i := range img {
				img[i] += 3
			}
			col := filled[float64](g.ColumnLen(), 42)
			require.NoError(t, Spread(col, img, g))

			rows := g.OutHeight() * g.OutWidth()
			for row := 0; row < rows; row++ {
				for c := 0; c < g.ColChannels(); c++ {
					got := col[row*g.ColChannels()+c]
					if src := sourceIndex(g, row, c); src < 0 {
						require.Zero(t, got, "padding at row %d col %d", row, c)
					} else {
						require.Equal(t, img[src], got, "row %d col %d", row, c)
					}
				}
			}
		})
	}
}

func TestSpread_Generic(t *testing.T) {
	g := Square(2, 3, 3, 2, 1, 2)

	u8 := make([]uint8, g.ColumnLen())
	require.NoError(t, Spread(u8, arange[uint8](g.ImageLen()), g))

	i64 := make([]int64, g.ColumnLen())
	require.NoError(t, Spread(i64, arange[int64](g.ImageLen()), g))

	f32 := make([]float32, g.ColumnLen())
	require.NoError(t, Spread(f32, arange[float32](g.ImageLen()), g))

	for i := range u8 {
		assert.Equal(t, int64(u8[i]), i64[i])
		assert.Equal(t, float32(i64[i]), f32[i])
	}
}

func TestSpread_InvalidShape(t *testing.T) {
	g := Square(1, 4, 4, 3, 1, 1)

	tests := []struct {
		name       string
		g          Geometry
		imgN, colN int
	}{
		{"short image", g, g.ImageLen() - 1, g.ColumnLen()},
		{"long column", g, g.ImageLen(), g.ColumnLen() + 1},
		{"empty column", g, g.ImageLen(), 0},
		{"bad geometry", Geometry{Channels: 1, Height: 4, Width: 4, KernelH: 3, KernelW: 3}, 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := filled[float32](tt.colN, 7)
			err := Spread(col, make([]float32, tt.imgN), tt.g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidShape))
			for _, v := range col {
				require.Equal(t, float32(7), v, "column buffer must be left untouched")
			}

			err = SpreadParallel(col, make([]float32, tt.imgN), tt.g, parallel.DefaultConfig())
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestSpreadParallel_MatchesSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	for _, tt := range testGeometries {
		t.Run(tt.name, func(t *testing.T) {
			img := randomSlice(rng, tt.g.ImageLen())
			want := make([]float64, tt.g.ColumnLen())
			got := filled[float64](tt.g.ColumnLen(), 99)

			require.NoError(t, Spread(want, img, tt.g))
			require.NoError(t, SpreadParallel(got, img, tt.g, cfg))

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("parallel spread mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func BenchmarkSpread(b *testing.B) {
	g := Square(64, 56, 56, 3, 1, 1)
	img := randomSlice(rand.New(rand.NewSource(0)), g.ImageLen())
	col := make([]float64, g.ColumnLen())

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Spread(col, img, g)
		}
	})

	b.Run("parallel", func(b *testing.B) {
		cfg := parallel.DefaultConfig()
		for i := 0; i < b.N; i++ {
			_ = SpreadParallel(col, img, g, cfg)
		}
	})
}
