package im2col

import (
	"github.com/born-ml/im2col/internal/parallel"
	"github.com/born-ml/im2col/internal/tensor"
)

// Gather is the adjoint of Spread: it zeroes img and then adds every column
// entry back onto the image pixel Spread read it from. Entries that Spread
// took from the padding are dropped.
//
// Where windows overlap (stride < kernel) a pixel receives one contribution
// per covering window, so Gather(Spread(x)) is x scaled by the cover count,
// not x. For all x and g, <Spread(x), g> == <x, Gather(g)>.
//
// Buffer requirements and errors match Spread.
func Gather[T tensor.Numeric](img, col []T, g Geometry) error {
	if err := g.check(len(img), len(col)); err != nil {
		return err
	}

	clear(img)

	outH, outW := g.OutHeight(), g.OutWidth()
	colCh := g.ColChannels()
	for c := 0; c < colCh; c++ {
		wOff := c % g.KernelW
		hOff := (c / g.KernelW) % g.KernelH
		cIm := c / g.KernelH / g.KernelW
		dst := img[cIm*g.Height*g.Width : (cIm+1)*g.Height*g.Width]

		for h := 0; h < outH; h++ {
			hPad := h*g.StrideH - g.PadH + hOff
			if hPad < 0 || hPad >= g.Height {
				continue
			}
			for w := 0; w < outW; w++ {
				wPad := w*g.StrideW - g.PadW + wOff
				if wPad >= 0 && wPad < g.Width {
					dst[hPad*g.Width+wPad] += col[(h*outW+w)*colCh+c]
				}
			}
		}
	}
	return nil
}

// GatherParallel computes the same result as Gather on several goroutines.
//
// Scattering column entries from several workers would race: with
// overlapping windows two patch indices land on the same pixel. Instead the
// work is split by destination image row (cIm, y), and each pixel pulls the
// entries of every window that covers it. Each image element is written by
// exactly one worker, once, and contributions are summed in the same
// (hOff, wOff) order Gather uses, so results are bit-identical.
func GatherParallel[T tensor.Numeric](img, col []T, g Geometry, cfg parallel.Config) error {
	if err := g.check(len(img), len(col)); err != nil {
		return err
	}
	parallel.ForRange(g.Channels*g.Height, func(start, end int) {
		gatherRows(img, col, g, start, end)
	}, cfg)
	return nil
}

// gatherRows computes image rows [start, end), indexing rows as cIm*Height+y.
func gatherRows[T tensor.Numeric](img, col []T, g Geometry, start, end int) {
	outH, outW := g.OutHeight(), g.OutWidth()
	colCh := g.ColChannels()

	for row := start; row < end; row++ {
		cIm, y := row/g.Height, row%g.Height
		dst := img[row*g.Width : (row+1)*g.Width]

		for x := range dst {
			var sum T
			for hOff := 0; hOff < g.KernelH; hOff++ {
				hs := y + g.PadH - hOff
				if hs < 0 || hs%g.StrideH != 0 || hs/g.StrideH >= outH {
					continue
				}
				h := hs / g.StrideH
				for wOff := 0; wOff < g.KernelW; wOff++ {
					ws := x + g.PadW - wOff
					if ws < 0 || ws%g.StrideW != 0 || ws/g.StrideW >= outW {
						continue
					}
					w := ws / g.StrideW
					c := (cIm*g.KernelH+hOff)*g.KernelW + wOff
					sum += col[(h*outW+w)*colCh+c]
				}
			}
			dst[x] = sum
		}
	}
}
