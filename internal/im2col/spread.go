package im2col

import (
	"github.com/born-ml/im2col/internal/parallel"
	"github.com/born-ml/im2col/internal/tensor"
)

// Spread rearranges img into col so that convolution becomes one matrix
// multiply against a [outChannels, ColChannels] weight matrix.
//
// Row h*OutWidth+w of col holds the receptive field of output pixel (h, w);
// column c = (cIm*KernelH + hOff)*KernelW + wOff holds
// img[cIm, h*StrideH-PadH+hOff, w*StrideW-PadW+wOff], or zero where that
// coordinate falls in the padding. Every element of col is written.
//
// img must have g.ImageLen() elements and col g.ColumnLen(); otherwise
// Spread returns an error wrapping ErrInvalidShape and leaves col untouched.
func Spread[T tensor.Numeric](col, img []T, g Geometry) error {
	if err := g.check(len(img), len(col)); err != nil {
		return err
	}
	spreadRows(col, img, g, 0, g.OutHeight()*g.OutWidth())
	return nil
}

// SpreadParallel is Spread with output rows split across workers. Rows are
// disjoint, so no synchronisation beyond the final join is needed.
func SpreadParallel[T tensor.Numeric](col, img []T, g Geometry, cfg parallel.Config) error {
	if err := g.check(len(img), len(col)); err != nil {
		return err
	}
	parallel.ForRange(g.OutHeight()*g.OutWidth(), func(start, end int) {
		spreadRows(col, img, g, start, end)
	}, cfg)
	return nil
}

// spreadRows fills column rows [start, end).
func spreadRows[T tensor.Numeric](col, img []T, g Geometry, start, end int) {
	outW := g.OutWidth()
	colCh := g.ColChannels()
	plane := g.Height * g.Width

	for row := start; row < end; row++ {
		h, w := row/outW, row%outW
		hStart := h*g.StrideH - g.PadH
		wStart := w*g.StrideW - g.PadW

		// Pre-slice the row so the inner loop needs a single bounds check.
		dst := col[row*colCh : (row+1)*colCh]
		c := 0
		for cIm := 0; cIm < g.Channels; cIm++ {
			src := img[cIm*plane : (cIm+1)*plane]
			for hOff := 0; hOff < g.KernelH; hOff++ {
				hPad := hStart + hOff
				if hPad < 0 || hPad >= g.Height {
					clear(dst[c : c+g.KernelW])
					c += g.KernelW
					continue
				}
				for wOff := 0; wOff < g.KernelW; wOff++ {
					wPad := wStart + wOff
					if wPad >= 0 && wPad < g.Width {
						dst[c] = src[hPad*g.Width+wPad]
					} else {
						dst[c] = 0
					}
					c++
				}
			}
		}
	}
}
