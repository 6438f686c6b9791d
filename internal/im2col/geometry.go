// Package im2col implements the channel-last image-to-column transform
// (Spread) and its adjoint (Gather) used to express 2-D convolution as a
// single dense matrix multiply.
//
// Layouts:
//   - image:   [Channels, Height, Width], width fastest
//   - columns: [OutHeight*OutWidth, Channels*KernelH*KernelW], the
//     (channel, kernel row, kernel col) index fastest, so every row is one
//     receptive field ready for a GEMM row
package im2col

import (
	"fmt"
	"math"

	"github.com/born-ml/im2col/internal/tensor"
)

// Geometry describes an image and the sliding window applied to it.
type Geometry struct {
	Channels int
	Height   int
	Width    int
	KernelH  int
	KernelW  int
	PadH     int
	PadW     int
	StrideH  int
	StrideW  int
}

// Square builds a Geometry with equal kernel, padding and stride in both axes.
func Square(channels, height, width, kernel, pad, stride int) Geometry {
	return Geometry{
		Channels: channels,
		Height:   height,
		Width:    width,
		KernelH:  kernel,
		KernelW:  kernel,
		PadH:     pad,
		PadW:     pad,
		StrideH:  stride,
		StrideW:  stride,
	}
}

// OutHeight returns (Height + 2*PadH - KernelH) / StrideH + 1 using truncating division.
func (g Geometry) OutHeight() int {
	return (g.Height+2*g.PadH-g.KernelH)/g.StrideH + 1
}

// OutWidth returns (Width + 2*PadW - KernelW) / StrideW + 1 using truncating division.
func (g Geometry) OutWidth() int {
	return (g.Width+2*g.PadW-g.KernelW)/g.StrideW + 1
}

// ColChannels is the length of one column row: Channels*KernelH*KernelW.
func (g Geometry) ColChannels() int {
	return g.Channels * g.KernelH * g.KernelW
}

// ColumnLen is the number of elements in the column matrix.
func (g Geometry) ColumnLen() int {
	return g.OutHeight() * g.OutWidth() * g.ColChannels()
}

// ImageLen is the number of elements in the image.
func (g Geometry) ImageLen() int {
	return g.Channels * g.Height * g.Width
}

// ColumnShape returns the logical [OutHeight*OutWidth, ColChannels] shape.
func (g Geometry) ColumnShape() tensor.Shape {
	return tensor.Shape{g.OutHeight() * g.OutWidth(), g.ColChannels()}
}

// ImageShape returns the logical [Channels, Height, Width] shape.
func (g Geometry) ImageShape() tensor.Shape {
	return tensor.Shape{g.Channels, g.Height, g.Width}
}

// Validate checks that every dimension is usable, that the kernel fits
// the padded image at least once in each axis, and that the image and
// column buffer lengths are representable as int.
func (g Geometry) Validate() error {
	dims := []struct {
		name  string
		value int
	}{
		{"channels", g.Channels},
		{"height", g.Height},
		{"width", g.Width},
		{"kernel_h", g.KernelH},
		{"kernel_w", g.KernelW},
		{"stride_h", g.StrideH},
		{"stride_w", g.StrideW},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s=%d (must be > 0)", ErrInvalidShape, d.name, d.value)
		}
	}
	if g.PadH < 0 || g.PadW < 0 {
		return fmt.Errorf("%w: pad_h=%d pad_w=%d (must be >= 0)", ErrInvalidShape, g.PadH, g.PadW)
	}
	if g.PadH > (math.MaxInt-g.Height)/2 || g.PadW > (math.MaxInt-g.Width)/2 {
		return fmt.Errorf("%w: padding pad_h=%d pad_w=%d overflows int", ErrInvalidShape, g.PadH, g.PadW)
	}
	if g.KernelH > g.Height+2*g.PadH {
		return fmt.Errorf("%w: kernel_h=%d exceeds padded height %d", ErrInvalidShape, g.KernelH, g.Height+2*g.PadH)
	}
	if g.KernelW > g.Width+2*g.PadW {
		return fmt.Errorf("%w: kernel_w=%d exceeds padded width %d", ErrInvalidShape, g.KernelW, g.Width+2*g.PadW)
	}
	if err := g.ImageShape().Validate(); err != nil {
		return fmt.Errorf("%w: image %w", ErrInvalidShape, err)
	}
	cols := tensor.Shape{g.OutHeight(), g.OutWidth(), g.Channels, g.KernelH, g.KernelW}
	if err := cols.Validate(); err != nil {
		return fmt.Errorf("%w: columns %w", ErrInvalidShape, err)
	}
	return nil
}

// check validates g and the lengths of both buffers.
func (g Geometry) check(imgLen, colLen int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if imgLen != g.ImageLen() {
		return fmt.Errorf("%w: image buffer has %d elements, geometry %v needs %d",
			ErrInvalidShape, imgLen, g.ImageShape(), g.ImageLen())
	}
	if colLen != g.ColumnLen() {
		return fmt.Errorf("%w: column buffer has %d elements, geometry %v needs %d",
			ErrInvalidShape, colLen, g.ColumnShape(), g.ColumnLen())
	}
	return nil
}

// Covering returns how many window rows and window columns cover image
// pixel (y, x). Their product is the number of windows that read the pixel.
func (g Geometry) Covering(y, x int) (rows, cols int) {
	return covering(y, g.PadH, g.KernelH, g.StrideH, g.OutHeight()),
		covering(x, g.PadW, g.KernelW, g.StrideW, g.OutWidth())
}

func covering(pos, pad, kernel, stride, out int) int {
	n := 0
	for o := 0; o < out; o++ {
		if off := pos + pad - o*stride; off >= 0 && off < kernel {
			n++
		}
	}
	return n
}
