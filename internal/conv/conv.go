// Package conv expresses a single-image 2-D convolution and its gradients as
// Spread/Gather plus one GEMM each.
//
// Buffers:
//   - image:  [Channels, Height, Width]
//   - weight: [OutChannels, Channels, KernelH, KernelW], i.e. [OutChannels, ColChannels]
//   - output: [OutHeight*OutWidth, OutChannels], one row per output pixel
package conv

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/im2col/internal/im2col"
	"github.com/born-ml/im2col/internal/parallel"
	"github.com/born-ml/im2col/internal/tensor"
)

// Layer holds the geometry of one convolution. It keeps no tensors, so a
// Layer is safe for concurrent use.
type Layer struct {
	Geometry    im2col.Geometry
	OutChannels int
	Parallel    parallel.Config
}

// NewLayer validates the geometry and returns a layer using cfg for the
// layout transforms.
func NewLayer(g im2col.Geometry, outChannels int, cfg parallel.Config) (*Layer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if outChannels <= 0 {
		return nil, fmt.Errorf("%w: out_channels=%d (must be > 0)", im2col.ErrInvalidShape, outChannels)
	}
	for _, s := range []tensor.Shape{
		{outChannels, g.ColChannels()},
		{g.OutHeight() * g.OutWidth(), outChannels},
	} {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: out_channels=%d %w", im2col.ErrInvalidShape, outChannels, err)
		}
	}
	return &Layer{Geometry: g, OutChannels: outChannels, Parallel: cfg}, nil
}

// Pixels is the number of output pixels, OutHeight*OutWidth.
func (l *Layer) Pixels() int {
	return l.Geometry.OutHeight() * l.Geometry.OutWidth()
}

// WeightLen is the number of elements in the weight buffer.
func (l *Layer) WeightLen() int {
	return l.OutChannels * l.Geometry.ColChannels()
}

// OutputLen is the number of elements in the output buffer.
func (l *Layer) OutputLen() int {
	return l.Pixels() * l.OutChannels
}

// OutputShape returns the logical [OutHeight*OutWidth, OutChannels] shape.
func (l *Layer) OutputShape() tensor.Shape {
	return tensor.Shape{l.Pixels(), l.OutChannels}
}

func (l *Layer) checkLen(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s buffer has %d elements, want %d", im2col.ErrInvalidShape, what, got, want)
	}
	return nil
}

// Forward computes out = Spread(img) * weightᵀ.
func Forward[T tensor.Float](l *Layer, img, weight []T) ([]T, error) {
	if err := l.checkLen("weight", len(weight), l.WeightLen()); err != nil {
		return nil, err
	}

	g := l.Geometry
	cols := make([]T, g.ColumnLen())
	if err := im2col.SpreadParallel(cols, img, g, l.Parallel); err != nil {
		return nil, err
	}

	out := make([]T, l.OutputLen())
	gemm(blas.NoTrans, blas.Trans,
		matrix[T]{l.Pixels(), g.ColChannels(), cols},
		matrix[T]{l.OutChannels, g.ColChannels(), weight},
		matrix[T]{l.Pixels(), l.OutChannels, out})
	return out, nil
}

// InputBackward computes the gradient with respect to the image:
// Gather(gradOut * weight).
func InputBackward[T tensor.Float](l *Layer, gradOut, weight []T) ([]T, error) {
	if err := l.checkLen("weight", len(weight), l.WeightLen()); err != nil {
		return nil, err
	}
	if err := l.checkLen("output gradient", len(gradOut), l.OutputLen()); err != nil {
		return nil, err
	}

	g := l.Geometry
	gradCols := make([]T, g.ColumnLen())
	gemm(blas.NoTrans, blas.NoTrans,
		matrix[T]{l.Pixels(), l.OutChannels, gradOut},
		matrix[T]{l.OutChannels, g.ColChannels(), weight},
		matrix[T]{l.Pixels(), g.ColChannels(), gradCols})

	gradImg := make([]T, g.ImageLen())
	if err := im2col.GatherParallel(gradImg, gradCols, g, l.Parallel); err != nil {
		return nil, err
	}
	return gradImg, nil
}

// WeightBackward computes the gradient with respect to the weights:
// gradOutᵀ * Spread(img).
func WeightBackward[T tensor.Float](l *Layer, img, gradOut []T) ([]T, error) {
	if err := l.checkLen("output gradient", len(gradOut), l.OutputLen()); err != nil {
		return nil, err
	}

	g := l.Geometry
	cols := make([]T, g.ColumnLen())
	if err := im2col.SpreadParallel(cols, img, g, l.Parallel); err != nil {
		return nil, err
	}

	gradW := make([]T, l.WeightLen())
	gemm(blas.Trans, blas.NoTrans,
		matrix[T]{l.Pixels(), l.OutChannels, gradOut},
		matrix[T]{l.Pixels(), g.ColChannels(), cols},
		matrix[T]{l.OutChannels, g.ColChannels(), gradW})
	return gradW, nil
}
