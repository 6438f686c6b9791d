// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package im2col

import (
	"github.com/born-ml/im2col/internal/im2col"
	"github.com/born-ml/im2col/internal/parallel"
	"github.com/born-ml/im2col/internal/tensor"
)

// Numeric is the constraint for element types: all Go integer and float types.
type Numeric = tensor.Numeric

// Shape represents the logical dimensions of a flat row-major buffer.
type Shape = tensor.Shape

// Geometry describes an image and the sliding window applied to it.
type Geometry = im2col.Geometry

// Config controls how the parallel entry points split work.
type Config = parallel.Config

// ErrInvalidShape is wrapped by every error about an unusable Geometry or
// a buffer of the wrong length.
var ErrInvalidShape = im2col.ErrInvalidShape

// Square builds a Geometry with equal kernel, padding and stride in both axes.
func Square(channels, height, width, kernel, pad, stride int) Geometry {
	return im2col.Square(channels, height, width, kernel, pad, stride)
}

// DefaultConfig returns a Config with one worker per CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// ConfigFromEnv returns DefaultConfig adjusted by IM2COL_WORKERS and IM2COL_SEQUENTIAL.
func ConfigFromEnv() Config {
	return parallel.FromEnv()
}

// Spread writes the column matrix of img into col.
// len(img) must be g.ImageLen() and len(col) g.ColumnLen().
func Spread[T Numeric](col, img []T, g Geometry) error {
	return im2col.Spread(col, img, g)
}

// SpreadParallel is Spread with output rows split across workers.
func SpreadParallel[T Numeric](col, img []T, g Geometry, cfg Config) error {
	return im2col.SpreadParallel(col, img, g, cfg)
}

// Gather zeroes img and accumulates col into it; the adjoint of Spread.
func Gather[T Numeric](img, col []T, g Geometry) error {
	return im2col.Gather(img, col, g)
}

// GatherParallel is Gather partitioned by destination row, so overlapping
// windows never race.
func GatherParallel[T Numeric](img, col []T, g Geometry, cfg Config) error {
	return im2col.GatherParallel(img, col, g, cfg)
}
