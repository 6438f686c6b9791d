// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package conv is a reference 2-D convolution built from im2col.Spread,
// im2col.Gather and gonum's GEMM. It shows the intended calling convention
// and is what the layout transforms are tested against.
//
// Example:
//
//	l, err := conv.NewLayer(im2col.Square(3, 32, 32, 3, 1, 1), 16, im2col.DefaultConfig())
//	out, err := conv.Forward(l, img, weight)         // [32*32, 16]
//	dx, err := conv.InputBackward(l, gradOut, weight) // [3, 32, 32]
package conv

import (
	"github.com/born-ml/im2col"
	"github.com/born-ml/im2col/internal/conv"
	"github.com/born-ml/im2col/internal/tensor"
)

// Float is the constraint for element types with a GEMM: float32 and float64.
type Float = tensor.Float

// Layer holds the geometry of one convolution.
type Layer = conv.Layer

// NewLayer validates g and returns a layer with outChannels filters.
func NewLayer(g im2col.Geometry, outChannels int, cfg im2col.Config) (*Layer, error) {
	return conv.NewLayer(g, outChannels, cfg)
}

// Forward computes the [OutH*OutW, OutChannels] output for one image.
func Forward[T Float](l *Layer, img, weight []T) ([]T, error) {
	return conv.Forward(l, img, weight)
}

// InputBackward computes the gradient with respect to the image.
func InputBackward[T Float](l *Layer, gradOut, weight []T) ([]T, error) {
	return conv.InputBackward(l, gradOut, weight)
}

// WeightBackward computes the gradient with respect to the weights.
func WeightBackward[T Float](l *Layer, img, gradOut []T) ([]T, error) {
	return conv.WeightBackward(l, img, gradOut)
}
