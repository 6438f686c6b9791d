// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package im2col provides the channel-last image-to-column transform and its
// adjoint, the two layout kernels that turn 2-D convolution into a dense
// matrix multiply.
//
// # Overview
//
//   - Spread (im2col): [C, H, W] image -> [OutH*OutW, C*KH*KW] columns
//   - Gather (col2im): columns -> image, the exact transpose of Spread
//   - SpreadParallel / GatherParallel: the same results on several goroutines
//
// Forward convolution is Spread followed by columns * weightᵀ. The gradient
// with respect to the image is gradOut * weight followed by Gather.
//
// # Basic Usage
//
//	g := im2col.Square(1, 4, 4, 3, 1, 1) // 1x4x4 image, 3x3 kernel, pad 1, stride 1
//	cols := make([]float32, g.ColumnLen())
//	if err := im2col.Spread(cols, img, g); err != nil {
//	    return err
//	}
//
// # Padding
//
// Window positions that fall outside the image read zero. This is the
// padding policy, not an error.
//
// # Adjointness
//
// For every image x and column buffer y of matching size,
// <Spread(x), y> == <x, Gather(y)>. Gather is not an inverse: where windows
// overlap, Gather(Spread(x)) scales each pixel by the number of windows
// covering it.
//
// # Errors
//
// A Geometry with non-positive sizes or strides, negative padding, or a
// kernel larger than the padded image, and buffers whose lengths disagree
// with the Geometry, are rejected with an error wrapping ErrInvalidShape
// before any buffer is written.
//
// # Thread Safety
//
// All functions are stateless. Concurrent calls are safe as long as they do
// not share an output buffer.
package im2col
