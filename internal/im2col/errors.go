package im2col

import "errors"

// ErrInvalidShape reports a geometry or buffer length that violates the
// output-size formulas. Every transform returns it, wrapped with details,
// before writing to any buffer.
var ErrInvalidShape = errors.New("invalid shape")
