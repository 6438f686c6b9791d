// Package tensor provides the element-type constraint and logical shapes
// shared by the layout transforms.
package tensor

// Numeric is a constraint for element types the transforms can move and sum.
// The zero value of every member is its additive identity.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Float is the subset of Numeric that has a BLAS implementation.
type Float interface {
	float32 | float64
}
