package conv

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/im2col/internal/tensor"
)

// matrix is a row-major view over a flat buffer, stride == cols.
type matrix[T tensor.Float] struct {
	rows, cols int
	data       []T
}

// gemm computes c = op(a) * op(b), overwriting c, on gonum's pure Go BLAS.
func gemm[T tensor.Float](tA, tB blas.Transpose, a, b, c matrix[T]) {
	switch cd := any(c.data).(type) {
	case []float32:
		blas32.Gemm(tA, tB, 1,
			blas32.General{Rows: a.rows, Cols: a.cols, Stride: a.cols, Data: any(a.data).([]float32)},
			blas32.General{Rows: b.rows, Cols: b.cols, Stride: b.cols, Data: any(b.data).([]float32)},
			0,
			blas32.General{Rows: c.rows, Cols: c.cols, Stride: c.cols, Data: cd})
	case []float64:
		blas64.Gemm(tA, tB, 1,
			blas64.General{Rows: a.rows, Cols: a.cols, Stride: a.cols, Data: any(a.data).([]float64)},
			blas64.General{Rows: b.rows, Cols: b.cols, Stride: b.cols, Data: any(b.data).([]float64)},
			0,
			blas64.General{Rows: c.rows, Cols: c.cols, Stride: c.cols, Data: cd})
	}
}
