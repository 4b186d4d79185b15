package phenograph

import "gonum.org/v1/gonum/floats"

// ColorMatrix holds, for one vertex, the fraction of each feature dimension
// (columns) attributable to each basis vertex (rows).
//
// Values are immutable once returned by the engine; accessors copy.
type ColorMatrix struct {
	rows int
	cols int
	data []float64
}

// NewColorMatrix returns an all-zero matrix of the given shape.
func NewColorMatrix(rows, cols int) ColorMatrix {
	return ColorMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func oneHot(rows, cols, index int) ColorMatrix {
	c := NewColorMatrix(rows, cols)
	floats.AddConst(1, c.row(index))
	return c
}

// Dims returns the number of basis rows and feature columns.
func (c ColorMatrix) Dims() (rows, cols int) {
	return c.rows, c.cols
}

// At returns the attribution of feature j to basis vertex i.
func (c ColorMatrix) At(i, j int) float64 {
	return c.data[i*c.cols+j]
}

// Row returns a copy of the attribution row for basis vertex i.
func (c ColorMatrix) Row(i int) []float64 {
	return append([]float64(nil), c.row(i)...)
}

// Rows returns a copy of the matrix as a slice of rows.
func (c ColorMatrix) Rows() [][]float64 {
	out := make([][]float64, c.rows)
	for i := range out {
		out[i] = c.Row(i)
	}
	return out
}

// ColumnSums returns the total attribution of each feature dimension.
func (c ColorMatrix) ColumnSums() []float64 {
	sums := make([]float64, c.cols)
	for i := 0; i < c.rows; i++ {
		floats.Add(sums, c.row(i))
	}
	return sums
}

// IsZero reports whether every entry is zero.
func (c ColorMatrix) IsZero() bool {
	for _, v := range c.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both matrices have the same shape and identical entries.
func (c ColorMatrix) Equal(other ColorMatrix) bool {
	return c.rows == other.rows && c.cols == other.cols && floats.Equal(c.data, other.data)
}

// EqualApprox is Equal with an absolute or relative tolerance per entry.
func (c ColorMatrix) EqualApprox(other ColorMatrix, tol float64) bool {
	return c.rows == other.rows && c.cols == other.cols && floats.EqualApprox(c.data, other.data, tol)
}

func (c ColorMatrix) row(i int) []float64 {
	return c.data[i*c.cols : (i+1)*c.cols]
}

func (c ColorMatrix) add(other ColorMatrix) {
	floats.Add(c.data, other.data)
}
