package phenograph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixFromRows(t *testing.T, rows ...[]float64) ColorMatrix {
	t.Helper()
	c := NewColorMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		require.Len(t, row, len(rows[0]))
		copy(c.row(i), row)
	}
	return c
}

func TestDiffuseWeightsByFeatureShare(t *testing.T) {
	a := matrixFromRows(t, []float64{1, 1}, []float64{0, 0})
	d := matrixFromRows(t, []float64{0, 0}, []float64{1, 1})

	out, err := Diffuse([]ColorMatrix{a, d}, [][]float64{{3, 1}, {1, 3}})
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0.75, 0.25}, {0.25, 0.75}}, out.Rows())
	assert.Equal(t, []float64{1, 1}, out.ColumnSums())
}

func TestDiffuseZeroTotalColumn(t *testing.T) {
	a := matrixFromRows(t, []float64{1, 1})
	d := matrixFromRows(t, []float64{1, 1})

	out, err := Diffuse([]ColorMatrix{a, d}, [][]float64{{2, 0}, {2, 0}})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0}, out.Row(0))
}

func TestDiffuseCancellingFeatures(t *testing.T) {
	// Opposite charges sum to zero, so the column carries no attribution
	// rather than dividing by zero.
	a := matrixFromRows(t, []float64{1})
	d := matrixFromRows(t, []float64{0})

	out, err := Diffuse([]ColorMatrix{a, d}, [][]float64{{1}, {-1}})
	require.NoError(t, err)
	assert.True(t, out.IsZero())
}

func TestDiffuseErrors(t *testing.T) {
	one := NewColorMatrix(1, 1)
	wide := NewColorMatrix(1, 2)

	tests := []struct {
		name   string
		colors []ColorMatrix
		feats  [][]float64
		want   error
	}{
		{name: "no predecessors", want: ErrNoPredecessors},
		{name: "count mismatch", colors: []ColorMatrix{one}, feats: [][]float64{{1}, {1}}, want: ErrShapeMismatch},
		{name: "color shape", colors: []ColorMatrix{one, wide}, feats: [][]float64{{1}, {1}}, want: ErrShapeMismatch},
		{name: "feature width", colors: []ColorMatrix{one}, feats: [][]float64{{1, 2}}, want: ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Diffuse(tt.colors, tt.feats)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestColorMatrixAccessorsCopy(t *testing.T) {
	c := oneHot(2, 3, 1)

	row := c.Row(1)
	row[0] = 42
	assert.Equal(t, 1.0, c.At(1, 0))

	rows, cols := c.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{1, 1, 1}, c.ColumnSums())
	assert.True(t, c.Equal(oneHot(2, 3, 1)))
	assert.False(t, c.Equal(oneHot(2, 3, 0)))
	assert.False(t, c.Equal(oneHot(3, 2, 1)))
	assert.True(t, c.EqualApprox(oneHot(2, 3, 1), 1e-12))
	assert.True(t, NewColorMatrix(2, 2).IsZero())
}
