package phenograph

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrNoPredecessors indicates Diffuse was called without any incoming colors.
var ErrNoPredecessors = errors.New("phenograph: diffusion needs at least one predecessor")

// Diffuse combines the colors of a vertex's predecessors into the vertex's
// own color, weighting each predecessor by the share of every feature
// dimension its edge carries:
//
//	out[:, j] = sum_e colors[e][:, j] * feats[e][j] / sum_e feats[e][j]
//
// Dimensions are independent. A dimension whose features sum to exactly
// zero carries no attribution and its column is zero.
func Diffuse(colors []ColorMatrix, feats [][]float64) (ColorMatrix, error) {
	if len(colors) == 0 {
		return ColorMatrix{}, ErrNoPredecessors
	}
	if len(colors) != len(feats) {
		return ColorMatrix{}, fmt.Errorf("%w: %d colors for %d feature vectors", ErrShapeMismatch, len(colors), len(feats))
	}

	rows, cols := colors[0].Dims()
	out := NewColorMatrix(rows, cols)
	total := make([]float64, cols)
	weighted := make([]float64, cols)

	for e, color := range colors {
		r, c := color.Dims()
		if r != rows || c != cols {
			return ColorMatrix{}, fmt.Errorf("%w: color %d is %dx%d, want %dx%d", ErrShapeMismatch, e, r, c, rows, cols)
		}
		if len(feats[e]) != cols {
			return ColorMatrix{}, fmt.Errorf("%w: feature %d has %d entries, want %d", ErrShapeMismatch, e, len(feats[e]), cols)
		}
		floats.Add(total, feats[e])
		for i := 0; i < rows; i++ {
			floats.MulTo(weighted, color.row(i), feats[e])
			floats.Add(out.row(i), weighted)
		}
	}

	for i := 0; i < rows; i++ {
		row := out.row(i)
		for j, t := range total {
			if t == 0 {
				row[j] = 0
				continue
			}
			row[j] /= t
		}
	}
	return out, nil
}
