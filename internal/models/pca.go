package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"crossfold/domain/core"
)

// PCA is a truncated principal component factorization fit on training
// rows. Loadings are the top components of the thin SVD of the centered
// training matrix, matching the conventional sample-PCA decomposition.
type PCA struct {
	k     int
	means []float64
	// components is p x k; column a is the a-th principal axis
	components *mat.Dense
}

// FitPCA fits a rank-limited PCA on the given rows. Complexity 0 is a
// valid model: it reconstructs every row as the training column means.
func FitPCA(x [][]float64, complexity int) (*PCA, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if complexity < 0 {
		return nil, fmt.Errorf("%w: negative complexity %d", core.ErrInvalidComplexity, complexity)
	}
	n, p := len(x), len(x[0])

	means := make([]float64, p)
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}

	model := &PCA{k: complexity, means: means}
	if complexity == 0 {
		return model, nil
	}

	maxRank := min(n, p)
	if complexity > maxRank {
		return nil, core.NewFitError(complexity, core.ErrRankDeficient)
	}

	centered := mat.NewDense(n, p, nil)
	for i, row := range x {
		for j, v := range row {
			centered.Set(i, j, v-means[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThinV); !ok {
		return nil, core.NewFitError(complexity, fmt.Errorf("SVD did not converge"))
	}

	var v mat.Dense
	svd.VTo(&v)
	model.components = v.Slice(0, p, 0, complexity).(*mat.Dense)

	return model, nil
}

// Complexity returns the number of retained components
func (m *PCA) Complexity() int {
	return m.k
}

// Project maps rows into the k-dimensional score space
func (m *PCA) Project(rows [][]float64) [][]float64 {
	scores := make([][]float64, len(rows))
	for i, row := range rows {
		scores[i] = make([]float64, m.k)
		for a := 0; a < m.k; a++ {
			s := 0.0
			for j, v := range row {
				s += (v - m.means[j]) * m.components.At(j, a)
			}
			scores[i][a] = s
		}
	}
	return scores
}

// Reconstruct maps rows through the score space and back to the
// original coordinates.
func (m *PCA) Reconstruct(rows [][]float64) [][]float64 {
	scores := m.Project(rows)
	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = make([]float64, len(m.means))
		copy(out[i], m.means)
		for a := 0; a < m.k; a++ {
			for j := range out[i] {
				out[i][j] += scores[i][a] * m.components.At(j, a)
			}
		}
	}
	return out
}
