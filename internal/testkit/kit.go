// Package testkit provides seeded synthetic datasets for tests and the
// demo command. All generators draw from explicit seeds only.
package testkit

import (
	"fmt"
	"math/rand"

	"crossfold/domain/core"
	"crossfold/domain/dataset"
)

// LowRankMatrix generates an n x p matrix of rank at most r plus
// gaussian noise with the given standard deviation.
func LowRankMatrix(n, p, r int, noise float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))

	left := make([][]float64, n)
	for i := range left {
		left[i] = make([]float64, r)
		for a := range left[i] {
			left[i][a] = rng.NormFloat64()
		}
	}
	right := make([][]float64, r)
	for a := range right {
		right[a] = make([]float64, p)
		for j := range right[a] {
			right[a][j] = rng.NormFloat64()
		}
	}

	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, p)
		for j := range x[i] {
			s := 0.0
			for a := 0; a < r; a++ {
				s += left[i][a] * right[a][j]
			}
			x[i][j] = s + noise*rng.NormFloat64()
		}
	}
	return x
}

// LinearResponse generates y = X*beta + eps with seeded coefficients.
// The derived seed keeps the response stream independent of the matrix.
func LinearResponse(x [][]float64, noise float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(core.DeriveSeed(seed, "response")))
	if len(x) == 0 {
		return nil
	}
	p := len(x[0])
	beta := make([]float64, p)
	for j := range beta {
		beta[j] = rng.NormFloat64()
	}
	y := make([]float64, len(x))
	for i, row := range x {
		s := 0.0
		for j, v := range row {
			s += beta[j] * v
		}
		y[i] = s + noise*rng.NormFloat64()
	}
	return y
}

// SyntheticBundle builds an unsupervised bundle around a low-rank matrix
func SyntheticBundle(n, p, r int, noise float64, seed int64) (*dataset.MatrixBundle, error) {
	x := LowRankMatrix(n, p, r, noise, seed)
	return dataset.NewMatrixBundle(matrixOf(x), nil, "synthetic")
}

// SupervisedBundle builds a supervised bundle with a seeded linear response
func SupervisedBundle(n, p, r int, noise float64, seed int64) (*dataset.MatrixBundle, error) {
	x := LowRankMatrix(n, p, r, noise, seed)
	y := LinearResponse(x, noise, seed)
	return dataset.NewMatrixBundle(matrixOf(x), y, "synthetic")
}

func matrixOf(x [][]float64) dataset.Matrix {
	rowIDs := make([]core.ID, len(x))
	for i := range rowIDs {
		rowIDs[i] = core.ID(fmt.Sprintf("obs_%d", i+1))
	}
	return dataset.Matrix{Data: x, RowIDs: rowIDs}
}
