package models

import (
	"gonum.org/v1/gonum/stat"

	"crossfold/domain/core"
)

// Scaler standardizes columns to zero mean and unit variance. Statistics
// are computed from training rows only; applying the scaler to held-out
// rows reuses the training statistics, never recomputes them.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes column statistics from the given rows
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	p := len(x[0])

	means := make([]float64, p)
	stds := make([]float64, p)
	column := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i, row := range x {
			column[i] = row[j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		means[j] = mean
		// Constant columns scale by 1 so they pass through centered
		if !(std > 1e-12) {
			std = 1
		}
		stds[j] = std
	}

	return &Scaler{Means: means, Stds: stds}, nil
}

// Transform standardizes rows using the fitted statistics
func (s *Scaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = (v - s.Means[j]) / s.Stds[j]
		}
	}
	return out
}
