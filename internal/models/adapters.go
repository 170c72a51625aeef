package models

import (
	"crossfold/ports"
)

// PLSRegressor adapts FitPLS to the RegressorPort interface
type PLSRegressor struct{}

func (PLSRegressor) Fit(x [][]float64, y []float64, complexity int) (ports.RegressionFit, error) {
	return FitPLS(x, y, complexity)
}

// PCAFactorizer adapts FitPCA to the FactorizerPort interface
type PCAFactorizer struct{}

func (PCAFactorizer) Fit(x [][]float64, complexity int) (ports.FactorizationFit, error) {
	return FitPCA(x, complexity)
}
