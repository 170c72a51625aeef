package ports

// RegressorPort fits a latent-component regression model at a fixed
// complexity. Fit must only ever see training rows; leakage prevention
// is the caller's contract, statelessness is the implementation's.
type RegressorPort interface {
	Fit(x [][]float64, y []float64, complexity int) (RegressionFit, error)
}

// RegressionFit is a fitted model ready to predict held-out rows
type RegressionFit interface {
	Predict(rows [][]float64) []float64
	Complexity() int
}

// FactorizerPort fits a rank-limited factorization of a matrix block,
// used by bi-cross-validation.
type FactorizerPort interface {
	Fit(x [][]float64, complexity int) (FactorizationFit, error)
}

// FactorizationFit exposes the reduced representation of a fitted block
type FactorizationFit interface {
	// Project maps rows into the reduced score space
	Project(rows [][]float64) [][]float64
	// Reconstruct maps rows through the reduced space and back
	Reconstruct(rows [][]float64) [][]float64
	Complexity() int
}
