package evaluate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"crossfold/domain/core"
	"crossfold/domain/cv"
	"crossfold/internal/models"
	"crossfold/ports"
)

// BCVEvaluator scores one (row fold, column fold, complexity) cell of a
// bi-cross-validation sweep. Writing the four blocks of the matrix as
//
//	A = X[held rows, held cols]   B = X[held rows, kept cols]
//	C = X[kept rows, held cols]   D = X[kept rows, kept cols]
//
// the factorization is fit on D alone, held-out rows are projected
// through it from B, held-out columns are regressed on D's scores from
// C, and the error is measured on the fully-excluded block A. Neither
// the fit nor the regression ever sees a value of A.
type BCVEvaluator struct {
	Factorizer ports.FactorizerPort
}

// NewBCVEvaluator creates an evaluator backed by truncated PCA
func NewBCVEvaluator() *BCVEvaluator {
	return &BCVEvaluator{Factorizer: models.PCAFactorizer{}}
}

// Score returns the RMSE of reconstructing the excluded block at the
// candidate complexity.
func (e *BCVEvaluator) Score(x [][]float64, assign cv.BiFoldAssignment, rowFold, colFold, complexity int) (float64, error) {
	heldRows := assign.Rows.FoldIndices(rowFold)
	keptRows := assign.Rows.ComplementIndices(rowFold)
	heldCols := assign.Columns.FoldIndices(colFold)
	keptCols := assign.Columns.ComplementIndices(colFold)
	if len(heldRows) == 0 || len(heldCols) == 0 {
		return 0, core.ErrEmptyFold
	}
	if len(keptRows) == 0 || len(keptCols) == 0 {
		return 0, core.ErrEmptyFold
	}

	a := subMatrix(x, heldRows, heldCols)
	b := subMatrix(x, heldRows, keptCols)
	c := subMatrix(x, keptRows, heldCols)
	d := subMatrix(x, keptRows, keptCols)

	fit, err := e.Factorizer.Fit(d, complexity)
	if err != nil {
		return 0, err
	}

	// Regress held-out columns on D's scores with an intercept; at
	// complexity 0 this degenerates to the column means of C, which is
	// exactly the zero-component baseline.
	scoresD := fit.Project(d)
	scoresB := fit.Project(b)

	design := withIntercept(scoresD)
	rhs := mat.NewDense(len(c), len(heldCols), nil)
	for i, row := range c {
		rhs.SetRow(i, row)
	}

	var coef mat.Dense
	if err := coef.Solve(design, rhs); err != nil {
		return 0, core.NewFitError(complexity, fmt.Errorf("column regression: %v", err))
	}

	var predicted mat.Dense
	predicted.Mul(withIntercept(scoresB), &coef)

	sum, n := 0.0, 0
	for i := range a {
		for j := range a[i] {
			diff := predicted.At(i, j) - a[i][j]
			sum += diff * diff
			n++
		}
	}
	return rmseFromSquares(sum, n), nil
}

func rmseFromSquares(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

func subMatrix(x [][]float64, rows, cols []int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(cols))
		for j, c := range cols {
			out[i][j] = x[r][c]
		}
	}
	return out
}

// withIntercept prepends a constant-1 column to a score matrix
func withIntercept(scores [][]float64) *mat.Dense {
	rows := len(scores)
	k := 0
	if rows > 0 {
		k = len(scores[0])
	}
	out := mat.NewDense(rows, k+1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, 1)
		for a := 0; a < k; a++ {
			out.Set(i, a+1, scores[i][a])
		}
	}
	return out
}
