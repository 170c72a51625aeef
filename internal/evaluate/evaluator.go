// Package evaluate scores candidate model complexities on held-out
// folds. Evaluators are re-entrant: every call works on its own copies
// and the only shared inputs are read-only.
package evaluate

import (
	"math"

	"crossfold/domain/core"
	"crossfold/domain/cv"
	"crossfold/internal/models"
	"crossfold/ports"
)

// SupervisedEvaluator scores a regression complexity on one fold.
// The model is fit strictly on rows outside the fold; the held-out fold
// only ever sees Predict.
type SupervisedEvaluator struct {
	Regressor   ports.RegressorPort
	Standardize bool
}

// NewSupervisedEvaluator creates an evaluator backed by PLS regression
func NewSupervisedEvaluator(standardize bool) *SupervisedEvaluator {
	return &SupervisedEvaluator{
		Regressor:   models.PLSRegressor{},
		Standardize: standardize,
	}
}

// Score fits at the candidate complexity on the training split and
// returns the root-mean-square prediction error on the held-out fold.
func (e *SupervisedEvaluator) Score(x [][]float64, y []float64, assign cv.FoldAssignment, fold, complexity int) (float64, error) {
	trainIdx := assign.ComplementIndices(fold)
	heldIdx := assign.FoldIndices(fold)
	if len(heldIdx) == 0 {
		return 0, core.ErrEmptyFold
	}

	trainX, trainY := gatherRows(x, trainIdx), gatherValues(y, trainIdx)
	heldX, heldY := gatherRows(x, heldIdx), gatherValues(y, heldIdx)

	if e.Standardize {
		scaler, err := models.FitScaler(trainX)
		if err != nil {
			return 0, err
		}
		trainX = scaler.Transform(trainX)
		heldX = scaler.Transform(heldX)
	}

	fit, err := e.Regressor.Fit(trainX, trainY, complexity)
	if err != nil {
		return 0, err
	}

	return RMSE(fit.Predict(heldX), heldY), nil
}

// FitHeldOut refits at the selected complexity and returns predictions
// aligned to the held-out fold's original observation indices.
func (e *SupervisedEvaluator) FitHeldOut(x [][]float64, y []float64, assign cv.FoldAssignment, fold, complexity int) ([]cv.Prediction, error) {
	trainIdx := assign.ComplementIndices(fold)
	heldIdx := assign.FoldIndices(fold)
	if len(heldIdx) == 0 {
		return nil, core.ErrEmptyFold
	}

	trainX, trainY := gatherRows(x, trainIdx), gatherValues(y, trainIdx)
	heldX := gatherRows(x, heldIdx)

	if e.Standardize {
		scaler, err := models.FitScaler(trainX)
		if err != nil {
			return nil, err
		}
		trainX = scaler.Transform(trainX)
		heldX = scaler.Transform(heldX)
	}

	fit, err := e.Regressor.Fit(trainX, trainY, complexity)
	if err != nil {
		return nil, err
	}
	predicted := fit.Predict(heldX)

	out := make([]cv.Prediction, len(heldIdx))
	for i, idx := range heldIdx {
		out[i] = cv.Prediction{
			Index:     idx,
			Fold:      fold,
			Predicted: predicted[i],
			Actual:    y[idx],
		}
	}
	return out, nil
}

// RMSE computes the root-mean-square error between two aligned slices
func RMSE(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

func gatherRows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func gatherValues(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
