// Package predict pools held-out predictions and computes the aggregate
// performance statistic.
package predict

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

// Aggregate assembles the terminal PredictionSet for a run. Predictions
// are sorted by original observation index; the statistic is the pooled
// Pearson correlation over all held-out predictions, or the mean of
// per-fold correlations when that aggregation is configured.
// expectedFolds lists the fold labels that must have contributed
// predictions; a degenerate fold the caller excluded is simply absent
// from the list, never averaged as zero.
func Aggregate(predictions []cv.Prediction, expectedFolds []int, agg cv.Aggregation) (*cv.PredictionSet, error) {
	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: no held-out predictions", core.ErrInsufficientData)
	}

	sorted := make([]cv.Prediction, len(predictions))
	copy(sorted, predictions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	perFold, err := perFoldCorrelations(sorted, expectedFolds)
	if err != nil {
		return nil, err
	}

	set := &cv.PredictionSet{
		Predictions:       sorted,
		PerFoldStatistics: perFold,
	}

	switch agg {
	case cv.AggregationPerFoldMean:
		mean, err := stats.Mean(perFold)
		if err != nil {
			return nil, fmt.Errorf("per-fold mean: %w", err)
		}
		set.Statistic = mean
	case cv.AggregationPooled, "":
		predicted := make([]float64, len(sorted))
		actual := make([]float64, len(sorted))
		for i, p := range sorted {
			predicted[i] = p.Predicted
			actual[i] = p.Actual
		}
		r, err := stats.Pearson(predicted, actual)
		if err != nil {
			return nil, fmt.Errorf("pooled correlation: %w", err)
		}
		set.Statistic = r
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAggregation, agg)
	}

	return set, nil
}

func perFoldCorrelations(predictions []cv.Prediction, expectedFolds []int) ([]float64, error) {
	byFold := make(map[int][]cv.Prediction)
	for _, p := range predictions {
		byFold[p.Fold] = append(byFold[p.Fold], p)
	}

	out := make([]float64, 0, len(expectedFolds))
	for _, f := range expectedFolds {
		group := byFold[f]
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: fold %d", core.ErrEmptyFold, f)
		}
		predicted := make([]float64, len(group))
		actual := make([]float64, len(group))
		for i, p := range group {
			predicted[i] = p.Predicted
			actual[i] = p.Actual
		}
		r, err := stats.Pearson(predicted, actual)
		if err != nil {
			return nil, fmt.Errorf("fold %d correlation: %w", f, err)
		}
		out = append(out, r)
	}
	return out, nil
}
