package predict

import (
	"math"
	"testing"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

func makePredictions(n, folds int) []cv.Prediction {
	out := make([]cv.Prediction, n)
	for i := 0; i < n; i++ {
		out[i] = cv.Prediction{
			Index:     i,
			Fold:      i%folds + 1,
			Predicted: float64(i) + 0.1*float64(i%3),
			Actual:    float64(i),
		}
	}
	return out
}

func TestAggregate(t *testing.T) {
	t.Run("pooled statistic is a valid correlation", func(t *testing.T) {
		set, err := Aggregate(makePredictions(60, 5), []int{1, 2, 3, 4, 5}, cv.AggregationPooled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set.Predictions) != 60 {
			t.Errorf("expected 60 pooled predictions, got %d", len(set.Predictions))
		}
		if set.Statistic < -1 || set.Statistic > 1 {
			t.Errorf("correlation outside [-1,1]: %v", set.Statistic)
		}
		if math.IsNaN(set.Statistic) {
			t.Error("statistic must be finite")
		}
	})

	t.Run("predictions sorted by original index", func(t *testing.T) {
		preds := makePredictions(10, 2)
		// shuffle order deliberately
		preds[0], preds[9] = preds[9], preds[0]
		set, err := Aggregate(preds, []int{1, 2}, cv.AggregationPooled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 1; i < len(set.Predictions); i++ {
			if set.Predictions[i].Index < set.Predictions[i-1].Index {
				t.Fatal("predictions must be sorted by index")
			}
		}
	})

	t.Run("perfect predictions correlate at one", func(t *testing.T) {
		preds := make([]cv.Prediction, 20)
		for i := range preds {
			preds[i] = cv.Prediction{Index: i, Fold: i%4 + 1, Predicted: float64(i), Actual: float64(i)}
		}
		set, err := Aggregate(preds, []int{1, 2, 3, 4}, cv.AggregationPooled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(set.Statistic-1) > 1e-9 {
			t.Errorf("expected correlation 1, got %v", set.Statistic)
		}
	})

	t.Run("per-fold mean aggregation", func(t *testing.T) {
		set, err := Aggregate(makePredictions(60, 5), []int{1, 2, 3, 4, 5}, cv.AggregationPerFoldMean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set.PerFoldStatistics) != 5 {
			t.Errorf("expected 5 per-fold statistics, got %d", len(set.PerFoldStatistics))
		}
		mean := 0.0
		for _, r := range set.PerFoldStatistics {
			mean += r
		}
		mean /= 5
		if math.Abs(set.Statistic-mean) > 1e-12 {
			t.Errorf("statistic %v must equal per-fold mean %v", set.Statistic, mean)
		}
	})

	t.Run("empty fold rejected", func(t *testing.T) {
		preds := makePredictions(10, 2) // folds 1 and 2 only
		_, err := Aggregate(preds, []int{1, 2, 3}, cv.AggregationPooled)
		if !core.IsInsufficientDataError(err) {
			t.Errorf("expected insufficient data error, got %v", err)
		}
	})

	t.Run("no predictions rejected", func(t *testing.T) {
		_, err := Aggregate(nil, []int{1, 2, 3, 4, 5}, cv.AggregationPooled)
		if !core.IsInsufficientDataError(err) {
			t.Errorf("expected insufficient data error, got %v", err)
		}
	})
}
