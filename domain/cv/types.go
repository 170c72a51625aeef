package cv

import (
	"math"

	"crossfold/domain/core"
)

// FoldAssignment maps each observation index to one of k fold labels.
// Labels run 1..k. An assignment is produced once per run from an explicit
// seed and is immutable afterwards.
type FoldAssignment struct {
	Labels []int `json:"labels"` // Labels[i] is the fold of observation i
	K      int   `json:"k"`
	Seed   int64 `json:"seed"`
}

// FoldIndices returns the observation indices held out in fold label f,
// in ascending order.
func (a FoldAssignment) FoldIndices(f int) []int {
	var out []int
	for i, label := range a.Labels {
		if label == f {
			out = append(out, i)
		}
	}
	return out
}

// ComplementIndices returns the observation indices outside fold label f,
// in ascending order.
func (a FoldAssignment) ComplementIndices(f int) []int {
	out := make([]int, 0, len(a.Labels))
	for i, label := range a.Labels {
		if label != f {
			out = append(out, i)
		}
	}
	return out
}

// FoldSizes returns the count of observations per fold label 1..k
func (a FoldAssignment) FoldSizes() []int {
	sizes := make([]int, a.K)
	for _, label := range a.Labels {
		sizes[label-1]++
	}
	return sizes
}

// BiFoldAssignment holds independent partitions along both axes of a
// matrix, used by bi-cross-validation. Row and column assignments are
// generated from derived seeds of the same base seed.
type BiFoldAssignment struct {
	Rows    FoldAssignment `json:"rows"`
	Columns FoldAssignment `json:"columns"`
}

// EvalTable collects one scalar error per (fold, complexity) pair.
// Rows are folds 1..k, columns are complexities 0..maxComplexity.
// NaN marks a candidate whose fit failed; entries are written once and
// never mutated afterwards.
type EvalTable struct {
	Errors       [][]float64 `json:"errors"` // [fold-1][complexity]
	Complexities []int       `json:"complexities"`
	FoldCount    int         `json:"fold_count"`
}

// NewEvalTable allocates a table with every cell marked unscored (NaN)
func NewEvalTable(foldCount, maxComplexity int) *EvalTable {
	errs := make([][]float64, foldCount)
	for i := range errs {
		errs[i] = make([]float64, maxComplexity+1)
		for j := range errs[i] {
			errs[i][j] = math.NaN()
		}
	}
	comps := make([]int, maxComplexity+1)
	for c := range comps {
		comps[c] = c
	}
	return &EvalTable{Errors: errs, Complexities: comps, FoldCount: foldCount}
}

// Set records the error for one (fold, complexity) pair
func (t *EvalTable) Set(fold, complexity int, err float64) {
	t.Errors[fold-1][complexity] = err
}

// Get returns the recorded error for one (fold, complexity) pair
func (t *EvalTable) Get(fold, complexity int) float64 {
	return t.Errors[fold-1][complexity]
}

// MeanByComplexity averages each complexity column across folds,
// skipping NaN entries. A column with no scored folds stays NaN.
func (t *EvalTable) MeanByComplexity() []float64 {
	means := make([]float64, len(t.Complexities))
	for c := range t.Complexities {
		sum, n := 0.0, 0
		for f := 0; f < t.FoldCount; f++ {
			v := t.Errors[f][c]
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			means[c] = math.NaN()
		} else {
			means[c] = sum / float64(n)
		}
	}
	return means
}

// DegenerateFolds lists fold labels for which every candidate failed
func (t *EvalTable) DegenerateFolds() []int {
	var out []int
	for f := 0; f < t.FoldCount; f++ {
		allNaN := true
		for c := range t.Complexities {
			if !math.IsNaN(t.Errors[f][c]) {
				allNaN = false
				break
			}
		}
		if allNaN {
			out = append(out, f+1)
		}
	}
	return out
}

// Selection records the complexity chosen from an EvalTable
type Selection struct {
	Complexity int     `json:"complexity"`
	MeanError  float64 `json:"mean_error"`
	// PerFold holds per-fold winning complexities for nested CV;
	// empty for global selection.
	PerFold []int `json:"per_fold,omitempty"`
}

// Prediction pairs one held-out prediction with its ground truth
type Prediction struct {
	Index     int     `json:"index"` // original observation index
	Fold      int     `json:"fold"`  // fold the observation was held out in
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
}

// PredictionSet is the pooled held-out prediction table for a run
type PredictionSet struct {
	Predictions []Prediction `json:"predictions"`
	// Statistic is the aggregate performance value: pooled Pearson
	// correlation by default, or the mean of per-fold correlations
	// when per-fold aggregation is configured.
	Statistic float64 `json:"statistic"`
	// PerFoldStatistics holds the per-fold correlations regardless of
	// aggregation mode, for reporting.
	PerFoldStatistics []float64 `json:"per_fold_statistics,omitempty"`
	// DegenerateFolds flags folds whose candidates all failed; they
	// contribute nothing to the statistic and are surfaced here rather
	// than silently dropped.
	DegenerateFolds []int `json:"degenerate_folds,omitempty"`
}

// RunState is the lifecycle of a single cross-validation run.
// Transitions only move forward; any failure aborts the run.
type RunState string

const (
	StateInitialized RunState = "initialized"
	StatePartitioned RunState = "partitioned"
	StateEvaluating  RunState = "evaluating"
	StateSelecting   RunState = "selecting"
	StatePredicting  RunState = "predicting"
	StateAggregated  RunState = "aggregated"
	StateDone        RunState = "done"
	StateFailed      RunState = "failed"
)

// nextStates defines the legal forward transitions
var nextStates = map[RunState]RunState{
	StateInitialized: StatePartitioned,
	StatePartitioned: StateEvaluating,
	StateEvaluating:  StateSelecting,
	StateSelecting:   StatePredicting,
	StatePredicting:  StateAggregated,
	StateAggregated:  StateDone,
}

// Advance moves a run to the next state, rejecting any transition that
// is not the single legal successor. Failed is reachable from anywhere.
func Advance(from, to RunState) (RunState, error) {
	if to == StateFailed {
		return StateFailed, nil
	}
	if nextStates[from] != to {
		return from, core.ErrStageOrder
	}
	return to, nil
}
