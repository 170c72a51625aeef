package cv

import (
	"fmt"

	"crossfold/domain/core"
)

// Aggregation selects how the final statistic is computed
type Aggregation string

const (
	// AggregationPooled concatenates all held-out predictions before
	// computing one correlation, matching pooled-scatter reporting.
	AggregationPooled Aggregation = "pooled"
	// AggregationPerFoldMean averages per-fold correlations instead.
	AggregationPerFoldMean Aggregation = "per-fold-mean"
)

// RunConfig holds the recognized options for a cross-validation run
type RunConfig struct {
	FoldCount     int         `json:"fold_count"`
	MaxComplexity int         `json:"max_complexity"`
	Seed          int64       `json:"seed"`
	Aggregation   Aggregation `json:"aggregation"`

	// Standardize scales each column to zero mean and unit variance
	// using training-fold statistics only.
	Standardize bool `json:"standardize"`

	// Workers bounds concurrent evaluations; 0 means one per CPU.
	Workers int `json:"workers"`
}

// BCVConfig holds options for bi-cross-validation rank selection
type BCVConfig struct {
	RowFolds      int   `json:"row_folds"`
	ColumnFolds   int   `json:"column_folds"`
	Repetitions   int   `json:"repetitions"`
	MaxComplexity int   `json:"max_complexity"`
	Seed          int64 `json:"seed"`
	Workers       int   `json:"workers"`
}

// DefaultRunConfig returns the defaults for supervised selection
func DefaultRunConfig(seed int64) RunConfig {
	return RunConfig{
		FoldCount:     5,
		MaxComplexity: 10,
		Seed:          seed,
		Aggregation:   AggregationPooled,
		Standardize:   true,
	}
}

// DefaultBCVConfig returns the defaults for unsupervised rank selection
func DefaultBCVConfig(seed int64) BCVConfig {
	return BCVConfig{
		RowFolds:      2,
		ColumnFolds:   2,
		Repetitions:   10,
		MaxComplexity: 10,
		Seed:          seed,
	}
}

// Validate checks the configuration against an observation count
func (c RunConfig) Validate(n int) error {
	if c.FoldCount < 2 || c.FoldCount > n {
		return core.NewFoldCountError(c.FoldCount, n)
	}
	if c.MaxComplexity < 0 {
		return fmt.Errorf("%w: maxComplexity=%d must be >= 0", core.ErrInvalidComplexity, c.MaxComplexity)
	}
	switch c.Aggregation {
	case AggregationPooled, AggregationPerFoldMean:
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidAggregation, c.Aggregation)
	}
	return nil
}

// Validate checks the configuration against matrix dimensions
func (c BCVConfig) Validate(rows, cols int) error {
	if c.RowFolds < 2 || c.RowFolds > rows {
		return core.NewFoldCountError(c.RowFolds, rows)
	}
	if c.ColumnFolds < 2 || c.ColumnFolds > cols {
		return core.NewFoldCountError(c.ColumnFolds, cols)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions=%d must be >= 1", core.ErrConfiguration, c.Repetitions)
	}
	if c.MaxComplexity < 0 {
		return fmt.Errorf("%w: maxComplexity=%d must be >= 0", core.ErrInvalidComplexity, c.MaxComplexity)
	}
	return nil
}
