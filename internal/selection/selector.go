// Package selection picks the winning complexity from an evaluation
// table.
package selection

import (
	"fmt"
	"math"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

// Select averages each complexity's error across folds (skipping failed
// candidates) and returns the complexity with the minimum mean. Ties
// within floating-point equality go to the smallest complexity, and
// complexity 0 is as selectable as any other. A table with a single
// evaluated complexity selects it without comparison.
func Select(table *cv.EvalTable) (cv.Selection, error) {
	means := table.MeanByComplexity()

	best := -1
	for c, mean := range means {
		if math.IsNaN(mean) {
			continue
		}
		// Strict less keeps the smallest complexity on ties because
		// candidates are scanned in ascending order.
		if best == -1 || mean < means[best] {
			best = c
		}
	}
	if best == -1 {
		return cv.Selection{}, fmt.Errorf("%w: no scorable candidates in evaluation table", core.ErrFitFailure)
	}

	return cv.Selection{
		Complexity: table.Complexities[best],
		MeanError:  means[best],
	}, nil
}
