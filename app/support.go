package app

import (
	"runtime"
)

// codeVersion tags run manifests; bump on changes that alter numeric output
const codeVersion = "v0.1.0"

func workerBudget(configured int) int64 {
	if configured > 0 {
		return int64(configured)
	}
	return int64(runtime.NumCPU())
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
