// Package folds assigns observations to cross-validation folds. Every
// partition is a pure function of its seed; nothing here touches global
// random state.
package folds

import (
	"math/rand"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

// Partition splits n observation indices into k balanced folds using a
// seeded shuffle. Fold sizes differ by at most one; identical
// (n, k, seed) inputs always produce the identical assignment.
func Partition(n, k int, seed int64) (cv.FoldAssignment, error) {
	if k < 2 || k > n {
		return cv.FoldAssignment{}, core.NewFoldCountError(k, n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	// Round-robin over the shuffled order keeps sizes within one of
	// each other for any n and k.
	labels := make([]int, n)
	for pos, idx := range order {
		labels[idx] = pos%k + 1
	}

	return cv.FoldAssignment{Labels: labels, K: k, Seed: seed}, nil
}

// BiPartition produces independent row and column partitions for
// bi-cross-validation. The two axes draw from derived seeds of the same
// base seed, so neither shuffle can influence the other.
func BiPartition(rows, cols, rowK, colK int, seed int64) (cv.BiFoldAssignment, error) {
	rowAssign, err := Partition(rows, rowK, core.DeriveSeed(seed, "rows"))
	if err != nil {
		return cv.BiFoldAssignment{}, err
	}
	colAssign, err := Partition(cols, colK, core.DeriveSeed(seed, "cols"))
	if err != nil {
		return cv.BiFoldAssignment{}, err
	}
	return cv.BiFoldAssignment{Rows: rowAssign, Columns: colAssign}, nil
}
