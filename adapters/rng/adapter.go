package rng

import (
	"context"
	"math/rand"

	"crossfold/domain/core"
)

// Adapter implements ports.RNGPort with SHA-256 derived stream seeds,
// so the draw order of one stream can never depend on scheduling of
// another.
type Adapter struct{}

// NewAdapter creates a deterministic RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(core.DeriveSeed(seed, name))), nil
}

// Stream creates a deterministic RNG stream scoped to a run and stage
func (a *Adapter) Stream(ctx context.Context, runID, stageName string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if runID != "" {
		seed = core.DeriveSeed(seed, "run:"+runID)
	}
	if stageName != "" {
		seed = core.DeriveSeed(seed, "stage:"+stageName)
	}
	return rand.New(rand.NewSource(seed)), nil
}
