package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrConfiguration      = errors.New("invalid run configuration")
	ErrInvalidFoldCount   = fmt.Errorf("%w: fold count", ErrConfiguration)
	ErrInvalidComplexity  = fmt.Errorf("%w: complexity bound", ErrConfiguration)
	ErrInvalidAggregation = fmt.Errorf("%w: aggregation mode", ErrConfiguration)

	// Data shape errors
	ErrDataShape      = errors.New("data shape mismatch")
	ErrRaggedMatrix   = fmt.Errorf("%w: ragged rows", ErrDataShape)
	ErrNonNumeric     = fmt.Errorf("%w: non-numeric entry", ErrDataShape)
	ErrResponseLength = fmt.Errorf("%w: response length", ErrDataShape)

	// Data sufficiency errors
	ErrInsufficientData = errors.New("insufficient data")
	ErrEmptyFold        = fmt.Errorf("%w: empty held-out fold", ErrInsufficientData)
	ErrEmptyMatrix      = fmt.Errorf("%w: empty matrix", ErrInsufficientData)

	// Model fit errors - recorded per candidate, never abort a sweep
	ErrFitFailure    = errors.New("model fit failed")
	ErrRankDeficient = fmt.Errorf("%w: rank deficient for requested complexity", ErrFitFailure)

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")

	// Run lifecycle errors
	ErrStageOrder = errors.New("stage executed out of order")
)

// Error constructors with context

func NewFoldCountError(k, n int) error {
	return fmt.Errorf("%w: k=%d with n=%d observations (need 2 <= k <= n)", ErrInvalidFoldCount, k, n)
}

func NewComplexityBoundError(max, limit int) error {
	return fmt.Errorf("%w: maxComplexity=%d exceeds usable limit %d", ErrInvalidComplexity, max, limit)
}

func NewShapeError(what string, want, got int) error {
	return fmt.Errorf("%w: %s expected %d, got %d", ErrDataShape, what, want, got)
}

func NewFitError(complexity int, cause error) error {
	return fmt.Errorf("%w at complexity %d: %v", ErrFitFailure, complexity, cause)
}

// Error checking helpers

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsDataShapeError(err error) bool {
	return errors.Is(err, ErrDataShape)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsFitFailure(err error) bool {
	return errors.Is(err, ErrFitFailure)
}
