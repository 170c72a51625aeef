package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"crossfold/domain/core"
	"crossfold/domain/cv"
	"crossfold/domain/dataset"
	"crossfold/internal/evaluate"
	"crossfold/internal/folds"
	"crossfold/internal/selection"
	"crossfold/ports"
)

// BlockScorer scores one bi-cross-validation cell; the default is
// PCA-backed block reconstruction.
type BlockScorer interface {
	Score(x [][]float64, assign cv.BiFoldAssignment, rowFold, colFold, complexity int) (float64, error)
}

// BCVService selects the rank of an unsupervised factorization by
// repeated bi-cross-validation: every repetition holds out each
// row-fold x column-fold block and scores its reconstruction across
// candidate complexities.
type BCVService struct {
	ledger ports.LedgerPort
	rng    ports.RNGPort

	// Scorer overrides the default PCA evaluator when non-nil
	Scorer BlockScorer
}

// BCVRequest defines the inputs for a deterministic rank-selection run
type BCVRequest struct {
	Bundle *dataset.MatrixBundle
	Config cv.BCVConfig
	RunID  core.RunID // optional, generated if empty
}

// BCVResult contains the complete output of a rank-selection run
type BCVResult struct {
	RunID     core.RunID      `json:"run_id"`
	Manifest  *cv.RunManifest `json:"manifest"`
	Selection cv.Selection    `json:"selection"`
	EvalTable *cv.EvalTable   `json:"eval_table"`
	State     cv.RunState     `json:"state"`
	RuntimeMs int64           `json:"runtime_ms"`
}

// NewBCVService creates a bi-cross-validation service
func NewBCVService(ledger ports.LedgerPort, rng ports.RNGPort) *BCVService {
	return &BCVService{ledger: ledger, rng: rng}
}

// Run executes the sweep. Each (repetition, row fold, column fold)
// combination occupies one row of the evaluation table, so the selector
// treats repeated blocks exactly like folds.
func (s *BCVService) Run(ctx context.Context, req BCVRequest) (*BCVResult, error) {
	startTime := time.Now()

	runID := req.RunID
	if core.ID(runID).IsEmpty() {
		runID = core.RunID(core.NewID())
	}
	bundle, cfg := req.Bundle, req.Config

	if err := cfg.Validate(bundle.Rows(), bundle.Cols()); err != nil {
		return nil, err
	}

	scorer := s.Scorer
	if scorer == nil {
		scorer = evaluate.NewBCVEvaluator()
	}

	manifest := cv.NewRunManifest(
		runID,
		bundle.DatasetID,
		bundle.Fingerprint,
		core.NewConfigHash([]byte(fmt.Sprintf("%+v", cfg))),
		cfg.Seed,
		[]string{"partition", "evaluate", "select"},
		codeVersion,
	)
	if err := s.ledger.StoreArtifact(ctx, runID.String(), manifest.ToArtifact()); err != nil {
		return nil, fmt.Errorf("failed to store run manifest: %w", err)
	}

	state := cv.StateInitialized

	// Partition stage: one independent bi-partition per repetition,
	// all derived from the configured seed.
	assignments := make([]cv.BiFoldAssignment, cfg.Repetitions)
	for rep := 0; rep < cfg.Repetitions; rep++ {
		stream, err := s.rng.SeededStream(ctx, fmt.Sprintf("bcv-rep-%d", rep+1), cfg.Seed)
		if err != nil {
			return nil, err
		}
		assign, err := folds.BiPartition(bundle.Rows(), bundle.Cols(), cfg.RowFolds, cfg.ColumnFolds, stream.Int63())
		if err != nil {
			return nil, err
		}
		assignments[rep] = assign
	}
	var err error
	if state, err = cv.Advance(state, cv.StatePartitioned); err != nil {
		return nil, err
	}
	s.storeArtifact(ctx, runID, core.ArtifactFoldAssignment, assignments)

	// Evaluating stage
	if state, err = cv.Advance(state, cv.StateEvaluating); err != nil {
		return nil, err
	}
	blockRows := cfg.Repetitions * cfg.RowFolds * cfg.ColumnFolds
	table := cv.NewEvalTable(blockRows, cfg.MaxComplexity)
	x := bundle.Matrix.Data

	sem := semaphore.NewWeighted(workerBudget(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	row := 0
	for rep := 0; rep < cfg.Repetitions; rep++ {
		for rf := 1; rf <= cfg.RowFolds; rf++ {
			for cf := 1; cf <= cfg.ColumnFolds; cf++ {
				row++
				assign, tableRow, rf, cf := assignments[rep], row, rf, cf
				for c := 0; c <= cfg.MaxComplexity; c++ {
					c := c
					wg.Add(1)
					if err := sem.Acquire(ctx, 1); err != nil {
						wg.Done()
						return nil, err
					}
					go func() {
						defer wg.Done()
						defer sem.Release(1)
						score, err := scorer.Score(x, assign, rf, cf, c)
						if err != nil {
							if core.IsFitFailure(err) {
								return
							}
							mu.Lock()
							if firstErr == nil {
								firstErr = err
							}
							mu.Unlock()
							return
						}
						table.Set(tableRow, c, score)
					}()
				}
			}
		}
	}

	// Barrier before selection
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	s.storeArtifact(ctx, runID, core.ArtifactEvalTable, table)

	// Selecting stage
	if state, err = cv.Advance(state, cv.StateSelecting); err != nil {
		return nil, err
	}
	sel, err := selection.Select(table)
	if err != nil {
		return nil, err
	}
	s.storeArtifact(ctx, runID, core.ArtifactSelection, sel)

	// Rank selection has no prediction stage; the run finishes once
	// the winning complexity is chosen.
	if state, err = cv.Advance(state, cv.StatePredicting); err != nil {
		return nil, err
	}
	if state, err = cv.Advance(state, cv.StateAggregated); err != nil {
		return nil, err
	}
	if state, err = cv.Advance(state, cv.StateDone); err != nil {
		return nil, err
	}

	runtimeMs := time.Since(startTime).Milliseconds()
	manifest.RuntimeMs = runtimeMs
	if degenerate := table.DegenerateFolds(); len(degenerate) > 0 {
		log.Printf("[BCVService] run %s: %d of %d blocks fully failed", runID, len(degenerate), blockRows)
	}
	log.Printf("[BCVService] run %s selected complexity %d (mean rmse %.6f) in %dms",
		runID, sel.Complexity, sel.MeanError, runtimeMs)

	return &BCVResult{
		RunID:     runID,
		Manifest:  manifest,
		Selection: sel,
		EvalTable: table,
		State:     state,
		RuntimeMs: runtimeMs,
	}, nil
}

func (s *BCVService) storeArtifact(ctx context.Context, runID core.RunID, kind core.ArtifactKind, payload interface{}) {
	artifact := core.Artifact{
		ID:        core.NewID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: core.Now(),
	}
	if err := s.ledger.StoreArtifact(ctx, runID.String(), artifact); err != nil {
		log.Printf("[BCVService] failed to store %s artifact: %v", kind, err)
	}
}
