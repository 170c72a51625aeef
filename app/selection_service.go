package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"crossfold/domain/core"
	"crossfold/domain/cv"
	"crossfold/domain/dataset"
	"crossfold/internal/evaluate"
	"crossfold/internal/folds"
	"crossfold/internal/predict"
	"crossfold/internal/selection"
	"crossfold/ports"
)

// SupervisedScorer is the evaluation contract the service schedules.
// The default implementation is PLS-backed; tests substitute failing
// fakes to exercise degenerate-fold handling.
type SupervisedScorer interface {
	Score(x [][]float64, y []float64, assign cv.FoldAssignment, fold, complexity int) (float64, error)
	FitHeldOut(x [][]float64, y []float64, assign cv.FoldAssignment, fold, complexity int) ([]cv.Prediction, error)
}

// SelectionService runs nested cross-validation: an inner sweep selects
// the complexity per outer fold, the outer folds produce pooled
// held-out predictions.
type SelectionService struct {
	ledger ports.LedgerPort
	rng    ports.RNGPort

	// Scorer overrides the default PLS evaluator when non-nil
	Scorer SupervisedScorer
}

// SelectionRequest defines the inputs for a deterministic selection run
type SelectionRequest struct {
	Bundle *dataset.MatrixBundle
	Config cv.RunConfig
	RunID  core.RunID // optional, generated if empty
}

// SelectionResult contains the complete output of a selection run
type SelectionResult struct {
	RunID      core.RunID        `json:"run_id"`
	Manifest   *cv.RunManifest   `json:"manifest"`
	Selections []cv.Selection    `json:"selections"` // per outer fold; zero value for degenerate folds
	EvalTables []*cv.EvalTable   `json:"eval_tables"`
	Prediction *cv.PredictionSet `json:"prediction"`
	State      cv.RunState       `json:"state"`
	RuntimeMs  int64             `json:"runtime_ms"`
}

// NewSelectionService creates a selection service
func NewSelectionService(ledger ports.LedgerPort, rng ports.RNGPort) *SelectionService {
	return &SelectionService{ledger: ledger, rng: rng}
}

// Run executes the full pipeline: Partitioned, Evaluating, Selecting,
// Predicting, Aggregated, Done. Structural errors abort the run; per
// candidate fit failures are recorded as unscored table cells.
func (s *SelectionService) Run(ctx context.Context, req SelectionRequest) (*SelectionResult, error) {
	startTime := time.Now()

	runID := req.RunID
	if core.ID(runID).IsEmpty() {
		runID = core.RunID(core.NewID())
	}
	bundle, cfg := req.Bundle, req.Config

	if !bundle.IsSupervised() {
		return nil, fmt.Errorf("%w: selection run requires a response column", core.ErrConfiguration)
	}
	if err := cfg.Validate(bundle.Rows()); err != nil {
		return nil, err
	}

	scorer := s.Scorer
	if scorer == nil {
		scorer = evaluate.NewSupervisedEvaluator(cfg.Standardize)
	}

	manifest := cv.NewRunManifest(
		runID,
		bundle.DatasetID,
		bundle.Fingerprint,
		core.NewConfigHash([]byte(fmt.Sprintf("%+v", cfg))),
		cfg.Seed,
		[]string{"partition", "evaluate", "select", "predict", "aggregate"},
		codeVersion,
	)
	if err := s.ledger.StoreArtifact(ctx, runID.String(), manifest.ToArtifact()); err != nil {
		return nil, fmt.Errorf("failed to store run manifest: %w", err)
	}

	state := cv.StateInitialized

	// Partition stage. The outer assignment is a pure function of the
	// configured seed, never of the run ID, so identical seeds replay
	// to identical partitions across runs.
	outerStream, err := s.rng.SeededStream(ctx, "outer-partition", cfg.Seed)
	if err != nil {
		return nil, err
	}
	outerAssign, err := folds.Partition(bundle.Rows(), cfg.FoldCount, outerStream.Int63())
	if err != nil {
		return nil, err
	}
	if state, err = cv.Advance(state, cv.StatePartitioned); err != nil {
		return nil, err
	}
	s.storeArtifact(ctx, runID, core.ArtifactFoldAssignment, outerAssign)

	// Evaluating stage: every (outer fold, inner fold, complexity)
	// cell is independent and runs under a shared worker budget.
	if state, err = cv.Advance(state, cv.StateEvaluating); err != nil {
		return nil, err
	}
	x, y := bundle.Matrix.Data, bundle.Response

	tables, err := s.evaluateAll(ctx, scorer, x, y, outerAssign, cfg)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		s.storeArtifact(ctx, runID, core.ArtifactEvalTable, table)
	}

	// Selecting stage
	if state, err = cv.Advance(state, cv.StateSelecting); err != nil {
		return nil, err
	}
	selections := make([]cv.Selection, cfg.FoldCount)
	var degenerate []int
	for f := 1; f <= cfg.FoldCount; f++ {
		sel, selErr := selection.Select(tables[f-1])
		if selErr != nil {
			log.Printf("[SelectionService] outer fold %d: all candidates failed, fold flagged", f)
			degenerate = append(degenerate, f)
			continue
		}
		selections[f-1] = sel
	}
	if len(degenerate) == cfg.FoldCount {
		return nil, fmt.Errorf("%w: every outer fold failed evaluation", core.ErrFitFailure)
	}
	s.storeArtifact(ctx, runID, core.ArtifactSelection, selections)

	// Predicting stage
	if state, err = cv.Advance(state, cv.StatePredicting); err != nil {
		return nil, err
	}
	predictions, predictedFolds, err := s.predictAll(ctx, scorer, x, y, outerAssign, selections, degenerate, cfg)
	if err != nil {
		return nil, err
	}

	// Aggregated stage
	if state, err = cv.Advance(state, cv.StateAggregated); err != nil {
		return nil, err
	}
	set, err := predict.Aggregate(predictions, predictedFolds, cfg.Aggregation)
	if err != nil {
		return nil, err
	}
	set.DegenerateFolds = degenerate
	s.storeArtifact(ctx, runID, core.ArtifactPredictionSet, set)

	if state, err = cv.Advance(state, cv.StateDone); err != nil {
		return nil, err
	}

	runtimeMs := time.Since(startTime).Milliseconds()
	manifest.RuntimeMs = runtimeMs
	log.Printf("[SelectionService] run %s done in %dms (%d folds, %d degenerate)",
		runID, runtimeMs, cfg.FoldCount, len(degenerate))

	return &SelectionResult{
		RunID:      runID,
		Manifest:   manifest,
		Selections: selections,
		EvalTables: tables,
		Prediction: set,
		State:      state,
		RuntimeMs:  runtimeMs,
	}, nil
}

// evaluateAll sweeps every inner-fold x complexity cell for each outer
// fold. Fit failures stay NaN in the tables; the first structural error
// aborts the stage after the barrier.
func (s *SelectionService) evaluateAll(ctx context.Context, scorer SupervisedScorer, x [][]float64, y []float64, outer cv.FoldAssignment, cfg cv.RunConfig) ([]*cv.EvalTable, error) {
	tables := make([]*cv.EvalTable, cfg.FoldCount)

	sem := semaphore.NewWeighted(workerBudget(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for f := 1; f <= cfg.FoldCount; f++ {
		trainIdx := outer.ComplementIndices(f)
		innerK := min(cfg.FoldCount, len(trainIdx))
		if innerK < 2 {
			return nil, fmt.Errorf("%w: outer fold %d leaves %d training rows", core.ErrInsufficientData, f, len(trainIdx))
		}

		innerStream, err := s.rng.SeededStream(ctx, fmt.Sprintf("inner-partition-fold-%d", f), cfg.Seed)
		if err != nil {
			return nil, err
		}
		innerAssign, err := folds.Partition(len(trainIdx), innerK, innerStream.Int63())
		if err != nil {
			return nil, err
		}
		tables[f-1] = cv.NewEvalTable(innerK, cfg.MaxComplexity)

		subX := gatherRows(x, trainIdx)
		subY := gatherValues(y, trainIdx)

		for inner := 1; inner <= innerK; inner++ {
			for c := 0; c <= cfg.MaxComplexity; c++ {
				table := tables[f-1]
				inner, c := inner, c
				wg.Add(1)
				if err := sem.Acquire(ctx, 1); err != nil {
					wg.Done()
					return nil, err
				}
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					score, err := scorer.Score(subX, subY, innerAssign, inner, c)
					if err != nil {
						if core.IsFitFailure(err) {
							// cell stays NaN; the selector excludes it
							return
						}
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						return
					}
					table.Set(inner, c, score)
				}()
			}
		}
	}

	// Barrier: selection must not start until every cell is scored
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return tables, nil
}

// predictAll refits each non-degenerate outer fold at its selected
// complexity and collects held-out predictions. Folds whose refit also
// fails join the degenerate set rather than aborting the run.
func (s *SelectionService) predictAll(ctx context.Context, scorer SupervisedScorer, x [][]float64, y []float64, outer cv.FoldAssignment, selections []cv.Selection, degenerate []int, cfg cv.RunConfig) ([]cv.Prediction, []int, error) {
	skip := make(map[int]bool, len(degenerate))
	for _, f := range degenerate {
		skip[f] = true
	}

	sem := semaphore.NewWeighted(workerBudget(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	var all []cv.Prediction
	var predictedFolds []int

	for f := 1; f <= cfg.FoldCount; f++ {
		if skip[f] {
			continue
		}
		f := f
		wg.Add(1)
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Done()
			return nil, nil, err
		}
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			preds, err := scorer.FitHeldOut(x, y, outer, f, selections[f-1].Complexity)
			if err != nil {
				mu.Lock()
				defer mu.Unlock()
				if core.IsFitFailure(err) {
					log.Printf("[SelectionService] outer fold %d: refit failed at complexity %d", f, selections[f-1].Complexity)
					return
				}
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			mu.Lock()
			all = append(all, preds...)
			predictedFolds = append(predictedFolds, f)
			mu.Unlock()
		}()
	}

	wg.Wait()
	if firstErr != nil {
		return nil, nil, firstErr
	}
	sort.Ints(predictedFolds)
	return all, predictedFolds, nil
}

func (s *SelectionService) storeArtifact(ctx context.Context, runID core.RunID, kind core.ArtifactKind, payload interface{}) {
	artifact := core.Artifact{
		ID:        core.NewID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: core.Now(),
	}
	if err := s.ledger.StoreArtifact(ctx, runID.String(), artifact); err != nil {
		log.Printf("[SelectionService] failed to store %s artifact: %v", kind, err)
	}
}
