package memory

import (
	"context"
	"fmt"
	"sync"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

// LedgerAdapter implements ports.LedgerPort with in-memory storage.
// Runs keep no durable state; the ledger lives exactly as long as the
// process that owns it.
type LedgerAdapter struct {
	artifacts    map[core.ArtifactID]core.Artifact
	runArtifacts map[core.RunID][]core.ArtifactID
	mu           sync.RWMutex
}

// NewLedgerAdapter creates an empty in-memory ledger
func NewLedgerAdapter() *LedgerAdapter {
	return &LedgerAdapter{
		artifacts:    make(map[core.ArtifactID]core.Artifact),
		runArtifacts: make(map[core.RunID][]core.ArtifactID),
	}
}

// StoreArtifact appends an artifact to the ledger
func (s *LedgerAdapter) StoreArtifact(ctx context.Context, runID string, artifact core.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifactID := core.ArtifactID(artifact.ID)
	s.artifacts[artifactID] = artifact

	runIDTyped := core.RunID(runID)
	s.runArtifacts[runIDTyped] = append(s.runArtifacts[runIDTyped], artifactID)

	return nil
}

// GetArtifact looks up a single artifact by ID
func (s *LedgerAdapter) GetArtifact(ctx context.Context, artifactID core.ArtifactID) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[artifactID]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", artifactID)
	}
	return &artifact, nil
}

// GetArtifactsByRun returns all artifacts stored for a run, in insertion order
func (s *LedgerAdapter) GetArtifactsByRun(ctx context.Context, runID core.RunID) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.runArtifacts[runID]
	results := make([]core.Artifact, 0, len(ids))
	for _, id := range ids {
		if artifact, ok := s.artifacts[id]; ok {
			results = append(results, artifact)
		}
	}
	return results, nil
}

// GetArtifactsByKind returns up to limit artifacts of one kind
func (s *LedgerAdapter) GetArtifactsByKind(ctx context.Context, kind core.ArtifactKind, limit int) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []core.Artifact
	for _, artifact := range s.artifacts {
		if artifact.Kind != kind {
			continue
		}
		results = append(results, artifact)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// GetRunManifest returns the manifest stored for a run
func (s *LedgerAdapter) GetRunManifest(ctx context.Context, runID core.RunID) (*cv.RunManifest, error) {
	artifacts, err := s.GetArtifactsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	for _, artifact := range artifacts {
		if artifact.Kind != core.ArtifactRunManifest {
			continue
		}
		if manifest, ok := artifact.Payload.(*cv.RunManifest); ok {
			return manifest, nil
		}
	}
	return nil, fmt.Errorf("run manifest not found for run %s", runID)
}
