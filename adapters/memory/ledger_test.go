package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfold/domain/core"
	"crossfold/domain/cv"
)

func newArtifact(kind core.ArtifactKind, payload interface{}) core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: core.Now(),
	}
}

func TestLedgerStoreAndGet(t *testing.T) {
	ledger := NewLedgerAdapter()
	ctx := context.Background()

	artifact := newArtifact(core.ArtifactSelection, cv.Selection{Complexity: 3, MeanError: 0.5})
	require.NoError(t, ledger.StoreArtifact(ctx, "run-1", artifact))

	got, err := ledger.GetArtifact(ctx, core.ArtifactID(artifact.ID))
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, got.ID)
	assert.Equal(t, core.ArtifactSelection, got.Kind)

	_, err = ledger.GetArtifact(ctx, core.ArtifactID(core.NewID()))
	assert.Error(t, err)
}

func TestLedgerListsByRunInInsertionOrder(t *testing.T) {
	ledger := NewLedgerAdapter()
	ctx := context.Background()

	first := newArtifact(core.ArtifactFoldAssignment, nil)
	second := newArtifact(core.ArtifactEvalTable, nil)
	require.NoError(t, ledger.StoreArtifact(ctx, "run-1", first))
	require.NoError(t, ledger.StoreArtifact(ctx, "run-1", second))
	require.NoError(t, ledger.StoreArtifact(ctx, "run-2", newArtifact(core.ArtifactEvalTable, nil)))

	artifacts, err := ledger.GetArtifactsByRun(ctx, core.RunID("run-1"))
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, first.ID, artifacts[0].ID)
	assert.Equal(t, second.ID, artifacts[1].ID)
}

func TestLedgerFiltersByKind(t *testing.T) {
	ledger := NewLedgerAdapter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.StoreArtifact(ctx, "run-1", newArtifact(core.ArtifactEvalTable, nil)))
	}
	require.NoError(t, ledger.StoreArtifact(ctx, "run-1", newArtifact(core.ArtifactSelection, nil)))

	tables, err := ledger.GetArtifactsByKind(ctx, core.ArtifactEvalTable, 0)
	require.NoError(t, err)
	assert.Len(t, tables, 5)

	limited, err := ledger.GetArtifactsByKind(ctx, core.ArtifactEvalTable, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLedgerReturnsRunManifest(t *testing.T) {
	ledger := NewLedgerAdapter()
	ctx := context.Background()

	runID := core.RunID(core.NewID())
	manifest := cv.NewRunManifest(runID, core.DatasetID(core.NewID()), core.NewHash([]byte("data")),
		core.NewConfigHash([]byte("cfg")), 42, []string{"partition"}, "v0.1.0")
	require.NoError(t, ledger.StoreArtifact(ctx, runID.String(), manifest.ToArtifact()))

	got, err := ledger.GetRunManifest(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, int64(42), got.Seed)

	_, err = ledger.GetRunManifest(ctx, core.RunID(core.NewID()))
	assert.Error(t, err)
}

func TestLedgerConcurrentWrites(t *testing.T) {
	ledger := NewLedgerAdapter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			runID := fmt.Sprintf("run-%d", w)
			for i := 0; i < 20; i++ {
				_ = ledger.StoreArtifact(ctx, runID, newArtifact(core.ArtifactEvalTable, nil))
			}
		}()
	}
	wg.Wait()

	for w := 0; w < 8; w++ {
		artifacts, err := ledger.GetArtifactsByRun(ctx, core.RunID(fmt.Sprintf("run-%d", w)))
		require.NoError(t, err)
		assert.Len(t, artifacts, 20)
	}
}
