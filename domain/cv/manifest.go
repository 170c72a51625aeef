package cv

import (
	"fmt"

	"crossfold/domain/core"
)

// RunManifest is the truth source for replaying a run: it captures the
// dataset fingerprint, the full configuration, and the seed before any
// stage artifact is produced.
type RunManifest struct {
	RunID              core.RunID      `json:"run_id"`
	DatasetID          core.DatasetID  `json:"dataset_id"`
	DatasetFingerprint core.Hash       `json:"dataset_fingerprint"`
	ConfigHash         core.ConfigHash `json:"config_hash"`
	Seed               int64           `json:"seed"`
	Stages             []string        `json:"stages"`
	CodeVersion        string          `json:"code_version"`
	Fingerprint        core.Hash       `json:"fingerprint"`
	RuntimeMs          int64           `json:"runtime_ms"`
	CreatedAt          core.Timestamp  `json:"created_at"`
}

// NewRunManifest builds a manifest and its determinism fingerprint
func NewRunManifest(runID core.RunID, datasetID core.DatasetID, datasetFP core.Hash, configHash core.ConfigHash, seed int64, stages []string, codeVersion string) *RunManifest {
	m := &RunManifest{
		RunID:              runID,
		DatasetID:          datasetID,
		DatasetFingerprint: datasetFP,
		ConfigHash:         configHash,
		Seed:               seed,
		Stages:             stages,
		CodeVersion:        codeVersion,
		CreatedAt:          core.Now(),
	}
	m.Fingerprint = m.computeFingerprint()
	return m
}

func (m *RunManifest) computeFingerprint() core.Hash {
	data := fmt.Sprintf("%s|%s|%s|%d|%v|%s",
		m.DatasetFingerprint, m.ConfigHash, m.DatasetID, m.Seed, m.Stages, m.CodeVersion)
	return core.NewHash([]byte(data))
}

// ToArtifact converts the manifest to a core artifact for the ledger
func (m *RunManifest) ToArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactRunManifest,
		Payload:   m,
		CreatedAt: m.CreatedAt,
	}
}

// Validate checks if the manifest is complete
func (m *RunManifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.DatasetFingerprint.IsEmpty() {
		return fmt.Errorf("run manifest: dataset fingerprint cannot be empty")
	}
	if len(m.Stages) == 0 {
		return fmt.Errorf("run manifest: stage list cannot be empty")
	}
	return nil
}
