package dataset

import (
	"fmt"
	"math"

	"crossfold/domain/core"
)

// MatrixBundle is the canonical data object for all cross-validation work.
// It is the single input to the run pipeline and is treated as read-only
// for the lifetime of a run.
type MatrixBundle struct {
	// Core data
	Matrix     Matrix
	ColumnMeta []ColumnMeta

	// Optional response vector for supervised runs; nil for
	// unsupervised (bi-cross-validation) runs.
	Response []float64

	// Context references for determinism
	DatasetID core.DatasetID
	Source    string

	CreatedAt core.Timestamp

	// Fingerprint for replayability
	Fingerprint core.Hash
}

// Matrix represents dense numerical data ready for cross-validation,
// rows are observations and columns are variables.
type Matrix struct {
	Data         [][]float64
	RowIDs       []core.ID
	VariableKeys []core.VariableKey
}

// ColumnMeta contains metadata for each matrix column
type ColumnMeta struct {
	VariableKey     core.VariableKey
	StatisticalType StatisticalType
}

// StatisticalType defines variable types for analysis
type StatisticalType string

const (
	TypeNumeric StatisticalType = "numeric"
	TypeBinary  StatisticalType = "binary"
)

// NewMatrixBundle validates shape and builds a fingerprinted bundle.
// The response may be nil; when present its length must match the row count.
func NewMatrixBundle(m Matrix, response []float64, source string) (*MatrixBundle, error) {
	if len(m.Data) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	cols := len(m.Data[0])
	if cols == 0 {
		return nil, core.ErrEmptyMatrix
	}
	for i, row := range m.Data {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, expected %d", core.ErrRaggedMatrix, i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w at [%d,%d]", core.ErrNonNumeric, i, j)
			}
		}
	}
	if len(m.VariableKeys) != 0 && len(m.VariableKeys) != cols {
		return nil, core.NewShapeError("variable keys", cols, len(m.VariableKeys))
	}
	if response != nil && len(response) != len(m.Data) {
		return nil, fmt.Errorf("%w: %d values for %d rows", core.ErrResponseLength, len(response), len(m.Data))
	}

	meta := make([]ColumnMeta, cols)
	for j := range meta {
		key := core.VariableKey(fmt.Sprintf("var_%d", j))
		if len(m.VariableKeys) == cols {
			key = m.VariableKeys[j]
		}
		meta[j] = ColumnMeta{VariableKey: key, StatisticalType: TypeNumeric}
	}

	b := &MatrixBundle{
		Matrix:     m,
		ColumnMeta: meta,
		Response:   response,
		DatasetID:  core.DatasetID(core.NewID()),
		Source:     source,
		CreatedAt:  core.Now(),
	}
	b.Fingerprint = b.computeFingerprint()
	return b, nil
}

// Rows returns the observation count
func (b *MatrixBundle) Rows() int {
	return len(b.Matrix.Data)
}

// Cols returns the variable count
func (b *MatrixBundle) Cols() int {
	if len(b.Matrix.Data) == 0 {
		return 0
	}
	return len(b.Matrix.Data[0])
}

// IsSupervised reports whether a response vector is attached
func (b *MatrixBundle) IsSupervised() bool {
	return b.Response != nil
}

// Row returns a single observation vector. The returned slice aliases
// bundle storage and must not be mutated.
func (b *MatrixBundle) Row(i int) []float64 {
	return b.Matrix.Data[i]
}

// Column copies one variable's values out of the matrix
func (b *MatrixBundle) Column(j int) []float64 {
	out := make([]float64, len(b.Matrix.Data))
	for i, row := range b.Matrix.Data {
		out[i] = row[j]
	}
	return out
}

// computeFingerprint hashes every cell plus the response in row-major
// order, so bit-identical data always replays to the same fingerprint.
func (b *MatrixBundle) computeFingerprint() core.Hash {
	flat := make([]float64, 0, b.Rows()*b.Cols()+len(b.Response))
	for _, row := range b.Matrix.Data {
		flat = append(flat, row...)
	}
	flat = append(flat, b.Response...)
	return core.HashFloats(flat)
}
