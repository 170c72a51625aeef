package dataset

import (
	"math"
	"testing"

	"crossfold/domain/core"
)

func squareMatrix(n int) Matrix {
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		for j := range data[i] {
			data[i][j] = float64(i*n + j)
		}
	}
	return Matrix{Data: data}
}

func TestNewMatrixBundle(t *testing.T) {
	t.Run("valid matrix", func(t *testing.T) {
		b, err := NewMatrixBundle(squareMatrix(4), nil, "test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Rows() != 4 || b.Cols() != 4 {
			t.Errorf("expected 4x4, got %dx%d", b.Rows(), b.Cols())
		}
		if b.Fingerprint.IsEmpty() {
			t.Error("expected non-empty fingerprint")
		}
		if b.IsSupervised() {
			t.Error("no response attached, bundle must be unsupervised")
		}
	})

	t.Run("empty matrix rejected", func(t *testing.T) {
		_, err := NewMatrixBundle(Matrix{}, nil, "test")
		if !core.IsInsufficientDataError(err) {
			t.Errorf("expected insufficient data error, got %v", err)
		}
	})

	t.Run("ragged rows rejected", func(t *testing.T) {
		m := Matrix{Data: [][]float64{{1, 2}, {3}}}
		_, err := NewMatrixBundle(m, nil, "test")
		if !core.IsDataShapeError(err) {
			t.Errorf("expected data shape error, got %v", err)
		}
	})

	t.Run("NaN entry rejected", func(t *testing.T) {
		m := Matrix{Data: [][]float64{{1, 2}, {math.NaN(), 4}}}
		_, err := NewMatrixBundle(m, nil, "test")
		if !core.IsDataShapeError(err) {
			t.Errorf("expected data shape error, got %v", err)
		}
	})

	t.Run("response length mismatch rejected", func(t *testing.T) {
		_, err := NewMatrixBundle(squareMatrix(4), []float64{1, 2, 3}, "test")
		if !core.IsDataShapeError(err) {
			t.Errorf("expected data shape error, got %v", err)
		}
	})

	t.Run("fingerprint is stable", func(t *testing.T) {
		a, _ := NewMatrixBundle(squareMatrix(3), nil, "test")
		b, _ := NewMatrixBundle(squareMatrix(3), nil, "test")
		if !a.Fingerprint.Equals(b.Fingerprint) {
			t.Error("identical data must fingerprint identically")
		}
	})

	t.Run("fingerprint covers response", func(t *testing.T) {
		y1 := []float64{1, 2, 3, 4}
		y2 := []float64{1, 2, 3, 5}
		a, _ := NewMatrixBundle(squareMatrix(4), y1, "test")
		b, _ := NewMatrixBundle(squareMatrix(4), y2, "test")
		if a.Fingerprint.Equals(b.Fingerprint) {
			t.Error("changed response must change the fingerprint")
		}
	})
}

func TestColumn(t *testing.T) {
	b, _ := NewMatrixBundle(squareMatrix(3), nil, "test")
	col := b.Column(1)
	want := []float64{1, 4, 7}
	for i := range want {
		if col[i] != want[i] {
			t.Errorf("column[%d]: expected %v, got %v", i, want[i], col[i])
		}
	}
}
