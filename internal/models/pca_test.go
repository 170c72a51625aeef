package models

import (
	"math"
	"testing"

	"crossfold/domain/core"
	"crossfold/internal/testkit"
)

func rmse2D(a, b [][]float64) float64 {
	sum, n := 0.0, 0
	for i := range a {
		for j := range a[i] {
			d := a[i][j] - b[i][j]
			sum += d * d
			n++
		}
	}
	return math.Sqrt(sum / float64(n))
}

func TestFitPCA(t *testing.T) {
	x := testkit.LowRankMatrix(40, 8, 3, 0.01, 11)

	t.Run("rank-r matrix reconstructs at complexity r", func(t *testing.T) {
		model, err := FitPCA(x, 3)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		errAtR := rmse2D(x, model.Reconstruct(x))

		zero, err := FitPCA(x, 0)
		if err != nil {
			t.Fatalf("complexity 0 fit failed: %v", err)
		}
		errAtZero := rmse2D(x, zero.Reconstruct(x))

		if errAtR >= errAtZero {
			t.Errorf("complexity 3 error %v should beat complexity 0 error %v", errAtR, errAtZero)
		}
		if errAtR > 0.1 {
			t.Errorf("rank-3 data should reconstruct nearly exactly at complexity 3, rmse=%v", errAtR)
		}
	})

	t.Run("complexity 0 reconstructs column means", func(t *testing.T) {
		model, err := FitPCA(x, 0)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		recon := model.Reconstruct(x[:1])
		for j, v := range recon[0] {
			mean := 0.0
			for i := range x {
				mean += x[i][j]
			}
			mean /= float64(len(x))
			if math.Abs(v-mean) > 1e-9 {
				t.Errorf("column %d: expected mean %v, got %v", j, mean, v)
			}
		}
	})

	t.Run("complexity beyond rank fails as fit failure", func(t *testing.T) {
		small := [][]float64{{1, 2, 3}, {4, 5, 6}}
		_, err := FitPCA(small, 3)
		if !core.IsFitFailure(err) {
			t.Errorf("expected fit failure, got %v", err)
		}
	})

	t.Run("projection dimensionality", func(t *testing.T) {
		model, err := FitPCA(x, 2)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		scores := model.Project(x[:5])
		if len(scores) != 5 || len(scores[0]) != 2 {
			t.Errorf("expected 5x2 scores, got %dx%d", len(scores), len(scores[0]))
		}
	})

	t.Run("fit ignores rows it never saw", func(t *testing.T) {
		train := x[:30]
		a, err := FitPCA(train, 2)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		b, err := FitPCA(train, 2)
		if err != nil {
			t.Fatalf("refit failed: %v", err)
		}
		probe := x[30:]
		ra, rb := a.Reconstruct(probe), b.Reconstruct(probe)
		if rmse2D(ra, rb) != 0 {
			t.Error("identical training data must produce identical fits")
		}
	})
}
