package models

import (
	"math"
	"testing"

	"crossfold/domain/core"
	"crossfold/internal/testkit"
)

func rmse1D(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}

func TestFitPLS(t *testing.T) {
	x := testkit.LowRankMatrix(60, 6, 4, 0.05, 21)
	y := testkit.LinearResponse(x, 0.05, 21)

	t.Run("recovers linear relation", func(t *testing.T) {
		model, err := FitPLS(x, y, 4)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		pred := model.Predict(x)
		if e := rmse1D(pred, y); e > 0.5 {
			t.Errorf("in-sample rmse too large for near-noiseless linear data: %v", e)
		}
	})

	t.Run("complexity 0 predicts training mean", func(t *testing.T) {
		model, err := FitPLS(x, y, 0)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))

		pred := model.Predict(x[:3])
		for _, p := range pred {
			if math.Abs(p-mean) > 1e-9 {
				t.Errorf("expected mean prediction %v, got %v", mean, p)
			}
		}
	})

	t.Run("more components fit no worse in sample", func(t *testing.T) {
		lo, err := FitPLS(x, y, 1)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		hi, err := FitPLS(x, y, 4)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		if rmse1D(hi.Predict(x), y) > rmse1D(lo.Predict(x), y)+1e-9 {
			t.Error("in-sample error must not increase with components")
		}
	})

	t.Run("complexity above rank fails as fit failure", func(t *testing.T) {
		_, err := FitPLS(x, y, 7)
		if !core.IsFitFailure(err) {
			t.Errorf("expected fit failure, got %v", err)
		}
	})

	t.Run("response length mismatch", func(t *testing.T) {
		_, err := FitPLS(x, y[:10], 2)
		if !core.IsDataShapeError(err) {
			t.Errorf("expected data shape error, got %v", err)
		}
	})

	t.Run("fit parameters ignore held-out rows", func(t *testing.T) {
		train, trainY := x[:40], y[:40]
		a, err := FitPLS(train, trainY, 3)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		b, err := FitPLS(train, trainY, 3)
		if err != nil {
			t.Fatalf("refit failed: %v", err)
		}
		probe := x[40:]
		if rmse1D(a.Predict(probe), b.Predict(probe)) != 0 {
			t.Error("identical training data must produce identical predictions")
		}
	})
}

func TestFitScaler(t *testing.T) {
	t.Run("standardizes training rows", func(t *testing.T) {
		x := testkit.LowRankMatrix(50, 4, 2, 0.5, 31)
		s, err := FitScaler(x)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		z := s.Transform(x)
		for j := 0; j < 4; j++ {
			mean := 0.0
			for i := range z {
				mean += z[i][j]
			}
			mean /= float64(len(z))
			if math.Abs(mean) > 1e-9 {
				t.Errorf("column %d mean not centered: %v", j, mean)
			}
		}
	})

	t.Run("constant column passes through", func(t *testing.T) {
		x := [][]float64{{5, 1}, {5, 2}, {5, 3}}
		s, err := FitScaler(x)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		z := s.Transform(x)
		for i := range z {
			if z[i][0] != 0 {
				t.Errorf("constant column should center to 0, got %v", z[i][0])
			}
		}
	})

	t.Run("held-out rows use training statistics", func(t *testing.T) {
		train := [][]float64{{0}, {2}}
		s, err := FitScaler(train)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		// training mean 1, sd sqrt(2); a held-out 3 maps relative to those
		z := s.Transform([][]float64{{3}})
		want := (3.0 - 1.0) / math.Sqrt2
		if math.Abs(z[0][0]-want) > 1e-12 {
			t.Errorf("expected %v, got %v", want, z[0][0])
		}
	})
}
