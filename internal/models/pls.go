package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"crossfold/domain/core"
)

// PLS is a partial least squares regression (PLS1, NIPALS) fit on
// training rows. The fitted model collapses to a single coefficient
// vector plus intercept, so prediction is one dot product per row.
type PLS struct {
	k         int
	coef      []float64
	intercept float64
	yMean     float64
}

// FitPLS fits a PLS1 regression with the requested number of latent
// components. Complexity 0 is the intercept-only model predicting the
// training response mean.
func FitPLS(x [][]float64, y []float64, complexity int) (*PLS, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if len(y) != len(x) {
		return nil, core.NewShapeError("response length", len(x), len(y))
	}
	if complexity < 0 {
		return nil, fmt.Errorf("%w: negative complexity %d", core.ErrInvalidComplexity, complexity)
	}
	n, p := len(x), len(x[0])

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	model := &PLS{k: complexity, yMean: yMean}
	if complexity == 0 {
		return model, nil
	}
	if complexity > min(n-1, p) {
		return nil, core.NewFitError(complexity, core.ErrRankDeficient)
	}

	xMeans := make([]float64, p)
	for _, row := range x {
		for j, v := range row {
			xMeans[j] += v
		}
	}
	for j := range xMeans {
		xMeans[j] /= float64(n)
	}

	// Work on centered copies; NIPALS deflates them in place.
	e := mat.NewDense(n, p, nil)
	for i, row := range x {
		for j, v := range row {
			e.Set(i, j, v-xMeans[j])
		}
	}
	f := mat.NewVecDense(n, nil)
	for i, v := range y {
		f.SetVec(i, v-yMean)
	}

	w := mat.NewDense(p, complexity, nil) // weights
	loadP := mat.NewDense(p, complexity, nil)
	q := make([]float64, complexity)

	for a := 0; a < complexity; a++ {
		// w_a = E'f / ||E'f||
		var wa mat.VecDense
		wa.MulVec(e.T(), f)
		norm := mat.Norm(&wa, 2)
		if norm < 1e-12 {
			return nil, core.NewFitError(complexity, fmt.Errorf("degenerate weight vector at component %d", a+1))
		}
		wa.ScaleVec(1/norm, &wa)

		// t_a = E w_a
		var ta mat.VecDense
		ta.MulVec(e, &wa)
		tt := mat.Dot(&ta, &ta)
		if tt < 1e-12 {
			return nil, core.NewFitError(complexity, fmt.Errorf("degenerate score vector at component %d", a+1))
		}

		// p_a = E't_a / t't, q_a = f't_a / t't
		var pa mat.VecDense
		pa.MulVec(e.T(), &ta)
		pa.ScaleVec(1/tt, &pa)
		qa := mat.Dot(f, &ta) / tt

		// Deflate: E -= t p', f -= q t
		var outer mat.Dense
		outer.Outer(1, &ta, &pa)
		e.Sub(e, &outer)
		var fStep mat.VecDense
		fStep.ScaleVec(qa, &ta)
		f.SubVec(f, &fStep)

		w.SetCol(a, vecData(&wa))
		loadP.SetCol(a, vecData(&pa))
		q[a] = qa
	}

	// B = W (P'W)^-1 q - the usual PLS1 collapse to direct coefficients
	var pw mat.Dense
	pw.Mul(loadP.T(), w)
	var pwInv mat.Dense
	if err := pwInv.Inverse(&pw); err != nil {
		return nil, core.NewFitError(complexity, fmt.Errorf("singular P'W: %v", err))
	}
	qVec := mat.NewVecDense(complexity, q)
	var tmp mat.VecDense
	tmp.MulVec(&pwInv, qVec)
	var b mat.VecDense
	b.MulVec(w, &tmp)

	model.coef = vecData(&b)
	model.intercept = yMean
	for j := 0; j < p; j++ {
		model.intercept -= model.coef[j] * xMeans[j]
	}

	for _, c := range model.coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, core.NewFitError(complexity, fmt.Errorf("non-finite coefficients"))
		}
	}

	return model, nil
}

// Complexity returns the number of latent components
func (m *PLS) Complexity() int {
	return m.k
}

// Predict evaluates the fitted model on held-out rows
func (m *PLS) Predict(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if m.k == 0 {
			out[i] = m.yMean
			continue
		}
		s := m.intercept
		for j, v := range row {
			s += m.coef[j] * v
		}
		out[i] = s
	}
	return out
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
