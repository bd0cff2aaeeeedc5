// Package datasets generates synthetic binary classification data with a
// known sparse signal, for tests and examples.
package datasets

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// MakeSparseLogistic draws an n×p standard normal design and Bernoulli labels
// with P(y=1) = σ(intercept + Σ coef[i]·X[:, support[i]]).
// The same seed always yields the same data.
func MakeSparseLogistic(n, p int, support []int, coef []float64, intercept float64, seed uint64) (*mat.Dense, []float64, error) {
	if n <= 0 || p <= 0 {
		return nil, nil, errors.NewValidationError("shape", "n and p must be positive", [2]int{n, p})
	}
	if len(support) != len(coef) {
		return nil, nil, errors.NewDimensionError("MakeSparseLogistic", len(support), len(coef), 0)
	}
	for _, j := range support {
		if j < 0 || j >= p {
			return nil, nil, errors.NewValidationError("support", "index out of range", j)
		}
	}

	r := newRand(seed)
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, r.NormFloat64())
		}
		z := intercept
		for k, j := range support {
			z += coef[k] * X.At(i, j)
		}
		if r.Float64() < 1/(1+math.Exp(-z)) {
			y[i] = 1
		}
	}
	return X, y, nil
}

// MakeSeparable returns data that column col separates perfectly with a
// margin of at least 0.5: X[i, col] = ±(0.5 + |N(0,1)|) with the sign given
// by the label. Labels alternate so both classes are equally represented;
// the other columns are standard normal noise.
func MakeSeparable(n, p, col int, seed uint64) (*mat.Dense, []float64, error) {
	if n < 2 || p <= 0 {
		return nil, nil, errors.NewValidationError("shape", "need n >= 2 and p >= 1", [2]int{n, p})
	}
	if col < 0 || col >= p {
		return nil, nil, errors.NewValidationError("col", "index out of range", col)
	}

	r := newRand(seed)
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = float64(i % 2)
		for j := 0; j < p; j++ {
			X.Set(i, j, r.NormFloat64())
		}
		v := 0.5 + math.Abs(r.NormFloat64())
		if y[i] == 0 {
			v = -v
		}
		X.Set(i, col, v)
	}
	return X, y, nil
}

// Column wraps labels as an n×1 matrix, the shape estimators expect for y.
func Column(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, append([]float64(nil), y...))
}
