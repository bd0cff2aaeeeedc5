package cga

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSigmoidStable(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.InDelta(t, 1/(1+math.Exp(-3)), Sigmoid(3), 1e-15)
	assert.InDelta(t, 1/(1+math.Exp(3)), Sigmoid(-3), 1e-15)

	assert.Equal(t, 1.0, Sigmoid(800))
	assert.Equal(t, 0.0, Sigmoid(-800))
	assert.False(t, math.IsNaN(Sigmoid(-1e308)))

	for _, z := range []float64{-30, -2.5, 0.1, 7} {
		assert.InDelta(t, 1.0, Sigmoid(z)+Sigmoid(-z), 1e-15)
	}
}

func TestLog1pExpStable(t *testing.T) {
	assert.InDelta(t, math.Ln2, Log1pExp(0), 1e-15)
	assert.InDelta(t, math.Log1p(math.Exp(2)), Log1pExp(2), 1e-14)
	assert.InDelta(t, math.Log1p(math.Exp(-2)), Log1pExp(-2), 1e-15)

	assert.Equal(t, 1000.0, Log1pExp(1000))
	assert.False(t, math.IsInf(Log1pExp(1000), 0))
	assert.InDelta(t, 0, Log1pExp(-1000), 1e-300)
}

// smallProblem returns a random design and fractional labels.
func smallProblem() (*mat.Dense, []float64) {
	r := rand.New(rand.NewPCG(3, 5))
	design := mat.NewDense(20, 4, nil)
	y := make([]float64, 20)
	for i := 0; i < 20; i++ {
		for j := 0; j < 4; j++ {
			design.Set(i, j, r.NormFloat64())
		}
		y[i] = r.Float64()
	}
	return design, y
}

func TestObjectiveMatchesFiniteDifferences(t *testing.T) {
	design, y := smallProblem()
	cols := []int{0, 2, 3}
	beta := []float64{0.3, -0.7, 1.1}
	obj := NewObjective(design, y, cols)
	require.Equal(t, 3, obj.Dim())

	const h = 1e-6
	grad := make([]float64, 3)
	obj.Grad(grad, beta)
	for j := range beta {
		plus := append([]float64(nil), beta...)
		minus := append([]float64(nil), beta...)
		plus[j] += h
		minus[j] -= h
		fd := (obj.Func(plus) - obj.Func(minus)) / (2 * h)
		assert.InDelta(t, fd, grad[j], 1e-7, "grad[%d]", j)
	}

	hess := mat.NewSymDense(3, nil)
	obj.Hess(hess, beta)
	gp := make([]float64, 3)
	gm := make([]float64, 3)
	for j := range beta {
		plus := append([]float64(nil), beta...)
		minus := append([]float64(nil), beta...)
		plus[j] += h
		minus[j] -= h
		obj.Grad(gp, plus)
		obj.Grad(gm, minus)
		for i := range beta {
			assert.InDelta(t, (gp[i]-gm[i])/(2*h), hess.At(i, j), 1e-7, "hess[%d][%d]", i, j)
		}
	}
}

func TestObjectiveAtZero(t *testing.T) {
	design, y := smallProblem()
	obj := NewObjective(design, y, []int{1})
	assert.InDelta(t, math.Ln2, obj.Func([]float64{0}), 1e-15)

	empty := NewObjective(design, y, nil)
	assert.Equal(t, 0, empty.Dim())
	assert.InDelta(t, math.Ln2, empty.Func(nil), 1e-15)
}

func TestFullGradientAgreesWithRestrictedGradient(t *testing.T) {
	design, y := smallProblem()
	cols := []int{3, 1}
	beta := []float64{0.4, -0.2}

	full := FullGradient(design, y, cols, beta)
	require.Len(t, full, 4)

	all := NewObjective(design, y, []int{0, 1, 2, 3})
	dense := []float64{0, -0.2, 0, 0.4}
	grad := make([]float64, 4)
	all.Grad(grad, dense)
	assert.InDeltaSlice(t, grad, full, 1e-14)
}

func TestObjectiveLargeMarginsStayFinite(t *testing.T) {
	design := mat.NewDense(2, 1, []float64{1, -1})
	y := []float64{1, 0}
	obj := NewObjective(design, y, []int{0})

	f := obj.Func([]float64{1000})
	assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
	assert.InDelta(t, 0, f, 1e-300)

	f = obj.Func([]float64{-1000})
	assert.InDelta(t, 1000, f, 1e-9)
}
