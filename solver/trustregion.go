package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// Trust-region constants, matching the usual defaults of SciPy's
// trust-region family.
const (
	initialTrustRadius = 1.0
	maxTrustRadius     = 1000.0
	eta                = 0.15
	// roundoff scales the threshold below which a function decrease is
	// indistinguishable from rounding error.
	roundoff = 10 * 2.220446049250313e-16
)

// Status strings reported by the trust-region methods. The names mirror
// gonum's optimize.Status values where one exists.
const (
	statusGradientThreshold = "GradientThreshold"
	statusIterationLimit    = "IterationLimit"
	statusPrecisionLoss     = "PrecisionLoss"
	statusNonFinite         = "NonFiniteValue"
)

// stepFunc approximately minimizes the quadratic model
// m(p) = gᵀp + ½pᵀBp subject to ‖p‖ ≤ radius and reports whether the step
// lies on the boundary.
type stepFunc func(g []float64, hess *mat.SymDense, radius float64) (p []float64, hitsBoundary bool)

type trustRegion struct {
	method Method
	step   stepFunc
}

func (t *trustRegion) Method() Method { return t.method }

// Minimize runs the basic trust-region loop: solve the subproblem, compare
// the actual with the predicted reduction, resize the radius and accept the
// step when the ratio exceeds eta.
func (t *trustRegion) Minimize(p optimize.Problem, x0 []float64, settings Settings) (*Result, error) {
	if err := checkProblem(t.method, p, settings); err != nil {
		return nil, err
	}
	dim := len(x0)
	if dim == 0 {
		r := trivial(p)
		logResult(settings, t.method, dim, r)
		return r, nil
	}
	maxIter := settings.maxIter(dim)

	x := append([]float64(nil), x0...)
	xNew := make([]float64, dim)
	g := make([]float64, dim)
	gNew := make([]float64, dim)
	bp := make([]float64, dim)
	hess := mat.NewSymDense(dim, nil)
	hessNew := mat.NewSymDense(dim, nil)

	f := p.Func(x)
	p.Grad(g, x)
	p.Hess(hess, x)

	radius := initialTrustRadius
	status := ""
	k := 0
	for {
		if !isFinite(f) || !allFinite(g) {
			status = statusNonFinite
			break
		}
		if floats.Norm(g, 2) < settings.Tol {
			status = statusGradientThreshold
			break
		}
		if k >= maxIter {
			status = statusIterationLimit
			break
		}

		step, hitsBoundary := t.step(g, hess, radius)
		symVec(bp, hess, step)
		predicted := -(floats.Dot(g, step) + 0.5*floats.Dot(step, bp))
		if !(predicted > 0) {
			status = statusPrecisionLoss
			break
		}

		floats.AddTo(xNew, x, step)
		fNew := p.Func(xNew)
		actual := f - fNew

		var rho float64
		switch {
		case !isFinite(fNew):
			rho = -1
		case math.Abs(actual) <= roundoff*(1+math.Abs(f)) && predicted <= roundoff*(1+math.Abs(f)):
			// Both reductions are at rounding level; trust the model.
			rho = 1
		default:
			rho = actual / predicted
		}

		if rho < 0.25 {
			radius *= 0.25
		} else if rho > 0.75 && hitsBoundary {
			radius = math.Min(2*radius, maxTrustRadius)
		}

		if rho > eta {
			p.Grad(gNew, xNew)
			p.Hess(hessNew, xNew)
			x, xNew = xNew, x
			g, gNew = gNew, g
			hess, hessNew = hessNew, hess
			f = fNew
		}
		k++
	}

	r := &Result{
		X:          x,
		F:          f,
		Iterations: k,
		Converged:  status == statusGradientThreshold,
		Status:     status,
	}
	logResult(settings, t.method, dim, r)
	return r, nil
}

// doglegStep combines the Cauchy point and the Newton point. When the
// Hessian is not positive definite the Newton point does not exist and the
// (possibly truncated) Cauchy point is returned instead.
func doglegStep(g []float64, hess *mat.SymDense, radius float64) ([]float64, bool) {
	n := len(g)

	newton, ok := newtonPoint(g, hess)
	if ok && floats.Norm(newton, 2) < radius {
		return newton, false
	}

	bg := make([]float64, n)
	symVec(bg, hess, g)
	gBg := floats.Dot(g, bg)
	gg := floats.Dot(g, g)

	cauchy := make([]float64, n)
	if gBg <= 0 {
		// Negative curvature along -g: go to the boundary.
		floats.ScaleTo(cauchy, -radius/math.Sqrt(gg), g)
		return cauchy, true
	}
	floats.ScaleTo(cauchy, -gg/gBg, g)
	cauchyNorm := floats.Norm(cauchy, 2)
	if cauchyNorm >= radius {
		floats.Scale(radius/cauchyNorm, cauchy)
		return cauchy, true
	}
	if !ok {
		return cauchy, false
	}

	// Walk from the Cauchy point towards the Newton point until the boundary.
	d := make([]float64, n)
	floats.SubTo(d, newton, cauchy)
	_, tb := boundaryIntersections(cauchy, d, radius)
	floats.AddScaled(cauchy, tb, d)
	return cauchy, true
}

func newtonPoint(g []float64, hess *mat.SymDense) ([]float64, bool) {
	n := len(g)
	var chol mat.Cholesky
	if !chol.Factorize(hess) {
		return nil, false
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(n, g)); err != nil {
		// An ill-conditioned but positive definite Hessian still yields a
		// usable direction; anything else does not.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}
	newton := make([]float64, n)
	for i := range newton {
		newton[i] = -sol.AtVec(i)
	}
	if !allFinite(newton) {
		return nil, false
	}
	return newton, true
}

// steihaugStep runs truncated conjugate gradients on the quadratic model,
// stopping at the boundary or on negative curvature.
func steihaugStep(g []float64, hess *mat.SymDense, radius float64) ([]float64, bool) {
	n := len(g)
	gNorm := floats.Norm(g, 2)
	tolerance := math.Min(0.5, math.Sqrt(gNorm)) * gNorm

	z := make([]float64, n)
	if gNorm < tolerance {
		return z, false
	}
	r := append([]float64(nil), g...)
	d := make([]float64, n)
	floats.ScaleTo(d, -1, g)
	bd := make([]float64, n)
	zNext := make([]float64, n)

	for iter := 0; iter < 2*n+10; iter++ {
		symVec(bd, hess, d)
		dBd := floats.Dot(d, bd)
		if dBd <= 0 {
			ta, tb := boundaryIntersections(z, d, radius)
			pa := append([]float64(nil), z...)
			floats.AddScaled(pa, ta, d)
			pb := append([]float64(nil), z...)
			floats.AddScaled(pb, tb, d)
			if modelValue(g, hess, pa) < modelValue(g, hess, pb) {
				return pa, true
			}
			return pb, true
		}

		rSq := floats.Dot(r, r)
		alpha := rSq / dBd
		copy(zNext, z)
		floats.AddScaled(zNext, alpha, d)
		if floats.Norm(zNext, 2) >= radius {
			_, tb := boundaryIntersections(z, d, radius)
			floats.AddScaled(z, tb, d)
			return z, true
		}

		floats.AddScaled(r, alpha, bd)
		rNextSq := floats.Dot(r, r)
		z, zNext = zNext, z
		if math.Sqrt(rNextSq) < tolerance {
			return z, false
		}
		beta := rNextSq / rSq
		for i := range d {
			d[i] = -r[i] + beta*d[i]
		}
	}
	return z, false
}

// boundaryIntersections solves ‖z + t·d‖ = radius for t and returns the two
// roots in ascending order.
func boundaryIntersections(z, d []float64, radius float64) (float64, float64) {
	a := floats.Dot(d, d)
	b := 2 * floats.Dot(z, d)
	c := floats.Dot(z, z) - radius*radius
	sqrtDiscriminant := math.Sqrt(b*b - 4*a*c)

	// Avoids cancellation in the textbook formula.
	aux := b + math.Copysign(sqrtDiscriminant, b)
	ta := -aux / (2 * a)
	tb := -2 * c / aux
	if ta > tb {
		ta, tb = tb, ta
	}
	return ta, tb
}

func modelValue(g []float64, hess *mat.SymDense, p []float64) float64 {
	bp := make([]float64, len(p))
	symVec(bp, hess, p)
	return floats.Dot(g, p) + 0.5*floats.Dot(p, bp)
}

// symVec stores a·x in dst.
func symVec(dst []float64, a *mat.SymDense, x []float64) {
	n := len(x)
	mat.NewVecDense(n, dst).MulVec(a, mat.NewVecDense(n, x))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
