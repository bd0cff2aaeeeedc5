package solver

import (
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// gonumMinimizer delegates to optimize.Minimize with a fresh method value per
// call, so one Minimizer can be shared between goroutines.
type gonumMinimizer struct {
	method Method
	build  func() optimize.Method
}

func (g *gonumMinimizer) Method() Method { return g.method }

func (g *gonumMinimizer) Minimize(p optimize.Problem, x0 []float64, settings Settings) (*Result, error) {
	if err := checkProblem(g.method, p, settings); err != nil {
		return nil, err
	}
	dim := len(x0)
	if dim == 0 {
		r := trivial(p)
		logResult(settings, g.method, dim, r)
		return r, nil
	}

	s := &optimize.Settings{
		GradientThreshold: settings.Tol,
		MajorIterations:   settings.maxIter(dim),
	}
	res, err := optimize.Minimize(p, x0, s, g.build())
	if res == nil {
		if err == nil {
			err = errors.New("no result")
		}
		return nil, errors.Wrapf(err, "%s: optimize.Minimize", g.method)
	}

	r := &Result{
		X:          res.X,
		F:          res.F,
		Iterations: res.MajorIterations,
		Converged:  err == nil && res.Status.Err() == nil && !res.Status.Early(),
		Status:     res.Status.String(),
	}
	logResult(settings, g.method, dim, r)
	return r, nil
}
