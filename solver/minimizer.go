// Package solver minimizes smooth unconstrained objectives given in the shape
// of a gonum optimize.Problem.
//
// Two second-order trust-region methods are implemented here (dogleg and
// Steihaug truncated CG). Newton, BFGS and L-BFGS delegate to
// gonum.org/v1/gonum/optimize. All methods report the outcome in a Result;
// non-convergence is not an error at this level, so callers decide how to
// treat it.
package solver

import (
	"strings"

	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
)

// Method identifies a minimization algorithm.
type Method int

const (
	// Dogleg is the dogleg trust-region method. It needs a positive definite
	// Hessian for the Newton point and falls back to the Cauchy point otherwise.
	Dogleg Method = iota
	// TrustNCG is the trust-region method with a Steihaug truncated conjugate
	// gradient subproblem solver.
	TrustNCG
	// NewtonCG is gonum's line-search Newton method.
	NewtonCG
	// BFGS is gonum's quasi-Newton BFGS method.
	BFGS
	// LBFGS is gonum's limited-memory BFGS method.
	LBFGS
)

var methodNames = map[Method]string{
	Dogleg:   "dogleg",
	TrustNCG: "trust-ncg",
	NewtonCG: "newton-cg",
	BFGS:     "bfgs",
	LBFGS:    "lbfgs",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// NeedsHessian reports whether the method evaluates Problem.Hess.
func (m Method) NeedsHessian() bool {
	return m == Dogleg || m == TrustNCG || m == NewtonCG
}

// ParseMethod converts a method name to a Method. Matching is case-insensitive
// and accepts "l-bfgs" as an alias of "lbfgs".
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "l-bfgs" {
		key = "lbfgs"
	}
	for m, n := range methodNames {
		if n == key {
			return m, nil
		}
	}
	return 0, errors.NewValidationError("method", "unsupported minimizer (want dogleg, trust-ncg, newton-cg, bfgs or lbfgs)", name)
}

// Settings controls termination and diagnostics.
type Settings struct {
	// Tol is the gradient-norm tolerance. The trust-region methods stop when
	// the Euclidean norm of the gradient drops below it; the gonum methods use
	// it as GradientThreshold (infinity norm).
	Tol float64

	// MaxIter bounds the number of major iterations. Zero means 200 times the
	// problem dimension.
	MaxIter int

	// Logger receives one debug record per minimization. Nil disables logging.
	Logger log.Logger
}

// DefaultSettings returns Tol 1e-8 and the dimension-based iteration bound.
func DefaultSettings() Settings {
	return Settings{Tol: 1e-8}
}

func (s Settings) maxIter(dim int) int {
	if s.MaxIter > 0 {
		return s.MaxIter
	}
	return 200 * dim
}

// Result is the outcome of a minimization.
type Result struct {
	X          []float64
	F          float64
	Iterations int
	Converged  bool
	Status     string
}

// Minimizer minimizes p starting from x0. It returns an error only for
// malformed input; a run that stops early is reported by Result.Converged.
type Minimizer interface {
	Minimize(p optimize.Problem, x0 []float64, settings Settings) (*Result, error)
	Method() Method
}

// New returns the Minimizer for m.
func New(m Method) (Minimizer, error) {
	switch m {
	case Dogleg:
		return &trustRegion{method: Dogleg, step: doglegStep}, nil
	case TrustNCG:
		return &trustRegion{method: TrustNCG, step: steihaugStep}, nil
	case NewtonCG:
		return &gonumMinimizer{method: NewtonCG, build: func() optimize.Method { return &optimize.Newton{} }}, nil
	case BFGS:
		return &gonumMinimizer{method: BFGS, build: func() optimize.Method { return &optimize.BFGS{} }}, nil
	case LBFGS:
		return &gonumMinimizer{method: LBFGS, build: func() optimize.Method { return &optimize.LBFGS{} }}, nil
	default:
		return nil, errors.NewValidationError("method", "unsupported minimizer", int(m))
	}
}

func checkProblem(m Method, p optimize.Problem, settings Settings) error {
	if p.Func == nil || p.Grad == nil {
		return errors.NewValidationError("problem", "Func and Grad are required", m.String())
	}
	if m.NeedsHessian() && p.Hess == nil {
		return errors.NewValidationError("problem", "Hess is required", m.String())
	}
	if settings.Tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", settings.Tol)
	}
	if settings.MaxIter < 0 {
		return errors.NewValidationError("max_iter", "must be non-negative", settings.MaxIter)
	}
	return nil
}

// trivial handles the zero-dimensional problem, which every method treats as
// already converged.
func trivial(p optimize.Problem) *Result {
	return &Result{X: []float64{}, F: p.Func([]float64{}), Converged: true, Status: "Success"}
}

func logResult(settings Settings, m Method, dim int, r *Result) {
	if settings.Logger == nil {
		return
	}
	settings.Logger.Debug("minimizer finished",
		log.SolverKey, m.String(),
		log.SolverStatusKey, r.Status,
		log.IterationKey, r.Iterations,
		log.LossKey, r.F,
		log.FeaturesKey, dim,
	)
}
