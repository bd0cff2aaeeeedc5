package linear_model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/core/parallel"
	"github.com/YuminosukeSato/hdlogit/linear/cga"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
)

// DefaultWnGrid returns 10 evenly spaced wn values in [0.6, 1.2].
func DefaultWnGrid() []float64 {
	return floats.Span(make([]float64, 10), 0.6, 1.2)
}

// TuneWn refits the model for every wn in grid and keeps the refit whose
// plain information criterion icWn (default "BIC") is strictly lower than
// the current fit and every earlier grid point. It returns the selected wn,
// or the current one when nothing improves. A nil grid means DefaultWnGrid.
//
// Grid points are fitted concurrently. A point whose fit fails is skipped
// with a ConvergenceWarning.
func (lr *HDLogisticRegression) TuneWn(X, y mat.Matrix, icWn string, grid []float64) (float64, error) {
	const op = "HDLogisticRegression.TuneWn"

	if err := lr.state.RequireFitted("TuneWn"); err != nil {
		return 0, err
	}
	if icWn == "" {
		icWn = cga.BIC.String()
	}
	crit, err := cga.ParseCriterion(icWn)
	if err != nil {
		return 0, err
	}
	if grid == nil {
		grid = DefaultWnGrid()
	}
	yv, err := labels(op, X, y)
	if err != nil {
		return 0, err
	}
	n, _ := X.Dims()
	cfg, err := lr.config()
	if err != nil {
		return 0, err
	}

	current := lr.fit.result
	best, err := crit.Plain(current.Loss, len(current.Model), n)
	if err != nil {
		return 0, err
	}

	fits := make([]*hdFit, len(grid))
	errs := make([]error, len(grid))
	parallel.Parallelize(len(grid), func(start, end int) {
		for i := start; i < end; i++ {
			c := cfg
			c.Wn = grid[i]
			errs[i] = errors.SafeExecute(op, func() error {
				f, err := fitWith(X, yv, c)
				fits[i] = f
				return err
			})
		}
	})

	// グリッド順に逐次比較する。同値なら先のものを残す
	bestIdx := -1
	for i, wn := range grid {
		if errs[i] != nil {
			errors.Warn(errors.NewConvergenceWarning("TuneWn", failedIterations(errs[i]),
				fmt.Sprintf("wn=%g skipped: %v", wn, errs[i])))
			continue
		}
		res := fits[i].result
		ic, err := crit.Plain(res.Loss, len(res.Model), n)
		if err != nil {
			return 0, err
		}
		lr.logger.Debug("tune candidate",
			log.WnKey, wn,
			log.CriterionKey, crit.String(),
			log.ScoreKey, ic,
			log.ModelSizeKey, len(res.Model),
		)
		if ic < best {
			best = ic
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		lr.logger.Info("tuning kept current wn", log.OperationKey, log.OperationTune, log.WnKey, lr.wn)
		return lr.wn, nil
	}

	lr.wn = grid[bestIdx]
	lr.install(fits[bestIdx])
	lr.logger.Info("tuning selected wn",
		log.OperationKey, log.OperationTune,
		log.WnKey, lr.wn,
		log.ScoreKey, best,
		log.ModelSizeKey, len(fits[bestIdx].result.Model),
	)
	return lr.wn, nil
}

func failedIterations(err error) int {
	var me *errors.MinimizerError
	if errors.As(err, &me) {
		return me.Iterations
	}
	return 0
}
