package cga

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/core/parallel"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/solver"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// Path は CGA の結果。添字は設計行列の列番号（切片ありなら0が切片）
type Path struct {
	// Active は各ステップで選ばれた列。切片ありなら Active[0] == 0
	Active []int
	// Coefs[k] は Active[:k+1] に対応する長さ k+1 の係数
	Coefs [][]float64
	// Loss と HDIC は各ステップの平均負対数尤度と高次元情報量規準
	Loss []float64
	HDIC []float64

	Iterations   int
	NSamples     int
	NColumns     int
	FitIntercept bool
}

// Dense はステップ k の係数を長さ NColumns のベクトルに展開する
func (p *Path) Dense(k int) []float64 {
	beta := make([]float64, p.NColumns)
	for i, c := range p.Active[:k+1] {
		beta[c] = p.Coefs[k][i]
	}
	return beta
}

// BuildPath は CGA パスを計算する。y は [0, 1] の値を取る長さ n のラベル
//
// 反復回数は min(rank(D), ceil(Kn·sqrt(n/log P)) + intercept) で固定され、
// 早期終了はしない。ソルバーが収束しなかったステップでは MinimizerError を返す。
func BuildPath(X mat.Matrix, y []float64, cfg Config) (*Path, error) {
	design, err := prepare("BuildPath", X, y, cfg)
	if err != nil {
		return nil, err
	}
	return buildPath(design, y, cfg)
}

// prepare は入力を検証し、設計行列を作る
func prepare(op string, X mat.Matrix, y []float64, cfg Config) (*mat.Dense, error) {
	if X == nil {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(y) != r {
		return nil, errors.NewDimensionError(op, r, len(y), 0)
	}
	if r < 2 {
		return nil, errors.NewValidationError("X", "at least two samples are required", r)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := errors.CheckFinite("X", X, r, c); err != nil {
		return nil, err
	}
	for i, v := range y {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, errors.NewValidationError("y", "labels must lie in [0, 1]", map[string]interface{}{"index": i, "value": v})
		}
	}

	offset := cfg.intercept()
	design := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0) // 切片項
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})
	return design, nil
}

// matrixRank は numpy.linalg.matrix_rank と同じ閾値 σmax·max(n, P)·eps で階数を数える
func matrixRank(a *mat.Dense) (int, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0, errors.NewModelError("matrixRank", "svd", errors.ErrSingularMatrix)
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, nil
	}
	r, c := a.Dims()
	tol := values[0] * float64(max(r, c)) * epsilon
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank, nil
}

const epsilon = 2.220446049250313e-16

// iterationBound は CGA の反復回数
func iterationBound(rank, n, p int, kn float64, intercept int) int {
	bound := rank
	logP := math.Log(float64(p))
	if logP > 0 {
		rate := int(math.Ceil(kn*math.Sqrt(float64(n)/logP))) + intercept
		if rate < bound {
			bound = rate
		}
	}
	return bound
}

func buildPath(design *mat.Dense, y []float64, cfg Config) (*Path, error) {
	n, p := design.Dims()
	logger := cfg.logger()

	rank, err := matrixRank(design)
	if err != nil {
		return nil, err
	}
	if rank == 0 {
		return nil, errors.NewValidationError("X", "design matrix has rank zero", rank)
	}
	iterations := iterationBound(rank, n, p, cfg.Kn, cfg.intercept())

	minimizer, err := solver.New(cfg.Method)
	if err != nil {
		return nil, err
	}
	settings := cfg.settings()

	path := &Path{
		Active:       make([]int, 0, iterations),
		Coefs:        make([][]float64, 0, iterations),
		Loss:         make([]float64, 0, iterations),
		HDIC:         make([]float64, 0, iterations),
		Iterations:   iterations,
		NSamples:     n,
		NColumns:     p,
		FitIntercept: cfg.FitIntercept,
	}

	selected := make([]bool, p)
	beta := []float64{}
	for k := 0; k < iterations; k++ {
		var column int
		if k == 0 && cfg.FitIntercept {
			column = 0
		} else {
			grad := FullGradient(design, y, path.Active, beta)
			column = argmaxAbs(grad, selected)
			if column < 0 {
				return nil, errors.NewValueError("BuildPath", "no candidate column left")
			}
		}
		selected[column] = true
		path.Active = append(path.Active, column)

		// 前ステップの解から開始し、新しい列は0
		x0 := make([]float64, k+1)
		copy(x0, beta)

		obj := NewObjective(design, y, path.Active)
		res, err := minimizer.Minimize(obj.Problem(), x0, settings)
		if err != nil {
			return nil, errors.Wrapf(err, "cga step %d", k)
		}
		if !res.Converged {
			return nil, errors.NewMinimizerError("cga", k, cfg.Method.String(), res.Iterations, res.Status)
		}
		if err := errors.CheckScalar("cga loss", res.F, k); err != nil {
			return nil, err
		}
		if err := errors.CheckNumericalStability("cga coef", res.X, k); err != nil {
			return nil, err
		}

		hdic, err := cfg.Criterion.HighDim(res.F, k+1, cfg.Wn, n, p)
		if err != nil {
			return nil, err
		}

		beta = res.X
		path.Coefs = append(path.Coefs, append([]float64(nil), res.X...))
		path.Loss = append(path.Loss, res.F)
		path.HDIC = append(path.HDIC, hdic)

		logger.Debug("cga step",
			log.StepKey, k,
			log.ColumnKey, column,
			log.LossKey, res.F,
			log.HDICKey, hdic,
			log.IterationKey, res.Iterations,
		)
	}

	return path, nil
}

// argmaxAbs は除外されていない列のうち |g| が最大の添字（同値なら小さい方）
func argmaxAbs(g []float64, excluded []bool) int {
	best := -1
	bestVal := math.Inf(-1)
	for j, v := range g {
		if excluded[j] {
			continue
		}
		if a := math.Abs(v); a > bestVal {
			best = j
			bestVal = a
		}
	}
	return best
}
