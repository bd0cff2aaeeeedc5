package cga

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/solver"
)

// Result は CGA+HDIC+Trim の結果。添字は X の特徴量番号（切片を含まない）
type Result struct {
	// Intercept は切片（切片なしなら 0）
	Intercept float64
	// Coef は長さ p の係数。Model に含まれない特徴量は 0
	Coef []float64
	// Model は Trim 後に残った特徴量（パス上の順序）
	Model []int
	// Loss は最終モデルの平均負対数尤度
	Loss float64

	// Path は CGA が選んだ特徴量の順序
	Path []int
	// CoefPath[k] は Path[:k+1] に対応する係数。切片ありのとき
	// 切片のみのステップは含まない（その切片は Path 上にない）
	CoefPath [][]float64
	// InterceptPath[k] はステップ k の切片。CoefPath と同じく切片のみのステップは除く
	InterceptPath []float64
	// HDIC と LossPath も Path と同じ添字で、切片のみのステップを除く
	HDIC     []float64
	LossPath []float64
	IterCGA  int
	// SelectedStep は HDIC 最小のステップ。切片のみのモデルが選ばれたら -1
	SelectedStep int
	// Removed は Trim で除かれた特徴量
	Removed []int
}

// Select は CGA パスを計算し、HDIC で打ち切り、Trim で不要な変数を除く
func Select(X mat.Matrix, y []float64, cfg Config) (*Result, error) {
	design, err := prepare("Select", X, y, cfg)
	if err != nil {
		return nil, err
	}
	path, err := buildPath(design, y, cfg)
	if err != nil {
		return nil, err
	}
	return trim(design, y, path, cfg)
}

func trim(design *mat.Dense, y []float64, path *Path, cfg Config) (*Result, error) {
	n, p := design.Dims()
	logger := cfg.logger()
	intercept := cfg.intercept()

	minimizer, err := solver.New(cfg.Method)
	if err != nil {
		return nil, err
	}
	settings := cfg.settings()

	// HDIC: 最初の最小値の位置で打ち切る
	kh := floats.MinIdx(path.HDIC)
	model := path.Active[:kh+1]
	betaKh := path.Coefs[kh]
	hdicKh := path.HDIC[kh]

	remove := make([]bool, len(model))
	if len(model) > 1 {
		for pos := intercept; pos <= kh; pos++ {
			cols, x0 := without(model, betaKh, pos)
			obj := NewObjective(design, y, cols)
			res, err := minimizer.Minimize(obj.Problem(), x0, settings)
			if err != nil {
				return nil, errors.Wrapf(err, "trim position %d", pos)
			}
			if !res.Converged {
				return nil, errors.NewMinimizerError("trim", pos, cfg.Method.String(), res.Iterations, res.Status)
			}
			// 候補のサイズは kh+1-1 = kh。対数ペナルティは HDIC[kh] と同じく設計行列の列数 p（切片列を含む）
			hdicTrim, err := cfg.Criterion.HighDim(res.F, kh, cfg.Wn, n, p)
			if err != nil {
				return nil, err
			}
			remove[pos] = hdicTrim < hdicKh

			logger.Debug("trim candidate",
				log.StepKey, pos,
				log.ColumnKey, model[pos],
				log.HDICKey, hdicTrim,
			)
		}
	}

	// 削除は同時に適用する
	var kept []int
	var keptBeta []float64
	var removed []int
	for pos, c := range model {
		if remove[pos] {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
		keptBeta = append(keptBeta, betaKh[pos])
	}

	beta := betaKh
	loss := path.Loss[kh]
	if len(removed) > 0 {
		if len(kept) == 0 {
			// 切片なしで全て除かれた場合: β = 0
			beta = nil
			loss = math.Ln2
		} else {
			obj := NewObjective(design, y, kept)
			res, err := minimizer.Minimize(obj.Problem(), keptBeta, settings)
			if err != nil {
				return nil, errors.Wrap(err, "trim refit")
			}
			if !res.Converged {
				return nil, errors.NewMinimizerError("refit", kh, cfg.Method.String(), res.Iterations, res.Status)
			}
			if err := errors.CheckNumericalStability("trim coef", res.X, kh); err != nil {
				return nil, err
			}
			beta = res.X
			loss = res.F
		}
	}

	return assemble(path, kept, beta, loss, kh, removed, intercept), nil
}

// without は model から位置 pos を除いた列と初期値を返す
func without(model []int, beta []float64, pos int) ([]int, []float64) {
	cols := make([]int, 0, len(model)-1)
	x0 := make([]float64, 0, len(model)-1)
	for i, c := range model {
		if i == pos {
			continue
		}
		cols = append(cols, c)
		x0 = append(x0, beta[i])
	}
	return cols, x0
}

// assemble は設計行列の添字を特徴量の添字に直す。切片ありなら
// 切片を分離し、全ての添字を1つずらし、切片のみのステップを軌跡から除く
func assemble(path *Path, kept []int, beta []float64, loss float64, kh int, removed []int, intercept int) *Result {
	full := make([]float64, path.NColumns)
	for i, c := range kept {
		full[c] = beta[i]
	}

	iterCGA := path.Iterations - intercept
	res := &Result{
		Coef:          full[intercept:],
		Model:         shift(kept, intercept),
		Loss:          loss,
		Path:          shift(path.Active, intercept),
		CoefPath:      make([][]float64, iterCGA),
		InterceptPath: make([]float64, iterCGA),
		HDIC:          append([]float64(nil), path.HDIC[intercept:]...),
		LossPath:      append([]float64(nil), path.Loss[intercept:]...),
		IterCGA:       iterCGA,
		SelectedStep:  kh - intercept,
		Removed:       shift(removed, intercept),
	}
	if intercept == 1 {
		res.Intercept = full[0]
	}
	for k := 0; k < iterCGA; k++ {
		coefs := path.Coefs[k+intercept]
		if intercept == 1 {
			res.InterceptPath[k] = coefs[0]
		}
		res.CoefPath[k] = append([]float64(nil), coefs[intercept:]...)
	}
	return res
}

// shift は切片（列0）を除き、残りの添字から offset を引いたコピーを返す
func shift(cols []int, offset int) []int {
	out := make([]int, 0, len(cols))
	for _, c := range cols {
		if offset == 1 && c == 0 {
			continue
		}
		out = append(out, c-offset)
	}
	return out
}
