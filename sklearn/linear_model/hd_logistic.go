// Package linear_model provides the high-dimensional logistic regression estimator.
package linear_model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/core/model"
	"github.com/YuminosukeSato/hdlogit/linear/cga"
	"github.com/YuminosukeSato/hdlogit/metrics"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/solver"
)

const hdModelName = "HDLogisticRegression"

// HDLogisticRegression is a sparse binary logistic regression for p >> n.
// Features are chosen by the Chebyshev greedy algorithm, the path is cut at
// the minimum of a high-dimensional information criterion and the remaining
// set is trimmed.
type HDLogisticRegression struct {
	state *model.StateManager // State management (composition)
	id    string

	// Hyperparameters
	ic           string  // Information criterion: "HQIC", "AIC", "BIC"
	wn           float64 // HDIC penalty weight
	fitIntercept bool    // Whether to fit intercept
	kn           float64 // Path length factor
	method       string  // Minimizer: "dogleg", "trust-ncg", "newton-cg", "bfgs", "lbfgs"
	tol          float64 // Gradient tolerance for every sub-problem
	maxIter      int     // Per-minimization iteration limit (0 = 200 * dim)

	logger log.Logger

	// Fitted state, replaced as a whole
	fit *hdFit
}

// hdFit は一回の学習結果。Fit と TuneWn が丸ごと差し替える
type hdFit struct {
	result    *cga.Result
	nFeatures int
	nSamples  int
}

// HDLogisticOption is a functional option for HDLogisticRegression
type HDLogisticOption func(*HDLogisticRegression)

// NewHDLogisticRegression creates a new HDLogisticRegression classifier
func NewHDLogisticRegression(opts ...HDLogisticOption) *HDLogisticRegression {
	lr := &HDLogisticRegression{
		state:        model.NewStateManager(hdModelName),
		id:           uuid.NewString(),
		ic:           cga.HQIC.String(),
		wn:           1.0,
		fitIntercept: true,
		kn:           1.0,
		method:       solver.Dogleg.String(),
		tol:          1e-8,
	}

	for _, opt := range opts {
		opt(lr)
	}

	if lr.logger == nil {
		lr.logger = log.GetLogger()
	}
	lr.logger = lr.logger.With(log.ModelNameKey, hdModelName, log.EstimatorIDKey, lr.id)

	return lr
}

// Option functions

// WithHDCriterion sets the information criterion ("HQIC", "AIC" or "BIC")
func WithHDCriterion(ic string) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.ic = ic
	}
}

// WithHDWn sets the HDIC penalty weight
func WithHDWn(wn float64) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.wn = wn
	}
}

// WithHDFitIntercept sets whether to fit intercept
func WithHDFitIntercept(fit bool) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithHDKn sets the path length factor
func WithHDKn(kn float64) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.kn = kn
	}
}

// WithHDMethod sets the minimizer used for every sub-problem
func WithHDMethod(method string) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.method = method
	}
}

// WithHDTol sets the gradient tolerance
func WithHDTol(tol float64) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.tol = tol
	}
}

// WithHDMaxIter sets the per-minimization iteration limit
func WithHDMaxIter(maxIter int) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithHDLogger sets the logger. Defaults to log.GetLogger().
func WithHDLogger(logger log.Logger) HDLogisticOption {
	return func(lr *HDLogisticRegression) {
		lr.logger = logger
	}
}

// config はハイパーパラメータを cga.Config に変換する
func (lr *HDLogisticRegression) config() (cga.Config, error) {
	crit, err := cga.ParseCriterion(lr.ic)
	if err != nil {
		return cga.Config{}, err
	}
	method, err := solver.ParseMethod(lr.method)
	if err != nil {
		return cga.Config{}, err
	}
	cfg := cga.Config{
		Criterion:    crit,
		Wn:           lr.wn,
		FitIntercept: lr.fitIntercept,
		Kn:           lr.kn,
		Method:       method,
		Tol:          lr.tol,
		MaxIter:      lr.maxIter,
		Logger:       lr.logger,
	}
	return cfg, cfg.Validate()
}

// labels は n×1 の y をスライスに取り出す
func labels(op string, X, y mat.Matrix) ([]float64, error) {
	if X == nil || y == nil {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	rows, _ := X.Dims()
	yRows, yCols := y.Dims()
	if yRows == 0 || yCols == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	return mat.Col(nil, 0, y), nil
}

// fitWith runs the full selection without touching the estimator state.
func fitWith(X mat.Matrix, y []float64, cfg cga.Config) (*hdFit, error) {
	res, err := cga.Select(X, y, cfg)
	if err != nil {
		return nil, err
	}
	n, p := X.Dims()
	return &hdFit{result: res, nFeatures: p, nSamples: n}, nil
}

func (lr *HDLogisticRegression) install(f *hdFit) {
	lr.fit = f
	lr.state.SetState(model.ModelState{Fitted: true, NFeatures: f.nFeatures, NSamples: f.nSamples})
}

// Fit trains the model. y must be an n×1 column of labels in [0, 1].
// A failed Fit leaves any previous fit in place.
func (lr *HDLogisticRegression) Fit(X, y mat.Matrix) error {
	const op = "HDLogisticRegression.Fit"
	start := time.Now()

	yv, err := labels(op, X, y)
	if err != nil {
		return err
	}
	cfg, err := lr.config()
	if err != nil {
		return err
	}
	f, err := fitWith(X, yv, cfg)
	if err != nil {
		lr.logger.Error("fit failed", log.OperationKey, log.OperationFit, log.ErrAttrKey, err)
		return err
	}
	lr.install(f)

	lr.logger.Info("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, f.nSamples,
		log.FeaturesKey, f.nFeatures,
		log.PathLengthKey, f.result.IterCGA,
		log.ModelSizeKey, len(f.result.Model),
		log.LossKey, f.result.Loss,
		log.CriterionKey, lr.ic,
		log.WnKey, lr.wn,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// DecisionFunction returns intercept + X·coef as an n×1 matrix
func (lr *HDLogisticRegression) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	return lr.decision("DecisionFunction", X)
}

func (lr *HDLogisticRegression) decision(method string, X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted(method); err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewModelError("HDLogisticRegression."+method, "empty data", errors.ErrEmptyData)
	}
	rows, cols := X.Dims()
	if err := lr.state.RequireFeatures(method, cols); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewModelError("HDLogisticRegression."+method, "empty data", errors.ErrEmptyData)
	}

	res := lr.fit.result
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		z := res.Intercept
		// 選ばれた列だけ見ればよい
		for _, j := range res.Model {
			z += res.Coef[j] * X.At(i, j)
		}
		out.Set(i, 0, z)
	}
	return out, nil
}

// PredictProba returns σ(intercept + X·coef) as an n×1 matrix
func (lr *HDLogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	z, err := lr.decision("PredictProba", X)
	if err != nil {
		return nil, err
	}
	z.Apply(func(_, _ int, v float64) float64 { return cga.Sigmoid(v) }, z)
	return z, nil
}

// Predict returns 1 where the probability exceeds 0.5, else 0
func (lr *HDLogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	pred := proba.(*mat.Dense)
	pred.Apply(func(_, _ int, v float64) float64 {
		if v > 0.5 {
			return 1
		}
		return 0
	}, pred)
	return pred, nil
}

// Score returns the Hamming loss between thresholded predictions and labels.
// Lower is better.
func (lr *HDLogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return 0, err
	}
	return metrics.HammingLoss(y, proba, 0.5)
}

// Intercept returns the fitted intercept (0 without one or before Fit)
func (lr *HDLogisticRegression) Intercept() float64 {
	if lr.fit == nil {
		return 0
	}
	return lr.fit.result.Intercept
}

// Coef returns a copy of the coefficients, zero outside the selected set
func (lr *HDLogisticRegression) Coef() []float64 {
	if lr.fit == nil {
		return nil
	}
	return append([]float64(nil), lr.fit.result.Coef...)
}

// Weights implements model.LinearModel
func (lr *HDLogisticRegression) Weights() []float64 {
	return lr.Coef()
}

// Model returns the selected feature indices in path order
func (lr *HDLogisticRegression) Model() []int {
	if lr.fit == nil {
		return nil
	}
	return append([]int(nil), lr.fit.result.Model...)
}

// Loss returns the mean negative log-likelihood of the final model
func (lr *HDLogisticRegression) Loss() float64 {
	if lr.fit == nil {
		return 0
	}
	return lr.fit.result.Loss
}

// Result returns the full selection result, including the CGA path.
// Nil before Fit. Models restored with ImportWeights carry no path.
func (lr *HDLogisticRegression) Result() *cga.Result {
	if lr.fit == nil {
		return nil
	}
	return lr.fit.result
}

// Wn returns the current HDIC penalty weight
func (lr *HDLogisticRegression) Wn() float64 {
	return lr.wn
}

// Classes returns the class labels
func (lr *HDLogisticRegression) Classes() []float64 {
	return []float64{0, 1}
}

// IsFitted returns whether the model has been fitted
func (lr *HDLogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// ID returns the estimator id attached to its log records
func (lr *HDLogisticRegression) ID() string {
	return lr.id
}

// GetParams returns the model hyperparameters
func (lr *HDLogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"ic":            lr.ic,
		"wn":            lr.wn,
		"fit_intercept": lr.fitIntercept,
		"kn":            lr.kn,
		"method":        lr.method,
		"tol":           lr.tol,
		"max_iter":      lr.maxIter,
	}
}

// SetParams sets the model hyperparameters. Numbers may arrive as float64
// (decoded JSON) or int.
func (lr *HDLogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "ic":
			v, err := stringParam(key, value)
			if err != nil {
				return err
			}
			lr.ic = v
		case "wn":
			v, err := floatParam(key, value)
			if err != nil {
				return err
			}
			lr.wn = v
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			lr.fitIntercept = v
		case "kn":
			v, err := floatParam(key, value)
			if err != nil {
				return err
			}
			lr.kn = v
		case "method":
			v, err := stringParam(key, value)
			if err != nil {
				return err
			}
			lr.method = v
		case "tol":
			v, err := floatParam(key, value)
			if err != nil {
				return err
			}
			lr.tol = v
		case "max_iter":
			v, err := floatParam(key, value)
			if err != nil {
				return err
			}
			if v != float64(int(v)) {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			lr.maxIter = int(v)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func stringParam(key string, value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", errors.NewValidationError(key, "must be a string", value)
	}
	return v, nil
}

func floatParam(key string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.NewValidationError(key, "must be a number", value)
	}
}

// ExportWeights はモデルの重みをエクスポート
func (lr *HDLogisticRegression) ExportWeights() (*model.ModelWeights, error) {
	if err := lr.state.RequireFitted("ExportWeights"); err != nil {
		return nil, err
	}

	res := lr.fit.result
	return &model.ModelWeights{
		ModelType:       hdModelName,
		Version:         model.WeightsVersion,
		Coefficients:    lr.Coef(),
		Intercept:       res.Intercept,
		ActiveSet:       lr.Model(),
		IsFitted:        true,
		Hyperparameters: lr.GetParams(),
		Metadata: map[string]interface{}{
			"n_features":    lr.fit.nFeatures,
			"n_samples":     lr.fit.nSamples,
			"loss":          res.Loss,
			"iter_cga":      res.IterCGA,
			"selected_step": res.SelectedStep,
			"estimator_id":  lr.id,
		},
	}, nil
}

// ImportWeights はモデルの重みをインポート。失敗したときは状態を変えない
func (lr *HDLogisticRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValidationError("weights", "cannot be nil", nil)
	}
	if weights.ModelType != hdModelName {
		return errors.NewValidationError("model_type", fmt.Sprintf("expected %s", hdModelName), weights.ModelType)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if !weights.IsFitted {
		return errors.NewValidationError("is_fitted", "only fitted weights can be imported", false)
	}

	// ハイパーパラメータは検証してから反映する
	staged := *lr
	if err := staged.SetParams(weights.Hyperparameters); err != nil {
		return err
	}
	if _, err := staged.config(); err != nil {
		return err
	}

	coef := append([]float64(nil), weights.Coefficients...)
	active := append([]int(nil), weights.ActiveSet...)
	if weights.ActiveSet == nil {
		for j, c := range coef {
			if c != 0 {
				active = append(active, j)
			}
		}
	}

	res := &cga.Result{
		Intercept:    weights.Intercept,
		Coef:         coef,
		Model:        active,
		SelectedStep: -1,
	}
	nSamples := 0
	if v, ok := weights.Metadata["loss"].(float64); ok {
		res.Loss = v
	}
	if v, ok := weights.Metadata["n_samples"].(float64); ok {
		nSamples = int(v)
	}
	if v, ok := weights.Metadata["selected_step"].(float64); ok {
		res.SelectedStep = int(v)
	}

	lr.ic, lr.wn, lr.fitIntercept, lr.kn = staged.ic, staged.wn, staged.fitIntercept, staged.kn
	lr.method, lr.tol, lr.maxIter = staged.method, staged.tol, staged.maxIter
	lr.install(&hdFit{result: res, nFeatures: len(coef), nSamples: nSamples})
	return nil
}

// String returns the string representation of the model
func (lr *HDLogisticRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("HDLogisticRegression(ic=%s, wn=%g, fit_intercept=%t, kn=%g, method=%s)",
			lr.ic, lr.wn, lr.fitIntercept, lr.kn, lr.method)
	}
	return fmt.Sprintf("HDLogisticRegression(ic=%s, wn=%g, fit_intercept=%t, kn=%g, method=%s, n_features=%d, selected=%v)",
		lr.ic, lr.wn, lr.fitIntercept, lr.kn, lr.method, lr.fit.nFeatures, lr.fit.result.Model)
}

var (
	_ model.Classifier      = (*HDLogisticRegression)(nil)
	_ model.WeightExporter  = (*HDLogisticRegression)(nil)
	_ model.LinearModel     = (*HDLogisticRegression)(nil)
	_ model.ParameterGetter = (*HDLogisticRegression)(nil)
	_ model.ParameterSetter = (*HDLogisticRegression)(nil)
)
