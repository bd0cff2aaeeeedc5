// Package log defines the attribute keys used in hdlogit's structured logs.
//
// Keys follow a dotted hierarchy ("model.name", "data.samples", "cga.step") so
// that log pipelines can filter on a prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "HDLogisticRegression".
	ModelNameKey = "model.name"

	// EstimatorIDKey is a per-instance identifier (a UUID) that ties the
	// records of one estimator together across fits and tuning sweeps.
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed: "fit", "predict", "score", "tune".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
)

// Performance and fit quality.
const (
	DurationMsKey = "perf.duration_ms"
	LossKey       = "metrics.loss"
	ScoreKey      = "metrics.score"
	IterationKey  = "training.iteration"
)

// CGA / HDIC / Trim specific keys.
const (
	// StepKey is the position on the CGA path.
	StepKey = "cga.step"

	// ColumnKey is the design-matrix column chosen at a step.
	ColumnKey = "cga.column"

	// HDICKey is the high-dimensional information criterion value.
	HDICKey = "cga.hdic"

	// PathLengthKey is the number of CGA iterations (iter_cga).
	PathLengthKey = "cga.iterations"

	// ModelSizeKey is the number of selected regressors after Trim.
	ModelSizeKey = "cga.model_size"

	// CriterionKey is the information criterion in use.
	CriterionKey = "cga.criterion"

	// WnKey is the HDIC penalty weight.
	WnKey = "cga.wn"

	// SolverKey names the minimizer method.
	SolverKey = "solver.method"

	// SolverStatusKey is the minimizer's termination status.
	SolverStatusKey = "solver.status"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationTune    = "tune"

	ErrorNotFitted    = "NOT_FITTED"
	ErrorInvalidInput = "INVALID_INPUT"
	ErrorConvergence  = "CONVERGENCE_FAILURE"
)
