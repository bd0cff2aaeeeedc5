package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "hdlogit: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			wantMsg: "hdlogit: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			assert.Contains(t, formatted, "errors_test.go")

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 3, 1)
	assert.Equal(t, "hdlogit: Predict: dimension mismatch on axis 1 (features). Expected 10, got 3", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 10, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("HDLogisticRegression", "Predict")
	assert.Contains(t, err.Error(), "HDLogisticRegression")
	assert.Contains(t, err.Error(), "Predict()")

	var nf *NotFittedError
	assert.True(t, As(err, &nf))
}

func TestNewUnsupportedCriterionError(t *testing.T) {
	err := NewUnsupportedCriterionError("DIC")
	assert.Equal(t, `hdlogit: unsupported information criterion "DIC" (want HQIC, AIC or BIC)`, err.Error())

	wrapped := Wrap(err, "cga.Select")
	var uc *UnsupportedCriterionError
	require.True(t, As(wrapped, &uc))
	assert.Equal(t, "DIC", uc.Name)
}

func TestNewMinimizerError(t *testing.T) {
	err := NewMinimizerError("cga", 4, "dogleg", 200, "IterationLimit")
	assert.Equal(t, "hdlogit: cga step 4: minimizer dogleg did not converge after 200 iterations (status: IterationLimit)", err.Error())

	var me *MinimizerError
	require.True(t, As(Wrapf(err, "fit %d", 1), &me))
	assert.Equal(t, 4, me.Step)
	assert.Equal(t, "cga", me.Stage)
}

func TestNumericalChecks(t *testing.T) {
	assert.NoError(t, CheckScalar("loss", 0.69, 0))
	assert.Error(t, CheckScalar("loss", nanValue(), 2))
	assert.NoError(t, CheckNumericalStability("coef", []float64{1, 2, 3}, 0))

	err := CheckNumericalStability("coef", []float64{1, infValue()}, 3)
	var ni *NumericalInstabilityError
	require.True(t, As(err, &ni))
	assert.Equal(t, 3, ni.Iteration)
	assert.True(t, strings.Contains(err.Error(), "iteration 3"))
}

func TestCheckFinite(t *testing.T) {
	m := grid{{1, 2}, {3, nanValue()}}
	err := CheckFinite("X", m, 2, 2)
	var ve *ValidationError
	require.True(t, As(err, &ve))
	assert.Equal(t, "X", ve.ParamName)
	assert.Contains(t, ve.Reason, "(1, 1)")

	assert.NoError(t, CheckFinite("X", grid{{1, 2}}, 1, 2))
}

func TestClipValue(t *testing.T) {
	assert.Equal(t, 0.0, ClipValue(-1, 0, 1))
	assert.Equal(t, 1.0, ClipValue(2, 0, 1))
	assert.Equal(t, 0.5, ClipValue(0.5, 0, 1))
}

func TestWarnUsesZerologSink(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	SetZerologWarnFunc(func(w error) {
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			logger.Warn().EmbedObject(m).Msg(w.Error())
			return
		}
		logger.Warn().Msg(w.Error())
	})
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("dogleg", 50, "grid point wn=0.6"))

	out := buf.String()
	assert.Contains(t, out, `"type":"ConvergenceWarning"`)
	assert.Contains(t, out, `"iterations":50`)
}

func TestWarnFallsBackToHandler(t *testing.T) {
	previous := warningHandler
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(previous)

	Warn(NewDataConversionWarning("float64", "float64", "zero variance column 3 left unscaled"))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "zero variance")
}

func TestWrapAndIs(t *testing.T) {
	err := Wrapf(ErrEmptyData, "loading %s", "train.csv")
	assert.True(t, Is(err, ErrEmptyData))
	assert.Contains(t, err.Error(), "loading train.csv")
}

type grid [][]float64

func (g grid) At(i, j int) float64 { return g[i][j] }

func nanValue() float64 { return math.NaN() }

func infValue() float64 { return math.Inf(1) }
