package model

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

func fittedWeights() *ModelWeights {
	return &ModelWeights{
		ModelType:       "HDLogisticRegression",
		Version:         WeightsVersion,
		Coefficients:    []float64{0, 1.5, 0, -0.25},
		Intercept:       0.3,
		ActiveSet:       []int{1, 3},
		Hyperparameters: map[string]interface{}{"ic": "HQIC", "wn": 1.0},
		IsFitted:        true,
	}
}

// memoryModel is a minimal WeightExporter for persistence tests.
type memoryModel struct {
	weights *ModelWeights
}

func (m *memoryModel) ExportWeights() (*ModelWeights, error) {
	if m.weights == nil {
		return nil, errors.NewNotFittedError("memoryModel", "ExportWeights")
	}
	return m.weights.Clone(), nil
}

func (m *memoryModel) ImportWeights(w *ModelWeights) error {
	m.weights = w.Clone()
	return nil
}

func TestModelWeightsValidate(t *testing.T) {
	require.NoError(t, fittedWeights().Validate())

	tests := []struct {
		name   string
		mutate func(w *ModelWeights)
	}{
		{"missing type", func(w *ModelWeights) { w.ModelType = "" }},
		{"missing version", func(w *ModelWeights) { w.Version = "" }},
		{"fitted without coefficients", func(w *ModelWeights) { w.Coefficients = nil }},
		{"unfitted with coefficients", func(w *ModelWeights) { w.IsFitted = false }},
		{"active index out of range", func(w *ModelWeights) { w.ActiveSet = []int{4} }},
		{"feature names mismatch", func(w *ModelWeights) { w.Features = []string{"a"} }},
		{"non-finite coefficient", func(w *ModelWeights) { w.Coefficients[2] = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := fittedWeights()
			tt.mutate(w)
			assert.Error(t, w.Validate())
		})
	}
}

func TestModelWeightsCloneIsDeep(t *testing.T) {
	w := fittedWeights()
	c := w.Clone()
	c.Coefficients[1] = 99
	c.ActiveSet[0] = 0
	c.Hyperparameters["wn"] = 2.0

	assert.Equal(t, 1.5, w.Coefficients[1])
	assert.Equal(t, 1, w.ActiveSet[0])
	assert.Equal(t, 1.0, w.Hyperparameters["wn"])
}

func TestModelWeightsHash(t *testing.T) {
	a := fittedWeights()
	b := fittedWeights()
	assert.Equal(t, a.Hash(), b.Hash())

	b.Coefficients[3] = -0.2500001
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestSaveLoadWeights(t *testing.T) {
	src := &memoryModel{weights: fittedWeights()}
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveWeights(src, path))

	dst := &memoryModel{}
	require.NoError(t, LoadWeights(dst, path))
	assert.Equal(t, src.weights.Coefficients, dst.weights.Coefficients)
	assert.Equal(t, src.weights.ActiveSet, dst.weights.ActiveSet)
	assert.Equal(t, src.weights.Intercept, dst.weights.Intercept)
	assert.Equal(t, "HQIC", dst.weights.Hyperparameters["ic"])
	assert.Equal(t, src.weights.Hash(), dst.weights.Hash())
}

func TestReadWeightsRejectsInvalid(t *testing.T) {
	bad := fittedWeights()
	bad.ModelType = ""
	data, err := bad.ToJSON()
	require.NoError(t, err)

	err = ReadWeights(&memoryModel{}, bytes.NewReader(data))
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	assert.Error(t, ReadWeights(&memoryModel{}, bytes.NewReader([]byte("{not json"))))
}

func TestWriteWeightsUnfitted(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWeights(&memoryModel{}, &buf)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
	assert.Zero(t, buf.Len())
}

func TestLoadWeightsMissingFile(t *testing.T) {
	assert.Error(t, LoadWeights(&memoryModel{}, filepath.Join(t.TempDir(), "absent.json")))
}
