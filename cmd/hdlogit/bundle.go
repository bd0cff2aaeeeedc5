package main

import (
	"github.com/YuminosukeSato/hdlogit/core/model"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/preprocessing"
	"github.com/YuminosukeSato/hdlogit/sklearn/linear_model"
)

// bundle persists the estimator together with the preprocessing it was fitted on.
type bundle struct {
	est         *linear_model.HDLogisticRegression
	scaler      *preprocessing.StandardScaler // nil when not standardized
	features    []string
	header      bool
	labelColumn int
}

var _ model.WeightExporter = (*bundle)(nil)

func (b *bundle) ExportWeights() (*model.ModelWeights, error) {
	w, err := b.est.ExportWeights()
	if err != nil {
		return nil, err
	}
	if len(b.features) == len(w.Coefficients) {
		w.Features = b.features
	}
	w.Metadata["header"] = b.header
	w.Metadata["label_column"] = b.labelColumn
	w.Metadata["standardize"] = b.scaler != nil
	if b.scaler != nil {
		w.Metadata["scaler_mean"] = b.scaler.Mean
		w.Metadata["scaler_scale"] = b.scaler.Scale
	}
	return w, nil
}

func (b *bundle) ImportWeights(w *model.ModelWeights) error {
	if err := b.est.ImportWeights(w); err != nil {
		return err
	}
	b.features = w.Features
	if v, ok := w.Metadata["header"].(bool); ok {
		b.header = v
	}
	if v, ok := w.Metadata["label_column"].(float64); ok {
		b.labelColumn = int(v)
	}
	b.scaler = nil
	if standardize, _ := w.Metadata["standardize"].(bool); !standardize {
		return nil
	}

	mean, err := floatSlice(w.Metadata["scaler_mean"])
	if err != nil {
		return errors.Wrap(err, "scaler_mean")
	}
	scale, err := floatSlice(w.Metadata["scaler_scale"])
	if err != nil {
		return errors.Wrap(err, "scaler_scale")
	}
	b.scaler, err = preprocessing.NewStandardScalerFromStats(mean, scale)
	return err
}

// floatSlice converts a decoded JSON array of numbers.
func floatSlice(v interface{}) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return s, nil
	case []interface{}:
		out := make([]float64, len(s))
		for i, e := range s {
			f, ok := e.(float64)
			if !ok {
				return nil, errors.NewValidationError("metadata", "expected a number", e)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, errors.NewValidationError("metadata", "expected an array of numbers", v)
	}
}
