package main

import (
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/sklearn/linear_model"
)

// TuneConfig controls the optional wn sweep after the first fit.
type TuneConfig struct {
	IC   string    `yaml:"ic"`
	Grid []float64 `yaml:"grid"`
}

// FitConfig is the YAML configuration of "hdlogit fit".
type FitConfig struct {
	IC           string  `yaml:"ic"`
	Wn           float64 `yaml:"wn"`
	FitIntercept bool    `yaml:"fit_intercept"`
	Kn           float64 `yaml:"kn"`
	Method       string  `yaml:"method"`
	Tol          float64 `yaml:"tol"`
	MaxIter      int     `yaml:"max_iter"`

	Standardize bool `yaml:"standardize"`
	// LabelColumn is the zero-based label column; negative counts from the end.
	LabelColumn int    `yaml:"label_column"`
	Header      bool   `yaml:"header"`
	LogLevel    string `yaml:"log_level"`

	Tune TuneConfig `yaml:"tune"`
}

// DefaultFitConfig mirrors the estimator defaults.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		IC:           "HQIC",
		Wn:           1.0,
		FitIntercept: true,
		Kn:           1.0,
		Method:       "dogleg",
		Tol:          1e-8,
		Standardize:  true,
		LabelColumn:  -1,
		Header:       true,
		LogLevel:     "info",
		Tune:         TuneConfig{IC: "BIC"},
	}
}

// LoadFitConfig reads path over the defaults. An empty path or a missing
// file yields the defaults; keys absent from the file keep their default.
func LoadFitConfig(path string) (FitConfig, error) {
	cfg := DefaultFitConfig()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return FitConfig{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return FitConfig{}, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return FitConfig{}, err
	}
	return cfg, nil
}

// Validate checks the fields the estimator does not check itself.
func (c FitConfig) Validate() error {
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", err.Error(), c.LogLevel)
	}
	if c.Tune.Grid != nil && len(c.Tune.Grid) == 0 {
		return errors.NewValidationError("tune.grid", "must not be empty when given", c.Tune.Grid)
	}
	return nil
}

// Options converts the estimator part of the config.
func (c FitConfig) Options() []linear_model.HDLogisticOption {
	return []linear_model.HDLogisticOption{
		linear_model.WithHDCriterion(c.IC),
		linear_model.WithHDWn(c.Wn),
		linear_model.WithHDFitIntercept(c.FitIntercept),
		linear_model.WithHDKn(c.Kn),
		linear_model.WithHDMethod(c.Method),
		linear_model.WithHDTol(c.Tol),
		linear_model.WithHDMaxIter(c.MaxIter),
	}
}
