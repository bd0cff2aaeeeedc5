package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/hdlogit/sklearn/linear_model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFitConfigDefaults(t *testing.T) {
	cfg, err := LoadFitConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFitConfig(), cfg)

	cfg, err = LoadFitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFitConfig(), cfg)
}

func TestLoadFitConfigOverrides(t *testing.T) {
	path := writeFile(t, "fit.yaml", `
ic: BIC
wn: 0.8
method: trust-ncg
standardize: false
label_column: 0
tune:
  grid: [0.7, 0.9]
`)
	cfg, err := LoadFitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "BIC", cfg.IC)
	assert.Equal(t, 0.8, cfg.Wn)
	assert.Equal(t, "trust-ncg", cfg.Method)
	assert.False(t, cfg.Standardize)
	assert.Equal(t, 0, cfg.LabelColumn)
	assert.Equal(t, []float64{0.7, 0.9}, cfg.Tune.Grid)

	// Keys not in the file keep their defaults.
	assert.True(t, cfg.FitIntercept)
	assert.Equal(t, 1.0, cfg.Kn)
	assert.Equal(t, 1e-8, cfg.Tol)
	assert.True(t, cfg.Header)
	assert.Equal(t, "BIC", cfg.Tune.IC)
}

func TestLoadFitConfigErrors(t *testing.T) {
	_, err := LoadFitConfig(writeFile(t, "bad.yaml", "wn: [1, 2"))
	assert.Error(t, err)

	_, err = LoadFitConfig(writeFile(t, "level.yaml", "log_level: chatty\n"))
	assert.Error(t, err)
}

func TestFitConfigOptions(t *testing.T) {
	cfg := DefaultFitConfig()
	cfg.IC = "AIC"
	cfg.Wn = 0.5
	cfg.MaxIter = 300

	est := linear_model.NewHDLogisticRegression(cfg.Options()...)
	params := est.GetParams()
	assert.Equal(t, "AIC", params["ic"])
	assert.Equal(t, 0.5, params["wn"])
	assert.Equal(t, 300, params["max_iter"])
	assert.Equal(t, "dogleg", params["method"])
}
