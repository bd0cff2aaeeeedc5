package cga

import (
	"math"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/solver"
)

// Config は CGA パスと HDIC-Trim の設定
type Config struct {
	// Criterion は HDIC に使う情報量規準
	Criterion Criterion
	// Wn は HDIC のペナルティ重み（0以上）
	Wn float64
	// FitIntercept が true のとき切片列を設計行列の先頭に追加する
	FitIntercept bool
	// Kn は反復回数の上限 ceil(Kn*sqrt(n/log p)) を決める係数（正）
	Kn float64
	// Method は部分問題のソルバー
	Method solver.Method
	// Tol はソルバーの勾配ノルム許容誤差
	Tol float64
	// MaxIter はソルバーの最大反復回数（0 で次元の200倍）
	MaxIter int
	// Logger はステップごとのデバッグログの出力先（nil で出力しない）
	Logger log.Logger
}

// DefaultConfig returns HQIC, wn = 1, an intercept, kn = 3, dogleg and tol = 1e-8.
func DefaultConfig() Config {
	return Config{
		Criterion:    HQIC,
		Wn:           1.0,
		FitIntercept: true,
		Kn:           3.0,
		Method:       solver.Dogleg,
		Tol:          1e-8,
	}
}

// Validate checks every field before any optimization work is done.
func (c Config) Validate() error {
	if !c.Criterion.valid() {
		return errors.NewUnsupportedCriterionError(c.Criterion.String())
	}
	if math.IsNaN(c.Wn) || math.IsInf(c.Wn, 0) || c.Wn < 0 {
		return errors.NewValidationError("wn", "must be a finite non-negative number", c.Wn)
	}
	if math.IsNaN(c.Kn) || math.IsInf(c.Kn, 0) || c.Kn <= 0 {
		return errors.NewValidationError("kn", "must be a finite positive number", c.Kn)
	}
	if math.IsNaN(c.Tol) || math.IsInf(c.Tol, 0) || c.Tol <= 0 {
		return errors.NewValidationError("tol", "must be a finite positive number", c.Tol)
	}
	if c.MaxIter < 0 {
		return errors.NewValidationError("max_iter", "must be non-negative", c.MaxIter)
	}
	if c.Method.String() == "unknown" {
		return errors.NewValidationError("method", "unsupported minimizer", int(c.Method))
	}
	return nil
}

func (c Config) settings() solver.Settings {
	return solver.Settings{Tol: c.Tol, MaxIter: c.MaxIter, Logger: c.Logger}
}

func (c Config) logger() log.Logger {
	if c.Logger == nil {
		return log.Nop()
	}
	return c.Logger
}

func (c Config) intercept() int {
	if c.FitIntercept {
		return 1
	}
	return 0
}
