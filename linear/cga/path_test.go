package cga

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/datasets"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
)

func sparseData(t *testing.T) (*mat.Dense, []float64) {
	t.Helper()
	X, y, err := datasets.MakeSparseLogistic(200, 30, []int{2, 7}, []float64{2.0, -1.5}, 0.3, 42)
	require.NoError(t, err)
	return X, y
}

func withIntercept(X *mat.Dense) *mat.Dense {
	n, p := X.Dims()
	d := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		d.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			d.Set(i, j+1, X.At(i, j))
		}
	}
	return d
}

func TestIterationBound(t *testing.T) {
	tests := []struct {
		name                string
		rank, n, p          int
		kn                  float64
		intercept, expected int
	}{
		{"rate bound", 31, 200, 31, 3, 1, int(math.Ceil(3*math.Sqrt(200/math.Log(31)))) + 1},
		{"rank bound", 4, 200, 31, 3, 1, 4},
		{"no intercept", 50, 100, 50, 1, 0, int(math.Ceil(math.Sqrt(100 / math.Log(50))))},
		{"single column ignores rate", 1, 10, 1, 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, iterationBound(tt.rank, tt.n, tt.p, tt.kn, tt.intercept))
		})
	}
}

func TestBuildPathIterationCount(t *testing.T) {
	X, y := sparseData(t)
	cfg := DefaultConfig()
	path, err := BuildPath(X, y, cfg)
	require.NoError(t, err)

	rank, err := matrixRank(withIntercept(X))
	require.NoError(t, err)
	require.Equal(t, 31, rank)
	rate := int(math.Ceil(cfg.Kn*math.Sqrt(200/math.Log(31)))) + 1
	assert.Equal(t, min(rank, rate), path.Iterations)
	assert.Equal(t, 200, path.NSamples)
	assert.Equal(t, 31, path.NColumns)
	assert.True(t, path.FitIntercept)
}

func TestBuildPathStructure(t *testing.T) {
	X, y := sparseData(t)
	path, err := BuildPath(X, y, DefaultConfig())
	require.NoError(t, err)

	require.Len(t, path.Active, path.Iterations)
	require.Len(t, path.Coefs, path.Iterations)
	require.Len(t, path.Loss, path.Iterations)
	require.Len(t, path.HDIC, path.Iterations)

	assert.Equal(t, 0, path.Active[0], "intercept comes first")
	seen := map[int]bool{}
	for k, c := range path.Active {
		assert.False(t, seen[c], "column %d selected twice", c)
		seen[c] = true
		assert.Len(t, path.Coefs[k], k+1)
	}

	// The two true signals (design columns 3 and 8) are picked right after the intercept.
	assert.ElementsMatch(t, []int{3, 8}, path.Active[1:3])

	// Adding columns never increases the fitted loss.
	for k := 1; k < path.Iterations; k++ {
		assert.LessOrEqual(t, path.Loss[k], path.Loss[k-1]+1e-12)
	}

	dense := path.Dense(2)
	require.Len(t, dense, 31)
	for j, v := range dense {
		if j != path.Active[0] && j != path.Active[1] && j != path.Active[2] {
			assert.Zero(t, v)
		}
	}
	assert.Equal(t, path.Coefs[2][1], dense[path.Active[1]])
}

func TestBuildPathWithoutIntercept(t *testing.T) {
	X, y := sparseData(t)
	cfg := DefaultConfig()
	cfg.FitIntercept = false
	path, err := BuildPath(X, y, cfg)
	require.NoError(t, err)

	assert.Equal(t, 30, path.NColumns)
	assert.False(t, path.FitIntercept)

	// Step 0 is the column with the largest gradient at zero.
	design := mat.DenseCopyOf(X)
	grad := FullGradient(design, y, nil, nil)
	assert.Equal(t, argmaxAbs(grad, make([]bool, 30)), path.Active[0])
}

func TestArgmaxAbsFirstIndexWinsTies(t *testing.T) {
	g := []float64{0.1, -0.5, 0.5, 0.2}
	assert.Equal(t, 1, argmaxAbs(g, make([]bool, 4)))
	assert.Equal(t, 2, argmaxAbs(g, []bool{false, true, false, false}))
	assert.Equal(t, -1, argmaxAbs(g, []bool{true, true, true, true}))
}

func TestBuildPathDuplicateColumnTie(t *testing.T) {
	X, y := sparseData(t)
	n, _ := X.Dims()
	// Columns 0 and 1 are copies of the strongest signal.
	dup := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		dup.Set(i, 0, X.At(i, 2))
		dup.Set(i, 1, X.At(i, 2))
		dup.Set(i, 2, X.At(i, 7))
	}
	path, err := BuildPath(dup, y, DefaultConfig())
	require.NoError(t, err)
	require.GreaterOrEqual(t, path.Iterations, 2)
	assert.Equal(t, 1, path.Active[1], "lower design index wins the tie")
	assert.Equal(t, 3, path.Iterations, "rank of the duplicated design bounds the path")
}

func TestBuildPathDeterministic(t *testing.T) {
	X, y := sparseData(t)
	a, err := BuildPath(X, y, DefaultConfig())
	require.NoError(t, err)
	b, err := BuildPath(X, y, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildPathLogsEachStep(t *testing.T) {
	X, y := sparseData(t)
	logger, _ := log.NewTestLogger(log.LevelDebug)
	cfg := DefaultConfig()
	cfg.Logger = logger
	path, err := BuildPath(X, y, cfg)
	require.NoError(t, err)

	steps := logger.EntriesWithMessage("cga step")
	require.Len(t, steps, path.Iterations)
	assert.Equal(t, float64(path.Active[1]), steps[1][log.ColumnKey])
}

func TestBuildPathValidation(t *testing.T) {
	X, y := sparseData(t)

	_, err := BuildPath(X, y[:10], DefaultConfig())
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	bad := append([]float64(nil), y...)
	bad[3] = 1.5
	_, err = BuildPath(X, bad, DefaultConfig())
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	nanX := mat.DenseCopyOf(X)
	nanX.Set(5, 5, math.NaN())
	_, err = BuildPath(nanX, y, DefaultConfig())
	assert.True(t, errors.As(err, &ve))

	_, err = BuildPath(mat.NewDense(1, 1, []float64{1}), []float64{1}, DefaultConfig())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Kn = 0
	_, err = BuildPath(X, y, cfg)
	assert.True(t, errors.As(err, &ve))

	cfg = DefaultConfig()
	cfg.Wn = -1
	_, err = BuildPath(X, y, cfg)
	assert.True(t, errors.As(err, &ve))

	cfg = DefaultConfig()
	cfg.Tol = math.Inf(1)
	_, err = BuildPath(X, y, cfg)
	assert.True(t, errors.As(err, &ve), "infinite tol: %v", err)

	cfg = DefaultConfig()
	cfg.Criterion = Criterion(7)
	_, err = BuildPath(X, y, cfg)
	var uc *errors.UnsupportedCriterionError
	assert.True(t, errors.As(err, &uc))
}

func TestBuildPathFractionalLabels(t *testing.T) {
	X, y := sparseData(t)
	soft := make([]float64, len(y))
	for i, v := range y {
		soft[i] = 0.1 + 0.8*v
	}
	path, err := BuildPath(X, soft, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, path.Active[0])
}

func TestBuildPathMinimizerFailure(t *testing.T) {
	X, y := sparseData(t)
	cfg := DefaultConfig()
	cfg.FitIntercept = false
	cfg.MaxIter = 1
	cfg.Tol = 1e-12

	_, err := BuildPath(X, y, cfg)
	var me *errors.MinimizerError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, "cga", me.Stage)
	assert.Equal(t, 0, me.Step)
	assert.Equal(t, "dogleg", me.Method)
	assert.Equal(t, 1, me.Iterations)
}
