package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMakeSparseLogisticDeterministic(t *testing.T) {
	X1, y1, err := MakeSparseLogistic(50, 8, []int{1, 4}, []float64{2, -1}, 0.2, 7)
	require.NoError(t, err)
	X2, y2, err := MakeSparseLogistic(50, 8, []int{1, 4}, []float64{2, -1}, 0.2, 7)
	require.NoError(t, err)

	assert.True(t, mat.Equal(X1, X2))
	assert.Equal(t, y1, y2)

	r, c := X1.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 8, c)
	for _, v := range y1 {
		assert.Contains(t, []float64{0, 1}, v)
	}

	X3, _, err := MakeSparseLogistic(50, 8, []int{1, 4}, []float64{2, -1}, 0.2, 8)
	require.NoError(t, err)
	assert.False(t, mat.Equal(X1, X3))
}

func TestMakeSparseLogisticRejectsBadInput(t *testing.T) {
	_, _, err := MakeSparseLogistic(0, 3, nil, nil, 0, 1)
	assert.Error(t, err)
	_, _, err = MakeSparseLogistic(10, 3, []int{0}, []float64{1, 2}, 0, 1)
	assert.Error(t, err)
	_, _, err = MakeSparseLogistic(10, 3, []int{3}, []float64{1}, 0, 1)
	assert.Error(t, err)
}

func TestMakeSeparableIsSeparable(t *testing.T) {
	X, y, err := MakeSeparable(40, 5, 3, 11)
	require.NoError(t, err)
	for i, label := range y {
		v := X.At(i, 3)
		if label == 1 {
			assert.GreaterOrEqual(t, v, 0.5)
		} else {
			assert.LessOrEqual(t, v, -0.5)
		}
	}

	_, _, err = MakeSeparable(40, 5, 5, 11)
	assert.Error(t, err)
}

func TestColumn(t *testing.T) {
	y := []float64{0, 1, 1}
	c := Column(y)
	r, cols := c.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, cols)
	y[0] = 5
	assert.Equal(t, 0.0, c.At(0, 0))
}
