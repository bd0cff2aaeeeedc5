package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	fit := func() (err error) {
		defer Recover(&err, "TuneWn")
		var grid []float64
		_ = grid[3]
		return nil
	}

	err := fit()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr), "expected *PanicError, got %T", err)
	assert.Equal(t, "TuneWn", panicErr.Operation)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.True(t, strings.HasPrefix(panicErr.Error(), "panic in TuneWn:"))
	assert.Contains(t, panicErr.String(), "Stack trace:")
}

func TestRecover_WithoutPanic(t *testing.T) {
	fit := func() (err error) {
		defer Recover(&err, "TuneWn")
		return nil
	}
	assert.NoError(t, fit())
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := NewValueError("Fit", "bad input")
	fit := func() (err error) {
		defer Recover(&err, "Fit")
		err = original
		panic("boom")
	}

	err := fit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in Fit: boom")

	var valueErr *ValueError
	assert.True(t, errors.As(err, &valueErr), "original error should stay in the chain")
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name      string
		fn        func() error
		wantErr   bool
		wantPanic bool
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "returned error", fn: func() error { return NewValueError("op", "failed") }, wantErr: true},
		{name: "panic", fn: func() error { panic("dimension mismatch") }, wantErr: true, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("worker", tt.fn)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var panicErr *PanicError
			assert.Equal(t, tt.wantPanic, errors.As(err, &panicErr))
		})
	}
}
