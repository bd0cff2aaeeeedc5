package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReadDataset(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		header      bool
		labelColumn int
		wantX       []float64
		wantY       []float64
		wantNames   []string
	}{
		{
			name:        "header and last label",
			input:       "a,b,y\n1,2,0\n3,4,1\n",
			header:      true,
			labelColumn: -1,
			wantX:       []float64{1, 2, 3, 4},
			wantY:       []float64{0, 1},
			wantNames:   []string{"a", "b"},
		},
		{
			name:        "first label without header",
			input:       "1, 0.5, 2\n0, -1, 3e-1\n",
			labelColumn: 0,
			wantX:       []float64{0.5, 2, -1, 0.3},
			wantY:       []float64{1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := readDataset(strings.NewReader(tt.input), tt.header, tt.labelColumn, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantX, ds.X.RawMatrix().Data)
			assert.Equal(t, tt.wantY, ds.y)
			assert.Equal(t, tt.wantNames, ds.features)
		})
	}
}

func TestReadDatasetUnlabeled(t *testing.T) {
	ds, err := readDataset(strings.NewReader("1,2\n3,4\n"), false, -1, 2)
	require.NoError(t, err)
	assert.Nil(t, ds.y)
	r, c := ds.X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)

	// One extra column is the label.
	ds, err = readDataset(strings.NewReader("1,2,1\n3,4,0\n"), false, -1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, ds.y)
}

func TestReadDatasetErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		nFeatures int
		label     int
	}{
		{"empty", "", 0, -1},
		{"header only", "a,b\n", 0, -1},
		{"not a number", "1,x,0\n", 0, -1},
		{"ragged", "1,2,0\n1,0\n", 0, -1},
		{"label out of range", "1,2,0\n", 0, 5},
		{"only a label", "0\n1\n", 0, -1},
		{"feature count", "1,2,3,0\n", 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.name == "header only"
			_, err := readDataset(strings.NewReader(tt.input), header, tt.label, tt.nFeatures)
			assert.Error(t, err)
		})
	}
}

func TestWritePredictions(t *testing.T) {
	var buf bytes.Buffer
	proba := mat.NewDense(2, 1, []float64{0.25, 0.75})
	labels := mat.NewDense(2, 1, []float64{0, 1})
	require.NoError(t, writePredictions(&buf, proba, labels))
	assert.Equal(t, "probability,label\n0.25,0\n0.75,1\n", buf.String())
}
