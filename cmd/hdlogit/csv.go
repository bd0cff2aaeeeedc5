package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// dataset is a numeric CSV split into features and an optional label column.
type dataset struct {
	X        *mat.Dense
	y        []float64 // nil when the file has no label column
	features []string
}

// readDataset parses r. labelColumn selects the label (negative counts from
// the end). With nFeatures > 0 a row of exactly nFeatures columns is taken
// as unlabeled.
func readDataset(r io.Reader, header bool, labelColumn, nFeatures int) (*dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}

	var names []string
	if header && len(records) > 0 {
		names = records[0]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("readDataset", "empty data", errors.ErrEmptyData)
	}

	width := len(records[0])
	labeled := nFeatures <= 0 || width != nFeatures
	label := -1
	if labeled {
		label = labelColumn
		if label < 0 {
			label += width
		}
		if label < 0 || label >= width {
			return nil, errors.NewValidationError("label_column", "out of range", labelColumn)
		}
	}
	cols := width
	if labeled {
		cols--
	}
	if cols == 0 {
		return nil, errors.NewValidationError("csv", "no feature columns", width)
	}
	if nFeatures > 0 && cols != nFeatures {
		return nil, errors.NewDimensionError("readDataset", nFeatures, cols, 1)
	}

	ds := &dataset{X: mat.NewDense(len(records), cols, nil)}
	if labeled {
		ds.y = make([]float64, len(records))
	}
	for i, rec := range records {
		// csv.Reader already rejects ragged rows
		j := 0
		for c, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NewValidationError("csv", fmt.Sprintf("row %d column %d is not a number", i+1, c), field)
			}
			if c == label {
				ds.y[i] = v
				continue
			}
			ds.X.Set(i, j, v)
			j++
		}
	}

	if names != nil {
		for c, name := range names {
			if c != label {
				ds.features = append(ds.features, name)
			}
		}
	}
	return ds, nil
}

// writePredictions writes one "probability,label" row per sample.
func writePredictions(w io.Writer, proba, labels mat.Matrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"probability", "label"}); err != nil {
		return err
	}
	rows, _ := proba.Dims()
	for i := 0; i < rows; i++ {
		rec := []string{
			strconv.FormatFloat(proba.At(i, 0), 'g', -1, 64),
			strconv.FormatFloat(labels.At(i, 0), 'f', 0, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
