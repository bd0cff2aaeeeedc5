package model

import (
	"io"
	"os"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// SaveWeights はモデルの重みをJSONファイルに保存する
//
// 使用例:
//
//	est := linear_model.NewHDLogisticRegression()
//	// ... モデルの学習 ...
//	err := model.SaveWeights(est, "model.json")
func SaveWeights(m WeightExporter, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()

	if err := WriteWeights(m, file); err != nil {
		return err
	}
	return file.Sync()
}

// LoadWeights はJSONファイルから重みを読み込み、モデルに設定する
func LoadWeights(m WeightExporter, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()

	return ReadWeights(m, file)
}

// WriteWeights はモデルの重みをio.Writerに書き出す
func WriteWeights(m WeightExporter, w io.Writer) error {
	weights, err := m.ExportWeights()
	if err != nil {
		return err
	}
	data, err := weights.ToJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write model weights")
	}
	return nil
}

// ReadWeights はio.Readerから重みを読み込み、検証してからモデルに設定する
func ReadWeights(m WeightExporter, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read model weights")
	}
	weights := &ModelWeights{}
	if err := weights.FromJSON(data); err != nil {
		return err
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	return m.ImportWeights(weights)
}
