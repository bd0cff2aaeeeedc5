// Package metrics provides evaluation metrics for binary classifiers.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// checkVectors は2つのベクトルが nil でなく、空でなく、同じ長さであることを確認する
func checkVectors(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "input vectors cannot be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "input vectors cannot be empty")
	}
	if n != yPred.Len() {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func checkBinary(v float64, i int) error {
	if v != 0 && v != 1 {
		return errors.NewValidationError("yTrue",
			fmt.Sprintf("must contain only binary values (0 or 1), found %f at index %d", v, i), v)
	}
	return nil
}

// firstColumn は行列の先頭列をベクトルとして取り出す
func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "input matrices cannot be nil")
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return nil, errors.NewValueError(op, "input matrices cannot be empty")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "input matrices cannot be empty")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

// AUC は ROC 曲線下の面積を台形則で計算する。
// 正例・負例の片方しかない場合は 0.5 を返す
//
// Example:
//
//	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
//	yPred := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})
//	auc, _ := metrics.AUC(yTrue, yPred) // 0.75
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("AUC", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	type pair struct{ score, label float64 }
	pairs := make([]pair, n)
	var totalPos, totalNeg float64
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if err := checkBinary(label, i); err != nil {
			return 0, err
		}
		if label == 1 {
			totalPos++
		} else {
			totalNeg++
		}
		pairs[i] = pair{score: yPred.AtVec(i), label: label}
	}
	if totalPos == 0 || totalNeg == 0 {
		return 0.5, nil
	}

	// スコアの降順
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	var auc, tp, fp, prevTPR, prevFPR float64
	for i := 0; i < n; i++ {
		if pairs[i].label == 1 {
			tp++
		} else {
			fp++
		}
		// 同じスコアはまとめて1点にする
		if i+1 < n && pairs[i+1].score == pairs[i].score {
			continue
		}
		tpr, fpr := tp/totalPos, fp/totalNeg
		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevTPR, prevFPR = tpr, fpr
	}
	return auc, nil
}

// AUCMatrix は行列入力の先頭列に対して AUC を計算する
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(t, p)
}

// BinaryLogLoss は二値交差エントロピーの平均。予測確率は [1e-15, 1-1e-15] に切り詰める
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	const epsilon = 1e-15
	var loss float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if err := checkBinary(y, i); err != nil {
			return 0, err
		}
		p := errors.ClipValue(yPred.AtVec(i), epsilon, 1-epsilon)
		if y == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log1p(-p)
		}
	}
	return loss / float64(n), nil
}

// ClassificationError は誤分類率
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("ClassificationError", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	mismatches := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			mismatches++
		}
	}
	return float64(mismatches) / float64(n), nil
}

// Accuracy は正解率 (1 - 誤分類率)
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	errorRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - errorRate, nil
}

// HammingLoss は yTrue と yPred をそれぞれ threshold より大きいかで二値化し、
// 一致しない割合を返す。HDLogisticRegression.Score の指標
func HammingLoss(yTrue, yPred mat.Matrix, threshold float64) (float64, error) {
	t, err := firstColumn("HammingLoss", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("HammingLoss", yPred)
	if err != nil {
		return 0, err
	}
	n, err := checkVectors("HammingLoss", t, p)
	if err != nil {
		return 0, err
	}
	mismatches := 0
	for i := 0; i < n; i++ {
		if (t.AtVec(i) > threshold) != (p.AtVec(i) > threshold) {
			mismatches++
		}
	}
	return float64(mismatches) / float64(n), nil
}
