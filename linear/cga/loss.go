package cga

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Sigmoid は数値的に安定なロジスティック関数 1/(1+exp(-z))
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Log1pExp は log(1+exp(z)) をオーバーフローなしで計算する
func Log1pExp(z float64) float64 {
	if z >= 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// Objective は能動集合の列に制限したロジスティック損失
//
//	L(β) = mean(log(1+exp(Xs·β))) − mean(y ∘ Xs·β)
//
// 作業領域を持つため、1つのゴルーチンからのみ使用すること
type Objective struct {
	xs *mat.Dense // n×k
	y  []float64
	n  float64

	z    *mat.VecDense
	work *mat.Dense
	buf  []float64
}

// NewObjective は design の cols 列を n×k 行列にコピーして損失を構築する
func NewObjective(design *mat.Dense, y []float64, cols []int) *Objective {
	n, _ := design.Dims()
	k := len(cols)
	o := &Objective{y: y, n: float64(n), buf: make([]float64, n)}
	if k == 0 {
		return o
	}
	o.xs = mat.NewDense(n, k, nil)
	for j, c := range cols {
		o.xs.SetCol(j, mat.Col(nil, c, design))
	}
	o.z = mat.NewVecDense(n, nil)
	o.work = mat.NewDense(n, k, nil)
	return o
}

// Dim は自由パラメータ数 k
func (o *Objective) Dim() int {
	if o.xs == nil {
		return 0
	}
	_, k := o.xs.Dims()
	return k
}

// linear は z = Xs·β を計算し、その値のスライスを返す
func (o *Objective) linear(beta []float64) []float64 {
	if o.xs == nil {
		for i := range o.buf {
			o.buf[i] = 0
		}
		return o.buf
	}
	o.z.MulVec(o.xs, mat.NewVecDense(len(beta), beta))
	return o.z.RawVector().Data
}

// Func は平均負対数尤度
func (o *Objective) Func(beta []float64) float64 {
	z := o.linear(beta)
	var s float64
	for i, zi := range z {
		s += Log1pExp(zi) - o.y[i]*zi
	}
	return s / o.n
}

// Grad は Xsᵀ(σ(Xs·β) − y)/n を grad に書き込む
func (o *Objective) Grad(grad, beta []float64) {
	if o.xs == nil {
		return
	}
	z := o.linear(beta)
	for i, zi := range z {
		o.buf[i] = (Sigmoid(zi) - o.y[i]) / o.n
	}
	mat.NewVecDense(len(grad), grad).MulVec(o.xs.T(), mat.NewVecDense(len(o.buf), o.buf))
}

// Hess は Xsᵀ diag(σ(1−σ)) Xs / n を hess に書き込む
func (o *Objective) Hess(hess *mat.SymDense, beta []float64) {
	if o.xs == nil {
		return
	}
	z := o.linear(beta)
	n, k := o.xs.Dims()
	for i := 0; i < n; i++ {
		s := Sigmoid(z[i])
		w := math.Sqrt(s * (1 - s))
		for j := 0; j < k; j++ {
			o.work.Set(i, j, w*o.xs.At(i, j))
		}
	}
	hess.SymOuterK(1/o.n, o.work.T())
}

// Problem は gonum optimize.Problem 形式で損失を返す
func (o *Objective) Problem() optimize.Problem {
	return optimize.Problem{
		Func: o.Func,
		Grad: o.Grad,
		Hess: o.Hess,
	}
}

// FullGradient は制限なし損失の勾配（長さ P）を、cols 以外を 0 とした β で評価する
func FullGradient(design *mat.Dense, y []float64, cols []int, beta []float64) []float64 {
	n, p := design.Dims()
	z := make([]float64, n)
	for j, c := range cols {
		if beta[j] == 0 {
			continue
		}
		floats.AddScaled(z, beta[j], mat.Col(nil, c, design))
	}
	r := make([]float64, n)
	for i, zi := range z {
		r[i] = (Sigmoid(zi) - y[i]) / float64(n)
	}
	grad := make([]float64, p)
	mat.NewVecDense(p, grad).MulVec(design.T(), mat.NewVecDense(n, r))
	return grad
}
