package cga

import (
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/hdlogit/pkg/errors"
)

// Criterion は情報量規準の種類
type Criterion int

const (
	// HQIC は Hannan-Quinn 情報量規準
	HQIC Criterion = iota
	// AIC は赤池情報量規準
	AIC
	// BIC はベイズ情報量規準
	BIC
)

func (c Criterion) String() string {
	switch c {
	case HQIC:
		return "HQIC"
	case AIC:
		return "AIC"
	case BIC:
		return "BIC"
	default:
		return "Criterion(" + strconv.Itoa(int(c)) + ")"
	}
}

func (c Criterion) valid() bool {
	return c == HQIC || c == AIC || c == BIC
}

// ParseCriterion は大文字小文字を区別せずに規準名を解釈する
func ParseCriterion(name string) (Criterion, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "HQIC":
		return HQIC, nil
	case "AIC":
		return AIC, nil
	case "BIC":
		return BIC, nil
	default:
		return 0, errors.NewUnsupportedCriterionError(name)
	}
}

// Plain は通常の情報量規準を返す。loss は平均負対数尤度、k は自由パラメータ数
//
//	HQIC = 2n·loss + k·log(log n)
//	AIC  = 2n·loss + 2k
//	BIC  = 2n·loss + k·log n
func (c Criterion) Plain(loss float64, k, n int) (float64, error) {
	fn := float64(n)
	fk := float64(k)
	base := 2 * fn * loss
	switch c {
	case HQIC:
		return base + fk*math.Log(math.Log(fn)), nil
	case AIC:
		return base + 2*fk, nil
	case BIC:
		return base + fk*math.Log(fn), nil
	default:
		return 0, errors.NewUnsupportedCriterionError(c.String())
	}
}

// HighDim は高次元情報量規準 (HDIC) を返す。p は候補列の総数
//
//	HQIC = 2n·loss + 2k·wn·log(log n)·log p
//	AIC  = 2n·loss + 2k·wn·log p
//	BIC  = 2n·loss + k·wn·log n·log p
func (c Criterion) HighDim(loss float64, k int, wn float64, n, p int) (float64, error) {
	fn := float64(n)
	fk := float64(k)
	logP := math.Log(float64(p))
	base := 2 * fn * loss
	switch c {
	case HQIC:
		return base + 2*fk*wn*math.Log(math.Log(fn))*logP, nil
	case AIC:
		return base + 2*fk*wn*logP, nil
	case BIC:
		return base + fk*wn*math.Log(fn)*logP, nil
	default:
		return 0, errors.NewUnsupportedCriterionError(c.String())
	}
}
