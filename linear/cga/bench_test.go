package cga

import (
	"fmt"
	"testing"

	"github.com/YuminosukeSato/hdlogit/datasets"
	"github.com/YuminosukeSato/hdlogit/solver"
)

func BenchmarkSelect(b *testing.B) {
	sizes := []struct {
		n, p int
	}{
		{100, 50},
		{200, 500},
		{500, 2000},
	}

	for _, size := range sizes {
		X, y, err := datasets.MakeSparseLogistic(size.n, size.p, []int{0, 1, 2}, []float64{1.5, -1.5, 1.0}, 0, 1)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("n=%d_p=%d", size.n, size.p), func(b *testing.B) {
			cfg := DefaultConfig()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Select(X, y, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildPathMethods(b *testing.B) {
	X, y, err := datasets.MakeSparseLogistic(200, 200, []int{0, 1}, []float64{1.5, -1.5}, 0, 1)
	if err != nil {
		b.Fatal(err)
	}
	for _, m := range []solver.Method{solver.Dogleg, solver.TrustNCG} {
		b.Run(m.String(), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.Method = m
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := BuildPath(X, y, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFullGradient(b *testing.B) {
	X, y, err := datasets.MakeSparseLogistic(500, 2000, []int{0}, []float64{1}, 0, 1)
	if err != nil {
		b.Fatal(err)
	}
	beta := []float64{0.5}
	cols := []int{0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FullGradient(X, y, cols, beta)
	}
}
