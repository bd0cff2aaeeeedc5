package cga_test

import (
	"fmt"
	"log"

	"github.com/YuminosukeSato/hdlogit/datasets"
	"github.com/YuminosukeSato/hdlogit/linear/cga"
)

func ExampleSelect() {
	X, y, err := datasets.MakeSparseLogistic(200, 100, []int{3, 40}, []float64{2.0, -2.0}, 0, 5)
	if err != nil {
		log.Fatal(err)
	}

	cfg := cga.DefaultConfig()
	cfg.Criterion = cga.BIC
	res, err := cga.Select(X, y, cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("path:", res.Path)
	fmt.Println("selected:", res.Model)
	fmt.Printf("intercept: %.3f\n", res.Intercept)
}

func ExampleBuildPath() {
	X, y, err := datasets.MakeSparseLogistic(150, 40, []int{0}, []float64{1.5}, 0, 9)
	if err != nil {
		log.Fatal(err)
	}

	path, err := cga.BuildPath(X, y, cga.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	for k, j := range path.Active {
		fmt.Printf("step %d: column %d loss %.4f hdic %.2f\n", k, j, path.Loss[k], path.HDIC[k])
	}
}
