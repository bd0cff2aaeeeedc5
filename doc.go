// Package hdlogit provides sparse binary logistic regression for
// high-dimensional data, where the number of features p can be far larger
// than the number of samples n.
//
// Model selection runs in three stages:
//
//   - CGA: the Chebyshev greedy algorithm adds, one at a time, the feature
//     with the largest absolute gradient of the log-likelihood and refits
//     the active set with a trust-region Newton method.
//   - HDIC: the path is cut where a high-dimensional information criterion
//     (HQIC, AIC or BIC with a log p penalty scaled by wn) is smallest.
//   - Trim: every selected feature whose removal lowers the criterion is
//     dropped and the remaining set is refitted.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/hdlogit/datasets"
//	    "github.com/YuminosukeSato/hdlogit/sklearn/linear_model"
//	)
//
//	func main() {
//	    X, y, err := datasets.MakeSparseLogistic(200, 500, []int{0, 10}, []float64{2, -1.5}, 0, 1)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    clf := linear_model.NewHDLogisticRegression(
//	        linear_model.WithHDCriterion("HQIC"),
//	    )
//	    if err := clf.Fit(X, datasets.Column(y)); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("selected:", clf.Model())
//	}
//
// # Packages
//
//   - sklearn/linear_model: HDLogisticRegression estimator and the wn sweep
//   - linear/cga: CGA path, HDIC and Trim on a plain design matrix
//   - solver: trust-region and gonum-backed minimizers
//   - metrics: Hamming loss, log loss, AUC
//   - preprocessing: StandardScaler
//   - datasets: synthetic sparse classification data
//   - core/model: estimator interfaces, fitted state, weight persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: typed errors and structured logging
//
// The cmd/hdlogit command fits and applies models from CSV files.
package hdlogit
