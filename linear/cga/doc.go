// Package cga implements variable selection for high-dimensional logistic
// regression in three stages:
//
//  1. BuildPath runs the Chebyshev greedy algorithm (CGA). Each step adds the
//     column with the largest absolute loss gradient and refits the logistic
//     loss on the active set, warm-started from the previous step.
//  2. Select truncates the path at the minimum of the high-dimensional
//     information criterion (HDIC).
//  3. Select then trims regressors whose removal lowers the HDIC.
//
// The minimizer is pluggable through the solver package; see Config.Method.
package cga
