//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package bootstrap estimates confidence intervals for classification metrics
// by resampling predictions with replacement.
package bootstrap

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"trpc.group/trpc-go/slidebench/stats/metrics"
)

// Interval is a point estimate with a 95% percentile confidence interval.
type Interval struct {
	// Mean is the mean of the bootstrap distribution.
	Mean float64
	// Lower is the 2.5th percentile of the distribution.
	Lower float64
	// Upper is the 97.5th percentile of the distribution.
	Upper float64
	// Resamples is the number of resamples that produced a defined metric.
	Resamples int
}

// MacroAUROC draws nBoot resamples of the labeled probability matrix with
// replacement and computes the macro one-vs-rest AUROC on each. Resamples
// where some class loses all its positives or negatives have no defined
// AUROC and are discarded rather than scored. The returned distribution is
// deterministic for a given seed.
func MacroAUROC(yTrue []int, proba [][]float64, numClasses, nBoot int, seed int64) ([]float64, error) {
	if len(yTrue) != len(proba) {
		return nil, fmt.Errorf("label/probability length mismatch: %d vs %d", len(yTrue), len(proba))
	}
	if len(yTrue) == 0 {
		return nil, errors.New("labels are empty")
	}
	if nBoot < 1 {
		return nil, fmt.Errorf("resample count must be at least 1, got %d", nBoot)
	}

	rng := rand.New(rand.NewSource(seed))
	n := len(yTrue)
	sampleLabels := make([]int, n)
	sampleProba := make([][]float64, n)
	dist := make([]float64, 0, nBoot)
	for b := 0; b < nBoot; b++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			sampleLabels[i] = yTrue[j]
			sampleProba[i] = proba[j]
		}
		auc, err := scoreResample(sampleLabels, sampleProba, numClasses)
		if errors.Is(err, metrics.ErrSingleClass) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resample %d: %w", b, err)
		}
		dist = append(dist, auc)
	}
	if len(dist) == 0 {
		return nil, errors.New("no resample produced a defined macro AUROC")
	}
	return dist, nil
}

// Summarize reduces a bootstrap distribution to its mean and 95% percentile
// interval.
func Summarize(dist []float64) (*Interval, error) {
	if len(dist) == 0 {
		return nil, errors.New("distribution is empty")
	}
	sorted := append([]float64(nil), dist...)
	sort.Float64s(sorted)
	return &Interval{
		Mean:      stat.Mean(sorted, nil),
		Lower:     stat.Quantile(0.025, stat.Empirical, sorted, nil),
		Upper:     stat.Quantile(0.975, stat.Empirical, sorted, nil),
		Resamples: len(sorted),
	}, nil
}

// scoreResample computes the AUROC of one resample, binary or one-vs-rest
// depending on the class count.
func scoreResample(yTrue []int, proba [][]float64, numClasses int) (float64, error) {
	if numClasses == 2 {
		scores := make([]float64, len(proba))
		for i, row := range proba {
			if len(row) != 2 {
				return 0, fmt.Errorf("probability row has %d entries, expected 2", len(row))
			}
			scores[i] = row[1]
		}
		return metrics.AUROC(yTrue, scores)
	}
	return metrics.MacroAUROCOvR(yTrue, proba, numClasses)
}
