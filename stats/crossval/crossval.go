//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package crossval performs stratified k-fold cross-validation over labeled
// feature vectors, with automatic fold-count reduction when the rarest class
// cannot fill the requested number of folds.
package crossval

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"trpc.group/trpc-go/slidebench/stats/metrics"
)

// Fold is one train/test partition of example indices.
type Fold struct {
	// Train holds the indices the classifier is fitted on.
	Train []int
	// Test holds the indices the classifier is scored on.
	Test []int
}

// Classifier fits on labeled vectors and predicts class probabilities.
type Classifier interface {
	// Fit trains on the given examples. Rows of X align with y.
	Fit(X [][]float64, y []int, numClasses int) error
	// PredictProba returns one probability row per input vector, each of
	// width numClasses.
	PredictProba(X [][]float64) ([][]float64, error)
}

// Factory creates a fresh, unfitted classifier for one fold.
type Factory func() Classifier

// FoldMetrics holds the scores of a single fold.
type FoldMetrics struct {
	// Accuracy is the fraction of correct hard predictions on the test set.
	Accuracy float64
	// MacroF1 is the macro-averaged F1 on the test set.
	MacroF1 float64
	// AUROC is the fold AUROC. Only meaningful when HasAUROC is true;
	// a fold whose test set holds fewer than two classes has none.
	AUROC    float64
	HasAUROC bool
}

// Result holds out-of-fold predictions and per-fold metrics.
type Result struct {
	// Labels are the true labels, index-aligned with Proba.
	Labels []int
	// Proba is the out-of-fold probability matrix. Row i was produced by
	// the one fold whose test set contained example i, so no example is
	// ever scored by a model that trained on it.
	Proba [][]float64
	// Folds are the partitions that produced the predictions.
	Folds []Fold
	// FoldMetrics holds one entry per fold.
	FoldMetrics []FoldMetrics
	// NumClasses is the class count inferred from the labels.
	NumClasses int
}

// EffectiveFolds clamps the requested fold count to what the rarest class
// supports: min(k, max(2, minClassCount)). Without the clamp a class rarer
// than k makes stratified partitioning undefined.
func EffectiveFolds(y []int, k int) int {
	counts := map[int]int{}
	for _, label := range y {
		counts[label]++
	}
	minCount := 0
	for _, count := range counts {
		if minCount == 0 || count < minCount {
			minCount = count
		}
	}
	if minCount < 2 {
		minCount = 2
	}
	if k < minCount {
		return k
	}
	return minCount
}

// StratifiedKFold partitions [0, len(y)) into EffectiveFolds(y, k) folds whose
// test sets preserve the overall class proportions as closely as integer
// rounding allows. The test sets are pairwise disjoint and cover every index
// exactly once. Shuffling is deterministic for a given seed.
func StratifiedKFold(y []int, k int, seed int64) ([]Fold, error) {
	if len(y) < 2 {
		return nil, fmt.Errorf("need at least 2 examples, got %d", len(y))
	}
	if k < 2 {
		return nil, fmt.Errorf("fold count must be at least 2, got %d", k)
	}
	kEff := EffectiveFolds(y, k)

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	// Deterministic iteration order so a seed fully determines the folds.
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	testSets := make([][]int, kEff)
	for _, label := range classes {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})
		for i, idx := range indices {
			bucket := i % kEff
			testSets[bucket] = append(testSets[bucket], idx)
		}
	}

	folds := make([]Fold, kEff)
	for f := range folds {
		inTest := make(map[int]struct{}, len(testSets[f]))
		for _, idx := range testSets[f] {
			inTest[idx] = struct{}{}
		}
		train := make([]int, 0, len(y)-len(testSets[f]))
		for i := range y {
			if _, ok := inTest[i]; !ok {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: testSets[f]}
	}
	return folds, nil
}

// Evaluate runs stratified cross-validation: one freshly created classifier
// per fold, fitted on the fold's train indices only and scored on its test
// indices only. Out-of-fold probabilities are written exactly once per
// example. Folds whose test set holds a single class contribute accuracy and
// F1 but no AUROC.
func Evaluate(X [][]float64, y []int, factory Factory, k int, seed int64) (*Result, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, errors.New("no examples")
	}
	if factory == nil {
		return nil, errors.New("classifier factory is nil")
	}
	numClasses := 0
	for _, label := range y {
		if label < 0 {
			return nil, fmt.Errorf("negative label %d", label)
		}
		if label+1 > numClasses {
			numClasses = label + 1
		}
	}
	if numClasses < 2 {
		return nil, errors.New("need at least 2 classes")
	}

	folds, err := StratifiedKFold(y, k, seed)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Labels:      append([]int(nil), y...),
		Proba:       make([][]float64, len(y)),
		Folds:       folds,
		FoldMetrics: make([]FoldMetrics, 0, len(folds)),
		NumClasses:  numClasses,
	}
	for f, fold := range folds {
		clf := factory()
		if err := clf.Fit(gather(X, fold.Train), gatherInts(y, fold.Train), numClasses); err != nil {
			return nil, fmt.Errorf("fit fold %d: %w", f, err)
		}
		proba, err := clf.PredictProba(gather(X, fold.Test))
		if err != nil {
			return nil, fmt.Errorf("predict fold %d: %w", f, err)
		}
		if len(proba) != len(fold.Test) {
			return nil, fmt.Errorf("fold %d returned %d probability rows, expected %d", f, len(proba), len(fold.Test))
		}
		yTest := gatherInts(y, fold.Test)
		yPred := make([]int, len(proba))
		for i, row := range proba {
			if len(row) != numClasses {
				return nil, fmt.Errorf("fold %d probability row has %d entries, expected %d", f, len(row), numClasses)
			}
			result.Proba[fold.Test[i]] = row
			yPred[i] = argmax(row)
		}

		fm := FoldMetrics{}
		if fm.Accuracy, err = metrics.Accuracy(yTest, yPred); err != nil {
			return nil, fmt.Errorf("fold %d accuracy: %w", f, err)
		}
		if fm.MacroF1, err = metrics.MacroF1(yTest, yPred, numClasses); err != nil {
			return nil, fmt.Errorf("fold %d macro f1: %w", f, err)
		}
		auc, err := foldAUROC(yTest, proba, numClasses)
		switch {
		case err == nil:
			fm.AUROC = auc
			fm.HasAUROC = true
		case errors.Is(err, metrics.ErrSingleClass):
			// AUROC is undefined on this fold; exclude it rather than
			// injecting a sentinel that would bias the aggregate.
		default:
			return nil, fmt.Errorf("fold %d auroc: %w", f, err)
		}
		result.FoldMetrics = append(result.FoldMetrics, fm)
	}
	return result, nil
}

// Summary aggregates per-fold metrics into mean/std pairs. AUROC entries are
// present only when at least one fold could compute it.
func (r *Result) Summary() map[string]float64 {
	accs := make([]float64, 0, len(r.FoldMetrics))
	f1s := make([]float64, 0, len(r.FoldMetrics))
	aucs := make([]float64, 0, len(r.FoldMetrics))
	for _, fm := range r.FoldMetrics {
		accs = append(accs, fm.Accuracy)
		f1s = append(f1s, fm.MacroF1)
		if fm.HasAUROC {
			aucs = append(aucs, fm.AUROC)
		}
	}
	summary := map[string]float64{
		"accuracy_mean": stat.Mean(accs, nil),
		"accuracy_std":  stat.StdDev(accs, nil),
		"macro_f1_mean": stat.Mean(f1s, nil),
		"macro_f1_std":  stat.StdDev(f1s, nil),
	}
	if len(aucs) > 0 {
		summary["auroc_mean"] = stat.Mean(aucs, nil)
		summary["auroc_std"] = stat.StdDev(aucs, nil)
	}
	return summary
}

// foldAUROC computes the binary or one-vs-rest macro AUROC for one fold.
func foldAUROC(yTest []int, proba [][]float64, numClasses int) (float64, error) {
	if numClasses == 2 {
		scores := make([]float64, len(proba))
		for i, row := range proba {
			scores[i] = row[1]
		}
		return metrics.AUROC(yTest, scores)
	}
	return metrics.MacroAUROCOvR(yTest, proba, numClasses)
}

func gather(X [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = X[idx]
	}
	return out
}

func gatherInts(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}

func argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}
