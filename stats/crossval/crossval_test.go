//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package crossval

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveFolds(t *testing.T) {
	tests := []struct {
		name string
		y    []int
		k    int
		want int
	}{
		{name: "rare class clamps", y: []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 2}, k: 5, want: 2},
		{name: "plenty of everything", y: []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, k: 5, want: 5},
		{name: "singleton class floors at two", y: []int{0, 0, 0, 1}, k: 5, want: 2},
		{name: "k below class counts", y: []int{0, 0, 0, 1, 1, 1}, k: 2, want: 2},
		{name: "mid clamp", y: []int{0, 0, 0, 0, 1, 1, 1}, k: 10, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveFolds(tt.y, tt.k))
		})
	}
}

func TestStratifiedKFoldPartitionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := 10 + rng.Intn(90)
		numClasses := 2 + rng.Intn(3)
		y := make([]int, n)
		for i := range y {
			y[i] = rng.Intn(numClasses)
		}
		k := 2 + rng.Intn(9)

		folds, err := StratifiedKFold(y, k, int64(trial))
		require.NoError(t, err)
		require.Len(t, folds, EffectiveFolds(y, k))

		seen := map[int]int{}
		for _, fold := range folds {
			for _, idx := range fold.Test {
				seen[idx]++
			}
		}
		require.Len(t, seen, n, "test sets must cover every index")
		for idx, count := range seen {
			assert.Equal(t, 1, count, "index %d must appear in exactly one test set", idx)
		}
		for f, fold := range folds {
			assert.Len(t, fold.Train, n-len(fold.Test), "fold %d train must be the test complement", f)
			inTest := map[int]bool{}
			for _, idx := range fold.Test {
				inTest[idx] = true
			}
			for _, idx := range fold.Train {
				assert.False(t, inTest[idx], "fold %d has index %d in both train and test", f, idx)
			}
		}
	}
}

func TestStratifiedKFoldDeterministicPerSeed(t *testing.T) {
	y := []int{0, 1, 0, 1, 0, 1, 0, 1, 2, 2, 2, 2}
	a, err := StratifiedKFold(y, 4, 42)
	require.NoError(t, err)
	b, err := StratifiedKFold(y, 4, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := StratifiedKFold(y, 4, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different seeds should shuffle differently")
}

func TestStratifiedKFoldPreservesProportions(t *testing.T) {
	// 40 of class 0, 20 of class 1, 4 folds: each test set gets 10 and 5.
	y := make([]int, 60)
	for i := 40; i < 60; i++ {
		y[i] = 1
	}
	folds, err := StratifiedKFold(y, 4, 1)
	require.NoError(t, err)
	require.Len(t, folds, 4)
	for f, fold := range folds {
		counts := map[int]int{}
		for _, idx := range fold.Test {
			counts[y[idx]]++
		}
		assert.Equal(t, 10, counts[0], "fold %d", f)
		assert.Equal(t, 5, counts[1], "fold %d", f)
	}
}

func TestStratifiedKFoldRejectsBadInput(t *testing.T) {
	_, err := StratifiedKFold([]int{0}, 2, 1)
	assert.Error(t, err)

	_, err = StratifiedKFold([]int{0, 1, 0, 1}, 1, 1)
	assert.Error(t, err)
}

// constantClassifier predicts a fixed probability row regardless of input.
type constantClassifier struct {
	row []float64
}

func (c *constantClassifier) Fit(X [][]float64, y []int, numClasses int) error { return nil }

func (c *constantClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = c.row
	}
	return out, nil
}

func TestEvaluateWritesEveryProbaRowOnce(t *testing.T) {
	n := 30
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 3)}
		y[i] = i % 3
	}
	result, err := Evaluate(X, y, func() Classifier {
		return &constantClassifier{row: []float64{0.2, 0.3, 0.5}}
	}, 5, 42)
	require.NoError(t, err)
	require.Len(t, result.Proba, n)
	for i, row := range result.Proba {
		require.NotNil(t, row, "row %d was never written by any fold", i)
		assert.Len(t, row, 3)
	}
	assert.Equal(t, 3, result.NumClasses)
	assert.Len(t, result.FoldMetrics, len(result.Folds))
}

func TestEvaluateWithKNNSeparableData(t *testing.T) {
	// Two well-separated clusters: KNN should classify nearly perfectly.
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(i%5) * 0.1, 0})
		y = append(y, 0)
		X = append(X, []float64{10 + float64(i%5)*0.1, 10})
		y = append(y, 1)
	}
	result, err := Evaluate(X, y, func() Classifier { return NewKNN(3) }, 5, 42)
	require.NoError(t, err)

	summary := result.Summary()
	assert.InDelta(t, 1.0, summary["accuracy_mean"], 1e-9)
	assert.InDelta(t, 1.0, summary["macro_f1_mean"], 1e-9)
	require.Contains(t, summary, "auroc_mean")
	assert.InDelta(t, 1.0, summary["auroc_mean"], 1e-9)
}

func TestEvaluateClampsFoldsForRareClass(t *testing.T) {
	// 6/2/2 split with k=5 must fall back to 2 folds instead of failing.
	X := make([][]float64, 10)
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 2}
	for i := range X {
		X[i] = []float64{float64(i)}
	}
	result, err := Evaluate(X, y, func() Classifier { return NewKNN(1) }, 5, 42)
	require.NoError(t, err)
	assert.Len(t, result.Folds, 2)
}

func TestEvaluateRejectsSingleClass(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	_, err := Evaluate(X, []int{0, 0, 0}, func() Classifier { return NewKNN(1) }, 2, 42)
	assert.Error(t, err)
}

func TestEvaluateDeterministicPerSeed(t *testing.T) {
	n := 24
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i % 7), float64(i % 4)}
		y[i] = i % 2
	}
	a, err := Evaluate(X, y, func() Classifier { return NewKNN(3) }, 4, 42)
	require.NoError(t, err)
	b, err := Evaluate(X, y, func() Classifier { return NewKNN(3) }, 4, 42)
	require.NoError(t, err)
	assert.Equal(t, a.Summary(), b.Summary())
	assert.Equal(t, a.Proba, b.Proba)
}

func TestKNNVoteFractions(t *testing.T) {
	clf := NewKNN(3)
	X := [][]float64{{0}, {0.1}, {0.2}, {10}}
	y := []int{0, 0, 1, 1}
	require.NoError(t, clf.Fit(X, y, 2))

	proba, err := clf.PredictProba([][]float64{{0.05}})
	require.NoError(t, err)
	require.Len(t, proba, 1)
	// The three nearest neighbors are the first three points: two of class
	// 0, one of class 1.
	assert.InDelta(t, 2.0/3.0, proba[0][0], 1e-9)
	assert.InDelta(t, 1.0/3.0, proba[0][1], 1e-9)
}

func TestKNNClampsNeighborsToTrainSize(t *testing.T) {
	clf := NewKNN(10)
	require.NoError(t, clf.Fit([][]float64{{0}, {1}}, []int{0, 1}, 2))
	proba, err := clf.PredictProba([][]float64{{0.4}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, proba[0][0], 1e-9)
	assert.InDelta(t, 0.5, proba[0][1], 1e-9)
}

func TestKNNDimensionMismatch(t *testing.T) {
	clf := NewKNN(1)
	require.NoError(t, clf.Fit([][]float64{{0, 1}}, []int{0}, 2))
	_, err := clf.PredictProba([][]float64{{0}})
	assert.Error(t, err)
}

func TestLogisticLearnsSeparableData(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{-1 - 0.05*float64(i)})
		y = append(y, 0)
		X = append(X, []float64{1 + 0.05*float64(i)})
		y = append(y, 1)
	}
	clf := NewLogistic(0.5, 500)
	require.NoError(t, clf.Fit(X, y, 2))

	proba, err := clf.PredictProba([][]float64{{-2}, {2}})
	require.NoError(t, err)
	assert.Greater(t, proba[0][0], 0.9)
	assert.Greater(t, proba[1][1], 0.9)
}

func TestLogisticProbabilitiesSumToOne(t *testing.T) {
	X := [][]float64{{0, 1}, {1, 0}, {1, 1}, {0, 0}, {2, 1}, {1, 2}}
	y := []int{0, 1, 2, 0, 1, 2}
	clf := NewLogistic(0.1, 100)
	require.NoError(t, clf.Fit(X, y, 3))

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	for i, row := range proba {
		var sum float64
		for _, v := range row {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, fmt.Sprintf("row %d", i))
	}
}

func TestLogisticRejectsUnfittedPredict(t *testing.T) {
	clf := NewLogistic(0.1, 10)
	_, err := clf.PredictProba([][]float64{{1}})
	assert.Error(t, err)
}
