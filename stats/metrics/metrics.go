//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package metrics provides classification metrics for evaluation scoring.
package metrics

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSingleClass marks a metric that is undefined on the given sample because
// fewer than two classes are present. It signals "not computable here", which
// callers handle by exclusion, as opposed to an invalid-input error.
var ErrSingleClass = errors.New("metric undefined: fewer than two classes present")

// Accuracy returns the fraction of matching label pairs.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("label length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, errors.New("labels are empty")
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// MacroF1 returns the unweighted mean F1 over all classes present in either
// the true or the predicted labels. A class with no true or predicted
// occurrences contributes zero, matching the conventional macro definition.
func MacroF1(yTrue, yPred []int, numClasses int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("label length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, errors.New("labels are empty")
	}
	if numClasses < 2 {
		return 0, fmt.Errorf("num classes must be at least 2, got %d", numClasses)
	}
	present := make([]bool, numClasses)
	tp := make([]int, numClasses)
	fp := make([]int, numClasses)
	fn := make([]int, numClasses)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= numClasses || p < 0 || p >= numClasses {
			return 0, fmt.Errorf("label out of range [0, %d): true=%d pred=%d", numClasses, t, p)
		}
		present[t], present[p] = true, true
		if t == p {
			tp[t]++
			continue
		}
		fp[p]++
		fn[t]++
	}
	var total float64
	counted := 0
	for c := 0; c < numClasses; c++ {
		if !present[c] {
			continue
		}
		counted++
		denom := float64(2*tp[c] + fp[c] + fn[c])
		if denom == 0 {
			continue
		}
		total += 2 * float64(tp[c]) / denom
	}
	return total / float64(counted), nil
}

// AUROC computes the binary area under the ROC curve from positive-class
// scores using the rank-sum formulation with midranks for tied scores.
// yTrue must contain 0/1 labels; ErrSingleClass is returned when only one
// class is present.
func AUROC(yTrue []int, scores []float64) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, fmt.Errorf("label/score length mismatch: %d vs %d", len(yTrue), len(scores))
	}
	nPos, nNeg := 0, 0
	for _, label := range yTrue {
		switch label {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, fmt.Errorf("binary label out of range: %d", label)
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, ErrSingleClass
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// Midranks for ties keep the estimator unbiased under tied scores.
	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			j++
		}
		midrank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[order[k]] = midrank
		}
		i = j
	}

	var posRankSum float64
	for i, label := range yTrue {
		if label == 1 {
			posRankSum += ranks[i]
		}
	}
	return (posRankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg)), nil
}

// MacroAUROCOvR computes the one-vs-rest macro-averaged AUROC for a
// multi-class probability matrix. Every class in [0, numClasses) must have
// both positive and negative examples; otherwise ErrSingleClass is returned
// and the caller decides whether to exclude the sample (fold, resample) from
// its aggregate.
func MacroAUROCOvR(yTrue []int, proba [][]float64, numClasses int) (float64, error) {
	if len(yTrue) != len(proba) {
		return 0, fmt.Errorf("label/probability length mismatch: %d vs %d", len(yTrue), len(proba))
	}
	if len(yTrue) == 0 {
		return 0, errors.New("labels are empty")
	}
	if numClasses < 2 {
		return 0, fmt.Errorf("num classes must be at least 2, got %d", numClasses)
	}
	binary := make([]int, len(yTrue))
	scores := make([]float64, len(yTrue))
	var total float64
	for c := 0; c < numClasses; c++ {
		for i, label := range yTrue {
			if label == c {
				binary[i] = 1
			} else {
				binary[i] = 0
			}
			if len(proba[i]) != numClasses {
				return 0, fmt.Errorf("probability row %d has %d entries, expected %d", i, len(proba[i]), numClasses)
			}
			scores[i] = proba[i][c]
		}
		auc, err := AUROC(binary, scores)
		if err != nil {
			return 0, err
		}
		total += auc
	}
	return total / float64(numClasses), nil
}
