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
	"errors"
	"fmt"
	"math"
	"sort"
)

// KNN is a k-nearest-neighbors classifier over euclidean distance.
// Class probabilities are neighbor vote fractions.
type KNN struct {
	k          int
	features   [][]float64
	labels     []int
	numClasses int
}

// NewKNN creates a KNN classifier with the given neighbor count.
func NewKNN(k int) *KNN {
	return &KNN{k: k}
}

// Fit memorizes the training examples.
func (c *KNN) Fit(X [][]float64, y []int, numClasses int) error {
	if c.k < 1 {
		return fmt.Errorf("neighbor count must be at least 1, got %d", c.k)
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature/label length mismatch: %d vs %d", len(X), len(y))
	}
	if len(X) == 0 {
		return errors.New("no training examples")
	}
	if numClasses < 2 {
		return fmt.Errorf("num classes must be at least 2, got %d", numClasses)
	}
	c.features = X
	c.labels = y
	c.numClasses = numClasses
	return nil
}

// PredictProba returns vote-fraction probabilities for each input vector.
// When fewer training examples than k exist, all of them vote.
func (c *KNN) PredictProba(X [][]float64) ([][]float64, error) {
	if c.features == nil {
		return nil, errors.New("classifier is not fitted")
	}
	k := c.k
	if k > len(c.features) {
		k = len(c.features)
	}
	proba := make([][]float64, len(X))
	distances := make([]float64, len(c.features))
	order := make([]int, len(c.features))
	for i, vector := range X {
		for j, train := range c.features {
			d, err := squaredDistance(vector, train)
			if err != nil {
				return nil, err
			}
			distances[j] = d
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool { return distances[order[a]] < distances[order[b]] })
		row := make([]float64, c.numClasses)
		for _, j := range order[:k] {
			row[c.labels[j]] += 1 / float64(k)
		}
		proba[i] = row
	}
	return proba, nil
}

func squaredDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	if math.IsNaN(sum) {
		return 0, errors.New("distance is NaN")
	}
	return sum, nil
}
