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
)

// Logistic is a multinomial logistic-regression classifier trained with
// full-batch gradient descent on the softmax cross-entropy loss.
type Logistic struct {
	learningRate float64
	iterations   int
	weights      [][]float64 // numClasses x (dim + 1), last column is the bias
	numClasses   int
	dim          int
}

// NewLogistic creates a logistic classifier with the given training schedule.
// learningRate must be positive; iterations at least 1.
func NewLogistic(learningRate float64, iterations int) *Logistic {
	return &Logistic{learningRate: learningRate, iterations: iterations}
}

// Fit trains the weight matrix.
func (c *Logistic) Fit(X [][]float64, y []int, numClasses int) error {
	if c.learningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v", c.learningRate)
	}
	if c.iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.iterations)
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
	dim := len(X[0])
	for i, row := range X {
		if len(row) != dim {
			return fmt.Errorf("feature row %d has %d entries, expected %d", i, len(row), dim)
		}
	}

	c.numClasses = numClasses
	c.dim = dim
	c.weights = make([][]float64, numClasses)
	for k := range c.weights {
		c.weights[k] = make([]float64, dim+1)
	}

	n := float64(len(X))
	gradient := make([][]float64, numClasses)
	for k := range gradient {
		gradient[k] = make([]float64, dim+1)
	}
	for iter := 0; iter < c.iterations; iter++ {
		for k := range gradient {
			for j := range gradient[k] {
				gradient[k][j] = 0
			}
		}
		for i, row := range X {
			probs := c.softmax(row)
			for k := 0; k < numClasses; k++ {
				delta := probs[k]
				if y[i] == k {
					delta -= 1
				}
				for j, v := range row {
					gradient[k][j] += delta * v
				}
				gradient[k][dim] += delta
			}
		}
		for k := 0; k < numClasses; k++ {
			for j := 0; j <= dim; j++ {
				c.weights[k][j] -= c.learningRate * gradient[k][j] / n
			}
		}
	}
	return nil
}

// PredictProba returns softmax probabilities for each input vector.
func (c *Logistic) PredictProba(X [][]float64) ([][]float64, error) {
	if c.weights == nil {
		return nil, errors.New("classifier is not fitted")
	}
	proba := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != c.dim {
			return nil, fmt.Errorf("feature row %d has %d entries, expected %d", i, len(row), c.dim)
		}
		proba[i] = c.softmax(row)
	}
	return proba, nil
}

// softmax computes class probabilities for one feature vector.
func (c *Logistic) softmax(row []float64) []float64 {
	logits := make([]float64, c.numClasses)
	maxLogit := math.Inf(-1)
	for k, w := range c.weights {
		var z float64
		for j, v := range row {
			z += w[j] * v
		}
		z += w[c.dim]
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}
	var sum float64
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits
}
