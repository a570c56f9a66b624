//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package evaluator defines the scoring interface applied to oracle
// predictions.
package evaluator

import (
	"context"

	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

// Result is the outcome of scoring one prediction.
type Result struct {
	// Score is the evaluator's primary score in [0, 1].
	Score float64
	// Status is the evaluation status derived from the score.
	Status status.EvalStatus
	// Metrics holds secondary scores keyed by metric name.
	Metrics map[string]float64
	// SampleResult is the persistable per-sample result.
	SampleResult *evalresult.SampleResult
}

// Evaluator scores an oracle prediction against a sample's ground truth.
type Evaluator interface {
	// Name returns the evaluator identifier.
	Name() string
	// Description describes the evaluator purpose.
	Description() string
	// Evaluate scores the raw prediction text for the given sample.
	Evaluate(ctx context.Context, sample *sampleset.Sample, prediction string) (*Result, error)
}
