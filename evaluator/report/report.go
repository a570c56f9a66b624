//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package report scores generated diagnostic reports against reference
// reports with ROUGE.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/evaluator"
	"trpc.group/trpc-go/slidebench/internal/rouge"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

// reportEvaluator scores a generated report with ROUGE F-measures. The
// reference report is the answer of the sample's single question.
type reportEvaluator struct {
	threshold float64
}

// New creates a report evaluator. A sample passes when its mean ROUGE
// F-measure reaches threshold.
func New(opt ...Option) evaluator.Evaluator {
	opts := newOptions(opt...)
	return &reportEvaluator{threshold: opts.threshold}
}

// Name returns the evaluator identifier.
func (e *reportEvaluator) Name() string {
	return "report_rouge"
}

// Description describes the evaluator purpose.
func (e *reportEvaluator) Description() string {
	return "Scores generated reports against reference reports with ROUGE F-measures"
}

// Evaluate computes rouge1/rouge2/rougeL/rougeLsum F-measures and averages
// them into the primary score.
func (e *reportEvaluator) Evaluate(_ context.Context, sample *sampleset.Sample, prediction string) (*evaluator.Result, error) {
	if sample == nil {
		return nil, errors.New("sample is nil")
	}
	if len(sample.Questions) == 0 || sample.Questions[0].Answer == "" {
		return nil, fmt.Errorf("sample %s has no reference report", sample.SampleID)
	}
	reference := sample.Questions[0].Answer
	scores, err := rouge.Compute(reference, prediction)
	if err != nil {
		return nil, fmt.Errorf("rouge scoring for sample %s: %w", sample.SampleID, err)
	}
	metricsMap := make(map[string]float64, len(scores))
	var total float64
	for name, score := range scores {
		metricsMap[name] = score.FMeasure
		total += score.FMeasure
	}
	mean := total / float64(len(scores))
	evalStatus := status.EvalStatusFailed
	if mean >= e.threshold {
		evalStatus = status.EvalStatusPassed
	}
	return &evaluator.Result{
		Score:   mean,
		Status:  evalStatus,
		Metrics: metricsMap,
		SampleResult: &evalresult.SampleResult{
			SampleID:          sample.SampleID,
			Accuracy:          mean,
			Status:            evalStatus,
			Response:          prediction,
			CreationTimestamp: time.Now(),
		},
	}, nil
}
