//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package vqa scores multiple-choice visual question answering predictions.
package vqa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/evaluator"
	"trpc.group/trpc-go/slidebench/oracle"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

// paddingAnswer fills in for questions the oracle left unanswered. It never
// matches a real expected answer, so a short response scores those questions
// as wrong instead of failing the sample.
const paddingAnswer = "N/A"

// vqaEvaluator scores answers by case-insensitive exact match, question by
// question.
type vqaEvaluator struct {
	threshold float64
}

// New creates a VQA evaluator. A sample passes when its accuracy reaches
// threshold.
func New(opt ...Option) evaluator.Evaluator {
	opts := newOptions(opt...)
	return &vqaEvaluator{threshold: opts.threshold}
}

// Name returns the evaluator identifier.
func (e *vqaEvaluator) Name() string {
	return "vqa_accuracy"
}

// Description describes the evaluator purpose.
func (e *vqaEvaluator) Description() string {
	return "Scores per-question answers against expected answers by case-insensitive match"
}

// Evaluate aligns the prediction's answer lines with the sample's questions.
// Missing answers are padded, surplus answers are dropped.
func (e *vqaEvaluator) Evaluate(_ context.Context, sample *sampleset.Sample, prediction string) (*evaluator.Result, error) {
	if sample == nil {
		return nil, errors.New("sample is nil")
	}
	if len(sample.Questions) == 0 {
		return nil, fmt.Errorf("sample %s has no questions", sample.SampleID)
	}
	answers := oracle.ParseAnswerLines(prediction)
	for len(answers) < len(sample.Questions) {
		answers = append(answers, paddingAnswer)
	}
	answers = answers[:len(sample.Questions)]

	details := make([]*evalresult.AnswerDetail, 0, len(sample.Questions))
	correct := 0
	for i, question := range sample.Questions {
		isCorrect := strings.EqualFold(
			strings.TrimSpace(answers[i]),
			strings.TrimSpace(question.Answer),
		)
		if isCorrect {
			correct++
		}
		details = append(details, &evalresult.AnswerDetail{
			Question:        question.Text,
			ExpectedAnswer:  question.Answer,
			PredictedAnswer: answers[i],
			IsCorrect:       isCorrect,
		})
	}
	accuracy := float64(correct) / float64(len(sample.Questions))
	evalStatus := status.EvalStatusFailed
	if accuracy >= e.threshold {
		evalStatus = status.EvalStatusPassed
	}
	return &evaluator.Result{
		Score:  accuracy,
		Status: evalStatus,
		SampleResult: &evalresult.SampleResult{
			SampleID:          sample.SampleID,
			Accuracy:          accuracy,
			Status:            evalStatus,
			Response:          prediction,
			Details:           details,
			CreationTimestamp: time.Now(),
		},
	}, nil
}
