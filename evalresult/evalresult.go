//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package evalresult stores per-sample evaluation results and aggregate run
// results.
package evalresult

import (
	"context"
	"time"

	"trpc.group/trpc-go/slidebench/status"
)

// AnswerDetail records how one question was answered.
type AnswerDetail struct {
	// Question is the question text.
	Question string `json:"question"`
	// ExpectedAnswer is the ground-truth answer.
	ExpectedAnswer string `json:"expected_answer"`
	// PredictedAnswer is the oracle's answer, after padding or truncation.
	PredictedAnswer string `json:"predicted_answer"`
	// IsCorrect reports whether the answers matched.
	IsCorrect bool `json:"is_correct"`
}

// SampleResult is the persisted outcome of evaluating one sample.
type SampleResult struct {
	// SampleID identifies the evaluated sample.
	SampleID string `json:"sample_id"`
	// Accuracy is the fraction of correctly answered questions.
	Accuracy float64 `json:"accuracy"`
	// Status is the final evaluation status of the sample.
	Status status.EvalStatus `json:"status"`
	// Response is the raw oracle response text.
	Response string `json:"response,omitempty"`
	// Details holds one entry per question.
	Details []*AnswerDetail `json:"details,omitempty"`
	// CreationTimestamp when this result was produced.
	CreationTimestamp time.Time `json:"creation_timestamp"`
}

// RunResult aggregates one benchmark run over a sample set.
type RunResult struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// SetID identifies the evaluated sample set.
	SetID string `json:"set_id"`
	// SampleResults holds the per-sample results of the run.
	SampleResults []*SampleResult `json:"sample_results,omitempty"`
	// Evaluated counts samples that produced an accepted result.
	Evaluated int `json:"evaluated"`
	// Skipped counts samples skipped because a result already existed.
	Skipped int `json:"skipped"`
	// Total counts all samples in the set.
	Total int `json:"total"`
	// Summary holds aggregate metrics keyed by metric name.
	Summary map[string]float64 `json:"summary,omitempty"`
	// CreationTimestamp when this run finished.
	CreationTimestamp time.Time `json:"creation_timestamp"`
}

// Manager defines the interface for storing and retrieving results.
type Manager interface {
	// SaveSample persists one sample result under the given set.
	SaveSample(ctx context.Context, setID string, result *SampleResult) error
	// GetSample retrieves a stored sample result.
	GetSample(ctx context.Context, setID, sampleID string) (*SampleResult, error)
	// HasSample reports whether a result exists for the sample. It backs the
	// resume probe, so it must never fail: storage errors read as false.
	HasSample(ctx context.Context, setID, sampleID string) bool
	// SaveRun persists an aggregate run result and returns its run ID,
	// generating one when the result carries none.
	SaveRun(ctx context.Context, run *RunResult) (string, error)
	// GetRun retrieves a stored run result.
	GetRun(ctx context.Context, runID string) (*RunResult, error)
	// ListRuns returns the stored run IDs.
	ListRuns(ctx context.Context) ([]string, error)
	// Close releases any underlying storage handles.
	Close() error
}
