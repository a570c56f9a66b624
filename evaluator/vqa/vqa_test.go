//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package vqa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

func newSample(answers ...string) *sampleset.Sample {
	sample := &sampleset.Sample{SampleID: "TCGA-XX-0001-01Z-00-DX1"}
	for _, answer := range answers {
		sample.Questions = append(sample.Questions, &sampleset.Question{
			Text:   "question",
			Answer: answer,
		})
	}
	return sample
}

func TestEvaluateAllCorrect(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(), newSample("Adenocarcinoma", "Yes"),
		"1. Adenocarcinoma\n2. Yes")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
	assert.Equal(t, status.EvalStatusPassed, result.Status)
	require.Len(t, result.SampleResult.Details, 2)
	assert.True(t, result.SampleResult.Details[0].IsCorrect)
	assert.True(t, result.SampleResult.Details[1].IsCorrect)
}

func TestEvaluateCaseInsensitive(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(), newSample("adenocarcinoma"), "ADENOCARCINOMA")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
}

func TestEvaluatePadsMissingAnswers(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(), newSample("Yes", "No", "Maybe"), "Yes")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, result.Score, 1e-12)
	require.Len(t, result.SampleResult.Details, 3)
	assert.Equal(t, paddingAnswer, result.SampleResult.Details[1].PredictedAnswer)
	assert.False(t, result.SampleResult.Details[1].IsCorrect)
}

func TestEvaluateTruncatesSurplusAnswers(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(), newSample("Yes"), "Yes\nNo\nMaybe")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
	assert.Len(t, result.SampleResult.Details, 1)
}

func TestEvaluateStripListMarkers(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(), newSample("Yes", "No"), "- Yes\n- No")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
}

func TestEvaluateThreshold(t *testing.T) {
	e := New(WithThreshold(0.75))
	result, err := e.Evaluate(context.Background(), newSample("a", "b", "c", "d"), "a\nb\nc\nx")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, result.Score, 1e-12)
	assert.Equal(t, status.EvalStatusPassed, result.Status)

	result, err = e.Evaluate(context.Background(), newSample("a", "b", "c", "d"), "a\nb\nx\ny")
	require.NoError(t, err)
	assert.Equal(t, status.EvalStatusFailed, result.Status)
}

func TestEvaluateNoQuestions(t *testing.T) {
	e := New()
	_, err := e.Evaluate(context.Background(), &sampleset.Sample{SampleID: "s"}, "whatever")
	assert.Error(t, err)

	_, err = e.Evaluate(context.Background(), nil, "whatever")
	assert.Error(t, err)
}

func TestNameAndDescription(t *testing.T) {
	e := New()
	assert.Equal(t, "vqa_accuracy", e.Name())
	assert.NotEmpty(t, e.Description())
}
