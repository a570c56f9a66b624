//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/slidebench/internal/rouge"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

func newSample(reference string) *sampleset.Sample {
	return &sampleset.Sample{
		SampleID: "TCGA-XX-0001-01Z-00-DX1",
		Questions: []*sampleset.Question{
			{Text: "Generate the diagnostic report.", Answer: reference},
		},
	}
}

func TestEvaluateIdenticalReport(t *testing.T) {
	e := New()
	reference := "The specimen shows invasive adenocarcinoma. Margins are negative."
	result, err := e.Evaluate(context.Background(), newSample(reference), reference)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
	assert.Equal(t, status.EvalStatusPassed, result.Status)
	for _, typ := range rouge.DefaultTypes {
		assert.InDelta(t, 1.0, result.Metrics[typ], 1e-12, typ)
	}
}

func TestEvaluateUnrelatedReport(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(),
		newSample("invasive ductal carcinoma with clear margins"),
		"benign fibrous tissue only")
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Equal(t, status.EvalStatusFailed, result.Status)
}

func TestEvaluateScoreIsMeanOfFMeasures(t *testing.T) {
	e := New()
	result, err := e.Evaluate(context.Background(),
		newSample("the tumor shows necrosis"),
		"the tumor lacks necrosis")
	require.NoError(t, err)
	var total float64
	require.Len(t, result.Metrics, len(rouge.DefaultTypes))
	for _, f := range result.Metrics {
		total += f
	}
	assert.InDelta(t, total/float64(len(result.Metrics)), result.Score, 1e-12)
}

func TestEvaluateMissingReference(t *testing.T) {
	e := New()
	_, err := e.Evaluate(context.Background(), &sampleset.Sample{SampleID: "s"}, "text")
	assert.Error(t, err)

	_, err = e.Evaluate(context.Background(), newSample(""), "text")
	assert.Error(t, err)

	_, err = e.Evaluate(context.Background(), nil, "text")
	assert.Error(t, err)
}

func TestNameAndDescription(t *testing.T) {
	e := New()
	assert.Equal(t, "report_rouge", e.Name())
	assert.NotEmpty(t, e.Description())
}
