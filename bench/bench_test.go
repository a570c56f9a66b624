//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resultmem "trpc.group/trpc-go/slidebench/evalresult/inmemory"
	"trpc.group/trpc-go/slidebench/groundtruth"
	"trpc.group/trpc-go/slidebench/harness"
	"trpc.group/trpc-go/slidebench/oracle"
	"trpc.group/trpc-go/slidebench/sampleset"
	setmem "trpc.group/trpc-go/slidebench/sampleset/inmemory"
)

// stubLookup resolves labels and survival outcomes from fixed maps keyed by
// patient ID.
type stubLookup struct {
	labels   map[string]string
	survival map[string]*groundtruth.Survival
}

func (l *stubLookup) LabelFor(sampleID string) (string, bool) {
	label, ok := l.labels[sampleset.PatientID(sampleID)]
	return label, ok
}

func (l *stubLookup) SurvivalFor(sampleID string) (*groundtruth.Survival, bool) {
	s, ok := l.survival[sampleset.PatientID(sampleID)]
	return s, ok
}

func newVQASet(t *testing.T, sets sampleset.Manager, setID string, n int) []string {
	t.Helper()
	ctx := context.Background()
	_, err := sets.Create(ctx, setID)
	require.NoError(t, err)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sampleID := fmt.Sprintf("TCGA-AA-%04d-01Z-00-DX1", i+1)
		require.NoError(t, sets.AddSample(ctx, setID, &sampleset.Sample{
			SampleID: sampleID,
			Questions: []*sampleset.Question{
				{Text: "Diagnosis?", Choices: []string{"Yes", "No"}, Answer: "Yes"},
			},
		}))
		ids = append(ids, sampleID)
	}
	return ids
}

func TestRunVQA(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	newVQASet(t, sets, "brca", 4)

	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		return "Yes", nil
	})
	b, err := New(o, sets, results)
	require.NoError(t, err)
	defer b.Close()

	run, err := b.RunVQA(context.Background(), "brca")
	require.NoError(t, err)
	assert.Equal(t, 4, run.Evaluated)
	assert.Equal(t, 0, run.Skipped)
	assert.Equal(t, 4, run.Total)
	assert.InDelta(t, 1.0, run.Summary["accuracy_mean"], 1e-12)
	assert.InDelta(t, 1.0, run.Summary["pass_rate"], 1e-12)
	assert.Len(t, run.SampleResults, 4)
}

func TestRunVQAResumeMakesZeroOracleCalls(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	newVQASet(t, sets, "brca", 3)

	var calls int32
	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Yes", nil
	})
	b, err := New(o, sets, results)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	_, err = b.RunVQA(ctx, "brca")
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	second, err := b.RunVQA(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "a resumed run must not call the oracle")
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 0, second.Evaluated)
	// Stored results still enter the aggregate.
	assert.InDelta(t, 1.0, second.Summary["accuracy_mean"], 1e-12)
	assert.Len(t, second.SampleResults, 3)
}

func TestRunVQAOverwriteRepredicts(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	newVQASet(t, sets, "brca", 2)

	var calls int32
	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Yes", nil
	})
	b, err := New(o, sets, results,
		WithHarnessOptions(harness.WithOverwrite(true)))
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	_, err = b.RunVQA(ctx, "brca")
	require.NoError(t, err)
	_, err = b.RunVQA(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestRunVQAOracleFailuresExcluded(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	ids := newVQASet(t, sets, "brca", 3)

	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		return "", errors.New("oracle unavailable")
	})
	b, err := New(o, sets, results)
	require.NoError(t, err)
	defer b.Close()

	run, err := b.RunVQA(context.Background(), "brca")
	require.NoError(t, err)
	assert.Equal(t, 0, run.Evaluated)
	assert.Equal(t, len(ids), run.Total)
	assert.Empty(t, run.SampleResults)
	assert.NotContains(t, run.Summary, "accuracy_mean")
}

func TestRunReportUsesOwnNamespace(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	ctx := context.Background()
	_, err := sets.Create(ctx, "brca")
	require.NoError(t, err)
	require.NoError(t, sets.AddSample(ctx, "brca", &sampleset.Sample{
		SampleID: "TCGA-AA-0001-01Z-00-DX1",
		Prompt:   "Generate the diagnostic report.",
		Questions: []*sampleset.Question{
			{Text: "report", Answer: "invasive carcinoma with negative margins"},
		},
	}))

	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		return "invasive carcinoma with negative margins", nil
	})
	b, err := New(o, sets, results)
	require.NoError(t, err)
	defer b.Close()

	run, err := b.RunReport(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, "brca.report", run.SetID)
	assert.Equal(t, 1, run.Evaluated)
	assert.InDelta(t, 1.0, run.Summary["rouge_f_mean"], 1e-12)

	// A VQA run over the same set is unaffected by stored report results.
	vqaRun, err := b.RunVQA(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, 0, vqaRun.Skipped)
}

func TestRunSurvival(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	ctx := context.Background()
	_, err := sets.Create(ctx, "luad")
	require.NoError(t, err)

	// Higher risk for patients who died earlier, so concordance is perfect.
	riskByPatient := map[string]string{
		"TCGA-AA-0001": "0",
		"TCGA-AA-0002": "2",
		"TCGA-AA-0003": "1",
	}
	for patient := range riskByPatient {
		require.NoError(t, sets.AddSample(ctx, "luad", &sampleset.Sample{
			SampleID: patient + "-01Z-00-DX1",
			Prompt:   "Predict the risk level (0, 1, or 2) for patient " + patient + ".",
		}))
	}

	truth := &stubLookup{
		labels: map[string]string{
			"TCGA-AA-0001": "LUAD",
			"TCGA-AA-0002": "LUAD",
			"TCGA-AA-0003": "LUAD",
		},
		survival: map[string]*groundtruth.Survival{
			"TCGA-AA-0001": {Months: 40, Deceased: false},
			"TCGA-AA-0002": {Months: 5, Deceased: true},
			"TCGA-AA-0003": {Months: 20, Deceased: true},
		},
	}
	b, err := New(riskOracle(riskByPatient), sets, results,
		WithGroundTruth(truth),
		WithPredictionDir(t.TempDir()),
		WithHarnessOptions(harness.WithWorkers(1)))
	require.NoError(t, err)
	defer b.Close()

	run, err := b.RunSurvival(ctx, "luad")
	require.NoError(t, err)
	assert.Equal(t, "luad.survival", run.SetID)
	assert.Equal(t, 3, run.Evaluated)
	assert.InDelta(t, 1.0, run.Summary["c_index_luad"], 1e-12)
	assert.InDelta(t, 1.0, run.Summary["c_index_all"], 1e-12)
	assert.Zero(t, run.Summary["missing_ground_truth"])
}

func TestRunSurvivalRequiresGroundTruth(t *testing.T) {
	b, err := New(
		oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "0", nil }),
		setmem.New(), resultmem.New())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RunSurvival(context.Background(), "set")
	assert.Error(t, err)
}

func TestRunSurvivalMissingTruthCounted(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	ctx := context.Background()
	_, err := sets.Create(ctx, "luad")
	require.NoError(t, err)
	for _, patient := range []string{"TCGA-AA-0001", "TCGA-AA-0002", "TCGA-AA-0009"} {
		require.NoError(t, sets.AddSample(ctx, "luad", &sampleset.Sample{
			SampleID: patient + "-01Z-00-DX1",
			Prompt:   "Predict the risk level for patient " + patient + ".",
		}))
	}

	truth := &stubLookup{
		labels: map[string]string{},
		survival: map[string]*groundtruth.Survival{
			"TCGA-AA-0001": {Months: 30, Deceased: true},
			"TCGA-AA-0002": {Months: 10, Deceased: true},
		},
	}
	b, err := New(riskOracle(map[string]string{
		"TCGA-AA-0001": "0",
		"TCGA-AA-0002": "2",
		"TCGA-AA-0009": "1",
	}), sets, results,
		WithGroundTruth(truth),
		WithPredictionDir(t.TempDir()))
	require.NoError(t, err)
	defer b.Close()

	run, err := b.RunSurvival(ctx, "luad")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, run.Summary["missing_ground_truth"], 1e-12)
	// Unlabeled patients fall into the UNKNOWN group.
	assert.Contains(t, run.Summary, "c_index_unknown")
	assert.Contains(t, run.Summary, "c_index_all")
}

func TestNewValidation(t *testing.T) {
	sets := setmem.New()
	results := resultmem.New()
	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "", nil })

	_, err := New(nil, sets, results)
	assert.Error(t, err)
	_, err = New(o, nil, results)
	assert.Error(t, err)
	_, err = New(o, sets, nil)
	assert.Error(t, err)
}

func TestBuildRequestEnumeratesQuestions(t *testing.T) {
	req := buildRequest(&sampleset.Sample{
		SampleID:   "s",
		ImagePaths: []string{"/tiles/a.png", "/tiles/b.png"},
		Questions: []*sampleset.Question{
			{Text: "Diagnosis?", Choices: []string{"Yes", "No"}},
			{Text: "Grade?"},
		},
	})
	assert.Contains(t, req.Prompt, "1. Diagnosis? (choices: Yes; No)")
	assert.Contains(t, req.Prompt, "2. Grade?")
	require.Len(t, req.Images, 2)
	assert.Equal(t, "/tiles/a.png", req.Images[0].Path)
}

func TestBuildRequestKeepsExplicitPrompt(t *testing.T) {
	req := buildRequest(&sampleset.Sample{SampleID: "s", Prompt: "custom prompt"})
	assert.Equal(t, "custom prompt", req.Prompt)
}

func TestResultSetIDNamespacing(t *testing.T) {
	assert.Equal(t, "brca.report", resultSetID("brca", "report"))
	assert.Equal(t, "brca", baseSetID("brca.report"))
	assert.Equal(t, "brca", baseSetID("brca"))
}

// riskOracle answers with a fixed risk string per patient. The request does
// not carry a sample ID, so the oracle keys on the patient named in the
// prompt.
func riskOracle(riskByPatient map[string]string) oracle.Oracle {
	return oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) {
		for patient, risk := range riskByPatient {
			if strings.Contains(req.Prompt, patient) {
				return risk, nil
			}
		}
		return "", errors.New("unknown sample")
	})
}
