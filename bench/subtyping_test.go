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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resultmem "trpc.group/trpc-go/slidebench/evalresult/inmemory"
	"trpc.group/trpc-go/slidebench/groundtruth"
	"trpc.group/trpc-go/slidebench/oracle"
	setmem "trpc.group/trpc-go/slidebench/sampleset/inmemory"
	"trpc.group/trpc-go/slidebench/stats/crossval"
)

func writeSubtypingEmbeddings(t *testing.T, dir string, n int) *stubLookup {
	t.Helper()
	truth := &stubLookup{labels: map[string]string{}, survival: map[string]*groundtruth.Survival{}}
	for i := 0; i < n; i++ {
		patient := fmt.Sprintf("TCGA-AA-%04d", i+1)
		sampleID := patient + "-01Z-00-DX1"
		label := "LUAD"
		base := 0.0
		if i%2 == 1 {
			label = "LUSC"
			base = 10.0
		}
		truth.labels[patient] = label
		payload, err := json.Marshal(map[string]any{
			"sample_id": sampleID,
			"embedding": []float64{base + float64(i%5)*0.1, base},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, sampleID+".json"), payload, 0o644))
	}
	return truth
}

func TestRunSubtyping(t *testing.T) {
	dir := t.TempDir()
	truth := writeSubtypingEmbeddings(t, dir, 30)
	results := resultmem.New()

	b, err := New(
		oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "", nil }),
		setmem.New(), results,
		WithGroundTruth(truth),
		WithFolds(5),
		WithBootstrapResamples(50),
		WithSeed(42))
	require.NoError(t, err)
	defer b.Close()

	report, err := b.RunSubtyping(context.Background(), dir, []string{"LUAD", "LUSC"},
		func() crossval.Classifier { return crossval.NewKNN(3) })
	require.NoError(t, err)

	assert.Equal(t, []string{"LUAD", "LUSC"}, report.Classes)
	assert.Equal(t, 30, report.Examples)
	assert.Equal(t, 5, report.Folds)
	// The clusters are well separated, so scores are perfect.
	assert.InDelta(t, 1.0, report.Metrics["accuracy_mean"], 1e-9)
	require.NotNil(t, report.AUROC)
	assert.InDelta(t, 1.0, report.AUROC.Mean, 1e-9)
	assert.Equal(t, 50, report.AUROC.Resamples)
}

func TestRunSubtypingDeterministicPerSeed(t *testing.T) {
	dir := t.TempDir()
	truth := writeSubtypingEmbeddings(t, dir, 20)

	runOnce := func() *ScoreReport {
		b, err := New(
			oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "", nil }),
			setmem.New(), resultmem.New(),
			WithGroundTruth(truth),
			WithBootstrapResamples(25),
			WithSeed(7))
		require.NoError(t, err)
		defer b.Close()
		report, err := b.RunSubtyping(context.Background(), dir, []string{"LUAD", "LUSC"},
			func() crossval.Classifier { return crossval.NewKNN(3) })
		require.NoError(t, err)
		return report
	}

	a := runOnce()
	b := runOnce()
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.AUROC, b.AUROC)
}

func TestRunSubtypingSavesRun(t *testing.T) {
	dir := t.TempDir()
	truth := writeSubtypingEmbeddings(t, dir, 12)
	results := resultmem.New()

	b, err := New(
		oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "", nil }),
		setmem.New(), results,
		WithGroundTruth(truth),
		WithBootstrapResamples(20))
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	_, err = b.RunSubtyping(ctx, dir, []string{"LUAD", "LUSC"},
		func() crossval.Classifier { return crossval.NewKNN(1) })
	require.NoError(t, err)

	ids, err := results.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	run, err := results.GetRun(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, resultSetID(filepath.Base(dir), "subtyping"), run.SetID)
	assert.Contains(t, run.Summary, "auroc_boot_mean")
}

func TestRunSubtypingRequiresGroundTruth(t *testing.T) {
	b, err := New(
		oracle.Func(func(ctx context.Context, req *oracle.Request) (string, error) { return "", nil }),
		setmem.New(), resultmem.New())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RunSubtyping(context.Background(), t.TempDir(), []string{"A", "B"},
		func() crossval.Classifier { return crossval.NewKNN(1) })
	assert.Error(t, err)
}
