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
	"path/filepath"

	"trpc.group/trpc-go/slidebench/embedding"
	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/log"
	"trpc.group/trpc-go/slidebench/stats/bootstrap"
	"trpc.group/trpc-go/slidebench/stats/crossval"
)

// ScoreReport is the aggregate outcome of a subtyping run.
type ScoreReport struct {
	// Classes are the subtype names, index-aligned with label values.
	Classes []string `json:"classes"`
	// Examples is the number of labeled embeddings that entered scoring.
	Examples int `json:"examples"`
	// Folds is the effective cross-validation fold count.
	Folds int `json:"folds"`
	// Metrics holds fold-metric means and standard deviations.
	Metrics map[string]float64 `json:"metrics"`
	// AUROC is the bootstrap interval of the out-of-fold macro AUROC, nil
	// when no resample produced a defined value.
	AUROC *bootstrap.Interval `json:"auroc,omitempty"`
}

// RunSubtyping scores precomputed slide embeddings with stratified
// cross-validation and a bootstrap confidence interval on the out-of-fold
// macro AUROC. The run is fully deterministic for a given seed.
func (b *Benchmark) RunSubtyping(ctx context.Context, embeddingDir string, classes []string, factory crossval.Factory) (*ScoreReport, error) {
	if b.opts.truth == nil {
		return nil, errors.New("subtyping run requires a ground truth lookup")
	}
	examples, err := embedding.LoadDir(embeddingDir, classes, b.opts.truth)
	if err != nil {
		return nil, err
	}
	X, y := embedding.Split(examples)

	result, err := crossval.Evaluate(X, y, factory, b.opts.folds, b.opts.seed)
	if err != nil {
		return nil, fmt.Errorf("cross-validate %d embeddings: %w", len(examples), err)
	}
	scoreReport := &ScoreReport{
		Classes:  append([]string(nil), classes...),
		Examples: len(examples),
		Folds:    len(result.Folds),
		Metrics:  result.Summary(),
	}

	dist, err := bootstrap.MacroAUROC(result.Labels, result.Proba, result.NumClasses, b.opts.nBoot, b.opts.seed)
	switch {
	case err == nil:
		interval, err := bootstrap.Summarize(dist)
		if err != nil {
			return nil, fmt.Errorf("summarize bootstrap distribution: %w", err)
		}
		scoreReport.AUROC = interval
	default:
		log.Warnf("bootstrap macro AUROC not computable: %v", err)
	}

	summary := make(map[string]float64, len(scoreReport.Metrics)+4)
	for name, v := range scoreReport.Metrics {
		summary[name] = v
	}
	if scoreReport.AUROC != nil {
		summary["auroc_boot_mean"] = scoreReport.AUROC.Mean
		summary["auroc_boot_lower"] = scoreReport.AUROC.Lower
		summary["auroc_boot_upper"] = scoreReport.AUROC.Upper
		summary["auroc_boot_resamples"] = float64(scoreReport.AUROC.Resamples)
	}
	runResult := &evalresult.RunResult{
		SetID:     resultSetID(filepath.Base(embeddingDir), "subtyping"),
		Evaluated: len(examples),
		Total:     len(examples),
		Summary:   summary,
	}
	if _, err := b.results.SaveRun(ctx, runResult); err != nil {
		return nil, fmt.Errorf("save run result: %w", err)
	}
	return scoreReport, nil
}
