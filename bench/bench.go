//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package bench orchestrates benchmark runs: it fans samples out through the
// evaluation harness, scores oracle predictions, persists per-sample results,
// and aggregates them into run results.
package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/evaluator"
	"trpc.group/trpc-go/slidebench/evaluator/report"
	"trpc.group/trpc-go/slidebench/evaluator/vqa"
	"trpc.group/trpc-go/slidebench/harness"
	"trpc.group/trpc-go/slidebench/log"
	"trpc.group/trpc-go/slidebench/oracle"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/status"
)

// Benchmark evaluates sample sets against a prediction oracle and scores the
// outcomes.
type Benchmark struct {
	oracle  oracle.Oracle
	sets    sampleset.Manager
	results evalresult.Manager
	opts    options
}

// New creates a Benchmark.
func New(o oracle.Oracle, sets sampleset.Manager, results evalresult.Manager, opt ...Option) (*Benchmark, error) {
	if o == nil {
		return nil, errors.New("oracle is nil")
	}
	if sets == nil {
		return nil, errors.New("sample set manager is nil")
	}
	if results == nil {
		return nil, errors.New("result manager is nil")
	}
	return &Benchmark{
		oracle:  o,
		sets:    sets,
		results: results,
		opts:    newOptions(opt...),
	}, nil
}

// Close releases the managers, collecting every close error.
func (b *Benchmark) Close() error {
	var errs *multierror.Error
	if b.results != nil {
		if err := b.results.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close result manager: %w", err))
		}
	}
	return errs.ErrorOrNil()
}

// RunVQA evaluates every sample of the set as multiple-choice visual question
// answering, with the retry gate keyed on per-sample answer accuracy.
func (b *Benchmark) RunVQA(ctx context.Context, setID string) (*evalresult.RunResult, error) {
	return b.runTextEval(ctx, setID, vqa.New(), "accuracy_mean")
}

// RunReport evaluates every sample of the set as report generation, scored by
// mean ROUGE F-measure against the reference report.
func (b *Benchmark) RunReport(ctx context.Context, setID string) (*evalresult.RunResult, error) {
	return b.runTextEval(ctx, resultSetID(setID, "report"), report.New(), "rouge_f_mean")
}

// runTextEval is the shared oracle-predict-then-score loop behind RunVQA and
// RunReport. Samples with a persisted result are not re-predicted; their
// stored results still enter the aggregate.
func (b *Benchmark) runTextEval(ctx context.Context, setID string, eval evaluator.Evaluator, primaryKey string) (*evalresult.RunResult, error) {
	baseSetID := baseSetID(setID)
	set, err := b.sets.Get(ctx, baseSetID)
	if err != nil {
		return nil, fmt.Errorf("get sample set %s: %w", baseSetID, err)
	}
	byID := make(map[string]*sampleset.Sample, len(set.Samples))
	sampleIDs := make([]string, 0, len(set.Samples))
	for _, sample := range set.Samples {
		byID[sample.SampleID] = sample
		sampleIDs = append(sampleIDs, sample.SampleID)
	}

	h, err := harness.New[*evaluator.Result](b.harnessOptions(setID)...)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	run := func(ctx context.Context, sampleID string) (*evaluator.Result, error) {
		sample := byID[sampleID]
		response, err := b.oracle.Respond(ctx, buildRequest(sample))
		if err != nil {
			return nil, fmt.Errorf("oracle response for sample %s: %w", sampleID, err)
		}
		return eval.Evaluate(ctx, sample, response)
	}
	quality := func(r *evaluator.Result) float64 { return r.Score }
	batch, err := h.Evaluate(ctx, sampleIDs, run, quality)
	if err != nil {
		return nil, err
	}

	runResult := &evalresult.RunResult{
		SetID:     setID,
		Evaluated: batch.Evaluated,
		Skipped:   batch.Skipped,
		Total:     batch.Total,
	}
	var scoreSum float64
	metricSums := map[string]float64{}
	passed := 0
	scored := 0
	for _, item := range batch.Results {
		var sampleResult *evalresult.SampleResult
		switch {
		case item == nil:
			continue
		case item.Skipped:
			stored, err := b.results.GetSample(ctx, setID, item.SampleID)
			if err != nil {
				log.Warnf("sample %s: stored result unreadable, excluding from aggregate: %v", item.SampleID, err)
				continue
			}
			sampleResult = stored
		case item.OK:
			if err := b.results.SaveSample(ctx, setID, item.Value.SampleResult); err != nil {
				return nil, fmt.Errorf("save sample result %s: %w", item.SampleID, err)
			}
			for name, v := range item.Value.Metrics {
				metricSums[name] += v
			}
			sampleResult = item.Value.SampleResult
		default:
			continue
		}
		runResult.SampleResults = append(runResult.SampleResults, sampleResult)
		scoreSum += sampleResult.Accuracy
		if sampleResult.Status == status.EvalStatusPassed {
			passed++
		}
		scored++
	}

	summary := map[string]float64{}
	if scored > 0 {
		summary[primaryKey] = scoreSum / float64(scored)
		summary["pass_rate"] = float64(passed) / float64(scored)
	}
	if batch.Evaluated > 0 {
		for name, sum := range metricSums {
			summary[name+"_mean"] = sum / float64(batch.Evaluated)
		}
	}
	runResult.Summary = summary
	if _, err := b.results.SaveRun(ctx, runResult); err != nil {
		return nil, fmt.Errorf("save run result: %w", err)
	}
	return runResult, nil
}

// harnessOptions appends the resume probe for the given result namespace to
// the configured harness options.
func (b *Benchmark) harnessOptions(setID string) []harness.Option {
	probe := func(ctx context.Context, sampleID string) bool {
		return b.results.HasSample(ctx, setID, sampleID)
	}
	return append(append([]harness.Option(nil), b.opts.harnessOpts...), harness.WithExistsProbe(probe))
}

// buildRequest assembles the oracle request for one sample. Without an
// explicit prompt, the questions are enumerated with their choices.
func buildRequest(sample *sampleset.Sample) *oracle.Request {
	prompt := sample.Prompt
	if prompt == "" {
		var sb strings.Builder
		sb.WriteString("Answer each question with exactly one of its choices, one answer per line.\n")
		for i, q := range sample.Questions {
			fmt.Fprintf(&sb, "%d. %s", i+1, q.Text)
			if len(q.Choices) > 0 {
				fmt.Fprintf(&sb, " (choices: %s)", strings.Join(q.Choices, "; "))
			}
			sb.WriteByte('\n')
		}
		prompt = sb.String()
	}
	images := make([]*oracle.Image, 0, len(sample.ImagePaths))
	for _, path := range sample.ImagePaths {
		images = append(images, &oracle.Image{Path: path})
	}
	return &oracle.Request{Prompt: prompt, Images: images}
}

// resultSetID namespaces stored results per run kind so a report run never
// collides with a VQA run over the same sample set.
func resultSetID(setID, kind string) string {
	return setID + "." + kind
}

// baseSetID strips a run-kind namespace from a result set ID.
func baseSetID(setID string) string {
	if i := strings.IndexByte(setID, '.'); i > 0 {
		return setID[:i]
	}
	return setID
}
