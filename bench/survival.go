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
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"trpc.group/trpc-go/slidebench/evalresult"
	"trpc.group/trpc-go/slidebench/harness"
	"trpc.group/trpc-go/slidebench/log"
	"trpc.group/trpc-go/slidebench/oracle"
	"trpc.group/trpc-go/slidebench/sampleset"
	"trpc.group/trpc-go/slidebench/stats/survival"
	"trpc.group/trpc-go/slidebench/status"
)

// unknownSubtype groups samples whose subtype cannot be resolved.
const unknownSubtype = "UNKNOWN"

// RunSurvival asks the oracle for a risk ordinal per sample, joins the
// predictions with censored ground-truth outcomes, and reports a concordance
// index per subtype. Samples without survival ground truth are excluded from
// scoring and counted in the summary.
func (b *Benchmark) RunSurvival(ctx context.Context, setID string) (*evalresult.RunResult, error) {
	if b.opts.truth == nil {
		return nil, errors.New("survival run requires a ground truth lookup")
	}
	resultsSetID := resultSetID(setID, "survival")
	set, err := b.sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get sample set %s: %w", setID, err)
	}
	byID := make(map[string]*sampleset.Sample, len(set.Samples))
	sampleIDs := make([]string, 0, len(set.Samples))
	for _, sample := range set.Samples {
		byID[sample.SampleID] = sample
		sampleIDs = append(sampleIDs, sample.SampleID)
	}

	h, err := harness.New[int](b.harnessOptions(resultsSetID)...)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	run := func(ctx context.Context, sampleID string) (int, error) {
		response, err := b.oracle.Respond(ctx, buildRequest(byID[sampleID]))
		if err != nil {
			return 0, fmt.Errorf("oracle response for sample %s: %w", sampleID, err)
		}
		return oracle.ParseRiskLevel(response)
	}
	// Risk parsing either succeeds or hard-fails; there is no partial
	// quality to gate on.
	batch, err := h.Evaluate(ctx, sampleIDs, run, nil)
	if err != nil {
		return nil, err
	}

	risks := make(map[string]int, batch.Evaluated)
	for _, item := range batch.Results {
		switch {
		case item == nil:
			continue
		case item.Skipped:
			stored, err := b.results.GetSample(ctx, resultsSetID, item.SampleID)
			if err != nil {
				log.Warnf("sample %s: stored result unreadable, excluding from scoring: %v", item.SampleID, err)
				continue
			}
			risk, err := strconv.Atoi(strings.TrimSpace(stored.Response))
			if err != nil {
				log.Warnf("sample %s: stored risk unparsable, excluding from scoring: %v", item.SampleID, err)
				continue
			}
			risks[item.SampleID] = risk
		case item.OK:
			result := &evalresult.SampleResult{
				SampleID:          item.SampleID,
				Status:            status.EvalStatusPassed,
				Response:          strconv.Itoa(item.Value),
				CreationTimestamp: time.Now(),
			}
			if err := b.results.SaveSample(ctx, resultsSetID, result); err != nil {
				return nil, fmt.Errorf("save sample result %s: %w", item.SampleID, err)
			}
			risks[item.SampleID] = item.Value
		}
	}

	// Join predictions with censored outcomes, grouped by subtype.
	bySubtype := map[string][]*survival.Prediction{}
	missingTruth := 0
	for sampleID, risk := range risks {
		outcome, ok := b.opts.truth.SurvivalFor(sampleID)
		if !ok {
			missingTruth++
			continue
		}
		subtype := unknownSubtype
		if label, ok := b.opts.truth.LabelFor(sampleID); ok {
			subtype = label
		}
		pred := &survival.Prediction{Risk: risk, Months: outcome.Months, Deceased: outcome.Deceased}
		bySubtype[subtype] = append(bySubtype[subtype], pred)
		bySubtype["ALL"] = append(bySubtype["ALL"], pred)
	}
	if missingTruth > 0 {
		log.Infof("excluded %d samples without survival ground truth", missingTruth)
	}

	summary := map[string]float64{"missing_ground_truth": float64(missingTruth)}
	subtypes := make([]string, 0, len(bySubtype))
	for subtype := range bySubtype {
		subtypes = append(subtypes, subtype)
	}
	sort.Strings(subtypes)
	for _, subtype := range subtypes {
		preds := bySubtype[subtype]
		if err := b.writePredictions(setID, subtype, preds); err != nil {
			return nil, err
		}
		cIndex, err := survival.Score(preds)
		if err != nil {
			log.Warnf("subtype %s: concordance not computable over %d predictions: %v", subtype, len(preds), err)
			continue
		}
		summary["c_index_"+strings.ToLower(subtype)] = cIndex
	}

	runResult := &evalresult.RunResult{
		SetID:     resultsSetID,
		Evaluated: batch.Evaluated,
		Skipped:   batch.Skipped,
		Total:     batch.Total,
		Summary:   summary,
	}
	if _, err := b.results.SaveRun(ctx, runResult); err != nil {
		return nil, fmt.Errorf("save run result: %w", err)
	}
	return runResult, nil
}

// writePredictions persists one subtype's prediction CSV.
func (b *Benchmark) writePredictions(setID, subtype string, preds []*survival.Prediction) error {
	dir := b.opts.predictionDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", setID, strings.ToLower(subtype)))
	if err := survival.WriteCSVFile(path, preds); err != nil {
		return fmt.Errorf("write predictions for subtype %s: %w", subtype, err)
	}
	return nil
}
