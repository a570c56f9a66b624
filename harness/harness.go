//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package harness runs per-sample evaluation work across a bounded worker
// pool with a per-attempt timeout guard and a quality-gated retry loop.
// One misbehaving sample never aborts its siblings: every failure mode
// (timeout, oracle error, panic, exhausted retries) collapses to an absent
// result for that sample alone.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/slidebench/log"
)

// ItemFunc produces the payload for a single sample. It is invoked once per
// attempt under the timeout guard, so it must honor ctx cancellation at its
// blocking boundaries.
type ItemFunc[T any] func(ctx context.Context, sampleID string) (T, error)

// ItemResult pairs a sample ID with an optional payload.
type ItemResult[T any] struct {
	// SampleID identifies the sample this result belongs to.
	SampleID string
	// Value is the payload. Only meaningful when OK is true.
	Value T
	// OK reports whether evaluation produced an accepted payload.
	OK bool
	// Skipped reports that a persisted result already existed and the
	// sample was not re-evaluated.
	Skipped bool
}

// BatchResult aggregates one Evaluate call.
type BatchResult[T any] struct {
	// Results holds one entry per submitted sample, in submission order.
	Results []*ItemResult[T]
	// Evaluated counts samples with an accepted payload.
	Evaluated int
	// Skipped counts samples skipped due to pre-existing results.
	Skipped int
	// Total counts all submitted samples.
	Total int
}

// Harness fans independent samples out across a fixed-size worker pool.
type Harness[T any] struct {
	opts     options
	gate     *RetryGate[T]
	pool     *ants.PoolWithFunc
	taskPool *sync.Pool
}

// New creates a harness. The pool holds opts.workers slots; when fewer
// samples than workers are submitted the effective parallelism is the
// sample count.
func New[T any](opt ...Option) (*Harness[T], error) {
	opts := newOptions(opt...)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	h := &Harness[T]{
		opts: opts,
		gate: &RetryGate[T]{
			maxAttempts: opts.maxAttempts,
			threshold:   opts.qualityThreshold,
			timeout:     opts.timeout,
			retryBudget: opts.retryBudget,
		},
		taskPool: &sync.Pool{New: func() any { return new(evalTask[T]) }},
	}
	pool, err := ants.NewPoolWithFunc(opts.workers, h.runTask)
	if err != nil {
		return nil, fmt.Errorf("create harness pool: %w", err)
	}
	h.pool = pool
	return h, nil
}

// Close releases the worker pool.
func (h *Harness[T]) Close() error {
	if h.pool != nil {
		h.pool.Release()
	}
	return nil
}

// Evaluate runs every sample through the retry gate on the worker pool and
// collects one result per sample. Results are attributable by sample ID and
// written at the sample's submission index; completion order is irrelevant.
//
// When overwrite is disabled and an exists probe is configured, samples with
// a persisted result are skipped without invoking the oracle, which lets an
// interrupted run resume where it left off.
func (h *Harness[T]) Evaluate(ctx context.Context, sampleIDs []string, run ItemFunc[T], quality QualityFunc[T]) (*BatchResult[T], error) {
	if run == nil {
		return nil, errors.New("item func is nil")
	}
	batch := &BatchResult[T]{
		Results: make([]*ItemResult[T], len(sampleIDs)),
		Total:   len(sampleIDs),
	}
	if len(sampleIDs) == 0 {
		return batch, nil
	}
	var wg sync.WaitGroup
	for idx, sampleID := range sampleIDs {
		if !h.opts.overwrite && h.opts.existsProbe != nil && h.opts.existsProbe(ctx, sampleID) {
			log.Infof("sample %s: result already exists, skipping", sampleID)
			batch.Results[idx] = &ItemResult[T]{SampleID: sampleID, Skipped: true}
			continue
		}
		wg.Add(1)
		task := h.taskPool.Get().(*evalTask[T])
		task.idx = idx
		task.ctx = ctx
		task.sampleID = sampleID
		task.h = h
		task.run = run
		task.quality = quality
		task.results = batch.Results
		task.wg = &wg
		if err := h.pool.Invoke(task); err != nil {
			wg.Done()
			log.Errorf("sample %s: submit evaluation task: %v", sampleID, err)
			batch.Results[idx] = &ItemResult[T]{SampleID: sampleID}
			task.reset()
			h.taskPool.Put(task)
		}
	}
	wg.Wait()
	for _, result := range batch.Results {
		switch {
		case result == nil:
		case result.Skipped:
			batch.Skipped++
		case result.OK:
			batch.Evaluated++
		}
	}
	log.Infof("evaluated %d/%d samples (%d skipped)", batch.Evaluated, batch.Total, batch.Skipped)
	return batch, nil
}

// evaluateOne runs a single sample through the retry gate, converting any
// panic into an absent result so sibling samples are unaffected.
func (h *Harness[T]) evaluateOne(ctx context.Context, sampleID string, run ItemFunc[T], quality QualityFunc[T]) (result *ItemResult[T]) {
	result = &ItemResult[T]{SampleID: sampleID}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("sample %s: evaluation panicked: %v", sampleID, r)
			result = &ItemResult[T]{SampleID: sampleID}
		}
	}()
	value, ok := h.gate.Run(ctx, sampleID, func(ctx context.Context) (T, error) {
		return run(ctx, sampleID)
	}, quality)
	if !ok {
		return result
	}
	result.Value = value
	result.OK = true
	return result
}
