//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package harness

import (
	"context"
	"time"

	"trpc.group/trpc-go/slidebench/log"
)

// QualityFunc scores a successful payload in [0, 1]. The retry gate compares
// the score against the configured threshold to decide acceptance.
type QualityFunc[T any] func(value T) float64

// RetryGate retries low-quality successes up to an attempt budget.
// Hard failures and timeouts are not retried: a dead oracle does not get
// better on the next attempt, only an unreliable one does.
type RetryGate[T any] struct {
	maxAttempts int
	threshold   float64
	timeout     time.Duration
	retryBudget time.Duration
}

// NewRetryGate creates a retry gate from the shared harness options.
func NewRetryGate[T any](opt ...Option) (*RetryGate[T], error) {
	opts := newOptions(opt...)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &RetryGate[T]{
		maxAttempts: opts.maxAttempts,
		threshold:   opts.qualityThreshold,
		timeout:     opts.timeout,
		retryBudget: opts.retryBudget,
	}, nil
}

// Run executes fn through the timeout guard until quality passes, a hard
// failure occurs, or the attempt budget is exhausted. The second return value
// reports whether a passing payload was obtained.
//
// Attempts are strictly sequential: attempt n+1 never starts before attempt n
// resolves. An optional wall-clock budget across all attempts bounds total
// retry time when configured.
func (g *RetryGate[T]) Run(ctx context.Context, sampleID string, fn AttemptFunc[T], quality QualityFunc[T]) (T, bool) {
	var zero T
	var budgetDeadline time.Time
	if g.retryBudget > 0 {
		budgetDeadline = time.Now().Add(g.retryBudget)
	}
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if !budgetDeadline.IsZero() && !time.Now().Before(budgetDeadline) {
			log.Warnf("sample %s: retry budget %s exhausted after %d attempts", sampleID, g.retryBudget, attempt-1)
			return zero, false
		}
		outcome := Invoke(ctx, g.timeout, fn)
		switch outcome.Kind {
		case OutcomeTimeout:
			log.Warnf("sample %s: attempt %d/%d timed out after %s, giving up", sampleID, attempt, g.maxAttempts, g.timeout)
			return zero, false
		case OutcomeFailure:
			log.Warnf("sample %s: attempt %d/%d failed: %v", sampleID, attempt, g.maxAttempts, outcome.Err)
			return zero, false
		}
		if quality == nil {
			return outcome.Value, true
		}
		score := quality(outcome.Value)
		if score >= g.threshold {
			return outcome.Value, true
		}
		log.Infof("sample %s: quality %.3f below threshold %.3f (attempt %d/%d)",
			sampleID, score, g.threshold, attempt, g.maxAttempts)
	}
	log.Warnf("sample %s: no attempt passed the quality gate within %d attempts", sampleID, g.maxAttempts)
	return zero, false
}
