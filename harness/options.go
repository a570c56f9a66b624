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
	"fmt"
	"time"
)

// ExistsProbe reports whether a persisted result already exists for a sample.
// The harness consults it to skip completed work when overwrite is disabled.
type ExistsProbe func(ctx context.Context, sampleID string) bool

// options holds configuration shared by the harness and the retry gate.
type options struct {
	workers          int
	maxAttempts      int
	qualityThreshold float64
	timeout          time.Duration
	retryBudget      time.Duration
	overwrite        bool
	existsProbe      ExistsProbe
}

var defaultOptions = options{
	workers:     4,
	maxAttempts: 1,
	timeout:     600 * time.Second,
}

func newOptions(opt ...Option) options {
	opts := defaultOptions
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

func (o options) validate() error {
	if o.workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.workers)
	}
	if o.maxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", o.maxAttempts)
	}
	if o.qualityThreshold < 0 || o.qualityThreshold > 1 {
		return fmt.Errorf("quality threshold must be in [0, 1], got %v", o.qualityThreshold)
	}
	if o.timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.timeout)
	}
	if o.retryBudget < 0 {
		return fmt.Errorf("retry budget must not be negative, got %s", o.retryBudget)
	}
	return nil
}

// Option configures the harness.
type Option func(*options)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMaxAttempts sets the per-sample attempt budget of the retry gate.
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithQualityThreshold sets the minimum quality score a successful attempt
// must reach to be accepted without retrying.
func WithQualityThreshold(threshold float64) Option {
	return func(o *options) { o.qualityThreshold = threshold }
}

// WithTimeout sets the wall-clock deadline for a single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithRetryBudget bounds the total wall-clock time spent across all attempts
// for one sample. Zero disables the bound.
func WithRetryBudget(budget time.Duration) Option {
	return func(o *options) { o.retryBudget = budget }
}

// WithOverwrite re-evaluates samples even when a persisted result exists.
func WithOverwrite(overwrite bool) Option {
	return func(o *options) { o.overwrite = overwrite }
}

// WithExistsProbe installs the persisted-result probe used for resumption.
func WithExistsProbe(probe ExistsProbe) Option {
	return func(o *options) { o.existsProbe = probe }
}
