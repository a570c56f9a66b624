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
	"trpc.group/trpc-go/slidebench/groundtruth"
	"trpc.group/trpc-go/slidebench/harness"
)

const (
	defaultSeed               = 42
	defaultBootstrapResamples = 1000
	defaultFolds              = 5
	defaultPredictionDir      = "predictions"
)

// options configure a Benchmark.
type options struct {
	truth         groundtruth.Lookup
	harnessOpts   []harness.Option
	seed          int64
	nBoot         int
	folds         int
	predictionDir string
}

func newOptions(opt ...Option) options {
	opts := options{
		seed:          defaultSeed,
		nBoot:         defaultBootstrapResamples,
		folds:         defaultFolds,
		predictionDir: defaultPredictionDir,
	}
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// Option configures a Benchmark.
type Option func(*options)

// WithGroundTruth sets the clinical ground-truth lookup. Survival and
// subtyping runs require it.
func WithGroundTruth(truth groundtruth.Lookup) Option {
	return func(o *options) {
		o.truth = truth
	}
}

// WithHarnessOptions sets the worker pool, timeout, and retry configuration
// applied to every oracle-driven run.
func WithHarnessOptions(opt ...harness.Option) Option {
	return func(o *options) {
		o.harnessOpts = append([]harness.Option(nil), opt...)
	}
}

// WithSeed sets the seed of every randomized stage: fold shuffling and
// bootstrap resampling. Two runs with the same seed and inputs produce the
// same folds, the same resamples, and the same intervals.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithBootstrapResamples sets the bootstrap resample count.
func WithBootstrapResamples(n int) Option {
	return func(o *options) {
		o.nBoot = n
	}
}

// WithFolds sets the requested cross-validation fold count. The effective
// count may be lower when the rarest class cannot fill it.
func WithFolds(k int) Option {
	return func(o *options) {
		o.folds = k
	}
}

// WithPredictionDir sets the directory survival prediction CSVs are written
// to.
func WithPredictionDir(dir string) Option {
	return func(o *options) {
		o.predictionDir = dir
	}
}
