//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package report

// defaultThreshold is the mean F-measure at which a report counts as passed.
const defaultThreshold = 0.2

// options configure the report evaluator.
type options struct {
	threshold float64
}

func newOptions(opt ...Option) options {
	opts := options{threshold: defaultThreshold}
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// Option configures the report evaluator.
type Option func(*options)

// WithThreshold sets the pass/fail F-measure threshold.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}
