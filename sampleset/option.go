//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package sampleset

// defaultBaseDir is the default root directory for sample set files.
const defaultBaseDir = "samplesets"

// Options configure a sample set manager.
type Options struct {
	// BaseDir is the root directory for stored sample set files.
	BaseDir string
	// Locator locates sample set files under BaseDir.
	Locator Locator
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		BaseDir: defaultBaseDir,
		Locator: &locator{},
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithBaseDir sets the root directory for storing sample set JSON files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithLocator overrides how sample set file paths are generated.
func WithLocator(l Locator) Option {
	return func(o *Options) {
		o.Locator = l
	}
}
