//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package mysql

import (
	"database/sql"
	"time"
)

const (
	defaultTablePrefix = "slidebench_"
	defaultInitTimeout = 30 * time.Second
)

// options configure the MySQL result manager.
type options struct {
	dsn            string
	db             *sql.DB
	tablePrefix    string
	skipSchemaInit bool
	initTimeout    time.Duration
}

func newOptions(opt ...Option) options {
	opts := options{
		tablePrefix: defaultTablePrefix,
		initTimeout: defaultInitTimeout,
	}
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// Option configures the MySQL result manager.
type Option func(*options)

// WithDSN sets the MySQL data source name.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithDB supplies an existing database handle. The manager does not close a
// supplied handle.
func WithDB(db *sql.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

// WithTablePrefix sets the prefix of the result table names.
func WithTablePrefix(prefix string) Option {
	return func(o *options) {
		o.tablePrefix = prefix
	}
}

// WithSkipSchemaInit disables table creation on startup.
func WithSkipSchemaInit(skip bool) Option {
	return func(o *options) {
		o.skipSchemaInit = skip
	}
}

// WithInitTimeout bounds schema creation on startup.
func WithInitTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.initTimeout = timeout
	}
}
