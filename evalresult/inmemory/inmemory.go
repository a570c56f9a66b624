//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory manager implementation for
// evaluation results, used by tests and short-lived runs.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/slidebench/evalresult"
)

// manager implements evalresult.Manager with process-local storage.
type manager struct {
	mu      sync.RWMutex
	samples map[string]map[string]*evalresult.SampleResult
	runs    map[string]*evalresult.RunResult
}

// New creates an in-memory result manager.
func New() evalresult.Manager {
	return &manager{
		samples: map[string]map[string]*evalresult.SampleResult{},
		runs:    map[string]*evalresult.RunResult{},
	}
}

// SaveSample persists one sample result.
func (m *manager) SaveSample(_ context.Context, setID string, result *evalresult.SampleResult) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if result == nil {
		return errors.New("result is nil")
	}
	if result.SampleID == "" {
		return errors.New("result.SampleID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if result.CreationTimestamp.IsZero() {
		result.CreationTimestamp = time.Now()
	}
	if m.samples[setID] == nil {
		m.samples[setID] = map[string]*evalresult.SampleResult{}
	}
	m.samples[setID][result.SampleID] = result
	return nil
}

// GetSample retrieves a stored sample result.
func (m *manager) GetSample(_ context.Context, setID, sampleID string) (*evalresult.SampleResult, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if sampleID == "" {
		return nil, errors.New("sample id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.samples[setID][sampleID]
	if !ok {
		return nil, fmt.Errorf("sample result %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
	}
	return result, nil
}

// HasSample reports whether a result exists for the sample.
func (m *manager) HasSample(_ context.Context, setID, sampleID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.samples[setID][sampleID]
	return ok
}

// SaveRun persists an aggregate run result.
func (m *manager) SaveRun(_ context.Context, run *evalresult.RunResult) (string, error) {
	if run == nil {
		return "", errors.New("run is nil")
	}
	if run.SetID == "" {
		return "", errors.New("run.SetID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.RunID == "" {
		run.RunID = fmt.Sprintf("%s_%s", run.SetID, uuid.New().String())
	}
	if run.CreationTimestamp.IsZero() {
		run.CreationTimestamp = time.Now()
	}
	m.runs[run.RunID] = run
	return run.RunID, nil
}

// GetRun retrieves a stored run result.
func (m *manager) GetRun(_ context.Context, runID string) (*evalresult.RunResult, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run result %s not found: %w", runID, os.ErrNotExist)
	}
	return run, nil
}

// ListRuns returns the stored run IDs in sorted order.
func (m *manager) ListRuns(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements evalresult.Manager. There is nothing to release.
func (m *manager) Close() error {
	return nil
}
