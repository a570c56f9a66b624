//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for
// evaluation results. Each sample result is its own file so an interrupted
// run can resume from whatever was already persisted.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/slidebench/evalresult"
)

const (
	sampleResultFile      = "result.json"
	runFileSuffix         = ".run.json"
	runsDirName           = "runs"
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements evalresult.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
}

// New creates a local file result manager.
func New(opt ...evalresult.Option) evalresult.Manager {
	opts := evalresult.NewOptions(opt...)
	return &manager{baseDir: opts.BaseDir}
}

// SaveSample persists one sample result as baseDir/setID/sampleID/result.json.
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
	path := m.samplePath(setID, result.SampleID)
	if err := writeJSON(path, result); err != nil {
		return fmt.Errorf("store sample result %s.%s: %w", setID, result.SampleID, err)
	}
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
	path := m.samplePath(setID, sampleID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var result evalresult.SampleResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	return &result, nil
}

// HasSample reports whether a result file exists for the sample.
func (m *manager) HasSample(_ context.Context, setID, sampleID string) bool {
	if setID == "" || sampleID == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, err := os.Stat(m.samplePath(setID, sampleID))
	return err == nil && !info.IsDir()
}

// SaveRun persists an aggregate run result as baseDir/runs/runID.run.json.
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
	path := m.runPath(run.RunID)
	if err := writeJSON(path, run); err != nil {
		return "", fmt.Errorf("store run result %s: %w", run.RunID, err)
	}
	return run.RunID, nil
}

// GetRun retrieves a stored run result.
func (m *manager) GetRun(_ context.Context, runID string) (*evalresult.RunResult, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	path := m.runPath(runID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var run evalresult.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	return &run, nil
}

// ListRuns returns the stored run IDs.
func (m *manager) ListRuns(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := os.ReadDir(filepath.Join(m.baseDir, runsDirName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), runFileSuffix) {
			ids = append(ids, strings.TrimSuffix(entry.Name(), runFileSuffix))
		}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Close implements evalresult.Manager. There is nothing to release.
func (m *manager) Close() error {
	return nil
}

func (m *manager) samplePath(setID, sampleID string) string {
	return filepath.Join(m.baseDir, setID, sampleID, sampleResultFile)
}

func (m *manager) runPath(runID string) string {
	return filepath.Join(m.baseDir, runsDirName, runID+runFileSuffix)
}

// writeJSON writes v to path via a temp-file rename so a crash mid-write
// never leaves a truncated result behind.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode file %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}
