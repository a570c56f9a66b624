//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for
// sample sets.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trpc.group/trpc-go/slidebench/sampleset"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements sampleset.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	locator sampleset.Locator
}

// New creates a local file sample set manager.
func New(opt ...sampleset.Option) sampleset.Manager {
	opts := sampleset.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
	}
}

// Get gets a Set identified by setID.
// Returns an error if the Set does not exist.
func (m *manager) Get(_ context.Context, setID string) (*sampleset.Set, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, err := m.load(setID)
	if err != nil {
		return nil, fmt.Errorf("load sample set %s: %w", setID, err)
	}
	return set, nil
}

// Create creates an empty Set.
// Returns an error if the Set already exists.
func (m *manager) Create(_ context.Context, setID string) (*sampleset.Set, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(setID); err == nil {
		return nil, fmt.Errorf("sample set %s already exists", setID)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load sample set %s: %w", setID, err)
	}
	set := &sampleset.Set{
		SetID:             setID,
		Name:              setID,
		Samples:           []*sampleset.Sample{},
		CreationTimestamp: time.Now(),
	}
	if err := m.store(set); err != nil {
		return nil, fmt.Errorf("store sample set %s: %w", setID, err)
	}
	return set, nil
}

// List lists all stored Set IDs.
func (m *manager) List(_ context.Context) ([]string, error) {
	setIDs, err := m.locator.List(m.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list sample sets: %w", err)
	}
	return setIDs, nil
}

// Delete deletes the Set identified by setID.
// Returns an error if the Set does not exist.
func (m *manager) Delete(_ context.Context, setID string) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(setID); err != nil {
		return fmt.Errorf("load sample set %s: %w", setID, err)
	}
	path := m.locator.Build(m.baseDir, setID)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

// GetSample gets a Sample.
// Returns an error if the Sample does not exist.
func (m *manager) GetSample(_ context.Context, setID, sampleID string) (*sampleset.Sample, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if sampleID == "" {
		return nil, errors.New("sample id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, err := m.load(setID)
	if err != nil {
		return nil, fmt.Errorf("load sample set %s: %w", setID, err)
	}
	for _, s := range set.Samples {
		if s.SampleID == sampleID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sample %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
}

// AddSample adds the given Sample to an existing Set identified by setID.
// If the Set does not exist or the Sample already exists, returns an error.
func (m *manager) AddSample(_ context.Context, setID string, sample *sampleset.Sample) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if sample == nil {
		return errors.New("sample is nil")
	}
	if sample.SampleID == "" {
		return errors.New("sample.SampleID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(setID)
	if err != nil {
		return fmt.Errorf("load sample set %s: %w", setID, err)
	}
	for _, s := range set.Samples {
		if s.SampleID == sample.SampleID {
			return fmt.Errorf("sample %s.%s already exists", setID, sample.SampleID)
		}
	}
	cloned, err := cloneSample(sample)
	if err != nil {
		return fmt.Errorf("clone sample: %w", err)
	}
	if cloned.CreationTimestamp.IsZero() {
		cloned.CreationTimestamp = time.Now()
	}
	set.Samples = append(set.Samples, cloned)
	if err := m.store(set); err != nil {
		return fmt.Errorf("store sample set %s: %w", setID, err)
	}
	return nil
}

// UpdateSample replaces an existing Sample.
// If the Set does not exist or the Sample does not exist, returns an error.
func (m *manager) UpdateSample(_ context.Context, setID string, sample *sampleset.Sample) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if sample == nil {
		return errors.New("sample is nil")
	}
	if sample.SampleID == "" {
		return errors.New("sample.SampleID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(setID)
	if err != nil {
		return fmt.Errorf("load sample set %s: %w", setID, err)
	}
	for i, s := range set.Samples {
		if s.SampleID == sample.SampleID {
			set.Samples[i] = sample
			if err := m.store(set); err != nil {
				return fmt.Errorf("store sample set %s: %w", setID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("sample %s.%s not found: %w", setID, sample.SampleID, os.ErrNotExist)
}

// DeleteSample deletes the given Sample.
// If the Set does not exist or the Sample does not exist, returns an error.
func (m *manager) DeleteSample(_ context.Context, setID, sampleID string) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if sampleID == "" {
		return errors.New("sample id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(setID)
	if err != nil {
		return fmt.Errorf("load sample set %s: %w", setID, err)
	}
	for i, s := range set.Samples {
		if s.SampleID == sampleID {
			set.Samples = append(set.Samples[:i], set.Samples[i+1:]...)
			if err := m.store(set); err != nil {
				return fmt.Errorf("store sample set %s: %w", setID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("sample %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
}

// load loads the Set from the file system.
func (m *manager) load(setID string) (*sampleset.Set, error) {
	path := m.locator.Build(m.baseDir, setID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var set sampleset.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if set.Samples == nil {
		set.Samples = []*sampleset.Sample{}
	}
	return &set, nil
}

// store stores the Set to the file system with a temp-file rename so readers
// never observe a partially written set.
func (m *manager) store(set *sampleset.Set) error {
	if set == nil {
		return errors.New("set is nil")
	}
	path := m.locator.Build(m.baseDir, set.SetID)
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
	if err := encoder.Encode(set); err != nil {
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

// cloneSample deep-copies a sample through JSON so later caller mutations do
// not leak into stored state.
func cloneSample(sample *sampleset.Sample) (*sampleset.Sample, error) {
	data, err := json.Marshal(sample)
	if err != nil {
		return nil, err
	}
	var out sampleset.Sample
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
