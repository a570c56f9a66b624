//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory manager implementation for sample
// sets, used by tests and short-lived runs.
package inmemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"trpc.group/trpc-go/slidebench/sampleset"
)

// manager implements sampleset.Manager with process-local storage.
type manager struct {
	mu   sync.RWMutex
	sets map[string]*sampleset.Set
}

// New creates an in-memory sample set manager.
func New() sampleset.Manager {
	return &manager{sets: map[string]*sampleset.Set{}}
}

// Get gets a Set identified by setID.
func (m *manager) Get(_ context.Context, setID string) (*sampleset.Set, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.sets[setID]
	if !ok {
		return nil, fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
	}
	return clone(set)
}

// Create creates an empty Set.
func (m *manager) Create(_ context.Context, setID string) (*sampleset.Set, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[setID]; ok {
		return nil, fmt.Errorf("sample set %s already exists", setID)
	}
	set := &sampleset.Set{
		SetID:             setID,
		Name:              setID,
		Samples:           []*sampleset.Sample{},
		CreationTimestamp: time.Now(),
	}
	m.sets[setID] = set
	return clone(set)
}

// List lists all stored Set IDs in sorted order.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sets))
	for id := range m.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete deletes the Set identified by setID.
func (m *manager) Delete(_ context.Context, setID string) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[setID]; !ok {
		return fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
	}
	delete(m.sets, setID)
	return nil
}

// GetSample gets a Sample.
func (m *manager) GetSample(_ context.Context, setID, sampleID string) (*sampleset.Sample, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if sampleID == "" {
		return nil, errors.New("sample id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.sets[setID]
	if !ok {
		return nil, fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
	}
	for _, s := range set.Samples {
		if s.SampleID == sampleID {
			return cloneSample(s)
		}
	}
	return nil, fmt.Errorf("sample %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
}

// AddSample adds the given Sample to an existing Set.
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
	set, ok := m.sets[setID]
	if !ok {
		return fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
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
	return nil
}

// UpdateSample replaces an existing Sample.
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
	set, ok := m.sets[setID]
	if !ok {
		return fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
	}
	for i, s := range set.Samples {
		if s.SampleID == sample.SampleID {
			cloned, err := cloneSample(sample)
			if err != nil {
				return fmt.Errorf("clone sample: %w", err)
			}
			set.Samples[i] = cloned
			return nil
		}
	}
	return fmt.Errorf("sample %s.%s not found: %w", setID, sample.SampleID, os.ErrNotExist)
}

// DeleteSample deletes the given Sample.
func (m *manager) DeleteSample(_ context.Context, setID, sampleID string) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if sampleID == "" {
		return errors.New("sample id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[setID]
	if !ok {
		return fmt.Errorf("sample set %s not found: %w", setID, os.ErrNotExist)
	}
	for i, s := range set.Samples {
		if s.SampleID == sampleID {
			set.Samples = append(set.Samples[:i], set.Samples[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("sample %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
}

func clone(set *sampleset.Set) (*sampleset.Set, error) {
	data, err := json.Marshal(set)
	if err != nil {
		return nil, err
	}
	var out sampleset.Set
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

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
