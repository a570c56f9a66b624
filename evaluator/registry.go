//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package evaluator

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Registry defines the interface for evaluator registries.
type Registry interface {
	// Register registers an evaluator to the registry. A same-named
	// evaluator is overwritten.
	Register(name string, e Evaluator) error
	// Get retrieves an evaluator by name.
	Get(name string) (Evaluator, error)
	// List returns the names of all registered evaluators.
	List() []string
}

// registry is the default implementation of Registry.
type registry struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewRegistry creates an empty evaluator registry.
func NewRegistry() Registry {
	return &registry{evaluators: make(map[string]Evaluator)}
}

// Register registers an evaluator to the registry.
func (r *registry) Register(name string, e Evaluator) error {
	if e == nil {
		return errors.New("evaluator is nil")
	}
	if name == "" {
		name = e.Name()
	}
	if name == "" {
		return errors.New("evaluator name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[name] = e
	return nil
}

// Get gets an evaluator by name.
// Returns os.ErrNotExist if the evaluator is not found.
func (r *registry) Get(name string) (Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.evaluators[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("get evaluator %s: %w", name, os.ErrNotExist)
}

// List returns the names of all registered evaluators sorted
// lexicographically.
func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.evaluators))
	for name := range r.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry backs the package-level registration helpers.
var defaultRegistry = NewRegistry()

// Register registers an evaluator to the default registry.
func Register(name string, e Evaluator) error {
	return defaultRegistry.Register(name, e)
}

// Get retrieves an evaluator from the default registry.
func Get(name string) (Evaluator, error) {
	return defaultRegistry.Get(name)
}

// List returns the names registered in the default registry.
func List() []string {
	return defaultRegistry.List()
}
