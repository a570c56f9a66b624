//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package sampleset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// defaultSetFileSuffix is the default suffix for sample set files.
const defaultSetFileSuffix = ".sampleset.json"

// Locator provides Build and List methods for locating sample set files.
type Locator interface {
	// Build builds the path of a sample set file for the given setID.
	Build(baseDir, setID string) string
	// List lists all sample set IDs under baseDir.
	List(baseDir string) ([]string, error)
}

// locator is the default Locator implementation.
type locator struct {
}

// Build builds the path of a sample set file.
func (l *locator) Build(baseDir, setID string) string {
	return filepath.Join(baseDir, setID+defaultSetFileSuffix)
}

// List lists all sample set IDs under baseDir.
func (l *locator) List(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var results []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), defaultSetFileSuffix) {
			results = append(results, strings.TrimSuffix(entry.Name(), defaultSetFileSuffix))
		}
	}
	return results, nil
}
