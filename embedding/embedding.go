//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package embedding loads precomputed slide embeddings and joins them with
// ground-truth labels into classifier-ready examples.
package embedding

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trpc.group/trpc-go/slidebench/groundtruth"
	"trpc.group/trpc-go/slidebench/log"
)

// LabeledExample is one slide embedding with its resolved class index.
type LabeledExample struct {
	// SampleID identifies the slide the embedding came from.
	SampleID string
	// Features is the embedding vector. Tile-level 2-D embeddings are
	// mean-pooled into one vector at load time.
	Features []float64
	// Label is the index of the slide's subtype in the class list.
	Label int
}

// embeddingFile mirrors the JSON layout of one stored embedding. Either a
// 1-D "embedding" or a 2-D "embeddings" must be present.
type embeddingFile struct {
	SampleID   string      `json:"sample_id,omitempty"`
	Embedding  []float64   `json:"embedding,omitempty"`
	Embeddings [][]float64 `json:"embeddings,omitempty"`
}

// LoadDir reads every .json embedding under dir and resolves each sample's
// subtype through the lookup against the class list. Samples whose label is
// missing or outside the class list are excluded; vectors whose dimension
// disagrees with the first loaded vector are dropped with a warning. Files
// without a sample_id field fall back to the file name.
func LoadDir(dir string, classes []string, lookup groundtruth.Lookup) ([]*LabeledExample, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}
	if lookup == nil {
		return nil, errors.New("ground truth lookup is nil")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read embedding dir %s: %w", dir, err)
	}
	classIndex := make(map[string]int, len(classes))
	for i, class := range classes {
		classIndex[strings.ToUpper(class)] = i
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	// Sorted load order keeps fold assignment reproducible across machines.
	sort.Strings(names)

	var examples []*LabeledExample
	dim := 0
	excluded := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		example, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if example.SampleID == "" {
			example.SampleID = strings.TrimSuffix(name, ".json")
		}
		label, ok := lookup.LabelFor(example.SampleID)
		if !ok {
			excluded++
			continue
		}
		idx, ok := classIndex[strings.ToUpper(label)]
		if !ok {
			excluded++
			continue
		}
		if dim == 0 {
			dim = len(example.Features)
		}
		if len(example.Features) != dim {
			log.Warnf("embedding %s: dimension %d disagrees with %d, dropping", example.SampleID, len(example.Features), dim)
			continue
		}
		example.Label = idx
		examples = append(examples, example)
	}
	if excluded > 0 {
		log.Infof("excluded %d embeddings without a resolvable subtype label", excluded)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("no labeled embeddings found in %s", dir)
	}
	return examples, nil
}

// Split separates examples into a feature matrix and a label vector.
func Split(examples []*LabeledExample) (X [][]float64, y []int) {
	X = make([][]float64, len(examples))
	y = make([]int, len(examples))
	for i, example := range examples {
		X[i] = example.Features
		y[i] = example.Label
	}
	return X, y
}

// loadFile parses one embedding file, mean-pooling 2-D tile embeddings.
func loadFile(path string) (*LabeledExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var file embeddingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	features := file.Embedding
	if len(features) == 0 && len(file.Embeddings) > 0 {
		features, err = meanPool(file.Embeddings)
		if err != nil {
			return nil, fmt.Errorf("pool file %s: %w", path, err)
		}
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("file %s holds no embedding", path)
	}
	return &LabeledExample{
		SampleID: strings.TrimSpace(file.SampleID),
		Features: features,
	}, nil
}

// meanPool averages tile vectors into one slide vector.
func meanPool(tiles [][]float64) ([]float64, error) {
	dim := len(tiles[0])
	pooled := make([]float64, dim)
	for i, tile := range tiles {
		if len(tile) != dim {
			return nil, fmt.Errorf("tile %d has dimension %d, expected %d", i, len(tile), dim)
		}
		for j, v := range tile {
			pooled[j] += v
		}
	}
	for j := range pooled {
		pooled[j] /= float64(len(tiles))
	}
	return pooled, nil
}
