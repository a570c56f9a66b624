//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package sampleset manages the corpora of whole-slide samples a benchmark
// run evaluates.
package sampleset

import (
	"context"
	"time"
)

// Question is a single multiple-choice question about a slide.
type Question struct {
	// Text is the question as shown to the oracle.
	Text string `json:"text"`
	// Choices are the candidate answers.
	Choices []string `json:"choices,omitempty"`
	// Answer is the expected answer text.
	Answer string `json:"answer"`
}

// Sample is one whole-slide case: the slide's image tiles plus the questions
// asked about it.
type Sample struct {
	// SampleID uniquely identifies the sample. Its first twelve characters
	// form the patient identifier used for ground-truth joins.
	SampleID string `json:"sample_id"`
	// SlidePath is the path of the source slide.
	SlidePath string `json:"slide_path,omitempty"`
	// Prompt is the instruction text sent alongside the images.
	Prompt string `json:"prompt,omitempty"`
	// ImagePaths are the tile images extracted from the slide.
	ImagePaths []string `json:"image_paths,omitempty"`
	// Questions are the per-sample questions, in asking order.
	Questions []*Question `json:"questions,omitempty"`
	// CreationTimestamp when this sample was added.
	CreationTimestamp time.Time `json:"creation_timestamp"`
}

// Set is a named collection of samples.
type Set struct {
	// SetID uniquely identifies this sample set.
	SetID string `json:"set_id"`
	// Name of the sample set.
	Name string `json:"name,omitempty"`
	// Description of the sample set.
	Description string `json:"description,omitempty"`
	// Samples contains all samples in the set.
	Samples []*Sample `json:"samples"`
	// CreationTimestamp when this set was created.
	CreationTimestamp time.Time `json:"creation_timestamp"`
}

// PatientID returns the patient identifier encoded in a sample ID: its first
// twelve characters, or the whole ID when shorter.
func PatientID(sampleID string) string {
	if len(sampleID) <= 12 {
		return sampleID
	}
	return sampleID[:12]
}

// Manager defines the interface for managing sample sets.
type Manager interface {
	// Get returns the Set identified by setID.
	Get(ctx context.Context, setID string) (*Set, error)
	// Create creates and returns an empty Set given the setID.
	Create(ctx context.Context, setID string) (*Set, error)
	// List returns the IDs of all stored sets.
	List(ctx context.Context) ([]string, error)
	// Delete deletes the Set identified by setID.
	Delete(ctx context.Context, setID string) error
	// GetSample returns one Sample from the given set.
	GetSample(ctx context.Context, setID, sampleID string) (*Sample, error)
	// AddSample adds the given Sample to an existing Set.
	AddSample(ctx context.Context, setID string, sample *Sample) error
	// UpdateSample replaces an existing Sample.
	UpdateSample(ctx context.Context, setID string, sample *Sample) error
	// DeleteSample deletes the given Sample.
	DeleteSample(ctx context.Context, setID, sampleID string) error
}
