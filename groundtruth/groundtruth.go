//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package groundtruth resolves clinical ground truth for samples: the subtype
// label and the censored survival outcome of the patient a sample belongs to.
package groundtruth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"trpc.group/trpc-go/slidebench/sampleset"
)

// Survival is one patient's censored outcome.
type Survival struct {
	// Months is the observed follow-up time in months.
	Months float64
	// Deceased reports whether death was observed (true) or the patient was
	// censored (false).
	Deceased bool
}

// Lookup resolves ground truth for a sample. The sample's patient identifier
// (its first twelve characters) keys both resolutions. The boolean reports
// whether the value exists and is well formed; a missing patient or an
// unparsable field resolves to not ok, never to an error.
type Lookup interface {
	// LabelFor returns the subtype label of the sample's patient.
	LabelFor(sampleID string) (string, bool)
	// SurvivalFor returns the censored survival outcome of the sample's
	// patient.
	SurvivalFor(sampleID string) (*Survival, bool)
}

// Column names recognized in clinical metadata CSV headers.
const (
	defaultPatientColumn  = "patient_id"
	defaultLabelColumn    = "oncotree_code"
	defaultMonthsColumn   = "survival_months"
	defaultDeceasedColumn = "survival_status"
)

// CSVLookup is a Lookup backed by a clinical metadata CSV loaded into memory.
type CSVLookup struct {
	labels   map[string]string
	survival map[string]*Survival
}

// CSVOption configures CSV column names.
type CSVOption func(*csvColumns)

type csvColumns struct {
	patient  string
	label    string
	months   string
	deceased string
}

// WithPatientColumn overrides the patient identifier column name.
func WithPatientColumn(name string) CSVOption {
	return func(c *csvColumns) { c.patient = name }
}

// WithLabelColumn overrides the subtype label column name.
func WithLabelColumn(name string) CSVOption {
	return func(c *csvColumns) { c.label = name }
}

// WithMonthsColumn overrides the survival months column name.
func WithMonthsColumn(name string) CSVOption {
	return func(c *csvColumns) { c.months = name }
}

// WithDeceasedColumn overrides the survival status column name.
func WithDeceasedColumn(name string) CSVOption {
	return func(c *csvColumns) { c.deceased = name }
}

// NewCSVLookup loads clinical metadata from the given path. Rows with a
// missing or unparsable field keep whichever of label/survival did parse.
func NewCSVLookup(path string, opt ...CSVOption) (*CSVLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clinical metadata %s: %w", path, err)
	}
	defer f.Close()
	lookup, err := ParseCSV(f, opt...)
	if err != nil {
		return nil, fmt.Errorf("parse clinical metadata %s: %w", path, err)
	}
	return lookup, nil
}

// ParseCSV parses clinical metadata from a reader.
func ParseCSV(r io.Reader, opt ...CSVOption) (*CSVLookup, error) {
	cols := &csvColumns{
		patient:  defaultPatientColumn,
		label:    defaultLabelColumn,
		months:   defaultMonthsColumn,
		deceased: defaultDeceasedColumn,
	}
	for _, o := range opt {
		o(cols)
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	patientIdx, ok := index[cols.patient]
	if !ok {
		return nil, fmt.Errorf("column %q not found in header %v", cols.patient, header)
	}
	labelIdx, hasLabel := index[cols.label]
	monthsIdx, hasMonths := index[cols.months]
	deceasedIdx, hasDeceased := index[cols.deceased]
	if !hasLabel && (!hasMonths || !hasDeceased) {
		return nil, errors.New("clinical metadata has neither label nor survival columns")
	}

	lookup := &CSVLookup{
		labels:   map[string]string{},
		survival: map[string]*Survival{},
	}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return lookup, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		patient := strings.TrimSpace(record[patientIdx])
		if patient == "" {
			continue
		}
		if hasLabel {
			if label := strings.TrimSpace(record[labelIdx]); label != "" && !isNA(label) {
				lookup.labels[patient] = label
			}
		}
		if hasMonths && hasDeceased {
			if s, ok := parseSurvival(record[monthsIdx], record[deceasedIdx]); ok {
				lookup.survival[patient] = s
			}
		}
	}
}

// LabelFor returns the subtype label of the sample's patient.
func (l *CSVLookup) LabelFor(sampleID string) (string, bool) {
	label, ok := l.labels[sampleset.PatientID(sampleID)]
	return label, ok
}

// SurvivalFor returns the censored survival outcome of the sample's patient.
func (l *CSVLookup) SurvivalFor(sampleID string) (*Survival, bool) {
	s, ok := l.survival[sampleset.PatientID(sampleID)]
	return s, ok
}

// parseSurvival parses a months/status column pair. Status accepts boolean
// literals, bare 0/1, and the "0:LIVING"/"1:DECEASED" clinical convention.
func parseSurvival(monthsField, deceasedField string) (*Survival, bool) {
	monthsText := strings.TrimSpace(monthsField)
	if monthsText == "" || isNA(monthsText) {
		return nil, false
	}
	months, err := strconv.ParseFloat(monthsText, 64)
	if err != nil || math.IsNaN(months) || months < 0 {
		return nil, false
	}
	status := strings.ToLower(strings.TrimSpace(deceasedField))
	if i := strings.IndexByte(status, ':'); i >= 0 {
		status = status[:i]
	}
	switch status {
	case "1", "true", "deceased":
		return &Survival{Months: months, Deceased: true}, true
	case "0", "false", "living":
		return &Survival{Months: months, Deceased: false}, true
	default:
		return nil, false
	}
}

func isNA(s string) bool {
	switch strings.ToLower(s) {
	case "na", "n/a", "nan", "none", "null", "[not available]":
		return true
	default:
		return false
	}
}
