//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package survival

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Prediction is one subject's predicted risk alongside its observed outcome.
type Prediction struct {
	// Risk is the predicted risk level, higher meaning shorter expected
	// survival.
	Risk int
	// Months is the observed follow-up time in months.
	Months float64
	// Deceased reports whether the event was observed (true) or the subject
	// was censored (false).
	Deceased bool
}

var csvHeader = []string{"predicted_label", "event_time", "event_indicator"}

// WriteCSV writes predictions with a predicted_label,event_time,event_indicator
// header.
func WriteCSV(w io.Writer, preds []*Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range preds {
		record := []string{
			strconv.Itoa(p.Risk),
			strconv.FormatFloat(p.Months, 'g', -1, 64),
			strconv.FormatBool(p.Deceased),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes predictions to the given path.
func WriteCSVFile(path string, preds []*Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, preds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses predictions written by WriteCSV. The header row is required
// and validated.
func ReadCSV(r io.Reader) ([]*Prediction, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}
	for i, name := range csvHeader {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("unexpected header column %q, want %q", header[i], name)
		}
	}
	var preds []*Prediction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return preds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		risk, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse predicted_label: %w", line, err)
		}
		months, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse event_time: %w", line, err)
		}
		deceased, err := strconv.ParseBool(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse event_indicator: %w", line, err)
		}
		preds = append(preds, &Prediction{Risk: risk, Months: months, Deceased: deceased})
	}
}

// Score computes the concordance index of a prediction set.
func Score(preds []*Prediction) (float64, error) {
	risks := make([]float64, len(preds))
	times := make([]float64, len(preds))
	events := make([]bool, len(preds))
	for i, p := range preds {
		risks[i] = float64(p.Risk)
		times[i] = p.Months
		events[i] = p.Deceased
	}
	return ConcordanceIndex(risks, times, events)
}
