//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package oracle defines the prediction oracle boundary.
// An oracle answers a prompt, optionally grounded on slide-derived images.
// From the harness's point of view its latency and reliability are unbounded.
package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Image references one image attached to a request.
// Either Path, URL, or raw Data must be set.
type Image struct {
	// Path is a local file path to the image.
	Path string
	// URL is a remote image location.
	URL string
	// Data holds raw image bytes when the image is already in memory.
	Data []byte
	// Format is the image format, e.g. "png" or "jpeg".
	Format string
}

// Request is a single prediction request: a prompt plus zero or more images.
type Request struct {
	// Prompt is the instruction text sent to the oracle.
	Prompt string
	// Images are the attached image references, in order.
	Images []*Image
}

// Oracle produces a text prediction for a request.
type Oracle interface {
	// Respond returns the oracle's raw text response.
	// A non-nil error means the oracle itself failed; malformed-but-returned
	// text is the caller's concern and is checked with the parse helpers below.
	Respond(ctx context.Context, req *Request) (string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, req *Request) (string, error)

// Respond implements Oracle.
func (f Func) Respond(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}

// ParseRiskLevel parses a survival risk ordinal from a raw oracle response.
// The response must contain a single integer in [0, 2].
func ParseRiskLevel(response string) (int, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return 0, fmt.Errorf("empty response")
	}
	level, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse risk level %q: %w", trimmed, err)
	}
	if level < 0 || level > 2 {
		return 0, fmt.Errorf("risk level %d out of range [0, 2]", level)
	}
	return level, nil
}

// ParseAnswerLines splits a raw oracle response into one answer per line.
// Blank lines are dropped; surrounding whitespace and list markers such as
// "1." or "-" are stripped so that enumerated responses compare cleanly.
func ParseAnswerLines(response string) []string {
	lines := strings.Split(response, "\n")
	answers := make([]string, 0, len(lines))
	for _, line := range lines {
		answer := strings.TrimSpace(line)
		answer = strings.TrimLeft(answer, "-*")
		if i := strings.IndexByte(answer, '.'); i > 0 && i <= 3 {
			if _, err := strconv.Atoi(answer[:i]); err == nil {
				answer = answer[i+1:]
			}
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}
		answers = append(answers, answer)
	}
	return answers
}
