//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package harness

// OutcomeKind classifies the result of a single guarded attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means the attempt returned a payload.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailure means the attempt returned an error.
	OutcomeFailure
	// OutcomeTimeout means the attempt exceeded its deadline and was abandoned.
	OutcomeTimeout
)

// String returns the string representation of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one guarded attempt.
// Value is only meaningful when Kind is OutcomeSuccess, Err otherwise.
type Outcome[T any] struct {
	// Kind classifies the attempt.
	Kind OutcomeKind
	// Value is the payload of a successful attempt.
	Value T
	// Err describes a failed or timed-out attempt.
	Err error
}
