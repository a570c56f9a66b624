//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package survival scores risk predictions against right-censored outcomes
// with Harrell's concordance index.
package survival

import (
	"errors"
	"fmt"
)

// ConcordanceIndex computes Harrell's C for right-censored data: the fraction
// of comparable pairs where the subject who experienced the event earlier was
// assigned the higher risk. A pair is comparable when the earlier of the two
// times belongs to an observed event; a pair of identical times is comparable
// only when exactly one of the two is an event. Tied risks on a comparable
// pair count half.
func ConcordanceIndex(risks, times []float64, events []bool) (float64, error) {
	if len(risks) != len(times) || len(risks) != len(events) {
		return 0, fmt.Errorf("input length mismatch: risks=%d times=%d events=%d",
			len(risks), len(times), len(events))
	}
	if len(risks) == 0 {
		return 0, errors.New("inputs are empty")
	}

	var concordant, tied, comparable float64
	for i := 0; i < len(risks); i++ {
		for j := i + 1; j < len(risks); j++ {
			// Order the pair so a is the earlier (or the event on a tie).
			a, b := i, j
			switch {
			case times[i] < times[j]:
			case times[j] < times[i]:
				a, b = j, i
			default:
				// Identical times: comparable only when exactly one is an
				// event, and that one plays the earlier role.
				if events[i] == events[j] {
					continue
				}
				if events[j] {
					a, b = j, i
				}
			}
			if !events[a] {
				continue
			}
			comparable++
			switch {
			case risks[a] > risks[b]:
				concordant++
			case risks[a] == risks[b]:
				tied++
			}
		}
	}
	if comparable == 0 {
		return 0, errors.New("no comparable pairs: all subjects censored or tied")
	}
	return (concordant + 0.5*tied) / comparable, nil
}
