//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package rouge implements ROUGE scoring for generated report evaluation.
// Supported types are rouge1, rouge2, rougeL, and rougeLsum.
package rouge

import (
	"fmt"
	"strings"
)

// Score holds ROUGE precision, recall and F-measure.
type Score struct {
	// Precision is the fraction of predicted units matching the reference.
	Precision float64
	// Recall is the fraction of reference units matched by the prediction.
	Recall float64
	// FMeasure is the harmonic mean of precision and recall.
	FMeasure float64
}

// DefaultTypes are the ROUGE types computed when none are requested.
var DefaultTypes = []string{"rouge1", "rouge2", "rougeL", "rougeLsum"}

// Compute returns ROUGE scores of a prediction against a reference for the
// requested types, or DefaultTypes when none are given.
func Compute(reference, prediction string, types ...string) (map[string]Score, error) {
	if len(types) == 0 {
		types = DefaultTypes
	}
	refTokens := tokenize(reference)
	predTokens := tokenize(prediction)
	result := make(map[string]Score, len(types))
	for _, t := range types {
		switch t {
		case "rouge1":
			result[t] = scoreNGrams(refTokens, predTokens, 1)
		case "rouge2":
			result[t] = scoreNGrams(refTokens, predTokens, 2)
		case "rougeL":
			result[t] = scoreLCS(refTokens, predTokens)
		case "rougeLsum":
			score, err := scoreSummaryLCS(reference, prediction)
			if err != nil {
				return nil, err
			}
			result[t] = score
		default:
			return nil, fmt.Errorf("unsupported rouge type: %s", t)
		}
	}
	return result, nil
}

// scoreNGrams computes ROUGE-N from n-gram multiset overlap.
func scoreNGrams(refTokens, predTokens []string, n int) Score {
	refGrams := ngrams(refTokens, n)
	predGrams := ngrams(predTokens, n)
	if len(refGrams) == 0 || len(predGrams) == 0 {
		return Score{}
	}
	var overlap, refTotal, predTotal int
	for gram, count := range refGrams {
		refTotal += count
		if other := predGrams[gram]; other > 0 {
			if other < count {
				overlap += other
			} else {
				overlap += count
			}
		}
	}
	for _, count := range predGrams {
		predTotal += count
	}
	precision := float64(overlap) / float64(predTotal)
	recall := float64(overlap) / float64(refTotal)
	return Score{Precision: precision, Recall: recall, FMeasure: fMeasure(precision, recall)}
}

// ngrams builds a multiset of n-grams keyed by a joined token sequence.
func ngrams(tokens []string, n int) map[string]int {
	if len(tokens) < n {
		return map[string]int{}
	}
	grams := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return grams
}

// scoreLCS computes ROUGE-L from the longest common subsequence length.
func scoreLCS(refTokens, predTokens []string) Score {
	if len(refTokens) == 0 || len(predTokens) == 0 {
		return Score{}
	}
	length := lcsLength(refTokens, predTokens)
	precision := float64(length) / float64(len(predTokens))
	recall := float64(length) / float64(len(refTokens))
	return Score{Precision: precision, Recall: recall, FMeasure: fMeasure(precision, recall)}
}

// lcsLength computes the LCS length with a two-row table.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curr[0] = 0
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// scoreSummaryLCS computes rougeLsum: each text is split into sentences and
// matched tokens are counted through per-sentence LCS unions, with clipping
// so no token is credited more often than it occurs.
func scoreSummaryLCS(reference, prediction string) (Score, error) {
	refSents, err := splitSentences(reference)
	if err != nil {
		return Score{}, err
	}
	predSents, err := splitSentences(prediction)
	if err != nil {
		return Score{}, err
	}
	refTokenLists := tokenizeAll(refSents)
	predTokenLists := tokenizeAll(predSents)

	refTotal := countTokens(refTokenLists)
	predTotal := countTokens(predTokenLists)
	if refTotal == 0 || predTotal == 0 {
		return Score{}, nil
	}

	refBudget := tokenCounts(refTokenLists)
	predBudget := tokenCounts(predTokenLists)
	hits := 0
	for _, refSent := range refTokenLists {
		for _, token := range unionLCS(refSent, predTokenLists) {
			if refBudget[token] <= 0 || predBudget[token] <= 0 {
				continue
			}
			hits++
			refBudget[token]--
			predBudget[token]--
		}
	}

	precision := float64(hits) / float64(predTotal)
	recall := float64(hits) / float64(refTotal)
	return Score{Precision: precision, Recall: recall, FMeasure: fMeasure(precision, recall)}, nil
}

// unionLCS returns the reference-sentence tokens that appear in the LCS with
// at least one prediction sentence, in sentence order.
func unionLCS(refSent []string, predSents [][]string) []string {
	matched := make([]bool, len(refSent))
	for _, predSent := range predSents {
		for _, idx := range lcsIndices(refSent, predSent) {
			matched[idx] = true
		}
	}
	out := make([]string, 0, len(refSent))
	for i, ok := range matched {
		if ok {
			out = append(out, refSent[i])
		}
	}
	return out
}

// lcsIndices returns the reference-side indices of one LCS between a and b.
func lcsIndices(a, b []string) []int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				table[i][j] = table[i-1][j-1] + 1
			case table[i-1][j] >= table[i][j-1]:
				table[i][j] = table[i-1][j]
			default:
				table[i][j] = table[i][j-1]
			}
		}
	}
	indices := make([]int, 0, table[len(a)][len(b)])
	for i, j := len(a), len(b); i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			indices = append(indices, i-1)
			i--
			j--
		case table[i][j-1] > table[i-1][j]:
			j--
		default:
			i--
		}
	}
	for l, r := 0, len(indices)-1; l < r; l, r = l+1, r-1 {
		indices[l], indices[r] = indices[r], indices[l]
	}
	return indices
}

func tokenizeAll(sents []string) [][]string {
	out := make([][]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, tokenize(s))
	}
	return out
}

func countTokens(lists [][]string) int {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	return total
}

func tokenCounts(lists [][]string) map[string]int {
	counts := map[string]int{}
	for _, l := range lists {
		for _, token := range l {
			counts[token]++
		}
	}
	return counts
}

// fMeasure computes the harmonic mean of precision and recall.
func fMeasure(precision, recall float64) float64 {
	if precision+recall > 0 {
		return 2 * precision * recall / (precision + recall)
	}
	return 0
}
