//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package rouge

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"
)

var (
	nonAlphaNumRE = regexp.MustCompile(`[^a-z0-9]+`)

	sentenceTokenizerOnce sync.Once
	sentenceTokenizer     *sentences.DefaultSentenceTokenizer
	sentenceTokenizerErr  error
)

// tokenize lowercases, strips punctuation, and splits on whitespace.
func tokenize(text string) []string {
	text = nonAlphaNumRE.ReplaceAllString(strings.ToLower(text), " ")
	parts := strings.Fields(text)
	tokens := make([]string, 0, len(parts))
	for _, token := range parts {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// splitSentences splits English text into sentences with a Punkt model,
// loaded once per process.
func splitSentences(text string) ([]string, error) {
	sentenceTokenizerOnce.Do(func() {
		data, err := sentencesdata.Asset("data/english.json")
		if err != nil {
			sentenceTokenizerErr = fmt.Errorf("load english punkt data: %w", err)
			return
		}
		training, err := sentences.LoadTraining(data)
		if err != nil {
			sentenceTokenizerErr = fmt.Errorf("parse english punkt data: %w", err)
			return
		}
		sentenceTokenizer = sentences.NewSentenceTokenizer(training)
	})
	if sentenceTokenizerErr != nil {
		return nil, sentenceTokenizerErr
	}
	raw := sentenceTokenizer.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, sent := range raw {
		if s := strings.TrimSpace(sent.Text); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
