//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an oracle backed by an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"trpc.group/trpc-go/slidebench/oracle"
)

// Oracle is an oracle.Oracle implementation using the openai-go client.
type Oracle struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// New creates an OpenAI-backed oracle for the given model name.
func New(model string, opts ...Option) *Oracle {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}

	return &Oracle{
		client:    openai.NewClient(clientOpts...),
		model:     model,
		maxTokens: o.MaxTokens,
	}
}

// Respond sends the prompt and attached images as a single user message and
// returns the first choice's text.
func (o *Oracle) Respond(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", errors.New("request is nil")
	}
	parts := []openai.ChatCompletionContentPartUnionParam{{
		OfText: &openai.ChatCompletionContentPartTextParam{Text: req.Prompt},
	}}
	for _, image := range req.Images {
		url, err := imageURL(image)
		if err != nil {
			return "", fmt.Errorf("encode image: %w", err)
		}
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: url},
			},
		})
	}
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		}},
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(o.maxTokens)
	}
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// Request aliases oracle.Request so callers only import this package for construction.
type Request = oracle.Request

// imageURL converts an image reference to either its URL or a base64 data URL.
func imageURL(image *oracle.Image) (string, error) {
	if image == nil {
		return "", errors.New("image is nil")
	}
	if image.URL != "" {
		return image.URL, nil
	}
	data := image.Data
	format := image.Format
	if len(data) == 0 {
		if image.Path == "" {
			return "", errors.New("image has no url, data, or path")
		}
		raw, err := os.ReadFile(image.Path)
		if err != nil {
			return "", fmt.Errorf("read image %s: %w", image.Path, err)
		}
		data = raw
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(image.Path), ".")
		}
	}
	if format == "" {
		format = "png"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
