//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package openai

// options holds configuration for the OpenAI-backed oracle.
type options struct {
	// APIKey authenticates against the endpoint. Falls back to OPENAI_API_KEY.
	APIKey string
	// BaseURL overrides the default endpoint, e.g. for Azure or local gateways.
	BaseURL string
	// MaxTokens caps the response length. Zero leaves the server default.
	MaxTokens int64
}

var defaultOptions = options{
	MaxTokens: 3000,
}

// Option configures the oracle.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.APIKey = key }
}

// WithBaseURL sets the endpoint base URL.
func WithBaseURL(url string) Option {
	return func(o *options) { o.BaseURL = url }
}

// WithMaxTokens caps the response token count.
func WithMaxTokens(n int64) Option {
	return func(o *options) { o.MaxTokens = n }
}
