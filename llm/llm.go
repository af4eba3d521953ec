// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

// PostRole identifies the author of a post in a completion request.
type PostRole int

const (
	PostRoleUser PostRole = iota
	PostRoleBot
	PostRoleSystem
)

// Post is a single message in a completion conversation.
type Post struct {
	Role    PostRole
	Message string
}

// CompletionRequest is the input to a language model completion. Posts are
// ordered oldest-first; Context carries the invocation data templates and
// providers may need.
type CompletionRequest struct {
	Posts   []Post
	Context *Context
}

// LanguageModelConfig holds the per-call parameters of a completion.
type LanguageModelConfig struct {
	Model              string
	MaxGeneratedTokens int

	// Temperature is forwarded to the provider when positive; zero leaves
	// the provider default in place.
	Temperature float32
}

// LanguageModelOption modifies the configuration of a completion call.
type LanguageModelOption func(*LanguageModelConfig)

// WithModel overrides the service's default model for a single call.
func WithModel(model string) LanguageModelOption {
	return func(cfg *LanguageModelConfig) {
		cfg.Model = model
	}
}

// WithMaxGeneratedTokens caps the number of tokens generated by a single call.
func WithMaxGeneratedTokens(maxGeneratedTokens int) LanguageModelOption {
	return func(cfg *LanguageModelConfig) {
		cfg.MaxGeneratedTokens = maxGeneratedTokens
	}
}

// WithTemperature sets the sampling temperature for a single call.
func WithTemperature(temperature float32) LanguageModelOption {
	return func(cfg *LanguageModelConfig) {
		cfg.Temperature = temperature
	}
}

// LanguageModel is a one-shot completion provider. Implementations must be
// safe for concurrent use.
type LanguageModel interface {
	ChatCompletion(request CompletionRequest, opts ...LanguageModelOption) (string, error)
	CountTokens(text string) int
	InputTokenLimit() int
}
