// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

import (
	"time"

	"github.com/zentask/taskbridge/logger"
)

// LanguageModelLogWrapper logs every completion call made through it.
type LanguageModelLogWrapper struct {
	log     logger.Logger
	wrapped LanguageModel
}

func NewLanguageModelLogWrapper(log logger.Logger, wrapped LanguageModel) *LanguageModelLogWrapper {
	return &LanguageModelLogWrapper{
		log:     log,
		wrapped: wrapped,
	}
}

func (w *LanguageModelLogWrapper) ChatCompletion(request CompletionRequest, opts ...LanguageModelOption) (string, error) {
	start := time.Now()
	response, err := w.wrapped.ChatCompletion(request, opts...)
	elapsed := time.Since(start)

	keyValuePairs := []any{
		"posts", len(request.Posts),
		"elapsed_ms", elapsed.Milliseconds(),
	}
	if request.Context != nil && request.Context.RunID != "" {
		keyValuePairs = append(keyValuePairs, "run_id", request.Context.RunID)
	}

	if err != nil {
		w.log.Error("LLM completion failed", append(keyValuePairs, "error", err.Error())...)
		return response, err
	}

	w.log.Debug("LLM completion", keyValuePairs...)
	return response, nil
}

func (w *LanguageModelLogWrapper) CountTokens(text string) int {
	return w.wrapped.CountTokens(text)
}

func (w *LanguageModelLogWrapper) InputTokenLimit() int {
	return w.wrapped.InputTokenLimit()
}
