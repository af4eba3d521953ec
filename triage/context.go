// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

// collectContext fetches recent channel messages. Context is best-effort: a
// retrieval failure logs and yields an empty window, never an error.
func (t *Triager) collectContext(ctx context.Context, channelID string, limit int) []string {
	messages, err := t.chats.RecentMessages(ctx, channelID, limit)
	if err != nil {
		t.log.Error("Failed to collect channel context", "channel_id", channelID, "error", err.Error())
		return nil
	}
	return messages
}

// filterRelevantContext keeps only the window messages that matter for the
// task, capped at 5. Without a model (or with an empty window) it keeps the
// first 5; a failed or malformed query keeps the first 3.
func (t *Triager) filterRelevantContext(taskContent string, window []string, runCtx *llm.Context) []string {
	if len(window) == 0 {
		return window
	}

	numbered := make([]string, 0, len(window))
	for i, message := range window {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, message))
	}

	llmContext := stageContext(runCtx, map[string]any{
		"TaskContent": taskContent,
		"Messages":    strings.Join(numbered, "\n"),
	})
	posts, err := t.stagePosts(prompts.PromptContextFilterSystem, prompts.PromptContextFilterUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build context filter prompts", "error", err.Error())
		return firstN(window, 3)
	}

	return ask(t, modelQuery[[]string]{
		stage:   "context_filter",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(50),
			llm.WithTemperature(0.3),
		},
		parse: func(response string) ([]string, bool) {
			return parseRelevantSelection(response, window), true
		},
		noModel:   func() []string { return firstN(window, 5) },
		onFailure: func() []string { return firstN(window, 3) },
	})
}

// parseRelevantSelection resolves a comma-separated list of 1-based message
// numbers against the window. Tokens that are not numbers or point outside
// the window are dropped silently; "none" selects nothing.
func parseRelevantSelection(response string, window []string) []string {
	response = strings.ToLower(response)
	if response == "none" {
		return []string{}
	}

	var selected []string
	for _, token := range strings.Split(response, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		if index < 1 || index > len(window) {
			continue
		}
		selected = append(selected, window[index-1])
	}

	return firstN(selected, 5)
}

func firstN(messages []string, n int) []string {
	if len(messages) <= n {
		return messages
	}
	return messages[:n]
}
