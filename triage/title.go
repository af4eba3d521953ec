// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"strings"
	"unicode/utf8"

	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

// generateTitle produces a short actionable title for the task content,
// using the filtered context to sharpen it. Anything the model returns that
// is empty or longer than 80 characters is rejected in favor of the
// truncated content itself.
func (t *Triager) generateTitle(taskContent string, relevantContext []string, runCtx *llm.Context) string {
	llmContext := stageContext(runCtx, map[string]any{
		"TaskContent": taskContent,
		"Context":     strings.Join(relevantContext, "\n"),
	})
	posts, err := t.stagePosts(prompts.PromptTaskTitleSystem, prompts.PromptTaskTitleUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build title generation prompts", "error", err.Error())
		return fallbackTitle(taskContent)
	}

	return ask(t, modelQuery[string]{
		stage:   "task_title",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(50),
			llm.WithTemperature(0.7),
		},
		parse: func(response string) (string, bool) {
			if response == "" || utf8.RuneCountInString(response) > 80 {
				return "", false
			}
			return response, true
		},
		noModel:   func() string { return fallbackTitle(taskContent) },
		onFailure: func() string { return fallbackTitle(taskContent) },
	})
}

// fallbackTitle is the first 50 characters of the content, marked when cut.
func fallbackTitle(taskContent string) string {
	runes := []rune(taskContent)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return taskContent
}
