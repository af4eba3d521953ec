// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"strings"

	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

const placeholderTitle = "Task from conversation context"

// extractedTask is the parsed result of a context extraction query.
type extractedTask struct {
	title       string
	description string
}

// extractTaskFromContext figures out what task a bare command like "dodaj
// taska" refers to by reading the recent conversation. Returns a title and
// description; with no model it returns placeholders, and on a failed query
// the command text itself becomes the description.
func (t *Triager) extractTaskFromContext(ctx context.Context, channelID, command string, runCtx *llm.Context) (string, string) {
	if t.bot.LLM() == nil {
		t.observeModelQuery("task_extract", "no_model")
		return placeholderTitle, "No AI analysis available"
	}

	window := t.collectContext(ctx, channelID, extractWindowLimit)

	llmContext := stageContext(runCtx, map[string]any{
		"Command": command,
		"Context": strings.Join(window, "\n"),
	})
	posts, err := t.stagePosts(prompts.PromptTaskExtractSystem, prompts.PromptTaskExtractUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build task extraction prompts", "error", err.Error())
		return placeholderTitle, command
	}

	extracted := ask(t, modelQuery[extractedTask]{
		stage:   "task_extract",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(300),
			llm.WithTemperature(0.3),
		},
		parse: func(response string) (extractedTask, bool) {
			return parseExtractedTask(response, command), true
		},
		noModel: func() extractedTask {
			return extractedTask{title: placeholderTitle, description: "No AI analysis available"}
		},
		onFailure: func() extractedTask {
			return extractedTask{title: placeholderTitle, description: command}
		},
	})

	return extracted.title, extracted.description
}

// parseExtractedTask reads the labeled two-line response format. A missing
// TITLE label keeps the placeholder; a missing DESCRIPTION label keeps the
// command text. Unlabeled lines are ignored.
func parseExtractedTask(response, command string) extractedTask {
	extracted := extractedTask{
		title:       placeholderTitle,
		description: command,
	}

	for _, line := range strings.Split(response, "\n") {
		switch {
		case strings.HasPrefix(line, "TITLE:"):
			extracted.title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
		case strings.HasPrefix(line, "DESCRIPTION:"):
			extracted.description = strings.TrimSpace(strings.TrimPrefix(line, "DESCRIPTION:"))
		}
	}

	return extracted
}
