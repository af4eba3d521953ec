// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"strings"

	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

// technicalWords marks a long message as a task description without asking
// the model. Purely an optimization for clearly descriptive text.
var technicalWords = []string{
	"implement", "fix", "create", "update", "review", "add", "remove",
	"delete", "bug", "feature", "system", "api", "database", "interface",
}

// simpleCommandWords is the degraded heuristic when no model is available.
var simpleCommandWords = []string{"task", "taska", "zadanie", "backlog"}

// fallbackCommandWords is the wider degraded heuristic after a model error.
var fallbackCommandWords = []string{
	"task", "taska", "zadanie", "backlog", "dodaj", "stwórz", "create", "add",
}

// classifyIntent decides whether the message is a command to create a task
// from context or a direct task description.
func (t *Triager) classifyIntent(content string, runCtx *llm.Context) Intent {
	content = strings.TrimSpace(content)
	if content == "" {
		return IntentTaskDescription
	}

	// Long technical messages are task descriptions, skip the model.
	if wordCount(content) > 10 && containsAny(content, technicalWords) {
		return IntentTaskDescription
	}

	llmContext := stageContext(runCtx, map[string]any{
		"Message": content,
	})
	posts, err := t.stagePosts(prompts.PromptIntentClassifySystem, prompts.PromptIntentClassifyUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build intent classifier prompts", "error", err.Error())
		return heuristicIntent(content, fallbackCommandWords, 5)
	}

	return ask(t, modelQuery[Intent]{
		stage:   "intent_classify",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(10),
			llm.WithTemperature(0.1),
		},
		parse: func(response string) (Intent, bool) {
			if strings.ToUpper(response) == string(IntentCommand) {
				return IntentCommand, true
			}
			return IntentTaskDescription, true
		},
		noModel: func() Intent {
			return heuristicIntent(content, simpleCommandWords, 3)
		},
		onFailure: func() Intent {
			return heuristicIntent(content, fallbackCommandWords, 5)
		},
	})
}

// heuristicIntent treats short messages carrying a command word as commands.
func heuristicIntent(content string, commandWords []string, maxWords int) Intent {
	if wordCount(content) <= maxWords && containsAny(content, commandWords) {
		return IntentCommand
	}
	return IntentTaskDescription
}

func wordCount(content string) int {
	return len(strings.Fields(content))
}

func containsAny(content string, words []string) bool {
	lowered := strings.ToLower(content)
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
