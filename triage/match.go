// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

// findSimilarTask picks the task most semantically similar to the
// description, or nil when nothing matches. Matching never errors out: with
// no model, no tasks, or a failed query, there is simply no match.
func (t *Triager) findSimilarTask(description string, tasks []clickup.Task, runCtx *llm.Context) *clickup.Task {
	if len(tasks) == 0 || t.bot.LLM() == nil {
		return nil
	}

	entries := make([]string, 0, len(tasks))
	for i, task := range tasks {
		name := task.Name
		if name == "" {
			name = "Unnamed Task"
		}
		entry := fmt.Sprintf("%d. %s", i+1, name)
		if summary := summarizeTaskDescription(task.Description); summary != "" {
			entry += " - " + summary
		}
		entries = append(entries, entry)
	}

	llmContext := stageContext(runCtx, map[string]any{
		"Description": description,
		"Tasks":       strings.Join(entries, "\n"),
	})
	posts, err := t.stagePosts(prompts.PromptTaskMatchSystem, prompts.PromptTaskMatchUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build task matching prompts", "error", err.Error())
		return nil
	}

	return ask(t, modelQuery[*clickup.Task]{
		stage:   "task_match",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(20),
			llm.WithTemperature(0.3),
		},
		parse: func(response string) (*clickup.Task, bool) {
			index, ok := parseSelectionIndex(response, len(tasks))
			if !ok {
				return nil, true
			}
			return &tasks[index], true
		},
		noModel:   func() *clickup.Task { return nil },
		onFailure: func() *clickup.Task { return nil },
	})
}

// summarizeTaskDescription flattens a task description for the matching
// prompt: markdown emphasis stripped, newlines collapsed, 200 characters max.
func summarizeTaskDescription(description string) string {
	description = strings.ReplaceAll(description, "**", "")
	description = strings.ReplaceAll(description, "*", "")
	description = strings.ReplaceAll(description, "\n", " ")

	runes := []rune(description)
	if len(runes) > 200 {
		description = string(runes[:200])
	}
	return strings.TrimSpace(description)
}

// parseSelectionIndex reads a single 1-based index from a model response.
// "none", non-numeric text, and out-of-range values all mean no selection.
func parseSelectionIndex(response string, count int) (int, bool) {
	response = strings.ToLower(strings.TrimSpace(response))
	if response == "none" {
		return 0, false
	}

	index, err := strconv.Atoi(response)
	if err != nil {
		return 0, false
	}
	if index < 1 || index > count {
		return 0, false
	}

	return index - 1, true
}

// matchMember resolves an approximate name to a guild member. Without a
// model it degrades to a case-insensitive substring search over display and
// user names; a failed query matches nobody.
func (t *Triager) matchMember(query string, members []RemoteMember, runCtx *llm.Context) *RemoteMember {
	if len(members) == 0 {
		return nil
	}

	entries := make([]string, 0, len(members))
	for i, member := range members {
		entries = append(entries, fmt.Sprintf("%d. %s", i+1, member.DisplayName))
	}

	llmContext := stageContext(runCtx, map[string]any{
		"Members": strings.Join(entries, "\n"),
		"Query":   query,
	})
	posts, err := t.stagePosts(prompts.PromptMemberMatchSystem, prompts.PromptMemberMatchUser, llmContext)
	if err != nil {
		t.log.Error("Failed to build member matching prompts", "error", err.Error())
		return nil
	}

	return ask(t, modelQuery[*RemoteMember]{
		stage:   "member_match",
		posts:   posts,
		context: llmContext,
		options: []llm.LanguageModelOption{
			llm.WithMaxGeneratedTokens(10),
			llm.WithTemperature(0.1),
		},
		parse: func(response string) (*RemoteMember, bool) {
			index, ok := parseSelectionIndex(response, len(members))
			if !ok {
				return nil, true
			}
			return &members[index], true
		},
		noModel:   func() *RemoteMember { return substringMemberMatch(query, members) },
		onFailure: func() *RemoteMember { return nil },
	})
}

func substringMemberMatch(query string, members []RemoteMember) *RemoteMember {
	lowered := strings.ToLower(query)
	for i, member := range members {
		if strings.Contains(strings.ToLower(member.DisplayName), lowered) ||
			strings.Contains(strings.ToLower(member.Username), lowered) {
			return &members[i]
		}
	}
	return nil
}
