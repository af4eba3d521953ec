// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import "strings"

const (
	StatusToDo       = "to do"
	StatusInProgress = "in progress"
	StatusInReview   = "in review"
	StatusComplete   = "complete"
)

// statusAliases maps the words people type to the statuses the task store
// accepts. Exact match only, after lowercasing and trimming.
var statusAliases = map[string]string{
	"todo":        StatusToDo,
	"to do":       StatusToDo,
	"backlog":     StatusToDo,
	"start":       StatusInProgress,
	"started":     StatusInProgress,
	"progress":    StatusInProgress,
	"in progress": StatusInProgress,
	"working":     StatusInProgress,
	"review":      StatusInReview,
	"in review":   StatusInReview,
	"reviewing":   StatusInReview,
	"done":        StatusComplete,
	"complete":    StatusComplete,
	"completed":   StatusComplete,
	"finished":    StatusComplete,
	"close":       StatusComplete,
	"closed":      StatusComplete,
	"resolved":    StatusComplete,
	"fixed":       StatusComplete,
}

// NormalizeStatus maps a free-text status word to a store status. The second
// return is false for unrecognized input.
func NormalizeStatus(input string) (string, bool) {
	normalized, ok := statusAliases[strings.ToLower(strings.TrimSpace(input))]
	return normalized, ok
}

// updateStatusKeywords are the suffixes ParseUpdateCommand recognizes.
// Order matters: longer phrases first so "in progress" wins over "progress".
var updateStatusKeywords = []string{
	"in progress",
	"in review",
	"to do",
	"todo",
	"review",
	"progress",
	"done",
	"complete",
	"closed",
	"resolved",
	"fixed",
}

// ParseUpdateCommand splits an "!update <description> <status>" message into
// the task description and the normalized status. The status keyword has to
// close the message; anything else fails the parse.
func ParseUpdateCommand(commandText string) (string, string, bool) {
	content := strings.TrimSpace(strings.ReplaceAll(commandText, "!update", ""))
	if content == "" {
		return "", "", false
	}

	lowered := strings.ToLower(content)
	for _, keyword := range updateStatusKeywords {
		if !strings.HasSuffix(lowered, keyword) {
			continue
		}

		description := strings.TrimSpace(content[:len(content)-len(keyword)])
		normalized, ok := NormalizeStatus(keyword)
		if !ok {
			return "", "", false
		}
		return description, normalized, true
	}

	return "", "", false
}
