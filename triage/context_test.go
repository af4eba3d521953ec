// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(n int) []string {
	messages := make([]string, 0, n)
	names := []string{"Ala", "Bob", "Cara", "Dee", "Ed", "Fay", "Gus", "Hana"}
	for i := 0; i < n; i++ {
		messages = append(messages, names[i%len(names)]+": message")
	}
	return messages
}

func TestCollectContextDegradesOnError(t *testing.T) {
	chats := &fakeChats{err: errors.New("gateway closed")}
	triager := newTestTriager(t, nil, nil, chats)

	messages := triager.collectContext(context.Background(), "chan1", 20)
	assert.Empty(t, messages)
	assert.Equal(t, []int{20}, chats.limits)
}

func TestFilterRelevantContextWithoutModel(t *testing.T) {
	triager := newTestTriager(t, nil, nil, nil)

	filtered := triager.filterRelevantContext("fix login", window(8), triager.newRunContext())
	assert.Equal(t, window(8)[:5], filtered)
}

func TestFilterRelevantContextEmptyWindow(t *testing.T) {
	model := &fakeLLM{respond: failWith(errors.New("must not be called"))}
	triager := newTestTriager(t, model, nil, nil)

	filtered := triager.filterRelevantContext("fix login", nil, triager.newRunContext())
	assert.Empty(t, filtered)
	assert.Zero(t, model.calls)
}

func TestFilterRelevantContextSelection(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		expected []string
	}{
		{
			name:     "picks the listed messages in order",
			response: "1,3",
			expected: []string{window(4)[0], window(4)[2]},
		},
		{
			name:     "none selects nothing",
			response: "none",
			expected: []string{},
		},
		{
			name:     "uppercase NONE selects nothing",
			response: "NONE",
			expected: []string{},
		},
		{
			name:     "bad tokens are dropped, good ones kept",
			response: "first, 2, 99",
			expected: []string{window(4)[1]},
		},
		{
			name:     "selection is capped at five",
			response: "1,2,3,4,5,6",
			expected: window(6)[:5],
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model := &fakeLLM{respond: respondWith(tc.response)}
			triager := newTestTriager(t, model, nil, nil)

			input := window(4)
			if tc.name == "selection is capped at five" {
				input = window(6)
			}

			filtered := triager.filterRelevantContext("fix login", input, triager.newRunContext())
			assert.Equal(t, tc.expected, filtered)
			assert.Equal(t, 1, model.calls)
		})
	}
}

func TestFilterRelevantContextErrorFallsBackToThree(t *testing.T) {
	model := &fakeLLM{respond: failWith(errors.New("rate limited"))}
	triager := newTestTriager(t, model, nil, nil)

	filtered := triager.filterRelevantContext("fix login", window(8), triager.newRunContext())
	assert.Equal(t, window(8)[:3], filtered)
}

func TestFilterRelevantContextPromptNumbersMessages(t *testing.T) {
	model := &fakeLLM{respond: respondWith("none")}
	triager := newTestTriager(t, model, nil, nil)

	triager.filterRelevantContext("fix login", []string{"Ala: one", "Bob: two"}, triager.newRunContext())

	require.Len(t, model.requests, 1)
	prompt := userPrompt(model.requests[0])
	assert.Contains(t, prompt, `Task request: "fix login"`)
	assert.Contains(t, prompt, "1. Ala: one")
	assert.Contains(t, prompt, "2. Bob: two")
}
