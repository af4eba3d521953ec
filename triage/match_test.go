// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
)

func sprintTasks() []clickup.Task {
	return []clickup.Task{
		{ID: "t1", Name: "Fix login bug", Description: "Login fails with **special** characters"},
		{ID: "t2", Name: "Write API docs"},
		{ID: "t3", Name: "Refactor billing"},
	}
}

func TestFindSimilarTask(t *testing.T) {
	testCases := []struct {
		name       string
		response   string
		err        error
		expectedID string
	}{
		{name: "picks the numbered task", response: "2", expectedID: "t2"},
		{name: "none means no match", response: "none", expectedID: ""},
		{name: "out of range means no match", response: "7", expectedID: ""},
		{name: "non-numeric means no match", response: "the second one", expectedID: ""},
		{name: "model error means no match", err: errors.New("rate limited"), expectedID: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model := &fakeLLM{respond: func(llm.CompletionRequest) (string, error) {
				if tc.err != nil {
					return "", tc.err
				}
				return tc.response, nil
			}}
			triager := newTestTriager(t, model, nil, nil)

			match := triager.findSimilarTask("api documentation", sprintTasks(), triager.newRunContext())
			if tc.expectedID == "" {
				assert.Nil(t, match)
			} else {
				require.NotNil(t, match)
				assert.Equal(t, tc.expectedID, match.ID)
			}
		})
	}
}

func TestFindSimilarTaskWithoutModelOrTasks(t *testing.T) {
	triager := newTestTriager(t, nil, nil, nil)
	assert.Nil(t, triager.findSimilarTask("api docs", sprintTasks(), triager.newRunContext()))

	model := &fakeLLM{respond: respondWith("1")}
	triager = newTestTriager(t, model, nil, nil)
	assert.Nil(t, triager.findSimilarTask("api docs", nil, triager.newRunContext()))
	assert.Zero(t, model.calls)
}

func TestFindSimilarTaskPromptFormatting(t *testing.T) {
	model := &fakeLLM{respond: respondWith("none")}
	triager := newTestTriager(t, model, nil, nil)

	tasks := []clickup.Task{
		{ID: "t1", Name: "Fix login bug", Description: "Login fails with **special** characters\nacross devices"},
		{ID: "t2", Name: "Write API docs", Description: strings.Repeat("y", 300)},
		{ID: "t3", Name: ""},
	}
	triager.findSimilarTask("login", tasks, triager.newRunContext())

	require.Len(t, model.requests, 1)
	prompt := userPrompt(model.requests[0])
	assert.Contains(t, prompt, "1. Fix login bug - Login fails with special characters across devices")
	assert.Contains(t, prompt, "2. Write API docs - "+strings.Repeat("y", 200))
	assert.NotContains(t, prompt, strings.Repeat("y", 201))
	assert.Contains(t, prompt, "3. Unnamed Task")
}

func TestSummarizeTaskDescription(t *testing.T) {
	assert.Equal(t, "plain", summarizeTaskDescription("plain"))
	assert.Equal(t, "bold and starred", summarizeTaskDescription("**bold** and *starred*"))
	assert.Equal(t, "one two", summarizeTaskDescription("one\ntwo"))
	assert.Equal(t, strings.Repeat("z", 200), summarizeTaskDescription(strings.Repeat("z", 250)))
	assert.Equal(t, "", summarizeTaskDescription("  \n "))
}

func TestMatchMemberWithModel(t *testing.T) {
	members := []RemoteMember{
		{ID: "1", DisplayName: "Ala Kowalska", Username: "alak"},
		{ID: "2", DisplayName: "Bob Smith", Username: "bsmith"},
	}

	model := &fakeLLM{respond: respondWith("2")}
	triager := newTestTriager(t, model, nil, nil)

	match := triager.matchMember("bobby", members, triager.newRunContext())
	require.NotNil(t, match)
	assert.Equal(t, "2", match.ID)

	prompt := userPrompt(model.requests[0])
	assert.Contains(t, prompt, "1. Ala Kowalska")
	assert.Contains(t, prompt, "2. Bob Smith")
	assert.Contains(t, prompt, "Find the best match for 'bobby'")
}

func TestMatchMemberModelErrorMatchesNobody(t *testing.T) {
	members := []RemoteMember{{ID: "1", DisplayName: "Ala Kowalska", Username: "alak"}}
	model := &fakeLLM{respond: failWith(errors.New("rate limited"))}
	triager := newTestTriager(t, model, nil, nil)

	assert.Nil(t, triager.matchMember("ala", members, triager.newRunContext()))
}

func TestMatchMemberSubstringFallback(t *testing.T) {
	members := []RemoteMember{
		{ID: "1", DisplayName: "Ala Kowalska", Username: "alak"},
		{ID: "2", DisplayName: "Bob Smith", Username: "bsmith"},
	}
	triager := newTestTriager(t, nil, nil, nil)

	match := triager.matchMember("kowal", members, triager.newRunContext())
	require.NotNil(t, match)
	assert.Equal(t, "1", match.ID)

	// Username is searched too.
	match = triager.matchMember("BSMITH", members, triager.newRunContext())
	require.NotNil(t, match)
	assert.Equal(t, "2", match.ID)

	assert.Nil(t, triager.matchMember("charlie", members, triager.newRunContext()))
	assert.Nil(t, triager.matchMember("anyone", nil, triager.newRunContext()))
}
