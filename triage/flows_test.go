// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
)

func TestUpdateByDescription(t *testing.T) {
	model := &fakeLLM{respond: respondWith("1")}
	store := &fakeStore{
		sprintTasks: []clickup.Task{
			{ID: "t1", Name: "Fix login bug", Status: clickup.TaskStatus{Status: "to do"}, URL: "https://app.clickup.com/t/t1"},
			{ID: "t2", Name: "Write docs"},
		},
	}
	triager := newTestTriager(t, model, store, nil)

	result, err := triager.UpdateByDescription(context.Background(), "login issue", "done")
	require.NoError(t, err)

	assert.Equal(t, "Fix login bug", result.MatchedName)
	assert.Equal(t, "to do", result.PreviousStatus)
	assert.Equal(t, "complete", result.NewStatus)
	assert.Equal(t, 2, result.TasksSearched)
	assert.Equal(t, "https://app.clickup.com/t/t1", result.Task.URL)
	assert.Equal(t, []string{"t1:complete"}, store.updates)
}

func TestUpdateByDescriptionInvalidStatus(t *testing.T) {
	store := &fakeStore{sprintTasks: sprintTasks()}
	triager := newTestTriager(t, nil, store, nil)

	_, err := triager.UpdateByDescription(context.Background(), "login issue", "blocked")
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, store.updates)
}

func TestUpdateByDescriptionNoTasks(t *testing.T) {
	triager := newTestTriager(t, nil, &fakeStore{}, nil)

	_, err := triager.UpdateByDescription(context.Background(), "login issue", "done")
	require.ErrorIs(t, err, ErrNoTasks)
}

func TestUpdateByDescriptionNoMatch(t *testing.T) {
	model := &fakeLLM{respond: respondWith("none")}
	store := &fakeStore{sprintTasks: sprintTasks()}
	triager := newTestTriager(t, model, store, nil)

	_, err := triager.UpdateByDescription(context.Background(), "unrelated thing", "done")
	require.ErrorIs(t, err, ErrNoSimilarTask)
	assert.Empty(t, store.updates)

	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, 3, noMatch.TasksSearched)
}

func TestUpdateByDescriptionFetchFailure(t *testing.T) {
	store := &fakeStore{sprintTasksErr: errors.New("clickup: status 502")}
	triager := newTestTriager(t, nil, store, nil)

	_, err := triager.UpdateByDescription(context.Background(), "login issue", "done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestUpdateByDescriptionUpdateFailure(t *testing.T) {
	model := &fakeLLM{respond: respondWith("1")}
	store := &fakeStore{sprintTasks: sprintTasks(), updateErr: errors.New("clickup: status 500")}
	triager := newTestTriager(t, model, store, nil)

	_, err := triager.UpdateByDescription(context.Background(), "login issue", "done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAssignByDescription(t *testing.T) {
	model := &fakeLLM{respond: func(request llm.CompletionRequest) (string, error) {
		if stageOf(request) == "member_match" {
			return "2", nil
		}
		return "1", nil
	}}
	store := &fakeStore{sprintTasks: sprintTasks()}
	triager := newTestTriager(t, model, store, nil)

	members := []RemoteMember{
		{ID: "100", DisplayName: "Ala Kowalska"},
		{ID: "200", DisplayName: "Bob Smith"},
	}
	result, err := triager.AssignByDescription(context.Background(), "login issue", "bob", members)
	require.NoError(t, err)

	assert.Equal(t, "200", result.Member.ID)
	assert.Equal(t, "Fix login bug", result.Task.Name)
	assert.Equal(t, []string{"t1:200"}, store.assignments)
}

func TestAssignByDescriptionNoMember(t *testing.T) {
	model := &fakeLLM{respond: func(request llm.CompletionRequest) (string, error) {
		if stageOf(request) == "member_match" {
			return "none", nil
		}
		return "1", nil
	}}
	store := &fakeStore{sprintTasks: sprintTasks()}
	triager := newTestTriager(t, model, store, nil)

	_, err := triager.AssignByDescription(context.Background(), "login issue", "nobody", []RemoteMember{{ID: "100", DisplayName: "Ala"}})
	require.ErrorIs(t, err, ErrNoMemberMatch)
	assert.Empty(t, store.assignments)
}

func TestAssignByDescriptionNoTasks(t *testing.T) {
	triager := newTestTriager(t, nil, &fakeStore{}, nil)

	_, err := triager.AssignByDescription(context.Background(), "login issue", "bob", nil)
	require.ErrorIs(t, err, ErrNoTasks)
}

func TestAssembleDescriptionGuildFallsBackToDM(t *testing.T) {
	msg := testMessage("fix the login")
	msg.GuildName = ""

	body := assembleDescription(descriptionParts{message: msg, intent: IntentTaskDescription, listLabel: "📋 Backlog"})
	assert.Contains(t, body, "**Guild:** DM")
}

func TestAssembleDescriptionNotesEmptyContext(t *testing.T) {
	body := assembleDescription(descriptionParts{
		message:         testMessage("fix the login"),
		intent:          IntentTaskDescription,
		listLabel:       "🚀 Sprint 1",
		contextAnalyzed: 7,
	})
	assert.Contains(t, body, "**Note:** AI found no relevant context in recent 7 messages")

	body = assembleDescription(descriptionParts{
		message:   testMessage("fix the login"),
		intent:    IntentTaskDescription,
		listLabel: "🚀 Sprint 1",
	})
	assert.NotContains(t, body, "**Note:**")
	assert.NotContains(t, body, "**Relevant Context from Channel:**")
}
