// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"fmt"
	"strings"
)

// CreateFromMessage runs the whole pipeline for one mention and writes the
// resulting task to the store. The store write is the only failure that
// surfaces as an error; every model stage degrades silently.
func (t *Triager) CreateFromMessage(ctx context.Context, msg IncomingMessage) (*CreationResult, error) {
	runCtx := t.newRunContext()

	intent := t.classifyIntent(msg.Content, runCtx)

	var title, extractedDescription, taskInput string
	if intent == IntentCommand {
		t.log.Info("Task creation command detected, analyzing context", "content", msg.Content)
		title, extractedDescription = t.extractTaskFromContext(ctx, msg.ChannelID, msg.Content, runCtx)
		taskInput = extractedDescription
	} else {
		taskInput = msg.Content
	}

	listID, listLabel := t.routeToList(ctx, msg.Content)

	window := t.collectContext(ctx, msg.ChannelID, contextWindowLimit)
	relevantContext := t.filterRelevantContext(taskInput, window, runCtx)

	// Commands already carry an extracted title; descriptions get one now.
	if title == "" {
		title = t.generateTitle(taskInput, relevantContext, runCtx)
	}

	body := assembleDescription(descriptionParts{
		message:              msg,
		intent:               intent,
		extractedDescription: extractedDescription,
		listLabel:            listLabel,
		relevantContext:      relevantContext,
		contextAnalyzed:      len(window),
	})

	t.log.Info("Creating task", "title", title, "list", listLabel)
	task, err := t.store.CreateTask(ctx, title, body, listID, nil)
	if err != nil {
		if t.metrics != nil {
			t.metrics.IncrementTaskCreationErrors()
		}
		return nil, err
	}

	routedToBacklog := strings.Contains(strings.ToLower(msg.Content), "backlog")
	if t.metrics != nil {
		routing := "sprint"
		if routedToBacklog {
			routing = "backlog"
		}
		t.metrics.ObserveTaskCreated(strings.ToLower(string(intent)), routing)
	}

	return &CreationResult{
		Task:                 task,
		Title:                title,
		Intent:               intent,
		ExtractedDescription: extractedDescription,
		RelevantContext:      relevantContext,
		ContextAnalyzed:      len(window),
		ListLabel:            listLabel,
		RoutedToBacklog:      routedToBacklog,
	}, nil
}

type descriptionParts struct {
	message              IncomingMessage
	intent               Intent
	extractedDescription string
	listLabel            string
	relevantContext      []string
	contextAnalyzed      int
}

// assembleDescription renders the task body stored alongside the title:
// where the task came from, who asked for it, and the context that shaped it.
func assembleDescription(parts descriptionParts) string {
	msg := parts.message

	var originSection string
	if parts.intent == IntentCommand {
		originSection = fmt.Sprintf("**Command:** %s\n**Extracted from context:** %s", msg.Content, parts.extractedDescription)
	} else {
		originSection = fmt.Sprintf("**Original Message:** %s", msg.Content)
	}

	guild := msg.GuildName
	if guild == "" {
		guild = "DM"
	}

	var contextSummary string
	if len(parts.relevantContext) > 0 {
		bullets := make([]string, 0, len(parts.relevantContext))
		for _, line := range parts.relevantContext {
			bullets = append(bullets, "• "+line)
		}
		contextSummary = "\n\n**Relevant Context from Channel:**\n" + strings.Join(bullets, "\n")
	} else if parts.contextAnalyzed > 0 {
		contextSummary = fmt.Sprintf("\n\n**Note:** AI found no relevant context in recent %d messages", parts.contextAnalyzed)
	}

	return strings.TrimSpace(fmt.Sprintf(`**Task created from Discord**

%s

**Target List:** %s
**Author:** %s (%s)
**Channel:** #%s
**Guild:** %s
**Timestamp:** %s
**Message Link:** %s%s`,
		originSection,
		parts.listLabel,
		msg.AuthorDisplayName, msg.AuthorHandle,
		msg.ChannelName,
		guild,
		msg.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"),
		msg.Permalink,
		contextSummary,
	))
}

// UpdateByDescription finds the sprint task most similar to the description
// and moves it to the given status. The status may be any recognized alias;
// unrecognized ones fail with ErrInvalidStatus before anything is fetched.
func (t *Triager) UpdateByDescription(ctx context.Context, description, status string) (*UpdateResult, error) {
	newStatus, ok := NormalizeStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	t.log.Info("Looking for a task to update", "description", description, "status", newStatus)
	tasks, err := t.store.GetNewestSprintTasks(ctx)
	if err != nil {
		t.observeStatusUpdate("error")
		return nil, fmt.Errorf("failed to fetch sprint tasks: %w", err)
	}
	if len(tasks) == 0 {
		t.observeStatusUpdate("no_tasks")
		return nil, ErrNoTasks
	}

	runCtx := t.newRunContext()
	match := t.findSimilarTask(description, tasks, runCtx)
	if match == nil {
		t.observeStatusUpdate("no_match")
		return nil, &NoMatchError{Description: description, TasksSearched: len(tasks)}
	}

	previousStatus := match.Status.Status
	if previousStatus == "" {
		previousStatus = "Unknown"
	}

	t.log.Info("Updating task status", "task", match.Name, "task_id", match.ID, "from", previousStatus, "to", newStatus)
	updated, err := t.store.UpdateTaskStatus(ctx, match.ID, newStatus)
	if err != nil {
		t.observeStatusUpdate("error")
		return nil, err
	}

	t.observeStatusUpdate("updated")
	if updated.URL == "" {
		updated.URL = match.URL
	}

	return &UpdateResult{
		Task:           updated,
		MatchedName:    match.Name,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		TasksSearched:  len(tasks),
	}, nil
}

// AssignByDescription matches a sprint task to the description, a guild
// member to the name query, and assigns the member to the task.
func (t *Triager) AssignByDescription(ctx context.Context, description, memberQuery string, members []RemoteMember) (*AssignResult, error) {
	tasks, err := t.store.GetNewestSprintTasks(ctx)
	if err != nil {
		t.observeAssignment("error")
		return nil, fmt.Errorf("failed to fetch sprint tasks: %w", err)
	}
	if len(tasks) == 0 {
		t.observeAssignment("no_tasks")
		return nil, ErrNoTasks
	}

	runCtx := t.newRunContext()
	match := t.findSimilarTask(description, tasks, runCtx)
	if match == nil {
		t.observeAssignment("no_match")
		return nil, &NoMatchError{Description: description, TasksSearched: len(tasks)}
	}

	member := t.matchMember(memberQuery, members, runCtx)
	if member == nil {
		t.observeAssignment("no_member")
		return nil, fmt.Errorf("%w: %s", ErrNoMemberMatch, memberQuery)
	}

	task, err := t.store.AssignTask(ctx, match.ID, member.ID)
	if err != nil {
		t.observeAssignment("error")
		return nil, err
	}

	t.observeAssignment("assigned")
	if task.Name == "" {
		task.Name = match.Name
	}
	if task.URL == "" {
		task.URL = match.URL
	}

	return &AssignResult{
		Task:   task,
		Member: member,
	}, nil
}

func (t *Triager) observeStatusUpdate(outcome string) {
	if t.metrics != nil {
		t.metrics.ObserveStatusUpdate(outcome)
	}
}

func (t *Triager) observeAssignment(outcome string) {
	if t.metrics != nil {
		t.metrics.ObserveAssignment(outcome)
	}
}
