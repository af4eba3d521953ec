// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package triage turns channel messages into project tasks. It runs the
// staged pipeline: collect channel context, classify the author's intent,
// extract or title the task, route it to a sprint or backlog list, assemble
// the task body, and write it to the task store. Every model-backed stage
// carries a deterministic fallback so the pipeline keeps producing tasks
// when no model is configured or a query fails.
package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zentask/taskbridge/bots"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/metrics"
)

const (
	// contextWindowLimit is how many recent messages feed title generation.
	contextWindowLimit = 20
	// extractWindowLimit is how many recent messages feed task extraction.
	extractWindowLimit = 15
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrNoTasks       = errors.New("no tasks in the newest sprint list")
	ErrNoSimilarTask = errors.New("no similar task found")
	ErrNoMemberMatch = errors.New("no member matched")
)

// NoMatchError reports a failed similarity search together with how many
// tasks were considered. It matches ErrNoSimilarTask under errors.Is.
type NoMatchError struct {
	Description   string
	TasksSearched int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no similar task found: %s (searched %d tasks)", e.Description, e.TasksSearched)
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoSimilarTask
}

// TaskStore is the slice of the task backend the pipeline needs.
type TaskStore interface {
	CreateTask(ctx context.Context, name, description, listID string, assignees []string) (*clickup.Task, error)
	GetFolderLists(ctx context.Context) ([]clickup.List, error)
	GetNewestList(ctx context.Context) (*clickup.List, error)
	GetNewestSprintTasks(ctx context.Context) ([]clickup.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string) (*clickup.Task, error)
	AssignTask(ctx context.Context, taskID, assigneeID string) (*clickup.Task, error)
	BacklogListID() string
}

// ChatContextProvider supplies recent channel messages rendered as
// "DisplayName: content", oldest first, with the bot's own messages removed.
type ChatContextProvider interface {
	RecentMessages(ctx context.Context, channelID string, limit int) ([]string, error)
}

// RemoteMember is a chat platform member eligible for task assignment.
type RemoteMember struct {
	ID          string
	DisplayName string
	Username    string
}

// Intent is what the author wanted from a mention.
type Intent string

const (
	// IntentCommand means the author asked for a task without describing it.
	IntentCommand Intent = "COMMAND"
	// IntentTaskDescription means the message itself is the task content.
	IntentTaskDescription Intent = "TASK_DESCRIPTION"
)

// IncomingMessage is the platform-independent view of a message that
// mentions the bot. Content arrives already stripped of mention tokens.
type IncomingMessage struct {
	ChannelID         string
	Content           string
	AuthorDisplayName string
	AuthorHandle      string
	ChannelName       string
	GuildName         string
	Timestamp         time.Time
	Permalink         string
}

// CreationResult carries everything the caller needs to report a created
// task back to the channel.
type CreationResult struct {
	Task                 *clickup.Task
	Title                string
	Intent               Intent
	ExtractedDescription string
	RelevantContext      []string
	ContextAnalyzed      int
	ListLabel            string
	RoutedToBacklog      bool
}

// UpdateResult reports a status change applied to a matched task.
type UpdateResult struct {
	Task           *clickup.Task
	MatchedName    string
	PreviousStatus string
	NewStatus      string
	TasksSearched  int
}

// AssignResult reports a member assigned to a matched task.
type AssignResult struct {
	Task   *clickup.Task
	Member *RemoteMember
}

// Triager runs the pipeline against one bot, one task store, and one chat
// context source. Safe for concurrent use; every mention is handled in its
// own goroutine.
type Triager struct {
	bot     *bots.Bot
	store   TaskStore
	chats   ChatContextProvider
	prompts *llm.Prompts
	log     logger.Logger
	metrics metrics.Metrics
}

func New(bot *bots.Bot, store TaskStore, chats ChatContextProvider, prompts *llm.Prompts, log logger.Logger, m metrics.Metrics) *Triager {
	return &Triager{
		bot:     bot,
		store:   store,
		chats:   chats,
		prompts: prompts,
		log:     log,
		metrics: m,
	}
}

// newRunContext builds the per-run prompt context shared by all stages.
func (t *Triager) newRunContext(opts ...llm.ContextOption) *llm.Context {
	opts = append([]llm.ContextOption{
		llm.WithBotName(t.bot.DisplayName()),
		llm.WithRunID(uuid.NewString()),
	}, opts...)
	return llm.NewContext(opts...)
}

// stageContext derives a stage-specific prompt context from the run context.
func stageContext(base *llm.Context, params map[string]any) *llm.Context {
	derived := *base
	derived.Parameters = params
	return &derived
}

// stagePosts renders the system and user prompts of one stage.
func (t *Triager) stagePosts(systemTemplate, userTemplate string, llmContext *llm.Context) ([]llm.Post, error) {
	systemMessage, err := t.prompts.Format(systemTemplate, llmContext)
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt %s: %w", systemTemplate, err)
	}
	userMessage, err := t.prompts.Format(userTemplate, llmContext)
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt %s: %w", userTemplate, err)
	}

	return []llm.Post{
		{Role: llm.PostRoleSystem, Message: systemMessage},
		{Role: llm.PostRoleUser, Message: userMessage},
	}, nil
}

// modelQuery is one guarded language model call. Every model-backed stage
// goes through ask: a missing model short-circuits to noModel, a transport
// error or unparseable response degrades to onFailure, and a parsed value
// returns as is. One attempt per query, no retries.
type modelQuery[T any] struct {
	stage     string
	posts     []llm.Post
	context   *llm.Context
	options   []llm.LanguageModelOption
	parse     func(response string) (T, bool)
	noModel   func() T
	onFailure func() T
}

func ask[T any](t *Triager, q modelQuery[T]) T {
	model := t.bot.LLM()
	if model == nil {
		t.observeModelQuery(q.stage, "no_model")
		return q.noModel()
	}

	response, err := model.ChatCompletion(llm.CompletionRequest{
		Posts:   q.posts,
		Context: q.context,
	}, q.options...)
	if err != nil {
		t.log.Error("Language model query failed", "stage", q.stage, "error", err.Error())
		t.observeModelQuery(q.stage, "error")
		return q.onFailure()
	}

	value, ok := q.parse(strings.TrimSpace(response))
	if !ok {
		t.log.Warn("Could not parse language model response", "stage", q.stage, "response", response)
		t.observeModelQuery(q.stage, "unparseable")
		return q.onFailure()
	}

	t.observeModelQuery(q.stage, "ok")
	return value
}

func (t *Triager) observeModelQuery(stage, outcome string) {
	if t.metrics != nil {
		t.metrics.ObserveModelQuery(stage, outcome)
	}
}
