// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Context represents the data available to prompt templates and providers
// for a single pipeline invocation. Consumers must not assume any field is
// present.
type Context struct {
	// Server
	Time string

	// Bot specific
	BotName   string
	BotUserID string

	// Invocation
	ChannelName string
	GuildName   string
	RunID       string

	// Parameters carries the per-stage template data, keyed by the names the
	// prompt templates reference.
	Parameters map[string]any
}

// ContextOption defines a function that configures a Context
type ContextOption func(*Context)

// NewContext creates a new Context with the given options
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		Time: time.Now().UTC().Format(time.RFC1123),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBotName sets the bot display name available to templates
func WithBotName(name string) ContextOption {
	return func(c *Context) {
		c.BotName = name
	}
}

// WithRunID tags the context with the pipeline run identifier
func WithRunID(runID string) ContextOption {
	return func(c *Context) {
		c.RunID = runID
	}
}

// WithParameters sets the template parameter map
func WithParameters(params map[string]any) ContextOption {
	return func(c *Context) {
		c.Parameters = params
	}
}

func (c Context) String() string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Time: %v\nBotName: %v", c.Time, c.BotName))
	if c.ChannelName != "" {
		result.WriteString(fmt.Sprintf("\nChannel: %v", c.ChannelName))
	}
	if c.RunID != "" {
		result.WriteString(fmt.Sprintf("\nRunID: %v", c.RunID))
	}

	if len(c.Parameters) > 0 {
		keys := make([]string, 0, len(c.Parameters))
		for key := range c.Parameters {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		result.WriteString("\n--- Parameters ---\n")
		result.WriteString(strings.Join(keys, " "))
	}

	return result.String()
}
