// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package anthropic

import (
	"context"
	"net/http"
	"strings"

	anthropicSDK "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zentask/taskbridge/llm"
)

const DefaultMaxTokens = 8192

type Anthropic struct {
	client           anthropicSDK.Client
	defaultModel     string
	inputTokenLimit  int
	outputTokenLimit int
}

func New(llmService llm.ServiceConfig, httpClient *http.Client) *Anthropic {
	client := anthropicSDK.NewClient(
		option.WithAPIKey(llmService.APIKey),
		option.WithHTTPClient(httpClient),
	)

	return &Anthropic{
		client:           client,
		defaultModel:     llmService.DefaultModel,
		inputTokenLimit:  llmService.InputTokenLimit,
		outputTokenLimit: llmService.OutputTokenLimit,
	}
}

// conversationToMessages creates a system prompt and a slice of input
// messages from conversation posts. Consecutive posts with the same role are
// merged into one message, which the API requires.
func conversationToMessages(posts []llm.Post) (string, []anthropicSDK.MessageParam) {
	systemMessage := ""
	messages := make([]anthropicSDK.MessageParam, 0, len(posts))

	var currentBlocks []anthropicSDK.ContentBlockParamUnion
	var currentRole anthropicSDK.MessageParamRole

	flushCurrentMessage := func() {
		if len(currentBlocks) > 0 {
			messages = append(messages, anthropicSDK.MessageParam{
				Role:    currentRole,
				Content: currentBlocks,
			})
			currentBlocks = nil
		}
	}

	for _, post := range posts {
		switch post.Role {
		case llm.PostRoleSystem:
			systemMessage += post.Message
			continue
		case llm.PostRoleBot:
			if currentRole != anthropicSDK.MessageParamRoleAssistant {
				flushCurrentMessage()
				currentRole = anthropicSDK.MessageParamRoleAssistant
			}
		case llm.PostRoleUser:
			if currentRole != anthropicSDK.MessageParamRoleUser {
				flushCurrentMessage()
				currentRole = anthropicSDK.MessageParamRoleUser
			}
		default:
			continue
		}

		if post.Message != "" {
			currentBlocks = append(currentBlocks, anthropicSDK.NewTextBlock(post.Message))
		}
	}

	flushCurrentMessage()
	return systemMessage, messages
}

func (a *Anthropic) GetDefaultConfig() llm.LanguageModelConfig {
	config := llm.LanguageModelConfig{
		Model: a.defaultModel,
	}
	if a.outputTokenLimit == 0 {
		config.MaxGeneratedTokens = DefaultMaxTokens
	} else {
		config.MaxGeneratedTokens = a.outputTokenLimit
	}
	return config
}

func (a *Anthropic) createConfig(opts []llm.LanguageModelOption) llm.LanguageModelConfig {
	cfg := a.GetDefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (a *Anthropic) ChatCompletion(request llm.CompletionRequest, opts ...llm.LanguageModelOption) (string, error) {
	cfg := a.createConfig(opts)

	system, messages := conversationToMessages(request.Posts)

	params := anthropicSDK.MessageNewParams{
		Model:     anthropicSDK.Model(cfg.Model),
		MaxTokens: int64(cfg.MaxGeneratedTokens),
		Messages:  messages,
		System: []anthropicSDK.TextBlockParam{{
			Text: system,
		}},
	}

	if cfg.Temperature > 0 {
		params.Temperature = anthropicSDK.Float(float64(cfg.Temperature))
	}

	message, err := a.client.Messages.New(context.Background(), params)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}

	return result.String(), nil
}

func (a *Anthropic) CountTokens(text string) int {
	// Anthropic does not expose a local tokenizer, approximate the way the
	// other providers do.
	charCount := float64(len(text)) / 4.0
	wordCount := float64(len(strings.Fields(text))) / 0.75

	return int((charCount + wordCount) / 2.0)
}

func (a *Anthropic) InputTokenLimit() int {
	if a.inputTokenLimit > 0 {
		return a.inputTokenLimit
	}
	return 100000
}
