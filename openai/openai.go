// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/zentask/taskbridge/llm"
)

type Config struct {
	APIKey           string `json:"apiKey"`
	APIURL           string `json:"apiURL"`
	OrgID            string `json:"orgID"`
	DefaultModel     string `json:"defaultModel"`
	InputTokenLimit  int    `json:"inputTokenLimit"`
	OutputTokenLimit int    `json:"outputTokenLimit"`
}

type OpenAI struct {
	client openai.Client
	config Config
}

// ConfigFromServiceConfig maps the generic service settings onto this
// provider's config.
func ConfigFromServiceConfig(service llm.ServiceConfig) Config {
	return Config{
		APIKey:           service.APIKey,
		APIURL:           service.APIURL,
		OrgID:            service.OrgID,
		DefaultModel:     service.DefaultModel,
		InputTokenLimit:  service.InputTokenLimit,
		OutputTokenLimit: service.OutputTokenLimit,
	}
}

func NewAzure(config Config, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{
		azure.WithEndpoint(strings.TrimSuffix(config.APIURL, "/"), "2025-04-01-preview"),
		azure.WithAPIKey(config.APIKey),
		option.WithHTTPClient(httpClient),
	}

	client := openai.NewClient(opts...)

	return &OpenAI{
		client: client,
		config: config,
	}
}

func NewCompatible(config Config, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithBaseURL(strings.TrimSuffix(config.APIURL, "/")),
	}

	client := openai.NewClient(opts...)

	return &OpenAI{
		client: client,
		config: config,
	}
}

func New(config Config, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(httpClient),
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)

	return &OpenAI{
		client: client,
		config: config,
	}
}

func postsToChatCompletionMessages(posts []llm.Post) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(posts))

	for _, post := range posts {
		switch post.Role {
		case llm.PostRoleSystem:
			result = append(result, openai.SystemMessage(post.Message))
		case llm.PostRoleBot:
			result = append(result, openai.AssistantMessage(post.Message))
		case llm.PostRoleUser:
			result = append(result, openai.UserMessage(post.Message))
		}
	}

	return result
}

func (s *OpenAI) GetDefaultConfig() llm.LanguageModelConfig {
	return llm.LanguageModelConfig{
		Model:              s.config.DefaultModel,
		MaxGeneratedTokens: s.config.OutputTokenLimit,
	}
}

func (s *OpenAI) createConfig(opts []llm.LanguageModelOption) llm.LanguageModelConfig {
	cfg := s.GetDefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func (s *OpenAI) completionRequestFromConfig(cfg llm.LanguageModelConfig) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: getModelConstant(cfg.Model),
	}

	if cfg.MaxGeneratedTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(cfg.MaxGeneratedTokens))
	}

	if cfg.Temperature > 0 {
		params.Temperature = openai.Float(float64(cfg.Temperature))
	}

	return params
}

// getModelConstant converts string model names to the SDK's model constants
func getModelConstant(model string) shared.ChatModel {
	switch model {
	case "gpt-4o":
		return shared.ChatModelGPT4o
	case "gpt-4o-mini":
		return shared.ChatModelGPT4oMini
	case "gpt-4-turbo":
		return shared.ChatModelGPT4Turbo
	case "gpt-4":
		return shared.ChatModelGPT4
	case "gpt-3.5-turbo":
		return shared.ChatModelGPT3_5Turbo
	case "o1-preview":
		return shared.ChatModelO1Preview
	case "o1-mini":
		return shared.ChatModelO1Mini
	default:
		// For custom models or newer versions, use the string as-is
		return model
	}
}

func (s *OpenAI) ChatCompletion(request llm.CompletionRequest, opts ...llm.LanguageModelOption) (string, error) {
	cfg := s.createConfig(opts)
	params := s.completionRequestFromConfig(cfg)
	params.Messages = postsToChatCompletionMessages(request.Posts)

	resp, err := s.client.Chat.Completions.New(context.Background(), params)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAI) CountTokens(text string) int {
	// Counting tokens is really annoying, so we approximate for now.
	charCount := float64(len(text)) / 4.0
	wordCount := float64(len(strings.Fields(text))) / 0.75

	// Average the two
	return int((charCount + wordCount) / 2.0)
}

func (s *OpenAI) InputTokenLimit() int {
	if s.config.InputTokenLimit > 0 {
		return s.config.InputTokenLimit
	}

	switch {
	case strings.HasPrefix(s.config.DefaultModel, "gpt-4o"),
		strings.HasPrefix(s.config.DefaultModel, "o1-preview"),
		strings.HasPrefix(s.config.DefaultModel, "o1-mini"),
		strings.HasPrefix(s.config.DefaultModel, "gpt-4-turbo"):
		return 128000
	case strings.HasPrefix(s.config.DefaultModel, "gpt-4"):
		return 8192
	case strings.HasPrefix(s.config.DefaultModel, "gpt-3.5-turbo"):
		return 16385
	}

	return 128000 // Default fallback
}
