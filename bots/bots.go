// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package bots

import (
	"fmt"
	"net/http"

	"github.com/zentask/taskbridge/anthropic"
	"github.com/zentask/taskbridge/bedrock"
	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/openai"
)

// EnsureBot builds the bot from configuration. A bot whose service carries no
// credentials is still returned, just without a language model attached.
func EnsureBot(log logger.Logger, httpClient *http.Client, cfg llm.BotConfig) (*Bot, error) {
	if !cfg.IsValid() {
		return nil, fmt.Errorf("bot configuration is missing a name")
	}

	bot := NewBot(cfg)
	if !cfg.Service.IsConfigured() {
		log.Warn("No language model service configured, model stages will use fallbacks", "bot_name", bot.Name())
		return bot, nil
	}

	if !llm.IsValidService(cfg.Service) {
		return nil, fmt.Errorf("bot %s references an invalid %s service", bot.Name(), cfg.Service.Type)
	}

	model, err := NewLanguageModel(log, httpClient, cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language model for bot %s: %w", bot.Name(), err)
	}
	bot.llm = model

	return bot, nil
}

// NewLanguageModel creates the model client for the given service.
func NewLanguageModel(log logger.Logger, httpClient *http.Client, serviceConfig llm.ServiceConfig) (llm.LanguageModel, error) {
	var result llm.LanguageModel
	switch serviceConfig.Type {
	case llm.ServiceTypeOpenAI:
		result = openai.New(openai.ConfigFromServiceConfig(serviceConfig), httpClient)
	case llm.ServiceTypeOpenAICompatible:
		result = openai.NewCompatible(openai.ConfigFromServiceConfig(serviceConfig), httpClient)
	case llm.ServiceTypeAzure:
		result = openai.NewAzure(openai.ConfigFromServiceConfig(serviceConfig), httpClient)
	case llm.ServiceTypeAnthropic:
		result = anthropic.New(serviceConfig, httpClient)
	case llm.ServiceTypeBedrock:
		bedrockClient, err := bedrock.New(serviceConfig, httpClient)
		if err != nil {
			return nil, err
		}
		result = bedrockClient
	default:
		return nil, fmt.Errorf("unsupported service type: %s", serviceConfig.Type)
	}

	// Logging
	result = llm.NewLanguageModelLogWrapper(log, result)

	return result, nil
}
