// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package bots

import (
	"github.com/zentask/taskbridge/llm"
)

// Bot holds the assistant identity and its language model.
//
// The llm field stays nil when no service credentials are configured. Callers
// treat a nil model as the signal to run their deterministic fallback, so the
// bot keeps working in degraded mode rather than failing outright.
type Bot struct {
	cfg llm.BotConfig
	llm llm.LanguageModel
}

// NewBot creates a Bot without a language model attached.
func NewBot(cfg llm.BotConfig) *Bot {
	return &Bot{
		cfg: cfg,
	}
}

func (b *Bot) GetConfig() llm.BotConfig {
	return b.cfg
}

func (b *Bot) GetService() llm.ServiceConfig {
	return b.cfg.Service
}

// LLM returns the attached language model, or nil when the bot runs without
// credentials.
func (b *Bot) LLM() llm.LanguageModel {
	return b.llm
}

func (b *Bot) Name() string {
	return b.cfg.Name
}

// DisplayName returns the configured display name, falling back to Name.
func (b *Bot) DisplayName() string {
	if b.cfg.DisplayName != "" {
		return b.cfg.DisplayName
	}
	return b.cfg.Name
}

// Locale returns the configured response language, defaulting to English.
func (b *Bot) Locale() string {
	if b.cfg.Locale == "" {
		return "en"
	}
	return b.cfg.Locale
}

func (b *Bot) SetLLMForTest(llm llm.LanguageModel) {
	b.llm = llm
}
