// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package server assembles the bot from configuration and runs it: the
// Discord gateway, the task pipeline, the admin API, and the periodic sprint
// folder probe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zentask/taskbridge/api"
	"github.com/zentask/taskbridge/bots"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/config"
	"github.com/zentask/taskbridge/discordbot"
	"github.com/zentask/taskbridge/i18n"
	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/metrics"
	"github.com/zentask/taskbridge/prompts"
	"github.com/zentask/taskbridge/triage"
)

const shutdownTimeout = 10 * time.Second

// Service owns every long-running component and their shutdown order.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	version string

	bot     *bots.Bot
	store   *clickup.Client
	triager *triage.Triager
	gateway *discordbot.Gateway
	api     *api.API
	probe   *FolderProbe
}

// historySource defers channel history reads to the gateway. The triager
// needs history and the gateway needs the triager, so one side is wired up
// after construction.
type historySource struct {
	gateway *discordbot.Gateway
}

func (h *historySource) RecentMessages(ctx context.Context, channelID string, limit int) ([]string, error) {
	if h.gateway == nil {
		return nil, nil
	}
	return h.gateway.RecentMessages(ctx, channelID, limit)
}

func New(cfg *config.Config, log logger.Logger, version string) (*Service, error) {
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	metricsService := metrics.NewMetrics(metrics.InstanceInfo{Version: version})

	bot, err := bots.EnsureBot(log, &http.Client{}, cfg.Bot)
	if err != nil {
		return nil, fmt.Errorf("failed to set up bot: %w", err)
	}

	store := clickup.New(cfg.ClickUp, &http.Client{Timeout: 30 * time.Second})

	promptSet, err := llm.NewPrompts(prompts.PromptsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	bundle, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	history := &historySource{}
	triager := triage.New(bot, store, history, promptSet, log, metricsService)

	gateway, err := discordbot.New(discordbot.Config{
		Token:   cfg.Discord.Token,
		GuildID: cfg.Discord.GuildID,
	}, bot, triager, store, bundle, log)
	if err != nil {
		return nil, err
	}
	history.gateway = gateway

	s := &Service{
		cfg:     cfg,
		log:     log,
		version: version,
		bot:     bot,
		store:   store,
		triager: triager,
		gateway: gateway,
	}

	if cfg.Server.ProbeSchedule != "" {
		s.probe = NewFolderProbe(store, cfg.Server.ProbeSchedule, metricsService, log)
	}

	if cfg.Server.Listen != "" {
		apiMetrics := metricsService
		if !cfg.Server.EnableMetrics {
			apiMetrics = nil
		}
		var probeStatus api.ProbeStatus
		if s.probe != nil {
			probeStatus = s.probe
		}
		s.api = api.New(bot, store, gateway, probeStatus, apiMetrics, log, version)
	}

	return s, nil
}

// Run starts every component and blocks until ctx is canceled, then shuts
// them down in reverse order.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("Starting TaskBridge", "version", s.version, "bot", s.bot.Name())

	if err := s.gateway.Start(); err != nil {
		return err
	}

	if s.api != nil {
		go func() {
			if err := s.api.Start(s.cfg.Server.Listen); err != nil {
				s.log.Error("Admin API server failed", "error", err.Error())
			}
		}()
	}

	if s.probe != nil {
		if err := s.probe.Start(); err != nil {
			s.log.Warn("Folder probe not started", "error", err.Error())
		}
	}

	<-ctx.Done()
	return s.shutdown()
}

func (s *Service) shutdown() error {
	s.log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.probe != nil {
		s.probe.Stop()
	}
	if s.api != nil {
		if err := s.api.Shutdown(shutdownCtx); err != nil {
			s.log.Error("Failed to stop admin API", "error", err.Error())
		}
	}
	if err := s.gateway.Stop(); err != nil {
		s.log.Error("Failed to close gateway", "error", err.Error())
		return err
	}

	s.log.Info("Shutdown complete")
	return s.log.Flush()
}
