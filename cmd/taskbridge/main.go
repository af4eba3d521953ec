// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zentask/taskbridge/config"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/server"
)

const version = "0.1.0"

var (
	configPath string
	debug      bool
	logFile    string
	listenAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskbridge",
		Short: "Discord bot that turns mentions into ClickUp tasks",
		Long: `TaskBridge is a Discord bot that creates and manages ClickUp tasks from
channel mentions. Each mention is classified with a language model, given a
concise AI-generated title from channel context, and routed to the newest
sprint list or the backlog.

Configuration comes from an optional YAML file and environment variables.
DISCORD_BOT_TOKEN, CLICKUP_API_TOKEN, and CLICKUP_LIST_ID are required;
OPENAI_API_KEY and CLICKUP_FOLDER_ID unlock model-backed triage and sprint
routing.`,
		Version: version,
		RunE:    runBot,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config file (optional)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&logFile, "logfile", "l", "", "Path to log file (logs to file in addition to stderr)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "Admin API address (overrides the config file)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if debug {
		cfg.Logging.Debug = true
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	log, err := logger.CreateLoggerWithOptions(cfg.Logging.Debug, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err.Error())
		log.Error("Set the required variables in the environment or the config file")
		_ = log.Flush()
		return err
	}

	svc, err := server.New(cfg, log, version)
	if err != nil {
		log.Error("Failed to assemble the service", "error", err.Error())
		_ = log.Flush()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return svc.Run(ctx)
}
