// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package config loads the service configuration from an optional YAML file
// and the environment. Environment variables win over file values so the bot
// can run from a plain .env setup without any file at all.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
)

// DiscordConfig holds the gateway credentials.
type DiscordConfig struct {
	Token string `yaml:"token"`
	// GuildID scopes slash command registration to one guild for instant
	// availability. Empty registers globally.
	GuildID string `yaml:"guild_id"`
}

// ServerConfig holds the admin HTTP server settings.
type ServerConfig struct {
	// Listen is the admin API address. Empty disables the server.
	Listen        string `yaml:"listen"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	// ProbeSchedule is the cron spec for the periodic sprint folder probe.
	// Empty disables the probe.
	ProbeSchedule string `yaml:"probe_schedule"`
}

// LoggingConfig holds the console and file logging settings.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

type Config struct {
	Bot     llm.BotConfig  `yaml:"bot"`
	Discord DiscordConfig  `yaml:"discord"`
	ClickUp clickup.Config `yaml:"clickup"`
	Server  ServerConfig   `yaml:"server"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration the service starts from before the file
// and environment are applied.
func Default() *Config {
	return &Config{
		Bot: llm.BotConfig{
			Name:        "taskbridge",
			DisplayName: "TaskBridge",
			Locale:      "en",
		},
		Server: ServerConfig{
			Listen:        ":8080",
			EnableMetrics: true,
			ProbeSchedule: "@every 5m",
		},
	}
}

// Load reads the YAML file at path, expands ${VAR} references in it, and
// applies environment overrides. A missing file is not an error; the
// environment alone can configure the bot.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv copies the well-known environment variables over the file values.
func (c *Config) applyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.Discord.Token, "DISCORD_BOT_TOKEN")
	setIfPresent(&c.Discord.GuildID, "DISCORD_GUILD_ID")
	setIfPresent(&c.ClickUp.APIToken, "CLICKUP_API_TOKEN")
	setIfPresent(&c.ClickUp.ListID, "CLICKUP_LIST_ID")
	setIfPresent(&c.ClickUp.TeamID, "CLICKUP_TEAM_ID")
	setIfPresent(&c.ClickUp.FolderID, "CLICKUP_FOLDER_ID")

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.Bot.Service.Type == "" {
			c.Bot.Service.Type = llm.ServiceTypeOpenAI
		}
		if c.Bot.Service.APIKey == "" {
			c.Bot.Service.APIKey = key
		}
	}
	if c.Bot.Service.Type == llm.ServiceTypeOpenAI && c.Bot.Service.DefaultModel == "" {
		c.Bot.Service.DefaultModel = "gpt-4o"
	}
}

// Validate reports the settings the bot cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Discord.Token == "" {
		missing = append(missing, "DISCORD_BOT_TOKEN")
	}
	if c.ClickUp.APIToken == "" {
		missing = append(missing, "CLICKUP_API_TOKEN")
	}
	if c.ClickUp.ListID == "" {
		missing = append(missing, "CLICKUP_LIST_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if !c.Bot.IsValid() {
		return fmt.Errorf("bot configuration is missing a name")
	}
	if c.Bot.Service.IsConfigured() && !llm.IsValidService(c.Bot.Service) {
		return fmt.Errorf("invalid %s service configuration", c.Bot.Service.Type)
	}
	return nil
}

// Warnings lists the recommended settings that are absent. The bot still runs
// without them, with model stages falling back and sprint routing disabled.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.Bot.Service.IsConfigured() {
		warnings = append(warnings, "no language model service configured (set OPENAI_API_KEY); AI features will use fallbacks")
	}
	if c.ClickUp.FolderID == "" {
		warnings = append(warnings, "CLICKUP_FOLDER_ID is not set; all tasks will go to the backlog list")
	}
	return warnings
}
