// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentask/taskbridge/llm"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearBotEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_BOT_TOKEN", "DISCORD_GUILD_ID",
		"CLICKUP_API_TOKEN", "CLICKUP_LIST_ID", "CLICKUP_TEAM_ID", "CLICKUP_FOLDER_ID",
		"OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearBotEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "taskbridge", cfg.Bot.Name)
	assert.Equal(t, "TaskBridge", cfg.Bot.DisplayName)
	assert.Equal(t, "en", cfg.Bot.Locale)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.True(t, cfg.Server.EnableMetrics)
	assert.Equal(t, "@every 5m", cfg.Server.ProbeSchedule)
}

func TestLoadFile(t *testing.T) {
	clearBotEnv(t)

	path := writeConfigFile(t, `
bot:
  display_name: Sprinty
  locale: pl
  service:
    type: openai
    api_key: sk-from-file
discord:
  token: file-token
  guild_id: g1
clickup:
  api_token: pk_file
  list_id: backlog1
  folder_id: folder1
server:
  listen: ":9999"
  enable_metrics: false
logging:
  debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Sprinty", cfg.Bot.DisplayName)
	assert.Equal(t, "pl", cfg.Bot.Locale)
	assert.Equal(t, llm.ServiceTypeOpenAI, cfg.Bot.Service.Type)
	assert.Equal(t, "sk-from-file", cfg.Bot.Service.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Bot.Service.DefaultModel)
	assert.Equal(t, "file-token", cfg.Discord.Token)
	assert.Equal(t, "g1", cfg.Discord.GuildID)
	assert.Equal(t, "pk_file", cfg.ClickUp.APIToken)
	assert.Equal(t, ":9999", cfg.Server.Listen)
	assert.False(t, cfg.Server.EnableMetrics)
	assert.True(t, cfg.Logging.Debug)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearBotEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "env-token")
	t.Setenv("CLICKUP_API_TOKEN", "pk_env")
	t.Setenv("CLICKUP_LIST_ID", "env-list")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := writeConfigFile(t, `
discord:
  token: file-token
clickup:
  api_token: pk_file
  list_id: file-list
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, "pk_env", cfg.ClickUp.APIToken)
	assert.Equal(t, "env-list", cfg.ClickUp.ListID)
	assert.Equal(t, llm.ServiceTypeOpenAI, cfg.Bot.Service.Type)
	assert.Equal(t, "sk-env", cfg.Bot.Service.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Bot.Service.DefaultModel)
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	clearBotEnv(t)
	t.Setenv("MY_SECRET", "pk_expanded")

	path := writeConfigFile(t, `
clickup:
  api_token: ${MY_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pk_expanded", cfg.ClickUp.APIToken)
}

func TestValidate(t *testing.T) {
	clearBotEnv(t)

	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
	assert.Contains(t, err.Error(), "CLICKUP_API_TOKEN")
	assert.Contains(t, err.Error(), "CLICKUP_LIST_ID")

	cfg.Discord.Token = "t"
	cfg.ClickUp.APIToken = "pk"
	cfg.ClickUp.ListID = "l1"
	require.NoError(t, cfg.Validate())

	cfg.Bot.Service = llm.ServiceConfig{Type: llm.ServiceTypeOpenAI}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid openai service")

	cfg.Bot.Service.APIKey = "sk"
	require.NoError(t, cfg.Validate())
}

func TestWarnings(t *testing.T) {
	clearBotEnv(t)

	cfg := Default()
	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "OPENAI_API_KEY")
	assert.Contains(t, warnings[1], "CLICKUP_FOLDER_ID")

	cfg.Bot.Service = llm.ServiceConfig{Type: llm.ServiceTypeOpenAI, APIKey: "sk"}
	cfg.ClickUp.FolderID = "f1"
	assert.Empty(t, cfg.Warnings())
}
