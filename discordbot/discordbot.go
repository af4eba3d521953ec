// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package discordbot connects the task pipeline to Discord: it listens for
// mentions and prefix commands, answers slash commands, and supplies recent
// channel history to the pipeline's context stages.
package discordbot

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/zentask/taskbridge/bots"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/i18n"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/triage"
)

const listeningStatus = "for mentions to create ClickUp tasks"

// TaskPipeline is the part of the triage service the gateway drives.
type TaskPipeline interface {
	CreateFromMessage(ctx context.Context, msg triage.IncomingMessage) (*triage.CreationResult, error)
	UpdateByDescription(ctx context.Context, description, status string) (*triage.UpdateResult, error)
	AssignByDescription(ctx context.Context, description, memberQuery string, members []triage.RemoteMember) (*triage.AssignResult, error)
}

// SprintSource is the read-only slice of the task store the slash commands
// use directly.
type SprintSource interface {
	GetFolderLists(ctx context.Context) ([]clickup.List, error)
	GetNewestList(ctx context.Context) (*clickup.List, error)
	GetNewestSprintTasks(ctx context.Context) ([]clickup.Task, error)
}

type Config struct {
	Token string
	// GuildID scopes slash command registration to one guild. Empty
	// registers them globally, which Discord propagates slowly.
	GuildID string
}

type Gateway struct {
	session  *discordgo.Session
	cfg      Config
	bot      *bots.Bot
	pipeline TaskPipeline
	store    SprintSource
	log      logger.Logger

	// T translates user-facing strings into the bot's configured locale.
	T func(id, defaultMessage string, args ...any) string

	connected atomic.Bool
}

func New(cfg Config, bot *bots.Bot, pipeline TaskPipeline, store SprintSource, bundle *i18n.Bundle, log logger.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	g := &Gateway{
		session:  session,
		cfg:      cfg,
		bot:      bot,
		pipeline: pipeline,
		store:    store,
		log:      log,
		T:        i18n.LocalizerFunc(bundle, bot.Locale()),
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onDisconnect)
	session.AddHandler(g.onMessageCreate)
	session.AddHandler(g.onInteractionCreate)

	return g, nil
}

// Start opens the gateway connection. It returns once the websocket is up;
// events arrive on the session's goroutines.
func (g *Gateway) Start() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to connect to discord: %w", err)
	}
	return nil
}

func (g *Gateway) Stop() error {
	g.connected.Store(false)
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.connected.Store(true)
	g.log.Info("Connected to Discord", "user", r.User.Username, "guilds", len(r.Guilds))

	g.registerCommands(s)

	if err := s.UpdateListeningStatus(listeningStatus); err != nil {
		g.log.Warn("Failed to set presence", "error", err.Error())
	}

	// Probe the sprint folder once so a misconfigured token or folder shows
	// up in the logs at startup rather than on the first mention.
	lists, err := g.store.GetFolderLists(context.Background())
	if err != nil {
		g.log.Warn("Sprint folder probe failed", "error", err.Error())
		return
	}
	g.log.Info("Sprint folder reachable", "lists", len(lists))
}

func (g *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	g.connected.Store(false)
	g.log.Warn("Disconnected from Discord")
}

// Connected reports whether the gateway websocket is up.
func (g *Gateway) Connected() bool {
	return g.connected.Load()
}

func (g *Gateway) GuildCount() int {
	if g.session.State == nil {
		return 0
	}
	return len(g.session.State.Guilds)
}

func (g *Gateway) LatencyMillis() int64 {
	return g.session.HeartbeatLatency().Milliseconds()
}

// RecentMessages fetches up to limit channel messages rendered for the
// pipeline's context stages: oldest first, bot posts removed.
func (g *Gateway) RecentMessages(_ context.Context, channelID string, limit int) ([]string, error) {
	messages, err := g.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel messages: %w", err)
	}

	botID := ""
	if g.session.State != nil && g.session.State.User != nil {
		botID = g.session.State.User.ID
	}

	return renderHistory(messages, botID), nil
}

// renderHistory converts messages from the API's newest-first order into
// "DisplayName: content" lines, oldest first, skipping the bot's own posts.
func renderHistory(messages []*discordgo.Message, botID string) []string {
	lines := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Author == nil || msg.Author.ID == botID {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		lines = append(lines, messageAuthorName(msg)+": "+msg.Content)
	}
	return lines
}

func messageAuthorName(msg *discordgo.Message) string {
	if msg.Member != nil && msg.Member.Nick != "" {
		return msg.Member.Nick
	}
	if msg.Author.GlobalName != "" {
		return msg.Author.GlobalName
	}
	return msg.Author.Username
}

func memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return ""
}

func (g *Gateway) channelName(channelID string) string {
	if g.session.State != nil {
		if channel, err := g.session.State.Channel(channelID); err == nil && channel.Name != "" {
			return channel.Name
		}
	}
	if channel, err := g.session.Channel(channelID); err == nil && channel.Name != "" {
		return channel.Name
	}
	return "dm"
}

func (g *Gateway) guildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	if g.session.State != nil {
		if guild, err := g.session.State.Guild(guildID); err == nil {
			return guild.Name
		}
	}
	if guild, err := g.session.Guild(guildID); err == nil {
		return guild.Name
	}
	return ""
}

func permalink(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
