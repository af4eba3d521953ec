// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package discordbot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zentask/taskbridge/triage"
)

const (
	maxMessageLength    = 2000
	commandPrefix       = "!"
	updateCommandPrefix = "!update"
)

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State.User == nil || m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	// Prefix commands never double as mentions.
	if strings.HasPrefix(m.Content, commandPrefix) {
		if strings.HasPrefix(m.Content, updateCommandPrefix) {
			go g.handleUpdateMessage(m.Message)
		}
		return
	}

	if !mentionsUser(m.Message, s.State.User.ID) {
		return
	}

	content := stripMention(m.Content, s.State.User.ID)
	if content == "" {
		g.replyText(m.Message, g.T("taskbridge.mention_empty", "❌ Please provide a task description when mentioning me!"))
		return
	}

	g.log.Info("Mention received", "channel_id", m.ChannelID, "author", m.Author.Username)
	go g.handleTaskCreation(m.Message, content)
}

func (g *Gateway) handleTaskCreation(m *discordgo.Message, content string) {
	cancel := g.startTyping(m.ChannelID)
	defer cancel()

	msg := triage.IncomingMessage{
		ChannelID:         m.ChannelID,
		Content:           content,
		AuthorDisplayName: messageAuthorName(m),
		AuthorHandle:      m.Author.String(),
		ChannelName:       g.channelName(m.ChannelID),
		GuildName:         g.guildName(m.GuildID),
		Timestamp:         m.Timestamp,
		Permalink:         permalink(m.GuildID, m.ChannelID, m.ID),
	}

	result, err := g.pipeline.CreateFromMessage(context.Background(), msg)
	if err != nil {
		g.log.Error("Task creation failed", "channel_id", m.ChannelID, "error", err.Error())
		g.replyEmbed(m, g.creationErrorEmbed(err))
		return
	}

	g.replyEmbed(m, g.creationEmbed(content, result))
}

// handleUpdateMessage services "!update <description> <status>" messages,
// the prefix twin of the /update slash command.
func (g *Gateway) handleUpdateMessage(m *discordgo.Message) {
	description, status, ok := triage.ParseUpdateCommand(m.Content)
	if !ok {
		g.replyText(m, g.T("taskbridge.update_usage", "Usage: `!update <task description> <status>`"))
		return
	}

	cancel := g.startTyping(m.ChannelID)
	defer cancel()

	result, err := g.pipeline.UpdateByDescription(context.Background(), description, status)
	if err != nil {
		g.log.Error("Status update failed", "description", description, "error", err.Error())
		g.replyEmbed(m, g.updateErrorEmbed(description, err))
		return
	}

	g.replyEmbed(m, g.updateSuccessEmbed(description, result))
}

func (g *Gateway) replyText(m *discordgo.Message, content string) {
	for _, chunk := range splitMessage(content, maxMessageLength) {
		if _, err := g.session.ChannelMessageSendReply(m.ChannelID, chunk, m.Reference()); err != nil {
			g.log.Error("Failed to send reply", "channel_id", m.ChannelID, "error", err.Error())
			return
		}
	}
}

func (g *Gateway) replyEmbed(m *discordgo.Message, embed *discordgo.MessageEmbed) {
	_, err := g.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: m.Reference(),
	})
	if err != nil {
		g.log.Error("Failed to send embed reply", "channel_id", m.ChannelID, "error", err.Error())
	}
}

// startTyping keeps the typing indicator alive until the returned cancel
// runs. Discord expires the indicator after ten seconds, so it refreshes
// every eight.
func (g *Gateway) startTyping(channelID string) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := g.session.ChannelTyping(channelID); err != nil {
			g.log.Debug("Failed to send typing indicator", "channel_id", channelID, "error", err.Error())
			return
		}

		ticker := time.NewTicker(8 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := g.session.ChannelTyping(channelID); err != nil {
					return
				}
			}
		}
	}()
	return cancel
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	for _, mention := range m.Mentions {
		if mention.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes both mention forms Discord produces for a user.
func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	return strings.TrimSpace(content)
}

// splitMessage chunks content to fit the platform message limit, preferring
// newline boundaries in the back half of a chunk.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(content[:maxLen], "\n"); idx > maxLen/2 {
			cut = idx + 1
		}

		chunks = append(chunks, content[:cut])
		content = content[cut:]
	}
	return chunks
}
