// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package discordbot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/zentask/taskbridge/triage"
)

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "update",
			Description: "Update task status using AI semantic matching",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "task_description",
					Description: "Task description to match",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "status",
					Description: "New task status",
					Required:    true,
				},
			},
		},
		{
			Name:        "assign",
			Description: "Assign a user to a task using AI name matching",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "task_description",
					Description: "Description of the task to match",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "member_name",
					Description: "Approximate member name",
					Required:    true,
				},
			},
		},
		{Name: "tasks", Description: "Show all tasks from newest sprint list"},
		{Name: "lists", Description: "Show available lists in sprint folder"},
		{Name: "status", Description: "Check bot status"},
		{Name: "help", Description: "Show help information"},
		{Name: "health", Description: "Simple health check"},
	}
}

func (g *Gateway) registerCommands(s *discordgo.Session) {
	commands := slashCommands()
	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, g.cfg.GuildID, cmd); err != nil {
			g.log.Warn("Failed to register slash command", "command", cmd.Name, "error", err.Error())
		}
	}
	g.log.Info("Slash commands registered", "count", len(commands))
}

func (g *Gateway) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "update":
		g.handleUpdateCommand(s, i)
	case "assign":
		g.handleAssignCommand(s, i)
	case "tasks":
		g.handleTasksCommand(s, i)
	case "lists":
		g.handleListsCommand(s, i)
	case "status":
		g.handleStatusCommand(s, i)
	case "help":
		g.handleHelpCommand(s, i)
	case "health":
		g.handleHealthCommand(s, i)
	}
}

func commandOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// deferResponse acknowledges the interaction so slower handlers get the
// fifteen minute followup window instead of the three second response one.
func (g *Gateway) deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		g.log.Error("Failed to defer interaction", "command", i.ApplicationCommandData().Name, "error", err.Error())
		return false
	}
	return true
}

func (g *Gateway) followupText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content}); err != nil {
		g.log.Error("Failed to send followup", "error", err.Error())
	}
}

func (g *Gateway) followupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		g.log.Error("Failed to send followup embed", "error", err.Error())
	}
}

func (g *Gateway) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		g.log.Error("Failed to respond to interaction", "error", err.Error())
	}
}

func (g *Gateway) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		g.log.Error("Failed to respond to interaction", "error", err.Error())
	}
}

func (g *Gateway) handleUpdateCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.deferResponse(s, i) {
		return
	}

	data := i.ApplicationCommandData()
	description := commandOption(data, "task_description")
	status := commandOption(data, "status")

	if _, ok := triage.NormalizeStatus(status); !ok {
		g.followupEmbed(s, i, g.invalidStatusEmbed())
		return
	}
	if description == "" {
		g.followupText(s, i, g.T("taskbridge.update_missing_description", "❌ Please provide a task description"))
		return
	}

	result, err := g.pipeline.UpdateByDescription(context.Background(), description, status)
	if err != nil {
		g.log.Error("Status update failed", "description", description, "error", err.Error())
		g.followupEmbed(s, i, g.updateErrorEmbed(description, err))
		return
	}

	g.followupEmbed(s, i, g.updateSuccessEmbed(description, result))
}

func (g *Gateway) handleAssignCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.deferResponse(s, i) {
		return
	}

	data := i.ApplicationCommandData()
	description := commandOption(data, "task_description")
	memberQuery := commandOption(data, "member_name")

	result, err := g.pipeline.AssignByDescription(context.Background(), description, memberQuery, g.guildMembers(i.GuildID))
	if err != nil {
		switch {
		case errors.Is(err, triage.ErrNoTasks):
			g.followupText(s, i, g.T("taskbridge.assign_no_tasks", "❌ No tasks found in the newest sprint list"))
		case errors.Is(err, triage.ErrNoSimilarTask):
			g.followupText(s, i, g.T("taskbridge.assign_no_task_match", "❌ Could not find a task similar to: '%s'", description))
		case errors.Is(err, triage.ErrNoMemberMatch):
			g.followupText(s, i, g.T("taskbridge.assign_no_member", "❌ Could not find a member matching '%s'", memberQuery))
		default:
			g.log.Error("Assignment failed", "description", description, "error", err.Error())
			g.followupText(s, i, g.T("taskbridge.assign_error", "❌ Error assigning task: %s", err.Error()))
		}
		return
	}

	g.followupEmbed(s, i, g.assignSuccessEmbed(result))
}

func (g *Gateway) guildMembers(guildID string) []triage.RemoteMember {
	if guildID == "" {
		return nil
	}
	members, err := g.session.GuildMembers(guildID, "", 1000)
	if err != nil {
		g.log.Error("Failed to fetch guild members", "guild_id", guildID, "error", err.Error())
		return nil
	}

	remote := make([]triage.RemoteMember, 0, len(members))
	for _, member := range members {
		if member.User == nil {
			continue
		}
		remote = append(remote, triage.RemoteMember{
			ID:          member.User.ID,
			DisplayName: memberDisplayName(member),
			Username:    member.User.Username,
		})
	}
	return remote
}

func (g *Gateway) handleTasksCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.deferResponse(s, i) {
		return
	}

	ctx := context.Background()
	tasks, err := g.store.GetNewestSprintTasks(ctx)
	if err != nil {
		g.log.Error("Failed to fetch sprint tasks", "error", err.Error())
		g.followupText(s, i, g.T("taskbridge.tasks_error", "❌ Error getting tasks: %s", err.Error()))
		return
	}
	if len(tasks) == 0 {
		g.followupText(s, i, g.T("taskbridge.tasks_empty", "❌ No tasks found in newest sprint list"))
		return
	}

	listName := "Unknown"
	if newest, err := g.store.GetNewestList(ctx); err == nil && newest != nil && newest.Name != "" {
		listName = newest.Name
	}

	g.followupEmbed(s, i, g.tasksEmbed(listName, tasks))
}

func (g *Gateway) handleListsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.deferResponse(s, i) {
		return
	}

	lists, err := g.store.GetFolderLists(context.Background())
	if err != nil {
		g.log.Error("Failed to fetch folder lists", "error", err.Error())
		g.followupText(s, i, g.T("taskbridge.lists_error", "❌ Error getting lists: %s", err.Error()))
		return
	}
	if len(lists) == 0 {
		g.followupText(s, i, g.T("taskbridge.lists_empty", "❌ No lists found in sprint folder"))
		return
	}

	g.followupEmbed(s, i, g.listsEmbed(lists))
}

func (g *Gateway) handleStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.deferResponse(s, i) {
		return
	}

	snapshot := statusSnapshot{
		guilds:     g.GuildCount(),
		pingMillis: g.LatencyMillis(),
		modelReady: g.bot.LLM() != nil,
	}
	if lists, err := g.store.GetFolderLists(context.Background()); err == nil {
		snapshot.clickupOK = true
		snapshot.folderLists = len(lists)
	}

	g.followupEmbed(s, i, g.statusEmbed(snapshot))
}

func (g *Gateway) handleHelpCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	botName := g.bot.DisplayName()
	if s.State != nil && s.State.User != nil && s.State.User.Username != "" {
		botName = s.State.User.Username
	}
	g.respondEmbed(s, i, g.helpEmbed(botName))
}

func (g *Gateway) handleHealthCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	g.respondText(s, i, g.T("taskbridge.health_pong", "🏓 ping"))
}
