// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package discordbot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/triage"
)

const (
	colorGreen = 0x2ECC71
	colorRed   = 0xE74C3C
	colorBlue  = 0x3498DB

	embedListCap = 10
	previewLimit = 100
)

func embedTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// previewRunes shortens s to at most limit characters, appending an ellipsis
// when something was cut. Counts runes so multibyte text survives.
func previewRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (g *Gateway) creationEmbed(content string, result *triage.CreationResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.create_embed_title", "✅ Task Created Successfully!"),
		Description: g.T("taskbridge.create_embed_description", "I've created a new task in ClickUp with AI-generated title and smart context analysis."),
		Color:       colorGreen,
		Timestamp:   embedTimestamp(),
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  g.T("taskbridge.create_field_title", "🤖 AI-Generated Title"),
		Value: result.Title,
	})

	if result.Intent == triage.IntentCommand {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.create_field_command", "📝 Command Detected"),
			Value: g.T("taskbridge.create_field_command_value", "Command: `%s`\nExtracted from context: %s", content, previewRunes(result.ExtractedDescription, previewLimit)),
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.create_field_original", "📝 Original Message"),
			Value: previewRunes(content, previewLimit),
		})
	}

	contextInfo := g.T("taskbridge.context_none", "No relevant context found in %d recent messages", result.ContextAnalyzed)
	if len(result.RelevantContext) > 0 {
		contextInfo = g.T("taskbridge.context_found", "Found %d relevant messages from %d analyzed", len(result.RelevantContext), result.ContextAnalyzed)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  g.T("taskbridge.create_field_context", "🧠 Context Analysis"),
		Value: contextInfo,
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   g.T("taskbridge.create_field_added_to", "📍 Added to"),
		Value:  result.ListLabel,
		Inline: true,
	})

	taskID := "Unknown"
	taskURL := ""
	if result.Task != nil {
		if result.Task.ID != "" {
			taskID = result.Task.ID
		}
		taskURL = result.Task.URL
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   g.T("taskbridge.field_task_id", "🆔 Task ID"),
		Value:  taskID,
		Inline: true,
	})
	if taskURL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   g.T("taskbridge.field_task_url", "🔗 Task URL"),
			Value:  g.T("taskbridge.view_in_clickup", "[View in ClickUp](%s)", taskURL),
			Inline: true,
		})
	}

	method := g.T("taskbridge.method_description", "📝 Direct Description")
	if result.Intent == triage.IntentCommand {
		method = g.T("taskbridge.method_command", "🎯 Smart Command")
	}
	routing := "🚀 Current Sprint"
	if result.RoutedToBacklog {
		routing = "📋 Backlog"
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: g.T("taskbridge.create_footer", "TaskBridge • %s • Routed to: %s", method, routing),
	}

	return embed
}

func (g *Gateway) creationErrorEmbed(err error) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.create_error_title", "❌ Error Creating Task"),
		Description: g.T("taskbridge.create_error_description", "Sorry, I encountered an error while creating the task: %s", err.Error()),
		Color:       colorRed,
		Timestamp:   embedTimestamp(),
	}
}

func (g *Gateway) invalidStatusEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.update_invalid_title", "❌ Invalid Status"),
		Description: g.T("taskbridge.update_invalid_description", "Please provide a valid status."),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{{
			Name:  g.T("taskbridge.update_valid_statuses", "Valid Statuses"),
			Value: g.T("taskbridge.update_valid_statuses_value", "`to do`, `in progress`, `in review`, `closed`"),
		}},
	}
}

func (g *Gateway) noTasksEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.update_no_tasks_title", "❌ No Tasks Found"),
		Description: g.T("taskbridge.update_no_tasks_description", "No tasks found in the newest sprint list."),
		Color:       colorRed,
	}
}

func (g *Gateway) noMatchEmbed(description string, searched int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.update_no_match_title", "❌ No Similar Task Found"),
		Description: g.T("taskbridge.update_no_match_description", "Could not find a task similar to: '%s'", description),
		Color:       colorRed,
	}
	if searched > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.update_available_tasks", "Available Tasks"),
			Value: g.T("taskbridge.update_available_tasks_value", "Found %d tasks in newest sprint.", searched),
		})
	}
	return embed
}

// updateErrorEmbed maps a status update failure to the embed the user sees.
func (g *Gateway) updateErrorEmbed(description string, err error) *discordgo.MessageEmbed {
	var noMatch *triage.NoMatchError
	switch {
	case errors.Is(err, triage.ErrInvalidStatus):
		return g.invalidStatusEmbed()
	case errors.Is(err, triage.ErrNoTasks):
		return g.noTasksEmbed()
	case errors.As(err, &noMatch):
		return g.noMatchEmbed(description, noMatch.TasksSearched)
	default:
		return &discordgo.MessageEmbed{
			Title:       g.T("taskbridge.update_error_title", "❌ Error Updating Task"),
			Description: g.T("taskbridge.update_error_description", "Sorry, I encountered an error: %s", err.Error()),
			Color:       colorRed,
			Timestamp:   embedTimestamp(),
		}
	}
}

func (g *Gateway) updateSuccessEmbed(query string, result *triage.UpdateResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.update_embed_title", "✅ Task Updated Successfully!"),
		Description: g.T("taskbridge.update_embed_description", "Found and updated the most similar task using AI semantic matching."),
		Color:       colorGreen,
		Timestamp:   embedTimestamp(),
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.update_field_query", "🔍 Search Query"),
			Value: query,
		},
		&discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.update_field_matched", "🎯 Matched Task"),
			Value: result.MatchedName,
		},
		&discordgo.MessageEmbedField{
			Name:   g.T("taskbridge.update_field_change", "📊 Status Change"),
			Value:  fmt.Sprintf("`%s` → `%s`", result.PreviousStatus, result.NewStatus),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   g.T("taskbridge.field_task_id", "🆔 Task ID"),
			Value:  result.Task.ID,
			Inline: true,
		},
	)
	if result.Task.URL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   g.T("taskbridge.field_task_url", "🔗 Task URL"),
			Value:  g.T("taskbridge.view_in_clickup", "[View in ClickUp](%s)", result.Task.URL),
			Inline: true,
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: g.T("taskbridge.update_footer", "TaskBridge • AI Task Matching"),
	}
	return embed
}

func (g *Gateway) assignSuccessEmbed(result *triage.AssignResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.assign_embed_title", "✅ Task Assigned"),
		Description: g.T("taskbridge.assign_embed_description", "Assigned **%s** to **%s**", result.Member.DisplayName, result.Task.Name),
		Color:       colorGreen,
		Timestamp:   embedTimestamp(),
	}
	if result.Task.URL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.field_task_url", "🔗 Task URL"),
			Value: g.T("taskbridge.view_in_clickup", "[View in ClickUp](%s)", result.Task.URL),
		})
	}
	return embed
}

func (g *Gateway) tasksEmbed(listName string, tasks []clickup.Task) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.tasks_embed_title", "📋 Tasks in %s", listName),
		Description: g.T("taskbridge.tasks_embed_description", "Found %d tasks:", len(tasks)),
		Color:       colorBlue,
	}

	display := tasks
	if len(display) > embedListCap {
		display = display[:embedListCap]
	}
	for i, task := range display {
		name := task.Name
		if name == "" {
			name = "Unnamed Task"
		}
		status := task.Status.Status
		if status == "" {
			status = "No Status"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%d. %s", i+1, previewRunes(name, 50)),
			Value:  g.T("taskbridge.tasks_field_value", "Status: `%s`\nID: `%s`", status, task.ID),
			Inline: true,
		})
	}

	if len(tasks) > embedListCap {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.note_title", "⚠️ Note"),
			Value: g.T("taskbridge.tasks_more", "Showing first 10 of %d tasks", len(tasks)),
		})
	}

	return embed
}

func (g *Gateway) listsEmbed(lists []clickup.List) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.lists_embed_title", "📋 Available Sprint Lists"),
		Description: g.T("taskbridge.lists_embed_description", "Lists in the sprint folder (in ClickUp order):"),
		Color:       colorBlue,
	}

	newestID := lists[len(lists)-1].ID
	display := lists
	if len(display) > embedListCap {
		display = display[:embedListCap]
	}

	newestShown := false
	for i, list := range display {
		marker := "📝 " + list.Name
		if list.ID == newestID {
			marker = "🚀 " + list.Name + g.T("taskbridge.lists_newest_suffix", " (NEWEST - TARGET)")
			newestShown = true
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   marker,
			Value:  g.T("taskbridge.lists_field_value", "ID: `%s`\nPosition: %d/%d", list.ID, i+1, len(lists)),
			Inline: true,
		})
	}

	if len(lists) > embedListCap && !newestShown {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  g.T("taskbridge.note_title", "⚠️ Note"),
			Value: g.T("taskbridge.lists_hidden_newest", "Showing first 10 of %d lists. Newest list (%s) is not shown but will be used for new tasks.", len(lists), lists[len(lists)-1].Name),
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: g.T("taskbridge.lists_footer", "🚀 = Current target for new tasks (last list in order)"),
	}
	return embed
}

type statusSnapshot struct {
	guilds      int
	pingMillis  int64
	modelReady  bool
	clickupOK   bool
	folderLists int
}

func (g *Gateway) statusEmbed(snapshot statusSnapshot) *discordgo.MessageEmbed {
	modelValue := g.T("taskbridge.status_not_configured", "🔴 Not configured")
	if snapshot.modelReady {
		modelValue = g.T("taskbridge.status_connected", "🟢 Connected")
	}
	clickupValue := g.T("taskbridge.status_not_configured", "🔴 Not configured")
	if snapshot.clickupOK {
		clickupValue = g.T("taskbridge.status_connected", "🟢 Connected")
	}
	folderValue := g.T("taskbridge.status_folder_no_access", "🔴 No access")
	if snapshot.folderLists > 0 {
		folderValue = g.T("taskbridge.status_folder_lists", "🟢 %d lists", snapshot.folderLists)
	}

	return &discordgo.MessageEmbed{
		Title: g.T("taskbridge.status_embed_title", "📊 Bot Status"),
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: g.T("taskbridge.status_field_status", "Status"), Value: g.T("taskbridge.status_online", "🟢 Online and ready!"), Inline: true},
			{Name: g.T("taskbridge.status_field_guilds", "Guilds"), Value: fmt.Sprintf("%d", snapshot.guilds), Inline: true},
			{Name: g.T("taskbridge.status_field_ping", "Ping"), Value: fmt.Sprintf("%dms", snapshot.pingMillis), Inline: true},
			{Name: g.T("taskbridge.status_field_model", "AI Model"), Value: modelValue, Inline: true},
			{Name: g.T("taskbridge.status_field_clickup", "ClickUp"), Value: clickupValue, Inline: true},
			{Name: g.T("taskbridge.status_field_folder", "Sprint Folder"), Value: folderValue, Inline: true},
		},
	}
}

func (g *Gateway) helpEmbed(botName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       g.T("taskbridge.help_title", "🤖 TaskBridge Help"),
		Description: g.T("taskbridge.help_description", "I help you create and manage ClickUp tasks directly from Discord using AI!"),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  g.T("taskbridge.help_create", "🎯 Create Tasks"),
				Value: g.T("taskbridge.help_create_value", "Simply mention me (@bot) in any message with your task description, and I'll create a ClickUp task with an AI-generated title based on channel context!"),
			},
			{
				Name:  g.T("taskbridge.help_create_example", "💡 Create Example"),
				Value: g.T("taskbridge.help_create_example_value", "@%s Review the new authentication system", botName),
			},
			{
				Name:  g.T("taskbridge.help_update", "🔄 Update Tasks"),
				Value: g.T("taskbridge.help_update_value", "Use `/update` with task description and status to update similar tasks using AI semantic matching."),
			},
			{
				Name:  g.T("taskbridge.help_update_examples", "🔄 Update Examples"),
				Value: g.T("taskbridge.help_update_examples_value", "`/update integracja bota review`\n`/update fix login bug in progress`\n`/update dokumentacja api closed`"),
			},
			{
				Name:  g.T("taskbridge.help_routing", "🎯 Smart List Routing"),
				Value: g.T("taskbridge.help_routing_value", "• Include **'backlog'** in your message → Goes to Backlog list\n• No 'backlog' → Goes to newest Sprint list\n• Example: `@bot backlog Review docs` vs `@bot Fix login bug`"),
			},
			{
				Name:  g.T("taskbridge.help_commands", "⚡ Commands"),
				Value: g.T("taskbridge.help_commands_value", "`/help` - Show this help message\n`/update` - Update task status with AI matching\n`/assign` - Assign user to task\n`/tasks` - Show tasks in newest sprint\n`/lists` - Show available lists\n`/status` - Check bot status\n`/health` - Simple health check"),
			},
			{
				Name:  g.T("taskbridge.help_statuses", "📊 Valid Statuses"),
				Value: g.T("taskbridge.help_statuses_value", "`to do`, `in progress`, `in review`, `closed`"),
			},
			{
				Name:  g.T("taskbridge.help_ai", "🧠 AI Features"),
				Value: g.T("taskbridge.help_ai_value", "• Smart title generation\n• Semantic task matching\n• Channel context analysis\n• Intelligent list routing"),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: g.T("taskbridge.help_footer", "TaskBridge • AI-powered task management"),
		},
	}
}
