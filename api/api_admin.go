// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Bot              string `json:"bot"`
	ModelService     string `json:"model_service,omitempty"`
	Model            string `json:"model,omitempty"`
	ModelConfigured  bool   `json:"model_configured"`
	GatewayConnected bool   `json:"gateway_connected"`
	Guilds           int    `json:"guilds"`
	PingMillis       int64  `json:"ping_ms"`
	BacklogList      string `json:"backlog_list,omitempty"`
	Folder           string `json:"folder,omitempty"`
	FolderAccessible bool   `json:"folder_accessible"`
	FolderLists      int    `json:"folder_lists"`
	ProbeLastSuccess string `json:"probe_last_success,omitempty"`
}

type listEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Newest bool   `json:"newest"`
}

type listsResponse struct {
	Lists []listEntry `json:"lists"`
	Count int         `json:"count"`
}

type taskEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

type tasksResponse struct {
	List  string      `json:"list"`
	Tasks []taskEntry `json:"tasks"`
	Count int         `json:"count"`
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// handleStatus answers even when ClickUp is unreachable; the folder fields
// just report no access.
func (a *API) handleStatus(c *gin.Context) {
	response := statusResponse{
		Status:          "ok",
		Version:         a.version,
		UptimeSeconds:   int64(time.Since(a.startedAt).Seconds()),
		Bot:             a.bot.Name(),
		ModelConfigured: a.bot.LLM() != nil,
		BacklogList:     a.store.BacklogListID(),
		Folder:          a.store.FolderID(),
	}
	if service := a.bot.GetService(); service.IsConfigured() {
		response.ModelService = service.Type
		response.Model = service.DefaultModel
	}

	if a.gateway != nil {
		response.GatewayConnected = a.gateway.Connected()
		response.Guilds = a.gateway.GuildCount()
		response.PingMillis = a.gateway.LatencyMillis()
	}

	if a.probe != nil {
		if last := a.probe.LastSuccess(); !last.IsZero() {
			response.ProbeLastSuccess = last.UTC().Format(time.RFC3339)
		}
	}

	lists, err := a.store.GetFolderLists(c.Request.Context())
	if err != nil {
		a.log.Warn("Status probe could not reach the sprint folder", "error", err.Error())
	} else if len(lists) > 0 {
		response.FolderAccessible = true
		response.FolderLists = len(lists)
	}

	c.JSON(http.StatusOK, response)
}

// handleLists returns the sprint folder lists in ClickUp order. The last one
// is marked newest; that is where new tasks go.
func (a *API) handleLists(c *gin.Context) {
	lists, err := a.store.GetFolderLists(c.Request.Context())
	if err != nil {
		_ = c.AbortWithError(http.StatusBadGateway, err)
		return
	}

	response := listsResponse{
		Lists: make([]listEntry, 0, len(lists)),
		Count: len(lists),
	}
	for i, list := range lists {
		response.Lists = append(response.Lists, listEntry{
			ID:     list.ID,
			Name:   list.Name,
			Newest: i == len(lists)-1,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (a *API) handleTasks(c *gin.Context) {
	tasks, err := a.store.GetNewestSprintTasks(c.Request.Context())
	if err != nil {
		_ = c.AbortWithError(http.StatusBadGateway, err)
		return
	}

	listName := "Unknown"
	if newest, err := a.store.GetNewestList(c.Request.Context()); err == nil && newest != nil && newest.Name != "" {
		listName = newest.Name
	}

	response := tasksResponse{
		List:  listName,
		Tasks: make([]taskEntry, 0, len(tasks)),
		Count: len(tasks),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, taskEntry{
			ID:     task.ID,
			Name:   task.Name,
			Status: task.Status.Status,
			URL:    task.URL,
		})
	}

	c.JSON(http.StatusOK, response)
}
