// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package clickup provides a typed client for the ClickUp REST API, covering
// the list, task, and assignment operations the bot needs.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const DefaultAPIURL = "https://api.clickup.com/api/v2"

// Config holds the credentials and workspace coordinates for one client.
type Config struct {
	APIToken string `json:"apiToken" yaml:"api_token"`
	// ListID is the backlog list used when no sprint list is requested.
	ListID string `json:"listID" yaml:"list_id"`
	TeamID string `json:"teamID" yaml:"team_id"`
	// FolderID is the folder holding the sprint lists, newest last.
	FolderID string `json:"folderID" yaml:"folder_id"`
	// APIURL overrides the ClickUp endpoint, used in tests.
	APIURL string `json:"apiURL" yaml:"api_url"`
}

// List is a ClickUp list inside the sprint folder.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskStatus is the nested status object ClickUp returns on tasks.
type TaskStatus struct {
	Status string `json:"status"`
}

// Task is the subset of a ClickUp task the bot reads and displays.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	URL         string     `json:"url"`
}

// APIError is returned for any non-OK ClickUp response. Message carries the
// "err" field of ClickUp's error body when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("clickup: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("clickup: status %d", e.StatusCode)
}

// Client is a client for the ClickUp v2 REST API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiToken   string
	listID     string
	teamID     string
	folderID   string
}

func New(cfg Config, httpClient *http.Client) *Client {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		apiToken:   cfg.APIToken,
		listID:     cfg.ListID,
		teamID:     cfg.TeamID,
		folderID:   cfg.FolderID,
	}
}

// BacklogListID returns the configured default list.
func (c *Client) BacklogListID() string {
	return c.listID
}

// FolderID returns the configured sprint folder, empty when routing is
// backlog-only.
func (c *Client) FolderID() string {
	return c.folderID
}

// GetFolderLists returns the lists of the sprint folder in the order ClickUp
// stores them, oldest first. An unset folder yields no lists.
func (c *Client) GetFolderLists(ctx context.Context) ([]List, error) {
	if c.folderID == "" {
		return nil, nil
	}

	var response struct {
		Lists []List `json:"lists"`
	}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/folder/%s/list", c.folderID), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get folder lists: %w", err)
	}

	return response.Lists, nil
}

// GetNewestList returns the last list of the sprint folder. ClickUp keeps
// lists in creation order and exposes no dates, so the last one is the
// current sprint. Returns nil when the folder has no lists.
func (c *Client) GetNewestList(ctx context.Context) (*List, error) {
	lists, err := c.GetFolderLists(ctx)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}

	newest := lists[len(lists)-1]
	return &newest, nil
}

type createTaskRequest struct {
	Name                      string  `json:"name"`
	Description               string  `json:"description"`
	Priority                  int     `json:"priority"`
	DueDate                   *int64  `json:"due_date"`
	DueDateTime               bool    `json:"due_date_time"`
	TimeEstimate              *int64  `json:"time_estimate"`
	StartDate                 *int64  `json:"start_date"`
	StartDateTime             bool    `json:"start_date_time"`
	NotifyAll                 bool    `json:"notify_all"`
	Parent                    *string `json:"parent"`
	LinksTo                   *string `json:"links_to"`
	CheckRequiredCustomFields bool    `json:"check_required_custom_fields"`
	CustomFields              []any   `json:"custom_fields"`

	Assignees []string `json:"assignees,omitempty"`
}

// CreateTask creates a task with normal priority on the given list. An empty
// listID targets the configured backlog list.
func (c *Client) CreateTask(ctx context.Context, name, description, listID string, assignees []string) (*Task, error) {
	targetListID := listID
	if targetListID == "" {
		targetListID = c.listID
	}

	payload := createTaskRequest{
		Name:                      name,
		Description:               description,
		Priority:                  3,
		NotifyAll:                 true,
		CheckRequiredCustomFields: true,
		CustomFields:              []any{},
		Assignees:                 assignees,
	}

	var task Task
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/list/%s/task", targetListID), payload, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &task, nil
}

// GetListTasks returns all tasks of a list.
func (c *Client) GetListTasks(ctx context.Context, listID string) ([]Task, error) {
	var response struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/list/%s/task", listID), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get tasks from list %s: %w", listID, err)
	}

	return response.Tasks, nil
}

// GetNewestSprintTasks returns the tasks of the newest sprint list, or
// nothing when the folder has no lists.
func (c *Client) GetNewestSprintTasks(ctx context.Context) ([]Task, error) {
	newest, err := c.GetNewestList(ctx)
	if err != nil {
		return nil, err
	}
	if newest == nil {
		return nil, nil
	}

	return c.GetListTasks(ctx, newest.ID)
}

// UpdateTaskStatus moves a task to the given ClickUp status.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, status string) (*Task, error) {
	payload := map[string]string{
		"status": status,
	}

	var task Task
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/task/%s", taskID), payload, &task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return &task, nil
}

// AssignTask adds the given ClickUp user to a task.
func (c *Client) AssignTask(ctx context.Context, taskID, assigneeID string) (*Task, error) {
	var task Task
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/task/%s/assignee/%s", taskID, assigneeID), nil, &task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	return &task, nil
}

// doRequest performs one request against the ClickUp API. No retries; a
// failed call surfaces immediately as an *APIError or transport error.
func (c *Client) doRequest(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(respBody, "err").String(),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
