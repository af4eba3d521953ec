// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package client provides a client library for other services to read the
// bot's admin API: health and status probes and read-only views of the
// sprint folder.
//
// The admin API carries no credentials of its own. Deployments are expected
// to keep the listen address private or put the API behind their own
// authenticating proxy.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client is a client for the bot's admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// StatusResponse describes the running bot: its version, the model service
// backing it, the chat gateway connection, and sprint folder reachability.
type StatusResponse struct {
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

// ListEntry is one list in the sprint folder. Newest marks the list new
// tasks are routed to.
type ListEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Newest bool   `json:"newest"`
}

// ListsResponse holds the sprint folder lists in ClickUp order.
type ListsResponse struct {
	Lists []ListEntry `json:"lists"`
	Count int         `json:"count"`
}

// TaskEntry is one task from the newest sprint list.
type TaskEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// TasksResponse holds the tasks of the newest sprint list.
type TasksResponse struct {
	List  string      `json:"list"`
	Tasks []TaskEntry `json:"tasks"`
	Count int         `json:"count"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// New creates a client for the admin API at baseURL, for example
// "http://localhost:8080". A nil httpClient gets a default with a 30 second
// timeout.
//
// Example:
//
//	c := client.New("http://localhost:8080", nil)
//	status, err := c.Status(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(status.Version)
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Health checks that the admin API is up. It returns nil when the API
// answers healthy.
func (c *Client) Health(ctx context.Context) error {
	var response healthResponse
	if err := c.doGet(ctx, "/api/v1/health", &response); err != nil {
		return err
	}

	if response.Status != "ok" {
		return errors.Errorf("unexpected health status: %s", response.Status)
	}
	return nil
}

// Status fetches the full bot status. The folder fields report no access
// when ClickUp is unreachable; the call itself still succeeds.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var response StatusResponse
	if err := c.doGet(ctx, "/api/v1/status", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Lists fetches the sprint folder lists in ClickUp order.
func (c *Client) Lists(ctx context.Context) (*ListsResponse, error) {
	var response ListsResponse
	if err := c.doGet(ctx, "/api/v1/lists", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Tasks fetches the tasks of the newest sprint list.
func (c *Client) Tasks(ctx context.Context) (*TasksResponse, error) {
	var response TasksResponse
	if err := c.doGet(ctx, "/api/v1/tasks", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if message == "" {
			return errors.Errorf("request to %s failed with status %d", path, resp.StatusCode)
		}
		return errors.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}

	return nil
}
