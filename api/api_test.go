// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentask/taskbridge/bots"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/metrics"
)

type fakeSource struct {
	backlogID string
	folderID  string
	lists     []clickup.List
	listsErr  error
	tasks     []clickup.Task
	tasksErr  error
}

func (f *fakeSource) BacklogListID() string { return f.backlogID }
func (f *fakeSource) FolderID() string      { return f.folderID }

func (f *fakeSource) GetFolderLists(context.Context) ([]clickup.List, error) {
	if f.listsErr != nil {
		return nil, f.listsErr
	}
	return f.lists, nil
}

func (f *fakeSource) GetNewestList(ctx context.Context) (*clickup.List, error) {
	lists, err := f.GetFolderLists(ctx)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}
	newest := lists[len(lists)-1]
	return &newest, nil
}

func (f *fakeSource) GetNewestSprintTasks(context.Context) ([]clickup.Task, error) {
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return f.tasks, nil
}

type fakeGateway struct {
	connected bool
	guilds    int
	latency   int64
}

func (f *fakeGateway) Connected() bool      { return f.connected }
func (f *fakeGateway) GuildCount() int      { return f.guilds }
func (f *fakeGateway) LatencyMillis() int64 { return f.latency }

type fakeProbe struct {
	last time.Time
}

func (f *fakeProbe) LastSuccess() time.Time { return f.last }

func setupTestAPI(t *testing.T, store TaskSource, gateway GatewayStatus, probe ProbeStatus, metricsService metrics.Metrics) *API {
	t.Helper()

	// This just makes gin not output a whole bunch of debug stuff.
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	bot := bots.NewBot(llm.BotConfig{
		Name:    "taskbridge",
		Service: llm.ServiceConfig{Type: llm.ServiceTypeOpenAI, DefaultModel: "gpt-4o"},
	})
	return New(bot, store, gateway, probe, metricsService, logger.NewNop(), "1.2.3")
}

func doRequest(t *testing.T, a *API, path string) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	a.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

func TestHandleHealth(t *testing.T) {
	a := setupTestAPI(t, &fakeSource{}, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/health")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response healthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestHandleStatus(t *testing.T) {
	store := &fakeSource{
		backlogID: "backlog1",
		folderID:  "folder1",
		lists:     []clickup.List{{ID: "l1", Name: "Sprint 1"}, {ID: "l2", Name: "Sprint 2"}},
	}
	gateway := &fakeGateway{connected: true, guilds: 3, latency: 42}
	probe := &fakeProbe{last: time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)}
	a := setupTestAPI(t, store, gateway, probe, nil)

	recorder := doRequest(t, a, "/api/v1/status")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response statusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "1.2.3", response.Version)
	assert.Equal(t, "taskbridge", response.Bot)
	assert.Equal(t, llm.ServiceTypeOpenAI, response.ModelService)
	assert.Equal(t, "gpt-4o", response.Model)
	assert.False(t, response.ModelConfigured, "no language model attached in this test")
	assert.True(t, response.GatewayConnected)
	assert.Equal(t, 3, response.Guilds)
	assert.Equal(t, int64(42), response.PingMillis)
	assert.Equal(t, "backlog1", response.BacklogList)
	assert.Equal(t, "folder1", response.Folder)
	assert.True(t, response.FolderAccessible)
	assert.Equal(t, 2, response.FolderLists)
	assert.Equal(t, "2024-06-01T12:30:00Z", response.ProbeLastSuccess)
}

func TestHandleStatusFolderUnavailable(t *testing.T) {
	store := &fakeSource{listsErr: errors.New("clickup: status 502")}
	a := setupTestAPI(t, store, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/status")
	require.Equal(t, http.StatusOK, recorder.Code, "status must answer even when ClickUp is down")

	var response statusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.FolderAccessible)
	assert.Zero(t, response.FolderLists)
	assert.False(t, response.GatewayConnected)
	assert.Empty(t, response.ProbeLastSuccess)
}

func TestHandleStatusProbeNeverRan(t *testing.T) {
	a := setupTestAPI(t, &fakeSource{}, nil, &fakeProbe{}, nil)

	recorder := doRequest(t, a, "/api/v1/status")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response statusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Empty(t, response.ProbeLastSuccess, "a probe that never succeeded reports no timestamp")
}

func TestHandleLists(t *testing.T) {
	store := &fakeSource{lists: []clickup.List{{ID: "l1", Name: "Sprint 1"}, {ID: "l2", Name: "Sprint 2"}}}
	a := setupTestAPI(t, store, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/lists")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response listsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Lists, 2)
	assert.False(t, response.Lists[0].Newest)
	assert.True(t, response.Lists[1].Newest, "the last list in ClickUp order is the target")
}

func TestHandleListsBadGateway(t *testing.T) {
	store := &fakeSource{listsErr: errors.New("clickup: status 500")}
	a := setupTestAPI(t, store, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/lists")
	require.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestHandleTasks(t *testing.T) {
	store := &fakeSource{
		lists: []clickup.List{{ID: "l2", Name: "Sprint 2"}},
		tasks: []clickup.Task{
			{ID: "t1", Name: "Fix login bug", Status: clickup.TaskStatus{Status: "to do"}, URL: "https://app.clickup.com/t/t1"},
			{ID: "t2", Name: "Write docs"},
		},
	}
	a := setupTestAPI(t, store, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/tasks")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response tasksResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Sprint 2", response.List)
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Tasks, 2)
	assert.Equal(t, "to do", response.Tasks[0].Status)
	assert.Equal(t, "https://app.clickup.com/t/t1", response.Tasks[0].URL)
}

func TestHandleTasksBadGateway(t *testing.T) {
	store := &fakeSource{tasksErr: errors.New("clickup: status 500")}
	a := setupTestAPI(t, store, nil, nil, nil)

	recorder := doRequest(t, a, "/api/v1/tasks")
	require.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metricsService := metrics.NewMetrics(metrics.InstanceInfo{Version: "1.2.3"})
	a := setupTestAPI(t, &fakeSource{}, nil, nil, metricsService)

	// Drive one API request through the metrics middleware first.
	require.Equal(t, http.StatusOK, doRequest(t, a, "/api/v1/health").Code)

	recorder := doRequest(t, a, "/metrics")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "taskbridge_system_server_start_timestamp_seconds")
	assert.Contains(t, recorder.Body.String(), "taskbridge_http_requests_total")
}

func TestMetricsRouteAbsentWithoutService(t *testing.T) {
	a := setupTestAPI(t, &fakeSource{}, nil, nil, nil)

	recorder := doRequest(t, a, "/metrics")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}
