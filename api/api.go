// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package api serves the operational HTTP surface: health and status probes,
// read-only views of the sprint folder, and Prometheus metrics.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zentask/taskbridge/bots"
	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/metrics"
)

// TaskSource is the part of the ClickUp client the admin API reads from.
type TaskSource interface {
	BacklogListID() string
	FolderID() string
	GetFolderLists(ctx context.Context) ([]clickup.List, error)
	GetNewestList(ctx context.Context) (*clickup.List, error)
	GetNewestSprintTasks(ctx context.Context) ([]clickup.Task, error)
}

// GatewayStatus reports the state of the chat connection. A nil provider
// means the gateway has not been wired up, not that it is down.
type GatewayStatus interface {
	Connected() bool
	GuildCount() int
	LatencyMillis() int64
}

// ProbeStatus reports when the sprint folder probe last succeeded. A nil
// provider means no probe is scheduled.
type ProbeStatus interface {
	LastSuccess() time.Time
}

type API struct {
	engine         *gin.Engine
	bot            *bots.Bot
	store          TaskSource
	gateway        GatewayStatus
	probe          ProbeStatus
	metricsService metrics.Metrics
	log            logger.Logger
	version        string
	startedAt      time.Time

	httpServer *http.Server
}

func New(bot *bots.Bot, store TaskSource, gateway GatewayStatus, probe ProbeStatus, metricsService metrics.Metrics, log logger.Logger, version string) *API {
	a := &API{
		engine:         gin.New(),
		bot:            bot,
		store:          store,
		gateway:        gateway,
		probe:          probe,
		metricsService: metricsService,
		log:            log,
		version:        version,
		startedAt:      time.Now(),
	}

	a.engine.Use(a.ginLogger, gin.Recovery())

	router := a.engine.Group("/api/v1")
	router.Use(a.metricsMiddleware)
	router.GET("/health", a.handleHealth)
	router.GET("/status", a.handleStatus)
	router.GET("/lists", a.handleLists)
	router.GET("/tasks", a.handleTasks)

	if metricsService != nil {
		a.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metricsService.GetRegistry(), promhttp.HandlerOpts{})))
	}

	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.engine.ServeHTTP(w, r)
}

// Start blocks serving the API on addr until Shutdown is called or the
// listener fails.
func (a *API) Start(addr string) error {
	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	a.log.Info("Starting admin API", "addr", addr)
	err := a.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Shutdown(ctx)
}

func (a *API) ginLogger(c *gin.Context) {
	a.log.Debug("HTTP request received", "method", c.Request.Method, "path", c.Request.URL.Path, "remote_addr", c.Request.RemoteAddr)

	c.Next()

	a.log.Debug("HTTP request completed", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
}

func (a *API) metricsMiddleware(c *gin.Context) {
	if a.metricsService == nil {
		c.Next()
		return
	}

	a.metricsService.IncrementHTTPRequests()
	now := time.Now()

	c.Next()

	elapsed := float64(time.Since(now)) / float64(time.Second)
	status := c.Writer.Status()
	if status < 200 || status > 299 {
		a.metricsService.IncrementHTTPErrors()
	}

	a.metricsService.ObserveAPIEndpointDuration(c.HandlerName(), c.Request.Method, strconv.Itoa(status), elapsed)
}
