// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package server

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/logger"
	"github.com/zentask/taskbridge/metrics"
)

const probeTimeout = 15 * time.Second

// listSource is the single read the probe performs.
type listSource interface {
	GetFolderLists(ctx context.Context) ([]clickup.List, error)
}

// FolderProbe periodically checks that the sprint folder is still reachable
// so ClickUp credential or permission problems show up in the logs and gauges
// long before someone mentions the bot.
type FolderProbe struct {
	store    listSource
	schedule string
	metrics  metrics.Metrics
	log      logger.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool

	// statusMu guards lastSuccess separately from mu; Stop holds mu while it
	// waits for an in-flight probe.
	statusMu    sync.Mutex
	lastSuccess time.Time
}

func NewFolderProbe(store listSource, schedule string, m metrics.Metrics, log logger.Logger) *FolderProbe {
	return &FolderProbe{
		store:    store,
		schedule: schedule,
		metrics:  m,
		log:      log,
		cron:     cron.New(),
	}
}

func (p *FolderProbe) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, p.runOnce); err != nil {
		return err
	}

	p.cron.Start()
	p.running = true
	p.log.Info("Sprint folder probe scheduled", "schedule", p.schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight probe to finish.
func (p *FolderProbe) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	<-p.cron.Stop().Done()
	p.running = false
}

// LastSuccess returns when the folder was last fetched successfully, zero if
// it never was.
func (p *FolderProbe) LastSuccess() time.Time {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.lastSuccess
}

func (p *FolderProbe) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	lists, err := p.store.GetFolderLists(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.IncrementProbeErrors()
		}
		p.log.Warn("Sprint folder probe failed", "error", err.Error())
		return
	}

	p.statusMu.Lock()
	p.lastSuccess = time.Now()
	p.statusMu.Unlock()

	if p.metrics != nil {
		p.metrics.ObserveProbeSuccess(len(lists))
	}

	if len(lists) == 0 {
		p.log.Warn("Sprint folder probe found no lists, new tasks will go to the backlog")
		return
	}
	p.log.Debug("Sprint folder probe ok", "lists", len(lists), "newest", lists[len(lists)-1].Name)
}
