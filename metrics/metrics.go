// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	MetricsNamespace         = "taskbridge"
	MetricsSubsystemSystem   = "system"
	MetricsSubsystemAPI      = "api"
	MetricsSubsystemHTTP     = "http"
	MetricsSubsystemLLM      = "llm"
	MetricsSubsystemPipeline = "pipeline"
	MetricsSubsystemProbe    = "probe"

	MetricsVersionLabel = "version"
)

type Metrics interface {
	GetRegistry() *prometheus.Registry

	ObserveAPIEndpointDuration(handler, method, statusCode string, elapsed float64)

	IncrementHTTPRequests()
	IncrementHTTPErrors()

	ObserveModelQuery(stage, outcome string)

	ObserveTaskCreated(intent, routing string)
	IncrementTaskCreationErrors()
	ObserveStatusUpdate(outcome string)
	ObserveAssignment(outcome string)

	ObserveProbeSuccess(lists int)
	IncrementProbeErrors()
}

type InstanceInfo struct {
	Version string
}

// metrics instruments the bot with prometheus.
type metrics struct {
	registry *prometheus.Registry

	serverStartTime prometheus.Gauge
	serverInfo      prometheus.Gauge

	apiTime *prometheus.HistogramVec

	httpRequestsTotal prometheus.Counter
	httpErrorsTotal   prometheus.Counter

	modelQueriesTotal *prometheus.CounterVec

	tasksCreatedTotal       *prometheus.CounterVec
	taskCreationErrorsTotal prometheus.Counter
	statusUpdatesTotal      *prometheus.CounterVec
	assignmentsTotal        *prometheus.CounterVec

	probeFolderLists prometheus.Gauge
	probeLastSuccess prometheus.Gauge
	probeErrorsTotal prometheus.Counter
}

// NewMetrics Factory method to create a new metrics collector.
func NewMetrics(info InstanceInfo) Metrics {
	m := &metrics{}

	m.registry = prometheus.NewRegistry()
	options := collectors.ProcessCollectorOpts{
		Namespace: MetricsNamespace,
	}
	m.registry.MustRegister(collectors.NewProcessCollector(options))
	m.registry.MustRegister(collectors.NewGoCollector())

	m.serverStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSystem,
		Name:      "server_start_timestamp_seconds",
		Help:      "The time the server started.",
	})
	m.serverStartTime.SetToCurrentTime()
	m.registry.MustRegister(m.serverStartTime)

	m.serverInfo = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSystem,
		Name:      "server_info",
		Help:      "The server version.",
		ConstLabels: map[string]string{
			MetricsVersionLabel: info.Version,
		},
	})
	m.serverInfo.Set(1)
	m.registry.MustRegister(m.serverInfo)

	m.apiTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystemAPI,
			Name:      "time_seconds",
			Help:      "Time to execute the api handler",
		},
		[]string{"handler", "method", "status_code"},
	)
	m.registry.MustRegister(m.apiTime)

	m.httpRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTP,
		Name:      "requests_total",
		Help:      "The total number of http API requests.",
	})
	m.registry.MustRegister(m.httpRequestsTotal)

	m.httpErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTP,
		Name:      "errors_total",
		Help:      "The total number of http API errors.",
	})
	m.registry.MustRegister(m.httpErrorsTotal)

	m.modelQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemLLM,
		Name:      "queries_total",
		Help:      "The total number of language model queries by pipeline stage and outcome.",
	}, []string{"stage", "outcome"})
	m.registry.MustRegister(m.modelQueriesTotal)

	m.tasksCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "tasks_created_total",
		Help:      "The total number of tasks created.",
	}, []string{"intent", "routing"})
	m.registry.MustRegister(m.tasksCreatedTotal)

	m.taskCreationErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "task_creation_errors_total",
		Help:      "The total number of failed task creations.",
	})
	m.registry.MustRegister(m.taskCreationErrorsTotal)

	m.statusUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "status_updates_total",
		Help:      "The total number of status update attempts by outcome.",
	}, []string{"outcome"})
	m.registry.MustRegister(m.statusUpdatesTotal)

	m.assignmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "assignments_total",
		Help:      "The total number of task assignment attempts by outcome.",
	}, []string{"outcome"})
	m.registry.MustRegister(m.assignmentsTotal)

	m.probeFolderLists = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemProbe,
		Name:      "folder_lists",
		Help:      "The number of sprint lists found by the last successful folder probe.",
	})
	m.registry.MustRegister(m.probeFolderLists)

	m.probeLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemProbe,
		Name:      "last_success_timestamp_seconds",
		Help:      "The time of the last successful folder probe.",
	})
	m.registry.MustRegister(m.probeLastSuccess)

	m.probeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemProbe,
		Name:      "errors_total",
		Help:      "The total number of failed folder probes.",
	})
	m.registry.MustRegister(m.probeErrorsTotal)

	return m
}

func (m *metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *metrics) ObserveAPIEndpointDuration(handler, method, statusCode string, elapsed float64) {
	if m != nil {
		m.apiTime.With(prometheus.Labels{"handler": handler, "method": method, "status_code": statusCode}).Observe(elapsed)
	}
}

func (m *metrics) IncrementHTTPRequests() {
	if m != nil {
		m.httpRequestsTotal.Inc()
	}
}

func (m *metrics) IncrementHTTPErrors() {
	if m != nil {
		m.httpErrorsTotal.Inc()
	}
}

func (m *metrics) ObserveModelQuery(stage, outcome string) {
	if m != nil {
		m.modelQueriesTotal.With(prometheus.Labels{"stage": stage, "outcome": outcome}).Inc()
	}
}

func (m *metrics) ObserveTaskCreated(intent, routing string) {
	if m != nil {
		m.tasksCreatedTotal.With(prometheus.Labels{"intent": intent, "routing": routing}).Inc()
	}
}

func (m *metrics) IncrementTaskCreationErrors() {
	if m != nil {
		m.taskCreationErrorsTotal.Inc()
	}
}

func (m *metrics) ObserveStatusUpdate(outcome string) {
	if m != nil {
		m.statusUpdatesTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
	}
}

func (m *metrics) ObserveAssignment(outcome string) {
	if m != nil {
		m.assignmentsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
	}
}

func (m *metrics) ObserveProbeSuccess(lists int) {
	if m != nil {
		m.probeFolderLists.Set(float64(lists))
		m.probeLastSuccess.SetToCurrentTime()
	}
}

func (m *metrics) IncrementProbeErrors() {
	if m != nil {
		m.probeErrorsTotal.Inc()
	}
}
