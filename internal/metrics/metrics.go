// Package metrics holds the prometheus collectors shared by the scheduler,
// the worklog store and the broadcast bus. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	heartbeatRuns     *prometheus.CounterVec
	heartbeatDuration *prometheus.HistogramVec
	heartbeatPending  prometheus.Gauge
	heartbeatJobs     prometheus.Gauge
	deliveries        *prometheus.CounterVec
	worklogMutations  *prometheus.CounterVec
	busEvents         *prometheus.CounterVec
	listenerFailures  prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		heartbeatRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeat_runs_total",
				Help:      "Heartbeat executions by outcome",
			},
			[]string{"status"},
		),
		heartbeatDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "heartbeat_run_duration_seconds",
				Help:      "Duration of heartbeat executions including delivery",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"status"},
		),
		heartbeatPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "heartbeat_pending_jobs",
				Help:      "Jobs waiting for the single execution slot",
			},
		),
		heartbeatJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "heartbeat_armed_jobs",
				Help:      "Jobs with an armed timer",
			},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeat_delivery_chunks_total",
				Help:      "Delivered chunks by outcome: rich, plain, failed",
			},
			[]string{"outcome"},
		),
		worklogMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worklog_mutations_total",
				Help:      "Worklog mutations by operation and outcome",
			},
			[]string{"op", "status"},
		),
		busEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bus_events_total",
				Help:      "Published bus events by type",
			},
			[]string{"type"},
		),
		listenerFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bus_listener_failures_total",
				Help:      "Listener panics and connection send failures",
			},
		),
	}

	reg.MustRegister(
		m.heartbeatRuns,
		m.heartbeatDuration,
		m.heartbeatPending,
		m.heartbeatJobs,
		m.deliveries,
		m.worklogMutations,
		m.busEvents,
		m.listenerFailures,
	)

	return m
}

func (m *Metrics) RecordHeartbeat(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.heartbeatRuns.WithLabelValues(status).Inc()
	m.heartbeatDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.heartbeatPending.Set(float64(n))
}

func (m *Metrics) SetArmedJobs(n int) {
	if m == nil {
		return
	}
	m.heartbeatJobs.Set(float64(n))
}

func (m *Metrics) RecordDelivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordWorklogMutation(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.worklogMutations.WithLabelValues(op, status).Inc()
}

func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.busEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) RecordListenerFailure() {
	if m == nil {
		return
	}
	m.listenerFailures.Inc()
}
