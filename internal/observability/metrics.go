// Package observability provides Prometheus metrics for ingestion runs.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

// DefaultNamespace prefixes every metric name when no namespace is configured.
const DefaultNamespace = "signal_io"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Ingestion metrics
	RecordsRead       *prometheus.CounterVec
	SignalsEmitted    *prometheus.CounterVec
	IssuesReported    *prometheus.CounterVec
	OutOfWindow       *prometheus.CounterVec
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	LastSuccessfulRun prometheus.Gauge

	// Sink metrics
	SinkWrites        *prometheus.CounterVec
	SinkWriteDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered on reg.
func NewMetrics(reg *prometheus.Registry, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		RecordsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_read_total",
			Help:      "Total number of non-blank input lines read",
		}, []string{"adapter"}),
		SignalsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "signals_emitted_total",
			Help:      "Total number of signals emitted by payload type",
		}, []string{"adapter", "payload_type"}),
		IssuesReported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "issues_total",
			Help:      "Total number of parse issues by kind",
		}, []string{"adapter", "kind"}),
		OutOfWindow: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "out_of_window_total",
			Help:      "Total number of records dropped by the time window",
		}, []string{"adapter"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "runs_total",
			Help:      "Total number of ingestion runs by status",
		}, []string{"adapter", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "run_duration_seconds",
			Help:      "Ingestion run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"adapter"}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),

		SinkWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Total number of sink writes by status",
		}, []string{"sink", "status"}),
		SinkWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "write_duration_seconds",
			Help:      "Sink write duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
	}
}

// RunSummary is what one ingestion run reports to metrics.
type RunSummary struct {
	Adapter     string
	RecordsRead int
	OutOfWindow int
	ByPayload   map[string]int
	ByIssueKind map[string]int
	Duration    time.Duration
	Err         error
	FinishedAt  time.Time
}

// RecordRun records the outcome of one ingestion run.
func (m *Metrics) RecordRun(s RunSummary) {
	if m == nil {
		return
	}
	m.RecordsRead.WithLabelValues(s.Adapter).Add(float64(s.RecordsRead))
	m.OutOfWindow.WithLabelValues(s.Adapter).Add(float64(s.OutOfWindow))
	for payloadType, n := range s.ByPayload {
		m.SignalsEmitted.WithLabelValues(s.Adapter, payloadType).Add(float64(n))
	}
	for kind, n := range s.ByIssueKind {
		m.IssuesReported.WithLabelValues(s.Adapter, kind).Add(float64(n))
	}
	m.RunDuration.WithLabelValues(s.Adapter).Observe(s.Duration.Seconds())

	if s.Err != nil {
		m.RunsTotal.WithLabelValues(s.Adapter, "error").Inc()
		return
	}
	m.RunsTotal.WithLabelValues(s.Adapter, "success").Inc()
	m.LastSuccessfulRun.Set(float64(s.FinishedAt.Unix()))
}

// RecordSinkWrite records one write to a sink.
func (m *Metrics) RecordSinkWrite(sink string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SinkWrites.WithLabelValues(sink, status).Inc()
	m.SinkWriteDuration.WithLabelValues(sink).Observe(d.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return eris.Wrapf(prometheus.WriteToTextfile(path, m.gatherer), "write metrics to %s", path)
}
