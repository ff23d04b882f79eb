package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the HLS mirror.
type Metrics struct {
	registry                *prometheus.Registry
	requestsTotal           prometheus.Counter
	runsTotal               prometheus.Counter
	channelsSucceededTotal  prometheus.Counter
	channelsFailedTotal     prometheus.Counter
	segmentsDownloadedTotal prometheus.Counter
	segmentsPrunedTotal     prometheus.Counter
	lastRunChannelsOK       prometheus.Gauge
	errorsTotal             prometheus.Counter
}

// New creates and registers Prometheus metrics for the mirror.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_http_requests_total",
		Help: "Total number of HTTP requests served",
	})
	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_runs_total",
		Help: "Total number of mirror runs completed",
	})
	channelsSucceededTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_channels_succeeded_total",
		Help: "Total number of channel cycles that produced a valid playlist",
	})
	channelsFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_channels_failed_total",
		Help: "Total number of channel cycles that failed at some stage",
	})
	segmentsDownloadedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_segments_downloaded_total",
		Help: "Total number of segments downloaded and persisted",
	})
	segmentsPrunedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_segments_pruned_total",
		Help: "Total number of stale segments deleted by retention pruning",
	})
	lastRunChannelsOK := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mirror_last_run_channels_ok",
		Help: "Number of channels that succeeded in the most recent run",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_http_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		runsTotal,
		channelsSucceededTotal,
		channelsFailedTotal,
		segmentsDownloadedTotal,
		segmentsPrunedTotal,
		lastRunChannelsOK,
		errorsTotal,
	)

	return &Metrics{
		registry:                registry,
		requestsTotal:           requestsTotal,
		runsTotal:               runsTotal,
		channelsSucceededTotal:  channelsSucceededTotal,
		channelsFailedTotal:     channelsFailedTotal,
		segmentsDownloadedTotal: segmentsDownloadedTotal,
		segmentsPrunedTotal:     segmentsPrunedTotal,
		lastRunChannelsOK:       lastRunChannelsOK,
		errorsTotal:             errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncRuns increments the completed runs counter.
func (m *Metrics) IncRuns() {
	m.runsTotal.Inc()
}

// AddChannelsSucceeded adds n to the succeeded channel cycles counter.
func (m *Metrics) AddChannelsSucceeded(n int) {
	m.channelsSucceededTotal.Add(float64(n))
}

// AddChannelsFailed adds n to the failed channel cycles counter.
func (m *Metrics) AddChannelsFailed(n int) {
	m.channelsFailedTotal.Add(float64(n))
}

// IncSegmentsDownloaded increments the downloaded segments counter.
func (m *Metrics) IncSegmentsDownloaded() {
	m.segmentsDownloadedTotal.Inc()
}

// IncSegmentsPruned increments the pruned segments counter.
func (m *Metrics) IncSegmentsPruned() {
	m.segmentsPrunedTotal.Inc()
}

// SetLastRunChannelsOK sets the most-recent-run success gauge.
func (m *Metrics) SetLastRunChannelsOK(n int) {
	m.lastRunChannelsOK.Set(float64(n))
}

// IncErrors increments the HTTP errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
