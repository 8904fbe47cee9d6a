package providers

import (
	"pulsed/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StreamStatsSource is what the metrics provider samples from the
// subscriber registry. Declared here to keep the dependency one-way:
// the registry never sees the metrics stack.
type StreamStatsSource interface {
	SessionCount() int
	DeliveryFailures() int64
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncIngested()
	IncBroadcasts()
	ObserveJournalAppend(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
	ingestedTotal         prometheus.Counter
	broadcastsTotal       prometheus.Counter
	journalAppendDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncIngested() {
	m.ingestedTotal.Inc()
}

func (m *MetricsProvider) IncBroadcasts() {
	m.broadcastsTotal.Inc()
}

func (m *MetricsProvider) ObserveJournalAppend(duration time.Duration) {
	m.journalAppendDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, streams StreamStatsSource) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsed_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulsed_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsed_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsed_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		}),

		ingestedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsed_ingested_events_total",
			Help: "Total number of journaled ingest events",
		}),

		broadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsed_broadcasts_total",
			Help: "Total number of fan-out broadcasts that reached at least one subscriber",
		}),

		journalAppendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulsed_journal_append_duration_seconds",
			Help:    "Duration of durable journal appends in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pulsed_subscribers",
		Help: "Current number of live subscriber sessions",
	}, func() float64 {
		return float64(streams.SessionCount())
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "pulsed_delivery_failures_total",
		Help: "Total number of subscriber delivery failures",
	}, func() float64 {
		return float64(streams.DeliveryFailures())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncIngested()                                     {}
func (n *noopMetrics) IncBroadcasts()                                   {}
func (n *noopMetrics) ObserveJournalAppend(_ time.Duration)             {}
