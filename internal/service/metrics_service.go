package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/jobs"
)

const metricsNamespace = "innouni"

// MetricsService owns a private Prometheus registry and mirrors the headline numbers
// in plain counters for the admin snapshot. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler
	started  time.Time

	httpDuration   *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	cacheLatency   *prometheus.HistogramVec
	dashboardBuild *prometheus.HistogramVec
	achievements   prometheus.Counter
	events         *prometheus.CounterVec

	requests, requestNanos atomic.Uint64
	hits, misses           atomic.Uint64
	builds, buildNanos     atomic.Uint64
	achievementsAwarded    atomic.Uint64
	eventsMu               sync.Mutex
	eventCounts            map[string]uint64
}

// NewMetricsService registers the application collectors plus the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry:    prometheus.NewRegistry(),
		started:     time.Now(),
		eventCounts: map[string]uint64{},
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Dashboard cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_seconds",
			Help:      "Redis round-trip time by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		dashboardBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "dashboard",
			Name:      "build_seconds",
			Help:      "Time spent querying the database to assemble a dashboard view.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		achievements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "achievements_awarded_total",
			Help:      "Achievements newly awarded to users.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "domain_events_total",
			Help:      "Successful writes grouped by event.",
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		m.httpDuration, m.cacheLookups, m.cacheLatency, m.dashboardBuild, m.achievements, m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler serves the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	m.requests.Add(1)
	m.requestNanos.Add(uint64(d))
}

// ObserveCacheLookup records a cache read and whether it hit.
func (m *MetricsService) ObserveCacheLookup(hit bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheLatency.WithLabelValues("get").Observe(d.Seconds())
}

// ObserveCacheStore records a cache write.
func (m *MetricsService) ObserveCacheStore(d time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(d.Seconds())
}

// ObserveDashboardBuild records how long the database work for a dashboard view took.
func (m *MetricsService) ObserveDashboardBuild(view string, d time.Duration) {
	if m == nil {
		return
	}
	m.dashboardBuild.WithLabelValues(view).Observe(d.Seconds())
	m.builds.Add(1)
	m.buildNanos.Add(uint64(d))
}

// RecordAchievements counts newly awarded achievements.
func (m *MetricsService) RecordAchievements(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.achievements.Add(float64(n))
	m.achievementsAwarded.Add(uint64(n))
}

// RecordEvent counts a successful domain write such as an enrollment or a group join.
func (m *MetricsService) RecordEvent(event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event).Inc()
	m.eventsMu.Lock()
	m.eventCounts[event]++
	m.eventsMu.Unlock()
}

// TrackQueue exports a background queue's counters as gauges.
func (m *MetricsService) TrackQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	gauge := func(field string, pick func(jobs.Stats) uint64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "queue",
			Name:        field,
			Help:        "Background queue " + field + " jobs since start.",
			ConstLabels: prometheus.Labels{"queue": name},
		}, func() float64 { return float64(pick(stats())) })
	}
	m.registry.MustRegister(
		gauge("enqueued", func(s jobs.Stats) uint64 { return s.Enqueued }),
		gauge("processed", func(s jobs.Stats) uint64 { return s.Processed }),
		gauge("failed", func(s jobs.Stats) uint64 { return s.Failed }),
		gauge("rejected", func(s jobs.Stats) uint64 { return s.Rejected }),
	)
}

// Snapshot summarises the counters for the admin endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.hits.Load(), m.misses.Load()
	out := models.SystemMetrics{
		RequestsTotal:       m.requests.Load(),
		AverageRequestMs:    averageMillis(m.requestNanos.Load(), m.requests.Load()),
		CacheHits:           hits,
		CacheMisses:         misses,
		DashboardBuilds:     m.builds.Load(),
		AverageDashboardMs:  averageMillis(m.buildNanos.Load(), m.builds.Load()),
		AchievementsAwarded: m.achievementsAwarded.Load(),
		Events:              map[string]uint64{},
		Goroutines:          runtime.NumGoroutine(),
		UptimeSeconds:       int64(time.Since(m.started).Seconds()),
		GeneratedAt:         time.Now().UTC(),
	}
	if hits+misses > 0 {
		out.CacheHitRatio = float64(hits) / float64(hits+misses)
	}
	m.eventsMu.Lock()
	for k, v := range m.eventCounts {
		out.Events[k] = v
	}
	m.eventsMu.Unlock()
	return out
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
