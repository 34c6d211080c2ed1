// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// A CLI run is short-lived, so metrics are not scraped. Instead they are
// written once at exit in the node_exporter textfile format:
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.Register()
//	defer m.WriteTextfile(path)
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/pathcover/pkg/observability"
)

// Label names shared by the collectors.
const (
	LabelStage   = "stage"
	LabelResult  = "result"
	LabelCyclic  = "cyclic"
	LabelKeyType = "key_type"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	reg prometheus.Gatherer

	stageDuration *prometheus.HistogramVec
	covers        *prometheus.CounterVec
	coverDuration prometheus.Histogram
	states        prometheus.Gauge
	actions       prometheus.Gauge
	initialTrails prometheus.Gauge
	trails        prometheus.Gauge

	spills        prometheus.Counter
	spilledBytes  prometheus.Counter
	reloads       prometheus.Counter
	reloadedBytes prometheus.Counter

	cacheRequests *prometheus.CounterVec
	cacheWritten  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reg: reg,
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathcover_stage_duration_seconds",
			Help:    "Duration of each stage of a cover run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{LabelStage, LabelResult}),
		covers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathcover_covers_total",
			Help: "Number of cover runs by result.",
		}, []string{LabelResult, LabelCyclic}),
		coverDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathcover_cover_duration_seconds",
			Help:    "Duration of complete cover runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		states: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathcover_last_states",
			Help: "States in the most recent cover run.",
		}),
		actions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathcover_last_actions",
			Help: "Actions in the most recent cover run.",
		}),
		initialTrails: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathcover_last_initial_trails",
			Help: "Trails in the initial cover of the most recent run.",
		}),
		trails: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathcover_last_trails",
			Help: "Trails in the final cover of the most recent run.",
		}),
		spills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathcover_stack_spills_total",
			Help: "Batches the external stack wrote to disk.",
		}),
		spilledBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathcover_stack_spilled_bytes_total",
			Help: "Bytes the external stack wrote to disk.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathcover_stack_reloads_total",
			Help: "Batches the external stack read back from disk.",
		}),
		reloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathcover_stack_reloaded_bytes_total",
			Help: "Bytes the external stack read back from disk.",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathcover_cache_requests_total",
			Help: "Cache lookups by result.",
		}, []string{LabelKeyType, LabelResult}),
		cacheWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathcover_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{LabelKeyType}),
	}
	reg.MustRegister(
		m.stageDuration, m.covers, m.coverDuration,
		m.states, m.actions, m.initialTrails, m.trails,
		m.spills, m.spilledBytes, m.reloads, m.reloadedBytes,
		m.cacheRequests, m.cacheWritten,
	)
	return m
}

// Register installs m as the process-wide pipeline, stack and cache hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetStackHooks(m)
	observability.SetCacheHooks(m)
}

// WriteTextfile writes every metric of the registry to path in the text
// exposition format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// OnCoverStart implements observability.PipelineHooks.
func (m *Metrics) OnCoverStart(_ context.Context, states, actions int) {
	m.states.Set(float64(states))
	m.actions.Set(float64(actions))
}

// OnCoverComplete implements observability.PipelineHooks.
func (m *Metrics) OnCoverComplete(_ context.Context, cyclic bool, initialTrails, trails int64, d time.Duration, err error) {
	m.covers.WithLabelValues(result(err), strconv.FormatBool(cyclic)).Inc()
	m.coverDuration.Observe(d.Seconds())
	if err == nil {
		m.initialTrails.Set(float64(initialTrails))
		m.trails.Set(float64(trails))
	}
}

// OnStageComplete implements observability.PipelineHooks.
func (m *Metrics) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage, result(err)).Observe(d.Seconds())
}

// OnSpill implements observability.StackHooks.
func (m *Metrics) OnSpill(bytes int) {
	m.spills.Inc()
	m.spilledBytes.Add(float64(bytes))
}

// OnReload implements observability.StackHooks.
func (m *Metrics) OnReload(bytes int) {
	m.reloads.Inc()
	m.reloadedBytes.Add(float64(bytes))
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheWritten.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.StackHooks    = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
)
