package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SnapshotLoadsTotal counts snapshot load attempts by outcome.
	SnapshotLoadsTotal *prometheus.CounterVec
	// SnapshotLoadDuration records snapshot load latency in milliseconds.
	SnapshotLoadDuration prometheus.Histogram
	// SnapshotRows tracks row counts per loaded input table.
	SnapshotRows *prometheus.GaugeVec
	// SnapshotWarningsTotal counts degraded input tables by table name.
	SnapshotWarningsTotal *prometheus.CounterVec
	// PipelineRunsTotal counts savings pipeline runs by outcome.
	PipelineRunsTotal *prometheus.CounterVec
	// PipelineDuration records full pipeline latency in milliseconds.
	PipelineDuration prometheus.Histogram
	// PipelineOffers tracks the classified offer count of the latest run.
	PipelineOffers prometheus.Gauge
	// ResultCacheHits counts memoized results served without recomputation.
	ResultCacheHits prometheus.Counter
	// ResultCacheMisses counts runs that required full recomputation.
	ResultCacheMisses prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SnapshotLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Count of snapshot load attempts by outcome.",
		}, []string{"result"})
		SnapshotLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_load_duration_ms",
			Help:      "Latency of snapshot loads in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})
		SnapshotRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows",
			Help:      "Row count per input table in the current snapshot.",
		}, []string{"table"})
		SnapshotWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_warnings_total",
			Help:      "Count of input tables loaded in degraded form.",
		}, []string{"table"})
		PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Count of savings pipeline runs by outcome.",
		}, []string{"result"})
		PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_ms",
			Help:      "Latency of full savings pipeline runs in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})
		PipelineOffers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_offers",
			Help:      "Classified offer rows produced by the latest pipeline run.",
		})
		ResultCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_hits_total",
			Help:      "Number of pipeline results served from the fingerprint cache.",
		})
		ResultCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_misses_total",
			Help:      "Number of pipeline runs that missed the fingerprint cache.",
		})

		mustRegisterCollector(reg, SnapshotLoadsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotLoadsTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotLoadDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SnapshotLoadDuration = v
			}
		})
		mustRegisterCollector(reg, SnapshotRows, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.GaugeVec); ok {
				SnapshotRows = v
			}
		})
		mustRegisterCollector(reg, SnapshotWarningsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotWarningsTotal = v
			}
		})
		mustRegisterCollector(reg, PipelineRunsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PipelineRunsTotal = v
			}
		})
		mustRegisterCollector(reg, PipelineDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PipelineDuration = v
			}
		})
		mustRegisterCollector(reg, PipelineOffers, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				PipelineOffers = v
			}
		})
		mustRegisterCollector(reg, ResultCacheHits, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ResultCacheHits = v
			}
		})
		mustRegisterCollector(reg, ResultCacheMisses, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ResultCacheMisses = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
