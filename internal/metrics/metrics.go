package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry regroupe les métriques Prometheus de l'application
type Registry struct {
	reg *prometheus.Registry

	// Ingestion
	RowsLoaded       prometheus.Counter
	RowsBlacklisted  prometheus.Counter
	RowsDeduplicated prometheus.Counter
	RowsInvalidDate  prometheus.Counter
	FilesLoaded      prometheus.Counter
	FilesSkipped     prometheus.Counter
	Rebuilds         prometheus.Counter
	LastBuildUnix    prometheus.Gauge

	// Requêtes
	QueryDurationSec prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewRegistry crée et enregistre toutes les métriques
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	rowsLoaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_rows_loaded_total"})
	rowsBlacklisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_rows_blacklisted_total"})
	rowsDeduplicated := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_rows_deduplicated_total"})
	rowsInvalidDate := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_rows_invalid_date_total"})
	filesLoaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_files_loaded_total"})
	filesSkipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_files_skipped_total"})
	rebuilds := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_rebuilds_total"})
	lastBuild := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dplus_last_build_timestamp_seconds"})

	queryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dplus_query_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "dplus_cache_misses_total"})

	r.MustRegister(rowsLoaded, rowsBlacklisted, rowsDeduplicated, rowsInvalidDate,
		filesLoaded, filesSkipped, rebuilds, lastBuild, queryDuration, cacheHits, cacheMisses)

	return &Registry{
		reg:              r,
		RowsLoaded:       rowsLoaded,
		RowsBlacklisted:  rowsBlacklisted,
		RowsDeduplicated: rowsDeduplicated,
		RowsInvalidDate:  rowsInvalidDate,
		FilesLoaded:      filesLoaded,
		FilesSkipped:     filesSkipped,
		Rebuilds:         rebuilds,
		LastBuildUnix:    lastBuild,
		QueryDurationSec: queryDuration,
		CacheHits:        cacheHits,
		CacheMisses:      cacheMisses,
	}
}

// Handler expose le registre au format Prometheus
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
