// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics ports pkg/ingestion/metrics.go's sync.Once-guarded
// Prometheus registration idiom, renamed to the cie_graph_* namespace
// and reshaped around this module's own pipeline stages (prescan,
// parse, resolve, link, ingest) instead of the teacher's
// embedding/batch-specific counters, which don't apply here.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Pipeline holds every metric this module's indexing pipeline emits.
type Pipeline struct {
	once sync.Once

	FilesScanned    prometheus.Counter
	FilesParsed     prometheus.Counter
	ParseErrors     prometheus.Counter
	FunctionsFound  prometheus.Counter
	TypesFound      prometheus.Counter
	CallsResolved   prometheus.Counter
	CallsUnresolved prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter

	PrescanDuration prometheus.Histogram
	ParseDuration   prometheus.Histogram
	ResolveDuration prometheus.Histogram
	LinkDuration    prometheus.Histogram
	IngestDuration  prometheus.Histogram
	TotalDuration   prometheus.Histogram
}

// P is the process-wide Pipeline instance, initialized lazily the way
// the teacher's package-level ingMetrics is.
var P Pipeline

// Init registers every metric exactly once, safe to call from every
// entry point (cmd/cie-graph, tests) without double-registration
// panics.
func (m *Pipeline) Init() {
	m.once.Do(func() {
		m.FilesScanned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_files_scanned_total", Help: "Files discovered by PreScanner"})
		m.FilesParsed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_files_parsed_total", Help: "Files successfully parsed and entity-extracted"})
		m.ParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_parse_errors_total", Help: "Files that failed to parse"})
		m.FunctionsFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_functions_found_total", Help: "Function/method entities extracted"})
		m.TypesFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_types_found_total", Help: "Class/interface/type entities extracted"})
		m.CallsResolved = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_calls_resolved_total", Help: "Unresolved calls resolved to a CALLS edge"})
		m.CallsUnresolved = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_calls_unresolved_total", Help: "Calls that could not be resolved to a QN"})
		m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_cache_hits_total", Help: "FileHashCache/ParseResultCache hits"})
		m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cie_graph_cache_misses_total", Help: "FileHashCache/ParseResultCache misses"})

		m.PrescanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_prescan_seconds", Help: "PreScanner pass duration", Buckets: durationBuckets})
		m.ParseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_parse_seconds", Help: "Entity extraction pass duration", Buckets: durationBuckets})
		m.ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_resolve_seconds", Help: "ResolverPass/TypeRelationPass/ExtendedRelationPass duration", Buckets: durationBuckets})
		m.LinkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_link_seconds", Help: "FrameworkLinker/Tailwind/Django pass duration", Buckets: durationBuckets})
		m.IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_ingest_seconds", Help: "Sink write duration", Buckets: durationBuckets})
		m.TotalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cie_graph_total_seconds", Help: "End-to-end pipeline run duration", Buckets: durationBuckets})

		for _, c := range []prometheus.Collector{
			m.FilesScanned, m.FilesParsed, m.ParseErrors,
			m.FunctionsFound, m.TypesFound,
			m.CallsResolved, m.CallsUnresolved,
			m.CacheHits, m.CacheMisses,
			m.PrescanDuration, m.ParseDuration, m.ResolveDuration, m.LinkDuration, m.IngestDuration, m.TotalDuration,
		} {
			// A name another Pipeline already registered leaves this
			// instance's collector unregistered instead of panicking.
			if err := prometheus.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}
