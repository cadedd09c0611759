package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vuescope_parsing_seconds",
		Help:    "Time spent parsing one component region.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ComponentCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_component_cache_hits_total",
		Help: "Component structure lookups served from the run cache.",
	})

	ComponentCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_component_cache_misses_total",
		Help: "Component structure lookups that had to split and parse the file.",
	})

	ComponentCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_component_cache_evictions_total",
		Help: "Cache entries dropped after a patch or a file system change.",
	})

	ResolutionMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vuescope_resolution_misses_total",
		Help: "Component references that could not be traced to a file.",
	}, []string{"reason"})

	PatchesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_patches_applied_total",
		Help: "Individual text edits written to disk.",
	})

	PatchConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_patch_conflicts_total",
		Help: "Edit lists rejected because ranges overlapped or ran out of bounds.",
	})

	FilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vuescope_files_processed_total",
		Help: "Files visited by the batch driver, by outcome.",
	}, []string{"outcome"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vuescope_analysis_seconds",
		Help:    "Time spent on one query over the whole tree.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vuescope_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
