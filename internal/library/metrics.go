package library

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unattributedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unideck",
		Subsystem: "library",
		Name:      "unattributed_entries_total",
		Help:      "Entries observed during enrichment with no known store tag.",
	})

	pipelineApplications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unideck",
		Subsystem: "library",
		Name:      "pipeline_applications_total",
		Help:      "Filter/sort pipeline evaluations, including memoized-view misses.",
	})

	viewCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unideck",
		Subsystem: "library",
		Name:      "view_cache_hits_total",
		Help:      "View requests answered from the memoized result.",
	})
)
