package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_items_ingested_total",
		Help: "New feed items stored, per kind.",
	}, []string{"kind"})

	ItemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_items_fetched_total",
		Help: "Feed items returned by the upstream listing, per kind.",
	}, []string{"kind"})

	IngestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_ingest_errors_total",
		Help: "Failed ingestion runs, per kind.",
	}, []string{"kind"})

	StaleCursorResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_stale_cursor_resets_total",
		Help: "Cursor resets after consecutive empty fetches, per kind.",
	}, []string{"kind"})

	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_matches_created_total",
		Help: "Match rows created by the scanner, per kind.",
	}, []string{"kind"})

	ScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redditwatch_scan_errors_total",
		Help: "Campaign scan runs that aborted with an error.",
	})
)
