package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReadStatusChangesTotal counts /toggle-read requests by path
	// ("background" for the optimistic request, "form" for the page submission)
	// and outcome.
	ReadStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joereader_read_status_changes_total",
		Help: "Read-status change requests by path and outcome.",
	}, []string{"path", "status"})

	FeedRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joereader_feed_refreshes_total",
		Help: "Per-feed refresh attempts by outcome.",
	}, []string{"status"})

	FeedRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "joereader_feed_refresh_duration_seconds",
		Help:    "Wall time of one full refresh of all feeds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ItemsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joereader_items_ingested_total",
		Help: "New items stored by feed refreshes.",
	})

	FeedsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joereader_feeds_total",
		Help: "Number of subscribed feeds.",
	})
)
