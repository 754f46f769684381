// README: Prometheus collectors for refreshes, fetches, reports, and the population feed.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_refreshes_total",
		Help: "Refreshes emitted by viewer movement",
	})
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_fetches_total",
		Help: "Nearby venue fetches by trigger",
	}, []string{"trigger"})
	StaleFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_stale_fetches_total",
		Help: "Fetch completions dropped because a newer one was already applied",
	})
	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_fetch_failures_total",
		Help: "Nearby venue fetches that failed; the previous snapshot was kept",
	})
	FetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_fetch_duration_ms",
		Help:    "Nearby venue fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	MalformedPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_malformed_points_total",
		Help: "Points dropped from a batch for missing id or location",
	})
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_reports_total",
		Help: "User busyness reports by outcome",
	}, []string{"outcome"})
	FeedFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_feed_failures_total",
		Help: "Population feed polls that fell back to backup data",
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "radar_active_sessions",
		Help: "Viewer sessions currently connected",
	})
)

func init() {
	prometheus.MustRegister(RefreshesTotal)
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(StaleFetchesTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(MalformedPointsTotal)
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(FeedFailuresTotal)
	prometheus.MustRegister(ActiveSessions)
}

func Handler() http.Handler { return promhttp.Handler() }
