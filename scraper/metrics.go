package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry      *prometheus.Registry
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	TablesWritten *prometheus.CounterVec
	TablesMissing *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	SeasonsTotal  *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetches_total",
			Help: "Total page fetches issued by the scraper.",
		},
		[]string{"fetcher", "outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Time from navigation start until page markup was read.",
			Buckets: []float64{1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90},
		},
	)
	written := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_tables_written_total",
			Help: "Total number of tables written to disk by role.",
		},
		[]string{"role"},
	)
	missing := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_tables_missing_total",
			Help: "Total number of tables absent or unreadable by role.",
		},
		[]string{"role"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	seasons := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_seasons_total",
			Help: "Seasons processed by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(fetches, fetchDuration, written, missing, errorsTotal, seasons)

	return &Metrics{
		Registry:      registry,
		FetchesTotal:  fetches,
		FetchDuration: fetchDuration,
		TablesWritten: written,
		TablesMissing: missing,
		ErrorsTotal:   errorsTotal,
		SeasonsTotal:  seasons,
	}
}

// IncFetch counts a fetch by fetcher kind and outcome.
func (m *Metrics) IncFetch(fetcher, outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(fetcher, outcome).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncWritten counts a table written for role.
func (m *Metrics) IncWritten(role models.Role) {
	if m == nil {
		return
	}
	m.TablesWritten.WithLabelValues(string(role)).Inc()
}

// IncMissing counts a table not found or unreadable for role.
func (m *Metrics) IncMissing(role models.Role) {
	if m == nil {
		return
	}
	m.TablesMissing.WithLabelValues(string(role)).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncSeason counts a finished season by outcome.
func (m *Metrics) IncSeason(outcome string) {
	if m == nil {
		return
	}
	m.SeasonsTotal.WithLabelValues(outcome).Inc()
}
