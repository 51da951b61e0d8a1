package scraper

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for a scrape run.
type Metrics struct {
	Registry             *prometheus.Registry
	PagesFetchedTotal    prometheus.Counter
	FetchErrorsTotal     *prometheus.CounterVec
	RetriesTotal         prometheus.Counter
	EntriesTotal         *prometheus.CounterVec
	RecordsAbsorbedTotal prometheus.Counter
	PageFetchDuration    prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ao3wrapped_pages_fetched_total",
			Help: "Total listing pages fetched successfully.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ao3wrapped_fetch_errors_total",
			Help: "Total listing page fetch failures by error type.",
		},
		[]string{"error_type"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ao3wrapped_retries_total",
			Help: "Total page fetch retry attempts scheduled.",
		},
	)
	entries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ao3wrapped_entries_total",
			Help: "Total history entries examined, by extraction outcome.",
		},
		[]string{"outcome"},
	)
	recordsAbsorbed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ao3wrapped_records_absorbed_total",
			Help: "Total records folded into the statistics tables.",
		},
	)
	pageFetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ao3wrapped_page_fetch_duration_seconds",
			Help:    "Listing page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pagesFetched, fetchErrors, retries, entries, recordsAbsorbed, pageFetchDuration)

	return &Metrics{
		Registry:             registry,
		PagesFetchedTotal:    pagesFetched,
		FetchErrorsTotal:     fetchErrors,
		RetriesTotal:         retries,
		EntriesTotal:         entries,
		RecordsAbsorbedTotal: recordsAbsorbed,
		PageFetchDuration:    pageFetchDuration,
	}
}

// IncPageFetched increments the fetched pages counter.
func (m *Metrics) IncPageFetched() {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.Inc()
}

// IncFetchError increments the fetch errors counter for a type label.
func (m *Metrics) IncFetchError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncRetry increments the retries counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// AddEntries adds to the entries counter for an outcome label.
func (m *Metrics) AddEntries(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EntriesTotal.WithLabelValues(outcome).Add(float64(n))
}

// AddAbsorbed adds to the absorbed records counter.
func (m *Metrics) AddAbsorbed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsAbsorbedTotal.Add(float64(n))
}

// ObservePageFetch records a listing page fetch duration.
func (m *Metrics) ObservePageFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.PageFetchDuration.Observe(d.Seconds())
}

// Handler exposes the run's registry for scraping by Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
