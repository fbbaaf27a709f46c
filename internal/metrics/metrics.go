// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal    *prometheus.CounterVec
	listingsTotal *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otowatch_pages_total",
				Help: "Total number of search pages fetched, labeled by status.",
			},
			[]string{"status"},
		)

		listingsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otowatch_listings_total",
				Help: "Total number of listings handled, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otowatch_runs_total",
				Help: "Total number of scrape runs, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// ObservePage records one fetched (or failed) search page.
func ObservePage(status string) {
	if pagesTotal != nil {
		pagesTotal.WithLabelValues(status).Inc()
	}
}

// ObserveListing records one listing outcome: new, duplicate, failed, skipped.
func ObserveListing(outcome string) {
	if listingsTotal != nil {
		listingsTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveListings records n listings sharing one outcome.
func ObserveListings(outcome string, n int) {
	if listingsTotal != nil && n > 0 {
		listingsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveRun records a finished run.
func ObserveRun(result string) {
	if runsTotal != nil {
		runsTotal.WithLabelValues(result).Inc()
	}
}
