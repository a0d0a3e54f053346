package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OperationDetails = "details"
	OperationSimilar = "similar"

	OutcomeSuccess        = "success"
	OutcomeCached         = "cached"
	OutcomeFallback       = "fallback"
	OutcomeTransportError = "transport_error"
	OutcomeFailure        = "failure"
)

var (
	enrichmentRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinematheque_enrichment_requests_total",
		Help: "Enrichment lookups by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|cached|fallback|transport_error|failure

	storageWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinematheque_storage_writes_total",
		Help: "Full-collection writes to the durable slot by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	storageLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinematheque_storage_loads_total",
		Help: "Durable slot loads by outcome",
	}, []string{"outcome"}) // outcome=success|absent|corrupt|failure

	watchlistSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cinematheque_watchlist_size",
		Help: "Number of movies in the watchlist after the last write",
	})
)

func RecordEnrichment(operation, outcome string) {
	enrichmentRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordStorageWrite(ok bool, size int) {
	if !ok {
		storageWritesTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	storageWritesTotal.WithLabelValues(OutcomeSuccess).Inc()
	watchlistSize.Set(float64(size))
}

func RecordStorageLoad(outcome string) {
	storageLoadsTotal.WithLabelValues(outcome).Inc()
}

var rateLimitRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cinematheque_ratelimit_rejected_total",
	Help: "HTTP requests rejected by the per-client rate limit",
})

func RecordRateLimited() {
	rateLimitRejectedTotal.Inc()
}
