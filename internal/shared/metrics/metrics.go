package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction outcomes used as the "outcome" label.
const (
	OutcomeOK              = "ok"
	OutcomeMissingDocument = "missing_document"
	OutcomeTooLarge        = "too_large"
	OutcomeEmptyResponse   = "empty_response"
	OutcomeInvalidJSON     = "invalid_json"
	OutcomeInternalError   = "internal_error"
)

var (
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amount_extractions_total",
		Help: "Amount extraction requests by outcome",
	}, []string{"outcome"})

	extractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amount_extraction_duration_ms",
		Help:    "Provider round trip duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})

	providerTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amount_provider_tokens_total",
		Help: "Tokens reported by the model provider",
	}, []string{"kind"})

	schemaDriftTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amount_schema_drift_total",
		Help: "Parsed model results that do not match the extraction schema",
	})

	stagingCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amount_staging_cleanup_failures_total",
		Help: "Staged uploads that could not be deleted",
	})
)

// IncExtraction counts one finished request with the given outcome.
func IncExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveExtractionDurationMs records a provider round trip in milliseconds.
func ObserveExtractionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractionDuration.Observe(value)
}

// AddTokens adds provider token counts.
func AddTokens(prompt, candidates int) {
	if prompt > 0 {
		providerTokens.WithLabelValues("prompt").Add(float64(prompt))
	}
	if candidates > 0 {
		providerTokens.WithLabelValues("candidates").Add(float64(candidates))
	}
}

// IncSchemaDrift counts a result that failed the conformance check.
func IncSchemaDrift() {
	schemaDriftTotal.Inc()
}

// IncCleanupFailure counts a staged upload left behind.
func IncCleanupFailure() {
	stagingCleanupFailures.Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
