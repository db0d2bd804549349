package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the anonymous profile module.
// Labels carry only the operation name and the coarse outcome code; request
// identifiers and key material never reach the metrics surface.
type Metrics struct {
	Requests                   *prometheus.CounterVec
	CredentialIssuanceDuration prometheus.Histogram
	RequestsByPlatform         *prometheus.CounterVec
}

// New creates a Metrics instance with all anonymous profile metrics registered.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veil_anonymous_profile_requests_total",
			Help: "Total anonymous profile requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		CredentialIssuanceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veil_credential_issuance_duration_seconds",
			Help:    "Duration of expiring profile key credential issuance",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RequestsByPlatform: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veil_requests_by_platform_total",
			Help: "Total requests by client platform parsed from the User-Agent header",
		}, []string{"platform"}),
	}
}

// RecordRequest counts one completed operation with its outcome.
func (m *Metrics) RecordRequest(operation, outcome string) {
	m.Requests.WithLabelValues(operation, outcome).Inc()
}

// ObserveCredentialIssuance records the duration of one issuance.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveCredentialIssuance(start time.Time) {
	m.CredentialIssuanceDuration.Observe(time.Since(start).Seconds())
}

// RecordPlatform counts one request from the given client platform.
func (m *Metrics) RecordPlatform(platform string) {
	m.RequestsByPlatform.WithLabelValues(platform).Inc()
}
