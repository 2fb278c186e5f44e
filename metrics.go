package mondo

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineMetrics instruments the request pipeline. Label values stay
// low-cardinality: method, the first path segment, and status.
type pipelineMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newPipelineMetrics(reg prometheus.Registerer) *pipelineMetrics {
	factory := promauto.With(reg)
	return &pipelineMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mondo_client_requests_total",
			Help: "API requests issued, by method, resource and HTTP status (0 = transport failure).",
		}, []string{"method", "resource", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mondo_client_request_duration_seconds",
			Help:    "API request latency by method and resource.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}),
	}
}

func (m *pipelineMetrics) observe(method, path string, status int, elapsed time.Duration) {
	res := resourceLabel(path)
	m.requests.WithLabelValues(method, res, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, res).Observe(elapsed.Seconds())
}

// resourceLabel reduces "/transactions/tx_123" to "transactions".
func resourceLabel(path string) string {
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}
