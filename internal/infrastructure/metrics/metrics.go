package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dom-engine/internal/application/port/output"
)

var (
	_ output.MetricsPort = Prometheus{}
	_ output.MetricsPort = Noop{}
)

var (
	metricOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domengine",
		Name:      "operations_total",
		Help:      "Engine operations by name and outcome.",
	}, []string{"operation", "outcome"})
	metricOperationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "domengine",
		Name:      "operation_duration_seconds",
		Help:      "Engine operation latency, including browser start-up.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"operation"})
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "domengine",
		Name:      "browser_sessions_active",
		Help:      "Number of live browser sessions.",
	})
	metricCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domengine",
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by outcome.",
	}, []string{"result"})
)

// Prometheus records to the process-wide default registry.
type Prometheus struct{}

func (Prometheus) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	metricOperations.WithLabelValues(operation, outcome).Inc()
	metricOperationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (Prometheus) SessionOpened() {
	metricActiveSessions.Inc()
}

func (Prometheus) SessionClosed() {
	metricActiveSessions.Dec()
}

func (Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metricCacheLookups.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

type Noop struct{}

func (Noop) ObserveOperation(string, string, time.Duration) {}
func (Noop) SessionOpened()                                 {}
func (Noop) SessionClosed()                                 {}
func (Noop) CacheLookup(bool)                               {}
