package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dropout"

const (
	ReasonValidation = "validation"
	ReasonModel      = "model_unavailable"
	ReasonInternal   = "internal"
)

var (
	registry = prometheus.NewRegistry()

	predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Number of scored students by risk tier.",
	}, []string{"tier"})

	rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "Number of submissions that could not be scored by reason.",
	}, []string{"reason"})

	latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "assessment_duration_seconds",
		Help:      "Time to validate, encode and score a submission.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	modelAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_available",
		Help:      "1 when the classifier loaded, 0 otherwise.",
	})
)

func init() {
	registry.MustRegister(
		predictions,
		rejections,
		latency,
		modelAvailable,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObservePrediction records a scored submission.
func ObservePrediction(tier string, d time.Duration) {
	predictions.WithLabelValues(tier).Inc()
	latency.Observe(d.Seconds())
}

// ObserveRejection records a submission that could not be scored.
func ObserveRejection(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

// SetModelAvailable records the classifier load state.
func SetModelAvailable(ok bool) {
	if ok {
		modelAvailable.Set(1)
		return
	}
	modelAvailable.Set(0)
}
