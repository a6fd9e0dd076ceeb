package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "irrigation_skill"

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Voice requests handled, by request kind.",
	}, []string{"kind"})

	HandlerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_errors_total",
		Help:      "Requests answered by the catch-all error handler.",
	}, []string{"kind"})

	ShadowPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shadow_publish_total",
		Help:      "Device shadow publishes, by transport and result.",
	}, []string{"transport", "result"})

	ShadowPublishLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "shadow_publish_latency_seconds",
		Help:      "Time spent publishing a shadow update.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"transport"})
)
