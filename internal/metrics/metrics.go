package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wcfhttp_messages_received_total",
		Help: "Total number of messages pulled from the engine source.",
	})

	MessagesForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wcfhttp_messages_forwarded_total",
		Help: "Total number of messages delivered to the configured sink.",
	})

	MessagesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wcfhttp_messages_discarded_total",
		Help: "Total number of messages dropped after a polling or handling fault.",
	})

	SourceQueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wcfhttp_source_queue_dropped_total",
		Help: "Total number of pushed messages dropped because the source queue was full.",
	})

	DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wcfhttp_delivery_failures_total",
		Help: "Total number of failed delivery attempts, labelled by reason.",
	}, []string{"reason"})

	DeliveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wcfhttp_delivery_duration_seconds",
		Help:    "Outbound delivery latency in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	SourceQueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wcfhttp_source_queue_utilization_ratio",
		Help: "Current source message queue utilization (0-1).",
	})
)
