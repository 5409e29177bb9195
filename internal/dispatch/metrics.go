package dispatch

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	statementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "statements_total",
			Help:      "Statements seen by Dispatch, by outcome.",
		},
		[]string{"outcome"},
	)
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "deliveries_total",
			Help:      "Completed delivery units, by provider and result.",
		},
		[]string{"provider", "result"},
	)
	deliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "delivery_duration_seconds",
			Help:      "Time spent inside Provider.Accept.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	droppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "dropped_total",
			Help:      "Delivery units dropped before reaching their provider.",
		},
		[]string{"provider", "reason"},
	)
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Delivery units waiting for a worker, summed over providers.",
		},
	)
	registeredProviders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lrsd",
			Subsystem: "dispatch",
			Name:      "registered_providers",
			Help:      "Providers currently registered.",
		},
	)
)

// Statement outcomes recorded by statementsTotal.
const (
	outcomeDispatched = "dispatched"
	outcomeFiltered   = "filtered"
	outcomeSkipped    = "skipped"
)

// RegisterMetrics registers the dispatch collectors with the default
// Prometheus registry. It is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(statementsTotal, deliveriesTotal, deliveryDuration, droppedTotal, queueDepth, registeredProviders)
	})
}

func recordStatement(outcome string) {
	statementsTotal.WithLabelValues(outcome).Inc()
}

func recordDelivery(provider string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	deliveriesTotal.WithLabelValues(provider, result).Inc()
	deliveryDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func recordDrop(provider, reason string) {
	droppedTotal.WithLabelValues(provider, reason).Inc()
}
