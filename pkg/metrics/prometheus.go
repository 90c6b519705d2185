package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ItemsAdded         prometheus.Counter
	ItemsRemoved       prometheus.Counter
	ItemsRejected      *prometheus.CounterVec
	BaggageCheckedIn   prometheus.Counter
	GateRejections     *prometheus.CounterVec
	CheckInsConfirmed  prometheus.Counter
	FareTotal          prometheus.Histogram
	OperationDuration  *prometheus.HistogramVec
	ErrorsCount        *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// NewMetrics creates new prometheus metrics registered with the default registerer
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics with reg; tests pass a fresh registry
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bag_items_added_total",
			Help:      "The total number of bag items registered",
		}),
		ItemsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bag_items_removed_total",
			Help:      "The total number of bag items removed",
		}),
		ItemsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bag_items_rejected_total",
			Help:      "Bag items refused at registration, by error kind",
		}, []string{"kind"}),
		BaggageCheckedIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "baggage_checked_in_total",
			Help:      "The total number of baggage records finalized",
		}),
		GateRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkin_gate_rejections_total",
			Help:      "Flight check-ins refused by the baggage gate, by reason",
		}, []string{"reason"}),
		CheckInsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_confirmed_total",
			Help:      "The total number of flight check-ins confirmed",
		}),
		FareTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "baggage_fare_total_cents",
			Help:      "Computed baggage fare totals in minor currency units",
			Buckets:   []float64{0, 2500, 5000, 10000, 20000, 40000, 80000},
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time taken by baggage and check-in operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation", "kind"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
