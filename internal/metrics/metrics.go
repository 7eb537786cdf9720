package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the order engine reports on.
type Metrics struct {
	OrdersCreated   prometheus.Counter
	OrdersCancelled prometheus.Counter
	StockConflicts  prometheus.Counter
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
}

func New(service string) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Orders created successfully.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by their owner.",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "stock_conflicts_total",
			Help:      "Order creations rejected because a conditional stock decrement failed.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}
	prometheus.MustRegister(m.OrdersCreated, m.OrdersCancelled, m.StockConflicts, m.Requests, m.LatencyMS)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
