package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kassabot_entries_created_total",
		Help: "Number of ledger entries created, by type.",
	}, []string{"type"})

	parseRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kassabot_parse_rejections_total",
		Help: "Number of submitted texts rejected for lacking a positive amount.",
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kassabot_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
