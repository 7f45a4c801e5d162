package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentify_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentify_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentify_cache_hits_total",
		Help: "Cache reads answered from the sorted-set cache",
	}, []string{"set"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentify_cache_misses_total",
		Help: "Cache reads that fell through to the database",
	}, []string{"set"})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentify_cache_errors_total",
		Help: "Failed cache operations",
	}, []string{"set"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentify_orders_created_total",
		Help: "The total number of orders placed",
	})

	OrdersCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentify_orders_canceled_total",
		Help: "The total number of orders canceled",
	})

	MailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentify_mail_failures_total",
		Help: "The total number of e-mails that could not be sent",
	})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentify_event_publish_errors_total",
		Help: "The total number of failed order event publishes",
	})
)
