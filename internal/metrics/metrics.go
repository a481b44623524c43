package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "todo"

const (
	NameHTTPRequests        = "http_requests_total"
	NameHTTPRequestDuration = "http_request_duration_seconds"
	NameTaskOperations      = "task_operations_total"
	NameCacheRequests       = "cache_requests_total"
	NameTasksOverdue        = "tasks_overdue"
	LabelMethod             = "method"
	LabelRoute              = "route"
	LabelStatus             = "status"
	LabelOperation          = "operation"
	LabelResult             = "result"
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameHTTPRequests,
		Help:      "HTTP requests by route and status",
		Namespace: Namespace,
	},
	[]string{LabelMethod, LabelRoute, LabelStatus},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      NameHTTPRequestDuration,
		Help:      "HTTP request latency",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelMethod, LabelRoute},
)

var TaskOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTaskOperations,
		Help:      "Task service operations by outcome",
		Namespace: Namespace,
	},
	[]string{LabelOperation, LabelResult},
)

var CacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameCacheRequests,
		Help:      "Read cache lookups",
		Namespace: Namespace,
	},
	[]string{LabelResult},
)

var TasksOverdue = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name:      NameTasksOverdue,
		Help:      "Overdue tasks across all users at the last worker check",
		Namespace: Namespace,
	},
)
