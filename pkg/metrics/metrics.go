package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal counts every HTTP request.
// Labels: service, method, path, status
// PromQL: rate(http_requests_total{service="inventory-api"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - response latency.
// PromQL: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// MongoDB
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	},
	[]string{"service", "operation", "collection"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // get, set, del
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // produce, consume
)

// =============================================================================
// Inventory
// =============================================================================

// ProductMutations - product writes by action.
// Labels: action (CREATE, UPDATE, DELETE)
var ProductMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_product_mutations_total",
		Help: "Total number of product mutations",
	},
	[]string{"action"},
)

// ActivityLogWrites - activity log inserts by outcome.
var ActivityLogWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_activity_log_writes_total",
		Help: "Total number of activity log writes",
	},
	[]string{"status"}, // success, failed, invalid, dropped
)

// BackgroundTasks - dispatcher task outcomes.
var BackgroundTasks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_background_tasks_total",
		Help: "Total number of background tasks by outcome",
	},
	[]string{"task", "status"}, // success, failed, panic, dropped
)

var BackgroundQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "inventory_background_queue_depth",
		Help: "Number of background tasks waiting for a worker",
	},
)

var StatsRecomputeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "inventory_stats_recompute_duration_seconds",
		Help:    "Duration of full stats recomputation",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	},
	[]string{"status"},
)

var StatsSelfHeals = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "inventory_stats_self_heal_total",
		Help: "Number of times an all-zero snapshot triggered a recomputation",
	},
)

// StatsSnapshot mirrors the persisted snapshot counters.
// Labels: field (total_products, total_stock, total_store_value, out_of_stock)
var StatsSnapshot = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "inventory_stats_snapshot",
		Help: "Last persisted dashboard stats snapshot",
	},
	[]string{"field"},
)
