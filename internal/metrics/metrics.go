// Package metrics содержит коллекторы Prometheus сервиса синхронизации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// метрики HTTP
var (
	HTTPDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})

	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Количество активных HTTP запросов",
	})
)

// метрики синхронизации
var (
	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_webhooks_processed_total",
		Help: "Количество обработанных вебхуков Struct",
	}, []string{"event_key", "status"})

	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_webhook_duration_seconds",
		Help:    "Длительность обработки вебхука",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_key"})

	ImportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_import_runs_total",
		Help: "Количество запусков импорта и очистки",
	}, []string{"kind", "status"})

	ImportStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_import_step_duration_seconds",
		Help:    "Длительность шага импорта",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"step"})
)

// метрики внешних API
var (
	CommerceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commercetools_requests_total",
		Help: "Количество запросов к Commercetools",
	}, []string{"method", "resource", "outcome"})

	CommerceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commercetools_request_duration_seconds",
		Help:    "Длительность запросов к Commercetools",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource"})

	PIMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "struct_pim_requests_total",
		Help: "Количество запросов к Struct PIM",
	}, []string{"endpoint", "status"})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Количество операций с кэшем",
	}, []string{"operation", "status"})
)

// метрики воркера
var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Общее количество обработанных сообщений",
	}, []string{"topic", "status"})

	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Длительность обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_goroutines",
		Help: "Количество активных горутин-обработчиков",
	})
)
