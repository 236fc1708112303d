package metrics

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal  *prometheus.CounterVec   // method, route, status
	HTTPRequestLatency *prometheus.HistogramVec // method, route

	ItemsCreatedTotal      prometheus.Counter
	ItemModerationsTotal   *prometheus.CounterVec // outcome
	ItemTransitionsTotal   *prometheus.CounterVec // from, to
	CategoryDeletesTotal   *prometheus.CounterVec // mode: plain|cascade
	StorageOperationsTotal *prometheus.CounterVec // op, result
	ExpiredItemsTotal      prometheus.Counter
}

// NewMetricsManager creates and registers all collectors on a private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ItemsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Total number of items created.",
		}),
		ItemModerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_moderations_total",
			Help:      "Moderation decisions by outcome status.",
		}, []string{"outcome"}),
		ItemTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_transitions_total",
			Help:      "Item status transitions.",
		}, []string{"from", "to"}),
		CategoryDeletesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_deletes_total",
			Help:      "Category deletions by mode.",
		}, []string{"mode"}),
		StorageOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Object storage operations by kind and result.",
		}, []string{"op", "result"}),
		ExpiredItemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_expired_total",
			Help:      "Items moved to expired by the scheduler.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.ItemsCreatedTotal,
		m.ItemModerationsTotal,
		m.ItemTransitionsTotal,
		m.CategoryDeletesTotal,
		m.StorageOperationsTotal,
		m.ExpiredItemsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// NewServer returns the HTTP server exposing /metrics for registry.
// A nil server is returned when port is empty.
func NewServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))
	return &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
}
