package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsManager holds the cart service's Prometheus collectors on a private
// registry.
type MetricsManager struct {
	Registry             *prometheus.Registry
	CartOperationsTotal  *prometheus.CounterVec
	CartOperationLatency *prometheus.HistogramVec
	SnapshotWriteErrors  prometheus.Counter
	SnapshotCorrupt      prometheus.Counter
	SnapshotLinesDropped prometheus.Counter
	CartItems            prometheus.Gauge
	CartUnits            prometheus.Gauge
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		CartOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		CartOperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_operation_duration_seconds",
			Help:      "Latency of cart operations, catalog fetch included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SnapshotWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshot_write_errors_total",
			Help:      "Failed writes of the persisted cart snapshot.",
		}),
		SnapshotCorrupt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshot_corrupt_total",
			Help:      "Persisted snapshots discarded because they could not be parsed.",
		}),
		SnapshotLinesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshot_lines_dropped_total",
			Help:      "Invalid or duplicate line items dropped while loading a snapshot.",
		}),
		CartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Distinct products currently in the cart.",
		}),
		CartUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_units",
			Help:      "Total units currently in the cart.",
		}),
	}

	registry.MustRegister(
		m.CartOperationsTotal,
		m.CartOperationLatency,
		m.SnapshotWriteErrors,
		m.SnapshotCorrupt,
		m.SnapshotLinesDropped,
		m.CartItems,
		m.CartUnits,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

func (m *MetricsManager) ObserveOperation(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.CartOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.CartOperationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// NewServer builds the /metrics HTTP server. It returns nil when port is empty.
func NewServer(port string, registry *prometheus.Registry) *http.Server {
	if port == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func Serve(srv *http.Server, log logger.Logger) {
	if srv == nil {
		log.Info("Prometheus metrics server port not configured, server will not start.")
		return
	}
	log.Infof("Prometheus metrics server starting on %s/metrics", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Prometheus metrics server failed: %v", err)
	}
}
