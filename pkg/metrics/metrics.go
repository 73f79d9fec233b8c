// Package metrics provides the prometheus instrumentation for the ledger
// service: HTTP request metrics plus business counters for committed and
// rejected transactions.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the collection of service metrics.
type Metrics struct {
	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration prometheus.Histogram

	// Ledger business metrics.
	TransactionsTotal    *prometheus.CounterVec
	TransactionsRejected *prometheus.CounterVec
	DepositVolume        prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
}

// New creates the metric set for a service.
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "transactions_total",
			Help:      "Committed ledger transactions by type",
		}, []string{"type"}),
		TransactionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "transactions_rejected_total",
			Help:      "Rejected ledger transactions by reason",
		}, []string{"reason"}),
		DepositVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "deposit_volume_total",
			Help:      "Cumulative deposited amount",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Notifications emitted after committed transactions",
		}, []string{"status"}),
	}
}

// Register registers all metrics with the default registerer.
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransactionsTotal,
		m.TransactionsRejected,
		m.DepositVolume,
		m.NotificationsTotal,
	}
	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransaction counts a committed transaction.
func (m *Metrics) RecordTransaction(txType string) {
	if m == nil {
		return
	}
	m.TransactionsTotal.WithLabelValues(txType).Inc()
}

// RecordRejection counts a rejected transaction.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.TransactionsRejected.WithLabelValues(reason).Inc()
}

// RecordDeposit accumulates deposited volume.
func (m *Metrics) RecordDeposit(amount float64) {
	if m == nil {
		return
	}
	m.DepositVolume.Add(amount)
}

// RecordNotification counts an emitted notification by delivery status.
func (m *Metrics) RecordNotification(status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}

// Handler returns the promhttp handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ListenAddr formats the metrics listen address for a port.
func ListenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
