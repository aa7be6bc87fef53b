// Package metrics exposes Prometheus collectors for backend calls and uploads.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors reported by the portal.
type Metrics struct {
	backendDuration *prometheus.HistogramVec
	uploadAttempts  *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the metrics registered with the global Prometheus registry.
// Collectors are created once so repeated construction does not panic on
// duplicate registration.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew builds a Metrics instance on reg. Registration errors panic.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	backendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "axl",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of league backend calls by operation and status class.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
	uploadAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "axl",
			Subsystem: "uploads",
			Name:      "attempts_total",
			Help:      "Image upload attempts by kind and the stage they ended in.",
		},
		[]string{"kind", "outcome"},
	)
	refreshes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "axl",
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Dashboard snapshot refreshes by result.",
		},
		[]string{"result"},
	)

	reg.MustRegister(backendDuration, uploadAttempts, refreshes)

	return &Metrics{
		backendDuration: backendDuration,
		uploadAttempts:  uploadAttempts,
		refreshes:       refreshes,
	}
}

// ObserveBackend records one backend call. status is the HTTP status code,
// or 0 when no response was received.
func (m *Metrics) ObserveBackend(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation, statusClass(status)).Observe(elapsed.Seconds())
}

// UploadAttempt records the outcome of an upload attempt.
func (m *Metrics) UploadAttempt(kind, outcome string) {
	if m == nil {
		return
	}
	m.uploadAttempts.WithLabelValues(kind, outcome).Inc()
}

// Refresh records a dashboard refresh result.
func (m *Metrics) Refresh(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "network_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
