package objstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects client side request metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	uploaded prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s3sign",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total number of object requests, partitioned by operation and outcome.",
	}, []string{"op", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "s3sign",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Histogram of object request latencies.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	uploaded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3sign",
		Subsystem: "client",
		Name:      "uploaded_bytes_total",
		Help:      "Total number of payload bytes successfully uploaded.",
	})

	if reg != nil {
		reg.MustRegister(requests, latency, uploaded)
	}

	return &Metrics{
		requests: requests,
		latency:  latency,
		uploaded: uploaded,
	}
}

// observe records one finished request.
// outcome is "ok", "missing" (delete of an absent object), "status" or "transport".
func (m *Metrics) observe(op, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) addUploaded(n int) {
	if m == nil {
		return
	}
	m.uploaded.Add(float64(n))
}
