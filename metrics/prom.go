package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PromMetrics struct {
	operations     *prometheus.CounterVec
	attempts       prometheus.Counter
	published      prometheus.Counter
	publishFailed  prometheus.Counter
	publishLatency prometheus.Histogram
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {

	m := &PromMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculator_operations_total",
			Help: "Number of arithmetic operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_attempts_total",
			Help: "Number of publish attempts",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_tasks_published_total",
			Help: "Number of published task messages",
		}),
		publishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_publish_failed_total",
			Help: "Number of failed publish attempts",
		}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "publisher_publish_latency_seconds",
			Help:    "Latency of publish attempts",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.operations, m.attempts, m.published, m.publishFailed, m.publishLatency)
	return m
}

func (m *PromMetrics) Operation(op, outcome string) {
	m.operations.WithLabelValues(op, outcome).Inc()
}
func (m *PromMetrics) AttemptStarted() {
	m.attempts.Inc()
}
func (m *PromMetrics) Published() {
	m.published.Inc()
}
func (m *PromMetrics) PublishFailed() {
	m.publishFailed.Inc()
}
func (m *PromMetrics) PublishLatency(d time.Duration) {
	m.publishLatency.Observe(d.Seconds())
}
