package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/router"
)

// Metrics counts requests and observes their latency, labelled by method,
// outcome kind and status.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled, by method, outcome and status.",
		}, []string{"method", "outcome", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent in the wrapped service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Handler records every call, declines included.
func (m *Metrics) Handler(next router.Handler) router.Handler {
	return handler(func(ctx context.Context, r *request.Request) outcome {
		method := r.Method
		start := time.Now()
		out := next.Call(ctx, r)

		kind := out.Kind().String()
		status := ""
		if code, ok := statusOf(out); ok {
			status = strconv.Itoa(int(code))
		}
		m.requests.WithLabelValues(method, kind, status).Inc()
		m.duration.WithLabelValues(method, kind).Observe(time.Since(start).Seconds())
		return out
	})
}
