package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records engine invocation metadata. All methods are nil-safe
// so callers can run without a registry (tests, tooling).
type PricingMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	warnings prometheus.Counter
	failures *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_duration_seconds",
		Help:    "Duration of pricing engine invocations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_discounts_applied",
		Help: "Discounts applied to priced carts, by kind.",
	}, []string{"kind"})
	warnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_rule_warnings",
		Help: "Malformed discount rules dropped during pricing.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_failures",
		Help: "Pricing invocations that returned a fatal error.",
	}, []string{"operation"})
	reg.MustRegister(duration, applied, warnings, failures)
	return &PricingMetrics{
		duration: duration,
		applied:  applied,
		warnings: warnings,
		failures: failures,
	}
}

// ObserveDuration records the duration for the named operation.
func (p *PricingMetrics) ObserveDuration(operation string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncApplied increments the applied counter for the given discount kind.
func (p *PricingMetrics) IncApplied(kind string) {
	if p == nil || p.applied == nil {
		return
	}
	p.applied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncWarnings adds the number of rule warnings one invocation produced.
func (p *PricingMetrics) IncWarnings(count int) {
	if p == nil || p.warnings == nil || count <= 0 {
		return
	}
	p.warnings.Add(float64(count))
}

// IncFailure increments the failure counter for the named operation.
func (p *PricingMetrics) IncFailure(operation string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
