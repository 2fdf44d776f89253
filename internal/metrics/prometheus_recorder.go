package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docmd"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	registry       *prom.Registry
	renderDuration prom.Histogram
	renderResults  *prom.CounterVec
	directives     *prom.CounterVec
	fallbacks      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of top-level markdown renders",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 14),
		})
		pr.renderResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_results_total",
			Help:      "Render results by outcome",
		}, []string{"result"})
		pr.directives = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "directives_total",
			Help:      "Directives rendered, by directive name",
		}, []string{"kind"})
		pr.fallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "directive_fallbacks_total",
			Help:      "Directive fences that degraded to plain text or were dropped",
		}, []string{"reason"})
		reg.MustRegister(pr.renderDuration, pr.renderResults, pr.directives, pr.fallbacks)
	})
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderResult(result ResultLabel) {
	if p == nil || p.renderResults == nil {
		return
	}
	p.renderResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddDirectives(kind string, n int) {
	if p == nil || p.directives == nil || n <= 0 {
		return
	}
	p.directives.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncFallback(reason string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(reason).Inc()
}
