// Package metrics exposes rewrite activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibreez3/email-rewriter/rewriter"
)

type Metrics struct {
	registry    *prometheus.Registry
	attempts    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	results     *prometheus.CounterVec
	attemptsPer prometheus.Histogram
	validations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_rewriter_generation_attempts_total",
				Help: "Generation calls issued by the rewriter",
			},
			[]string{"model"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_rewriter_rate_limited_total",
				Help: "Generation calls rejected by rate limiting",
			},
			[]string{"model"},
		),
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_rewriter_rewrites_total",
				Help: "Finished rewrites by outcome",
			},
			[]string{"model", "tone", "status"},
		),
		attemptsPer: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "email_rewriter_attempts_per_rewrite",
				Help:    "Generation calls needed per rewrite",
				Buckets: []float64{1, 2, 3, 5, 8},
			},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_rewriter_key_validations_total",
				Help: "API key validations by outcome",
			},
			[]string{"valid"},
		),
	}
	m.registry.MustRegister(m.attempts, m.rateLimited, m.results, m.attemptsPer, m.validations)
	return m
}

func (m *Metrics) Hooks() rewriter.Hooks {
	return rewriter.Hooks{
		OnAttempt: func(_ context.Context, e *rewriter.AttemptEvent) {
			m.attempts.WithLabelValues(e.Model).Inc()
		},
		OnRateLimited: func(_ context.Context, e *rewriter.AttemptEvent) {
			m.rateLimited.WithLabelValues(e.Model).Inc()
		},
		OnResult: func(_ context.Context, e *rewriter.ResultEvent) {
			m.results.WithLabelValues(e.Model, string(e.Tone), string(e.Result.Status)).Inc()
			if e.Result.Attempts > 0 {
				m.attemptsPer.Observe(float64(e.Result.Attempts))
			}
		},
		OnValidate: func(_ context.Context, v rewriter.Validation) {
			if v.Valid {
				m.validations.WithLabelValues("true").Inc()
			} else {
				m.validations.WithLabelValues("false").Inc()
			}
		},
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
