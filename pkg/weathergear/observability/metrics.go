package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records rule evaluation metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records a rule set evaluation with the number of matched rules.
	RecordEvaluation(ctx context.Context, ruleSet string, matched int, duration time.Duration, err error)

	// RecordRule records the check of a single rule.
	RecordRule(ctx context.Context, ruleSet, rule string, matched bool, err error)
}

type otelMetrics struct {
	evaluations       metric.Int64Counter
	evaluationLatency metric.Float64Histogram
	evaluationErrors  metric.Int64Counter
	ruleChecks        metric.Int64Counter
	ruleMatches       metric.Int64Counter
	matchedRules      metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter(meterName))
	})
	return defaultMetrics, defaultMetricsErr
}

const meterName = "weathergear"

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	evaluations, err := meter.Int64Counter("weathergear.evaluations",
		metric.WithDescription("Number of rule set evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evaluationLatency, err := meter.Float64Histogram("weathergear.evaluation.latency_ms",
		metric.WithDescription("Rule set evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evaluationErrors, err := meter.Int64Counter("weathergear.evaluation.errors",
		metric.WithDescription("Number of failed rule set evaluations"),
	)
	if err != nil {
		return nil, err
	}

	ruleChecks, err := meter.Int64Counter("weathergear.rule.checks",
		metric.WithDescription("Number of individual rule checks"),
	)
	if err != nil {
		return nil, err
	}

	ruleMatches, err := meter.Int64Counter("weathergear.rule.matches",
		metric.WithDescription("Number of rule checks that matched"),
	)
	if err != nil {
		return nil, err
	}

	matchedRules, err := meter.Int64Histogram("weathergear.evaluation.matched_rules",
		metric.WithDescription("Number of rules matched per evaluation"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		matchedRules:      matchedRules,
		evaluations:       evaluations,
		evaluationLatency: evaluationLatency,
		evaluationErrors:  evaluationErrors,
		ruleChecks:        ruleChecks,
		ruleMatches:       ruleMatches,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider, captured on first call.
// Configure the provider before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithProvider returns a MetricsRecorder bound to provider
// instead of the global one.
func NewMetricsRecorderWithProvider(provider metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetrics(provider.Meter(meterName))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordEvaluation records a rule set evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, ruleSet string, matched int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("rule_set", ruleSet),
		attribute.Bool("success", err == nil),
	)
	m.evaluations.Add(ctx, 1, attrs)
	m.evaluationLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.evaluationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("rule_set", ruleSet)))
		return
	}
	m.matchedRules.Record(ctx, int64(matched), metric.WithAttributes(attribute.String("rule_set", ruleSet)))
}

// RecordRule records a single rule check.
func (m *otelMetrics) RecordRule(ctx context.Context, ruleSet, rule string, matched bool, err error) {
	attrs := metric.WithAttributes(
		attribute.String("rule_set", ruleSet),
		attribute.String("rule", rule),
	)
	m.ruleChecks.Add(ctx, 1, attrs)
	if err == nil && matched {
		m.ruleMatches.Add(ctx, 1, attrs)
	}
}
