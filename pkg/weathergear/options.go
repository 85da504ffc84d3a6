package weathergear

import (
	"log/slog"

	"github.com/randalmurphal/weathergear/pkg/weathergear/observability"
	"github.com/randalmurphal/weathergear/pkg/weathergear/store"
)

// advisorConfig holds configuration for an Advisor.
type advisorConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	store          store.Store
}

// defaultAdvisorConfig returns a silent configuration: no logs, metrics, or spans.
func defaultAdvisorConfig() advisorConfig {
	return advisorConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an Advisor.
type Option func(*advisorConfig)

// WithLogger sets the structured logger. A nil logger disables logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	advisor := weathergear.New(ops, weathergear.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *advisorConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: disabled.
func WithMetrics(enabled bool) Option {
	return func(c *advisorConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific MetricsRecorder.
func WithMetricsRecorder(rec observability.MetricsRecorder) Option {
	return func(c *advisorConfig) {
		if rec == nil {
			rec = observability.NoopMetrics{}
		}
		c.metrics = rec
	}
}

// WithTracing enables OpenTelemetry tracing using the global tracer provider.
// Default: disabled.
func WithTracing(enabled bool) Option {
	return func(c *advisorConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a specific SpanManager and enables tracing.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(c *advisorConfig) {
		if spans == nil {
			c.tracingEnabled = false
			c.spans = observability.NoopSpanManager{}
			return
		}
		c.tracingEnabled = true
		c.spans = spans
	}
}

// WithStore sets the rule store used by LoadStored and Save.
func WithStore(s store.Store) Option {
	return func(c *advisorConfig) {
		c.store = s
	}
}
