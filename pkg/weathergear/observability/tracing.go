package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "weathergear"

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvaluationSpan starts a span for a whole rule set evaluation.
	StartEvaluationSpan(ctx context.Context, ruleSet, evaluationID string) (context.Context, trace.Span)

	// StartRuleSpan starts a span for one rule check.
	// The rule span should be a child of the evaluation span.
	StartRuleSpan(ctx context.Context, rule, condition string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses the global OTel tracer provider.
// The tracer is resolved on every span so a provider set later still applies.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// NewSpanManagerWithProvider returns a SpanManager bound to provider.
func NewSpanManagerWithProvider(provider trace.TracerProvider) SpanManager {
	return &otelSpanManager{tracer: provider.Tracer(tracerName)}
}

func (m *otelSpanManager) getTracer() trace.Tracer {
	if m.tracer != nil {
		return m.tracer
	}
	return otel.Tracer(tracerName)
}

// StartEvaluationSpan starts a span for a rule set evaluation.
func (m *otelSpanManager) StartEvaluationSpan(ctx context.Context, ruleSet, evaluationID string) (context.Context, trace.Span) {
	return m.getTracer().Start(ctx, "weathergear.evaluate",
		trace.WithAttributes(
			attribute.String("rule_set.name", ruleSet),
			attribute.String("evaluation.id", evaluationID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRuleSpan starts a span for a rule check.
func (m *otelSpanManager) StartRuleSpan(ctx context.Context, rule, condition string) (context.Context, trace.Span) {
	return m.getTracer().Start(ctx, "weathergear.rule."+rule,
		trace.WithAttributes(
			attribute.String("rule.name", rule),
			attribute.String("rule.condition", condition),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
