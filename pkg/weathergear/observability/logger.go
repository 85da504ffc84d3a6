// Package observability provides structured logging, metrics, and tracing
// for rule evaluation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds evaluation context to a logger.
// Returns a new logger with evaluation_id and rule_set fields.
func EnrichLogger(logger *slog.Logger, evaluationID, ruleSet string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("evaluation_id", evaluationID),
		slog.String("rule_set", ruleSet),
	)
}

// LogEvaluationStart logs the start of a rule set evaluation.
// logger is expected to come from EnrichLogger.
func LogEvaluationStart(logger *slog.Logger, rules int) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation starting",
		slog.Int("rules", rules),
	)
}

// LogEvaluationComplete logs a successful evaluation.
func LogEvaluationComplete(logger *slog.Logger, durationMs float64, matched []string) {
	if logger == nil {
		return
	}
	logger.Info("evaluation completed",
		slog.Float64("duration_ms", durationMs),
		slog.Any("matched", matched),
	)
}

// LogEvaluationError logs a failed evaluation.
func LogEvaluationError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("evaluation failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRuleMatched logs the outcome of one rule.
func LogRuleMatched(logger *slog.Logger, rule, condition string, matched bool) {
	if logger == nil {
		return
	}
	logger.Debug("rule checked",
		slog.String("rule", rule),
		slog.String("condition", condition),
		slog.Bool("matched", matched),
	)
}

// LogRuleSetLoaded logs a rule set becoming available for evaluation.
func LogRuleSetLoaded(logger *slog.Logger, ruleSet, source string, rules int) {
	if logger == nil {
		return
	}
	logger.Info("rule set loaded",
		slog.String("rule_set", ruleSet),
		slog.String("source", source),
		slog.Int("rules", rules),
	)
}

// LogOperatorRegistered logs a custom operator registration.
func LogOperatorRegistered(logger *slog.Logger, operator string) {
	if logger == nil {
		return
	}
	logger.Info("operator registered",
		slog.String("operator", operator),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
