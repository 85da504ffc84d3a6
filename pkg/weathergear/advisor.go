package weathergear

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/weathergear/pkg/weathergear/compare"
	"github.com/randalmurphal/weathergear/pkg/weathergear/config"
	"github.com/randalmurphal/weathergear/pkg/weathergear/observability"
	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"
	"github.com/randalmurphal/weathergear/pkg/weathergear/store"
)

// Advisor holds named rule sets and evaluates them against forecast records.
// It is safe for concurrent use.
type Advisor struct {
	ops *compare.OperatorMap
	cfg advisorConfig

	mu   sync.RWMutex
	sets map[string]*rules.Set
}

// Report is the outcome of one Evaluate call.
type Report struct {
	// EvaluationID uniquely identifies the evaluation in logs and traces.
	EvaluationID string
	// RuleSet is the name of the evaluated set.
	RuleSet string
	// Results holds one entry per rule in set order.
	Results []rules.Result
	// Matched lists the names of matched rules in set order.
	Matched []string
	// Duration is the wall time spent evaluating.
	Duration time.Duration
}

// New creates an Advisor that parses rules with ops.
// A nil ops gets a fresh compare.NewOperatorMap().
func New(ops *compare.OperatorMap, opts ...Option) *Advisor {
	if ops == nil {
		ops = compare.NewOperatorMap()
	}
	cfg := defaultAdvisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Advisor{
		ops:  ops,
		cfg:  cfg,
		sets: make(map[string]*rules.Set),
	}
}

// Operators returns the operator map rules are compiled with.
func (a *Advisor) Operators() *compare.OperatorMap {
	return a.ops
}

// RegisterOperator registers fn under symbol for rule sets loaded afterwards.
// Sets that are already compiled keep their functions.
func (a *Advisor) RegisterOperator(symbol string, fn compare.Func) {
	a.ops.Register(symbol, fn)
	observability.LogOperatorRegistered(a.cfg.logger, symbol)
}

// Compile builds a rule set from definitions and adds it.
func (a *Advisor) Compile(name string, defs []rules.Definition) (*rules.Set, error) {
	set, err := rules.Compile(name, defs, a.ops)
	if err != nil {
		return nil, err
	}
	a.add(set, "definitions")
	return set, nil
}

// Add makes a compiled set available under its name, replacing any set
// with the same name.
func (a *Advisor) Add(set *rules.Set) {
	a.add(set, "direct")
}

func (a *Advisor) add(set *rules.Set, source string) {
	a.mu.Lock()
	a.sets[set.Name()] = set
	a.mu.Unlock()
	observability.LogRuleSetLoaded(a.cfg.logger, set.Name(), source, set.Len())
}

// Set returns the loaded rule set called name.
func (a *Advisor) Set(name string) (*rules.Set, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.sets[name]
	return s, ok
}

// Sets returns the names of all loaded rule sets, sorted.
func (a *Advisor) Sets() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.sets))
	for name := range a.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads a YAML or JSON rule set file and adds the compiled set.
// Operator aliases declared in the file are registered on the advisor's
// operator map.
func (a *Advisor) LoadFile(path string) (*rules.Set, error) {
	cfg, err := config.FromFile(path)
	if err != nil {
		return nil, err
	}
	set, err := cfg.RuleSet(a.ops)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a.add(set, "file:"+path)
	return set, nil
}

// LoadStored compiles the named set from the configured store and adds it.
func (a *Advisor) LoadStored(name string) (*rules.Set, error) {
	if a.cfg.store == nil {
		return nil, ErrNoStore
	}
	defs, err := a.cfg.store.List(name)
	if err != nil {
		return nil, fmt.Errorf("load rule set %s: %w", name, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRuleSet, name)
	}
	set, err := rules.Compile(name, defs, a.ops)
	if err != nil {
		return nil, err
	}
	a.add(set, "store")
	return set, nil
}

// Save writes the named loaded set to the configured store.
func (a *Advisor) Save(name string) error {
	if a.cfg.store == nil {
		return ErrNoStore
	}
	set, ok := a.Set(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleSetNotFound, name)
	}
	return store.SaveSet(a.cfg.store, set)
}

// Evaluate checks every rule of the named set against record in order.
//
// Cancellation is checked before each rule. The first failing rule stops
// evaluation and its error is returned wrapped in a *rules.RuleError.
func (a *Advisor) Evaluate(ctx context.Context, name string, record compare.Record) (report *Report, evalErr error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	set, ok := a.Set(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuleSetNotFound, name)
	}

	evaluationID := uuid.NewString()
	logger := observability.EnrichLogger(a.cfg.logger, evaluationID, name)
	start := time.Now()
	elapsedMs := observability.TimedOperation()
	observability.LogEvaluationStart(logger, set.Len())

	var evalSpan trace.Span
	if a.cfg.tracingEnabled {
		ctx, evalSpan = a.cfg.spans.StartEvaluationSpan(ctx, name, evaluationID)
		defer func() {
			a.cfg.spans.EndSpanWithError(evalSpan, evalErr)
		}()
	}

	results := make([]rules.Result, 0, set.Len())
	for _, rule := range set.Rules() {
		if err := ctx.Err(); err != nil {
			evalErr = &rules.RuleError{Set: name, Rule: rule.Name(), Err: err}
			break
		}
		matched, err := a.checkRule(ctx, logger, name, rule, record)
		if err != nil {
			evalErr = &rules.RuleError{Set: name, Rule: rule.Name(), Err: err}
			break
		}
		results = append(results, rules.Result{Rule: rule.Name(), Matched: matched})
	}

	durationMs := elapsedMs()
	duration := time.Since(start)
	if evalErr != nil {
		a.cfg.metrics.RecordEvaluation(ctx, name, 0, duration, evalErr)
		observability.LogEvaluationError(logger, evalErr, durationMs)
		return nil, evalErr
	}

	matched := rules.Matched(results)
	a.cfg.metrics.RecordEvaluation(ctx, name, len(matched), duration, nil)
	observability.LogEvaluationComplete(logger, durationMs, matched)

	return &Report{
		EvaluationID: evaluationID,
		RuleSet:      name,
		Results:      results,
		Matched:      matched,
		Duration:     duration,
	}, nil
}

// checkRule evaluates one rule with its own span and metrics.
// logger carries the evaluation fields.
func (a *Advisor) checkRule(ctx context.Context, logger *slog.Logger, set string, rule rules.Rule, record compare.Record) (matched bool, err error) {
	condition := rule.Definition().When
	if a.cfg.tracingEnabled {
		var span trace.Span
		ctx, span = a.cfg.spans.StartRuleSpan(ctx, rule.Name(), condition)
		defer func() {
			if err == nil {
				a.cfg.spans.AddSpanEvent(ctx, "rule.checked", attribute.Bool("matched", matched))
			}
			a.cfg.spans.EndSpanWithError(span, err)
		}()
	}

	matched, err = rule.Comparison().Compare(record)
	a.cfg.metrics.RecordRule(ctx, set, rule.Name(), matched, err)
	if err == nil {
		observability.LogRuleMatched(logger, rule.Name(), condition, matched)
	}
	return matched, err
}

// Recommend evaluates the named set and returns only the matched rule names.
func (a *Advisor) Recommend(ctx context.Context, name string, record compare.Record) ([]string, error) {
	report, err := a.Evaluate(ctx, name, record)
	if err != nil {
		return nil, err
	}
	return report.Matched, nil
}
