/*
Package weathergear turns simple threshold rules into recommendations for a
weather forecast.

# Overview

A rule pairs a name with one comparison, such as "umbrella" with
"precipitation >= 40". Rules are grouped into named sets. An Advisor holds
the sets and evaluates them against a forecast record, reporting which rules
matched.

Comparisons are parsed by package compare. The operator map is built once
by application startup code and passed to New:

	ops := compare.NewOperatorMap()
	advisor := weathergear.New(ops,
	    weathergear.WithLogger(logger),
	    weathergear.WithMetrics(true),
	    weathergear.WithTracing(true),
	)

# Loading Rule Sets

From a YAML or JSON file:

	set, err := advisor.LoadFile("commute.yaml")

From definitions in code:

	set, err := advisor.Compile("commute", []rules.Definition{
	    {Name: "umbrella", When: "precipitation >= 40"},
	    {Name: "coat", When: "temperature < 10"},
	})

From a rule store:

	s, err := store.NewSQLiteStore("rules.db")
	advisor := weathergear.New(ops, weathergear.WithStore(s))
	set, err := advisor.LoadStored("commute")

# Evaluation

	report, err := advisor.Evaluate(ctx, "commute", compare.Record{
	    "precipitation": compare.Number(55),
	    "temperature":   compare.Number(12),
	})
	// report.Matched == []string{"umbrella"}

Evaluation stops at the first rule that fails, for example because the
record lacks a field or a number is compared with text:

	var ruleErr *rules.RuleError
	if errors.As(err, &ruleErr) {
	    fmt.Println("failed rule:", ruleErr.Rule)
	}
	if errors.Is(err, compare.ErrKeyNotFound) {
	    // forecast is missing a field
	}

# Observability

Logs carry evaluation_id, rule_set, rule, duration_ms, and matched fields.
OpenTelemetry metrics: weathergear.evaluations, weathergear.evaluation.latency_ms,
weathergear.evaluation.errors, weathergear.evaluation.matched_rules,
weathergear.rule.checks, weathergear.rule.matches.
OpenTelemetry tracing: weathergear.evaluate > weathergear.rule.{name} spans.
*/
package weathergear
