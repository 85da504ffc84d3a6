// Package rules groups named comparisons into rule sets.
//
// A rule pairs a name, usually a recommendation like "umbrella", with a single
// comparison expression. A Set evaluates its rules in definition order against
// one record and reports which of them matched.
package rules

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/weathergear/pkg/weathergear/compare"
)

// Sentinel errors for rule compilation.
var (
	// ErrEmptyRuleName indicates a definition without a name.
	ErrEmptyRuleName = errors.New("rule name is empty")

	// ErrDuplicateRule indicates two definitions in one set share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")
)

// Definition is the uncompiled form of a rule.
type Definition struct {
	// Name identifies the rule within its set.
	Name string `json:"name" yaml:"name"`

	// When is a single "<key> <operator> <value>" comparison.
	When string `json:"when" yaml:"when"`
}

// Rule is a compiled Definition.
type Rule struct {
	def        Definition
	comparison *compare.Comparison
}

// Name returns the rule name.
func (r Rule) Name() string {
	return r.def.Name
}

// Comparison returns the parsed condition.
func (r Rule) Comparison() *compare.Comparison {
	return r.comparison
}

// Definition returns the definition the rule was compiled from.
func (r Rule) Definition() Definition {
	return r.def
}

// RuleError wraps a failure with the rule it came from.
type RuleError struct {
	// Set is the rule set name.
	Set string
	// Rule is the rule name. Empty when the failure is the missing name itself.
	Rule string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule set %s: rule %s: %v", e.Set, e.Rule, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one rule.
type Result struct {
	Rule    string `json:"rule" yaml:"rule"`
	Matched bool   `json:"matched" yaml:"matched"`
}

// Set is an ordered, named collection of compiled rules.
// A Set is immutable once compiled.
type Set struct {
	name  string
	rules []Rule
}

// Compile parses every definition with ops and returns the resulting Set.
// Definition order is kept.
func Compile(name string, defs []Definition, ops *compare.OperatorMap) (*Set, error) {
	s := &Set{name: name, rules: make([]Rule, 0, len(defs))}
	seen := make(map[string]struct{}, len(defs))

	for i, def := range defs {
		if def.Name == "" {
			return nil, &RuleError{Set: name, Rule: fmt.Sprintf("#%d", i), Err: ErrEmptyRuleName}
		}
		if _, dup := seen[def.Name]; dup {
			return nil, &RuleError{Set: name, Rule: def.Name, Err: ErrDuplicateRule}
		}
		seen[def.Name] = struct{}{}

		c, err := ops.Parse(def.When)
		if err != nil {
			return nil, &RuleError{Set: name, Rule: def.Name, Err: err}
		}
		s.rules = append(s.rules, Rule{def: def, comparison: c})
	}
	return s, nil
}

// Name returns the set name.
func (s *Set) Name() string {
	return s.name
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the compiled rules in order.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Definitions returns the definitions the set was compiled from.
func (s *Set) Definitions() []Definition {
	defs := make([]Definition, len(s.rules))
	for i, r := range s.rules {
		defs[i] = r.def
	}
	return defs
}

// Evaluate checks every rule against record in order.
// The first failing rule stops evaluation with a *RuleError.
func (s *Set) Evaluate(record compare.Record) ([]Result, error) {
	results := make([]Result, 0, len(s.rules))
	for _, r := range s.rules {
		matched, err := r.comparison.Compare(record)
		if err != nil {
			return nil, &RuleError{Set: s.name, Rule: r.Name(), Err: err}
		}
		results = append(results, Result{Rule: r.Name(), Matched: matched})
	}
	return results, nil
}

// Matching returns the names of the rules that match record, in order.
func (s *Set) Matching(record compare.Record) ([]string, error) {
	results, err := s.Evaluate(record)
	if err != nil {
		return nil, err
	}
	return Matched(results), nil
}

// Matched filters results down to the names of matched rules.
func Matched(results []Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		if r.Matched {
			names = append(names, r.Rule)
		}
	}
	return names
}
