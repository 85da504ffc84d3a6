package weathergear

import "errors"

// Sentinel errors for the advisor.
var (
	// ErrNilContext indicates Evaluate was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrRuleSetNotFound indicates no rule set with the given name is loaded.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrNoStore indicates a store operation on an advisor built without WithStore.
	ErrNoStore = errors.New("no rule store configured")

	// ErrEmptyRuleSet indicates the store holds no rules for the requested set.
	ErrEmptyRuleSet = errors.New("rule set has no rules")
)
