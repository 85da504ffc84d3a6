package compare

import (
	"sort"
	"strings"
	"sync"
)

// OperatorMap maps operator symbols to comparison functions.
// It starts with "<", "<=", "==", ">=", ">" and "!=".
// All methods are safe for concurrent use.
type OperatorMap struct {
	mu  sync.RWMutex
	ops map[string]Func
}

// Option configures an OperatorMap.
type Option func(*OperatorMap)

// WithOperator registers an operator when the map is built.
// It may replace a default operator.
func WithOperator(symbol string, fn Func) Option {
	return func(m *OperatorMap) {
		m.ops[symbol] = fn
	}
}

// NewOperatorMap creates an OperatorMap holding the default operators,
// then applies opts in order.
func NewOperatorMap(opts ...Option) *OperatorMap {
	m := &OperatorMap{ops: defaultOperators()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register stores fn under operator, replacing any existing entry.
// The symbol is not validated.
func (m *OperatorMap) Register(operator string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[operator] = fn
}

// Lookup returns the function registered for operator.
func (m *OperatorMap) Lookup(operator string) (Func, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.ops[operator]
	return fn, ok
}

// Clone returns an independent copy of m.
// Registering on the copy leaves m unchanged.
func (m *OperatorMap) Clone() *OperatorMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ops := make(map[string]Func, len(m.ops))
	for symbol, fn := range m.ops {
		ops[symbol] = fn
	}
	return &OperatorMap{ops: ops}
}

// Operators returns the registered symbols in sorted order.
func (m *OperatorMap) Operators() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	symbols := make([]string, 0, len(m.ops))
	for s := range m.ops {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Parse converts a string of the form "<key> <operator> <value>" into a
// Comparison. Tokens are separated by single spaces; there is no quoting.
//
// The operator is resolved against the map's current contents. The value
// becomes a number if it parses as a float and stays text otherwise.
//
// Returns a *MalformedError if config does not split into exactly three
// tokens, or an *UnknownOperatorError if the operator is not registered.
func (m *OperatorMap) Parse(config string) (*Comparison, error) {
	tokens := strings.Split(config, " ")
	if len(tokens) != 3 {
		return nil, &MalformedError{Config: config, Tokens: len(tokens)}
	}
	key, operator, literal := tokens[0], tokens[1], tokens[2]

	fn, ok := m.Lookup(operator)
	if !ok {
		return nil, &UnknownOperatorError{Operator: operator}
	}
	return NewComparison(key, operator, fn, ParseValue(literal)), nil
}

// MustParse is like Parse but panics on error.
// Intended for comparisons fixed at compile time.
func (m *OperatorMap) MustParse(config string) *Comparison {
	c, err := m.Parse(config)
	if err != nil {
		panic("compare: " + err.Error())
	}
	return c
}
