package compare

// Comparison is a parsed "<key> <operator> <value>" condition.
// It is immutable after construction and holds no reference to the
// OperatorMap that produced it.
type Comparison struct {
	key      string
	operator string
	fn       Func
	value    Value
}

// NewComparison builds a Comparison from its parts.
// The operator symbol is only used for display.
func NewComparison(key, operator string, fn Func, value Value) *Comparison {
	return &Comparison{
		key:      key,
		operator: operator,
		fn:       fn,
		value:    value,
	}
}

// Key returns the record field the comparison reads.
func (c *Comparison) Key() string {
	return c.key
}

// Operator returns the operator symbol the comparison was parsed with.
func (c *Comparison) Operator() string {
	return c.operator
}

// Value returns the literal operand.
func (c *Comparison) Value() Value {
	return c.value
}

// Compare looks up the comparison's key in record and applies the comparison
// function to the record's value and the literal.
// Returns a *KeyNotFoundError if record has no entry for the key.
func (c *Comparison) Compare(record Record) (bool, error) {
	v, ok := record[c.key]
	if !ok {
		return false, &KeyNotFoundError{Key: c.key}
	}
	return c.fn(v, c.value)
}

// String returns the comparison in its parseable form.
func (c *Comparison) String() string {
	return c.key + " " + c.operator + " " + c.value.String()
}
