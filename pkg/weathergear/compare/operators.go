package compare

import "strings"

// Func compares a record value against a literal value.
// Implementations must be pure.
type Func func(recordValue, literal Value) (bool, error)

// defaultOperators returns the operators every OperatorMap starts with.
func defaultOperators() map[string]Func {
	return map[string]Func{
		"<":  LessThan,
		"<=": LessThanEqual,
		"==": Equal,
		">=": GreaterThanEqual,
		">":  GreaterThan,
		"!=": NotEqual,
	}
}

// LessThan reports whether a < b.
func LessThan(a, b Value) (bool, error) {
	return ordered("<", a, b,
		func(x, y float64) bool { return x < y },
		func(c int) bool { return c < 0 })
}

// LessThanEqual reports whether a <= b.
func LessThanEqual(a, b Value) (bool, error) {
	return ordered("<=", a, b,
		func(x, y float64) bool { return x <= y },
		func(c int) bool { return c <= 0 })
}

// Equal reports whether a == b.
func Equal(a, b Value) (bool, error) {
	if err := sameKind("==", a, b); err != nil {
		return false, err
	}
	if a.kind == KindText {
		return a.text == b.text, nil
	}
	return a.num == b.num, nil
}

// GreaterThanEqual reports whether a >= b.
func GreaterThanEqual(a, b Value) (bool, error) {
	return ordered(">=", a, b,
		func(x, y float64) bool { return x >= y },
		func(c int) bool { return c >= 0 })
}

// GreaterThan reports whether a > b.
func GreaterThan(a, b Value) (bool, error) {
	return ordered(">", a, b,
		func(x, y float64) bool { return x > y },
		func(c int) bool { return c > 0 })
}

// NotEqual reports whether a != b.
func NotEqual(a, b Value) (bool, error) {
	if err := sameKind("!=", a, b); err != nil {
		return false, err
	}
	if a.kind == KindText {
		return a.text != b.text, nil
	}
	return a.num != b.num, nil
}

func sameKind(op string, a, b Value) error {
	if a.kind != b.kind {
		return &TypeMismatchError{Operator: op, Left: a.kind, Right: b.kind}
	}
	return nil
}

// ordered applies num to numbers and text to the result of strings.Compare.
func ordered(op string, a, b Value, num func(x, y float64) bool, text func(c int) bool) (bool, error) {
	if err := sameKind(op, a, b); err != nil {
		return false, err
	}
	if a.kind == KindText {
		return text(strings.Compare(a.text, b.text)), nil
	}
	return num(a.num, b.num), nil
}
