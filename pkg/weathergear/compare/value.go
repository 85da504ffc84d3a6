package compare

import (
	"errors"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNumber is a float64 value.
	KindNumber Kind = iota

	// KindText is a string value.
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is either a number or a text string.
// The zero Value is the number 0.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// ParseValue interprets a literal token.
// Tokens in base-10 decimal or exponential notation become numbers.
// Anything else is kept verbatim as text.
func ParseValue(token string) Value {
	if isHex(token) {
		return Text(token)
	}
	f, err := strconv.ParseFloat(token, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		// Out of range values saturate to ±Inf or 0.
		return Number(f)
	}
	return Text(token)
}

// isHex reports whether token carries a hexadecimal prefix, which
// strconv.ParseFloat would otherwise accept.
func isHex(token string) bool {
	t := strings.TrimLeft(token, "+-")
	return strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X")
}

// ValueOf converts a Go value into a Value.
// Accepts Value, string, and all float and integer kinds.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return Text(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	default:
		return Value{}, &UnsupportedValueError{Value: v}
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// IsText reports whether v holds text.
func (v Value) IsText() bool {
	return v.kind == KindText
}

// Float returns the number held by v.
// ok is false if v holds text.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String returns the text held by v, or the shortest decimal form of its number.
func (v Value) String() string {
	if v.kind == KindText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Any returns v as a float64 or a string.
func (v Value) Any() any {
	if v.kind == KindText {
		return v.text
	}
	return v.num
}

// Record maps field names to values.
type Record map[string]Value

// RecordOf converts a generic map (for example decoded YAML or JSON) into a Record.
func RecordOf(m map[string]any) (Record, error) {
	r := make(Record, len(m))
	for k, raw := range m {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, &FieldError{Field: k, Err: err}
		}
		r[k] = v
	}
	return r, nil
}
