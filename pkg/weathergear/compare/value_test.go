package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		token    string
		wantKind Kind
		wantNum  float64
	}{
		{"30", KindNumber, 30},
		{"-1.5e3", KindNumber, -1500},
		{"0.25", KindNumber, 0.25},
		{"+7", KindNumber, 7},
		{".5", KindNumber, 0.5},
		{"1E2", KindNumber, 100},
		{"cloudy", KindText, 0},
		{"30c", KindText, 0},
		{"", KindText, 0},
		{"0x1p-2", KindText, 0},
		{"-0X10", KindText, 0},
		{"1_000", KindText, 0},
		{"30\n", KindText, 0},
		{"\t5", KindText, 0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			v := ParseValue(tt.token)
			assert.Equal(t, tt.wantKind, v.Kind())
			if tt.wantKind == KindNumber {
				f, ok := v.Float()
				require.True(t, ok)
				assert.Equal(t, tt.wantNum, f)
			} else {
				assert.Equal(t, tt.token, v.String())
			}
		})
	}
}

func TestParseValue_OutOfRange(t *testing.T) {
	v := ParseValue("1e400")
	f, ok := v.Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestParseValue_Infinity(t *testing.T) {
	v := ParseValue("-inf")
	f, ok := v.Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, -1))
}

func TestValue_Accessors(t *testing.T) {
	n := Number(2.5)
	assert.True(t, n.IsNumber())
	assert.False(t, n.IsText())
	assert.Equal(t, "2.5", n.String())
	assert.Equal(t, 2.5, n.Any())

	s := Text("rain")
	assert.True(t, s.IsText())
	_, ok := s.Float()
	assert.False(t, ok)
	assert.Equal(t, "rain", s.Any())

	var zero Value
	assert.Equal(t, KindNumber, zero.Kind())
	assert.Equal(t, "0", zero.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"float64", 1.5, Number(1.5)},
		{"float32", float32(0.5), Number(0.5)},
		{"int", 3, Number(3)},
		{"int64", int64(-4), Number(-4)},
		{"uint8", uint8(9), Number(9)},
		{"string", "sunny", Text("sunny")},
		{"value", Text("x"), Text("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOf_Unsupported(t *testing.T) {
	_, err := ValueOf(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	var uvErr *UnsupportedValueError
	require.ErrorAs(t, err, &uvErr)
	assert.Equal(t, true, uvErr.Value)
	assert.Equal(t, "unsupported value true of type bool", err.Error())
}

func TestRecordOf(t *testing.T) {
	r, err := RecordOf(map[string]any{
		"temperature": 21,
		"sky":         "clear",
	})
	require.NoError(t, err)
	assert.Equal(t, Record{"temperature": Number(21), "sky": Text("clear")}, r)
}

func TestRecordOf_BadField(t *testing.T) {
	_, err := RecordOf(map[string]any{"alerts": []string{"wind"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "alerts", fieldErr.Field)
}
