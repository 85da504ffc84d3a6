package compare

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package wraps one of these.
var (
	// ErrMalformed indicates a comparison string did not split into three tokens.
	ErrMalformed = errors.New("malformed comparison")

	// ErrUnknownOperator indicates the operator symbol is not registered.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrTypeMismatch indicates the operands of a comparison have different kinds.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrKeyNotFound indicates a record has no value for a comparison's key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnsupportedValue indicates a Go value cannot be converted to a Value.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// MalformedError reports input that is not "<key> <operator> <value>".
type MalformedError struct {
	// Config is the input as given.
	Config string
	// Tokens is the number of tokens the input split into.
	Tokens int
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed comparison %q: expected 3 space-separated tokens, got %d",
		e.Config, e.Tokens)
}

// Unwrap returns ErrMalformed.
func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// UnknownOperatorError reports an operator symbol missing from the OperatorMap.
type UnknownOperatorError struct {
	Operator string
}

// Error implements the error interface.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("invalid comparison: %s", e.Operator)
}

// Unwrap returns ErrUnknownOperator.
func (e *UnknownOperatorError) Unwrap() error {
	return ErrUnknownOperator
}

// TypeMismatchError reports a comparison between a number and text.
type TypeMismatchError struct {
	Operator string
	Left     Kind
	Right    Kind
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("'%s' not supported between instances of '%s' and '%s'",
		e.Operator, e.Left, e.Right)
}

// Unwrap returns ErrTypeMismatch.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// KeyNotFoundError reports a record lookup miss.
type KeyNotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

// Unwrap returns ErrKeyNotFound.
func (e *KeyNotFoundError) Unwrap() error {
	return ErrKeyNotFound
}

// UnsupportedValueError reports a Go value with no Value equivalent.
type UnsupportedValueError struct {
	Value any
}

// Error implements the error interface.
func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value %v of type %T", e.Value, e.Value)
}

// Unwrap returns ErrUnsupportedValue.
func (e *UnsupportedValueError) Unwrap() error {
	return ErrUnsupportedValue
}

// FieldError wraps a conversion error with the record field it came from.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FieldError) Unwrap() error {
	return e.Err
}
