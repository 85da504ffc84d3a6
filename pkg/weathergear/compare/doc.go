/*
Package compare parses "key operator value" strings into comparisons that can
be evaluated against a record of named values.

# Overview

A comparison is written as exactly three tokens separated by single spaces:

	<key> <operator> <value>

The key names a field in a record. The operator is looked up in an
OperatorMap. The value is parsed as a float64 when possible and otherwise kept
as text.

	temperature > 30
	sky == cloudy
	wind_speed <= 1.5e1

# Basic Usage

	ops := compare.NewOperatorMap()

	c, err := ops.Parse("temperature > 30")
	if err != nil {
	    return err
	}

	hot, err := c.Compare(compare.Record{
	    "temperature": compare.Number(31.5),
	})
	// hot == true

# Operators

Every OperatorMap starts with six operators:

	<    less than
	<=   less than or equal
	==   equal
	>=   greater than or equal
	>    greater than
	!=   not equal

Numbers compare numerically and text compares lexicographically. Comparing a
number with text fails with a *TypeMismatchError for every built-in operator.

# Custom Operators

Register additional operators at construction or later. Registering an
existing symbol replaces it:

	ops := compare.NewOperatorMap(
	    compare.WithOperator("~=", func(a, b compare.Value) (bool, error) {
	        x, _ := a.Float()
	        y, _ := b.Float()
	        return math.Abs(x-y) < 0.5, nil
	    }),
	)

	ops.Register("contains", func(a, b compare.Value) (bool, error) {
	    return strings.Contains(a.String(), b.String()), nil
	})

Registration affects later calls to Parse only. A Comparison keeps the function
it was built with.

# Errors

	ErrMalformed        input did not split into three tokens
	ErrUnknownOperator  operator symbol is not registered
	ErrTypeMismatch     operands have different kinds
	ErrKeyNotFound      record has no value for the key
	ErrUnsupportedValue Go value cannot become a Value

Each sentinel is wrapped by a struct error carrying the details. Use
errors.Is for the category and errors.As for the fields.

# Thread Safety

OperatorMap is safe for concurrent use. Comparison is immutable.
*/
package compare
