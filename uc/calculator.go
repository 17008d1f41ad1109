package uc

import (
	"errors"
)

// ErrDivisionByZero is an invalid-argument error. Its message is shown
// to API clients as is.
var ErrDivisionByZero = errors.New("Division by zero is not allowed")

type BinaryOperation = func(a, b float64) (float64, error)

const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// Operations maps an operation id to its implementation.
var Operations = map[string]BinaryOperation{
	OpAdd:      Add,
	OpSubtract: Subtract,
	OpMultiply: Multiply,
	OpDivide:   Divide,
}

func Add(a, b float64) (float64, error) {
	return a + b, nil
}

func Subtract(a, b float64) (float64, error) {
	return a - b, nil
}

func Multiply(a, b float64) (float64, error) {
	return a * b, nil
}

// Divide fails only for a zero divisor. Inf and NaN operands follow
// IEEE-754.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}
