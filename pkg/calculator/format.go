package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// exponentDigits is the number of fractional digits used when a number is too
// long to show in plain decimal form.
const exponentDigits = 10

// FormatNumber renders a result for the current operand. Non-finite values become
// ErrorDisplay. Values whose plain decimal form is longer than MaxOperandLength
// are written in scientific notation with ten fractional digits, e.g.
// 1.2345678900e+20.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorDisplay
	}
	if v == 0 {
		// drop the sign of negative zero
		v = 0
	}

	plain := strconv.FormatFloat(v, 'f', -1, 64)
	if len(plain) > MaxOperandLength {
		return exponential(v)
	}

	return plain
}

// FormatValue is FormatNumber for operand strings. The error sentinel and
// strings that are not numbers are returned unchanged.
func FormatValue(s string) string {
	if s == ErrorDisplay {
		return s
	}

	v, ok := parseOperand(s)
	if !ok {
		return s
	}

	return FormatNumber(v)
}

// exponential formats v like 1.2345678900e+8, without zero padding the exponent.
func exponential(v float64) string {
	s := strconv.FormatFloat(v, 'e', exponentDigits, 64)
	mantissa, exp, found := strings.Cut(s, "e")
	if !found || exp == "" {
		return s
	}

	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + exp[:1] + digits
}

// parseOperand parses an operand string. Empty strings, partial literals such as
// "." or "-", the error sentinel and values outside the float64 range do not parse.
func parseOperand(s string) (float64, bool) {
	if s == "" || s == ErrorDisplay {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// apply evaluates op. It reports false on division by zero and on results that
// are not finite.
func apply(op Operation, a, b float64) (float64, bool) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		if b == 0 {
			return 0, false
		}
		r = a / b
	default:
		return 0, false
	}

	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}

	return r, true
}

// roundResult rounds a finite value to ResultPrecision fractional digits.
func roundResult(v float64) float64 {
	return decimal.NewFromFloat(v).Round(ResultPrecision).InexactFloat64()
}
