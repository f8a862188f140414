package calculator

import "fmt"

// Operation is the arithmetic operation waiting for its second operand.
type Operation int

const (
	// None means no operator has been chosen.
	None Operation = iota
	Add
	Subtract
	Multiply
	Divide
)

// Valid reports whether op is one of the four arithmetic operations.
func (op Operation) Valid() bool {
	return op >= Add && op <= Divide
}

// Symbol returns the keypad symbol shown next to the previous operand.
func (op Operation) Symbol() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "−"
	case Multiply:
		return "×"
	case Divide:
		return "÷"
	default:
		return ""
	}
}

func (op Operation) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "none"
	}
}

// ParseOperation accepts an operation name ("add") or any of its symbols, both
// the keypad ones (−, ×, ÷) and the ASCII keyboard ones (-, *, /).
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "add", "+":
		return Add, nil
	case "subtract", "-", "−":
		return Subtract, nil
	case "multiply", "*", "×", "x":
		return Multiply, nil
	case "divide", "/", "÷":
		return Divide, nil
	default:
		return None, fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, s)
	}
}
