package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for inputs that do not describe a keypad action.
var ErrInvalidInput = errors.New("invalid input")

// InputKind enumerates the discrete user actions the machine understands.
type InputKind int

const (
	// InputDigit appends a digit or the decimal point.
	InputDigit InputKind = iota + 1
	// InputOperator chooses an arithmetic operation.
	InputOperator
	// InputEquals computes the pending operation.
	InputEquals
	// InputClear resets the machine.
	InputClear
	// InputClearEntry clears the current operand only.
	InputClearEntry
	// InputBackspace deletes the last character of the current operand.
	InputBackspace
	// InputToggleSign negates the current operand.
	InputToggleSign
)

func (k InputKind) String() string {
	switch k {
	case InputDigit:
		return "digit"
	case InputOperator:
		return "operator"
	case InputEquals:
		return "equals"
	case InputClear:
		return "clear"
	case InputClearEntry:
		return "clear_entry"
	case InputBackspace:
		return "backspace"
	case InputToggleSign:
		return "toggle_sign"
	default:
		return "unknown"
	}
}

// Input is a single user action. Digit is only meaningful for InputDigit and
// Operation only for InputOperator.
type Input struct {
	Kind      InputKind
	Digit     byte
	Operation Operation
}

// DigitInput returns the input for a digit key or the decimal point.
func DigitInput(d byte) Input {
	return Input{Kind: InputDigit, Digit: d}
}

// DecimalInput returns the input for the decimal point key.
func DecimalInput() Input {
	return DigitInput('.')
}

// OperatorInput returns the input for an operator key.
func OperatorInput(op Operation) Input {
	return Input{Kind: InputOperator, Operation: op}
}

// Press returns the input for one of the keys that carry no value.
func Press(kind InputKind) Input {
	return Input{Kind: kind}
}

// Validate checks that the input describes a keypad action.
func (in Input) Validate() error {
	switch in.Kind {
	case InputDigit:
		if !isDigit(in.Digit) && in.Digit != '.' {
			return fmt.Errorf("%w: %q is not a digit", ErrInvalidInput, in.Digit)
		}
	case InputOperator:
		if !in.Operation.Valid() {
			return fmt.Errorf("%w: operation %s", ErrInvalidInput, in.Operation)
		}
	case InputEquals, InputClear, InputClearEntry, InputBackspace, InputToggleSign:
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidInput, int(in.Kind))
	}

	return nil
}

func (in Input) String() string {
	switch in.Kind {
	case InputDigit:
		return string(in.Digit)
	case InputOperator:
		return in.Operation.Symbol()
	default:
		return in.Kind.String()
	}
}

// Apply routes a single input to the matching operation. Invalid inputs leave
// the machine untouched.
func (m *Machine) Apply(in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}

	switch in.Kind {
	case InputDigit:
		m.AppendDigit(in.Digit)
	case InputOperator:
		m.ChooseOperation(in.Operation)
	case InputEquals:
		m.Compute()
	case InputClear:
		m.Reset()
	case InputClearEntry:
		m.ClearEntry()
	case InputBackspace:
		m.Backspace()
	case InputToggleSign:
		m.ToggleSign()
	}

	return nil
}

// Dispatch applies in to m and returns the resulting state together with the
// two display strings.
func Dispatch(m *Machine, in Input) (State, Display, error) {
	err := m.Apply(in)

	return m.State(), m.Display(), err
}

// Run applies inputs in order and stops at the first invalid one.
func Run(m *Machine, inputs ...Input) (Display, error) {
	for i, in := range inputs {
		if err := m.Apply(in); err != nil {
			return m.Display(), fmt.Errorf("input %d: %w", i, err)
		}
	}

	return m.Display(), nil
}
