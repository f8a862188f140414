package calculator

import (
	"strings"
)

const (
	// ErrorDisplay is the sentinel shown instead of a number after a division by
	// zero or an overflow. Only a fresh digit entry or Reset leaves it.
	ErrorDisplay = "Error"

	// MaxOperandLength caps the number of characters digit entry may produce.
	MaxOperandLength = 15

	// ResultPrecision is the number of fractional digits a result is rounded to
	// before formatting, hiding binary floating point artifacts like 0.1+0.2.
	ResultPrecision = 14

	zero = "0"
)

// State is a snapshot of everything a Machine knows. The zero value is not the
// initial state; use InitialState.
type State struct {
	// Current is the operand being edited or the last result.
	Current string
	// Previous is the operand captured when an operator was chosen.
	Previous string
	// Operation is the pending operation, None when no operator is chosen.
	Operation Operation
	// ResetPending makes the next digit start a fresh operand.
	ResetPending bool
}

// InitialState returns the state of a freshly cleared calculator.
func InitialState() State {
	return State{Current: zero}
}

// HasError reports whether the error sentinel is displayed.
func (s State) HasError() bool {
	return s.Current == ErrorDisplay
}

// Display holds the two strings a renderer shows: the current operand and the
// previous operand followed by the pending operator symbol.
type Display struct {
	Current  string
	Previous string
}

// Display returns the plain, ungrouped display strings of the state.
func (s State) Display() Display {
	d := Display{Current: s.Current}
	if s.Operation != None {
		d.Previous = s.Previous + " " + s.Operation.Symbol()
	}

	return d
}

// Machine is the calculator state machine. Create it with New or FromState.
type Machine struct {
	state State
}

// New returns a machine in the initial state.
func New() *Machine {
	return &Machine{state: InitialState()}
}

// FromState returns a machine resuming from a previously captured state.
func FromState(s State) *Machine {
	return &Machine{state: s}
}

// State returns a snapshot of the machine.
func (m *Machine) State() State { return m.state }

// Current returns the operand being edited or the last result.
func (m *Machine) Current() string { return m.state.Current }

// Previous returns the operand captured before the pending operator.
func (m *Machine) Previous() string { return m.state.Previous }

// Operation returns the pending operation.
func (m *Machine) Operation() Operation { return m.state.Operation }

// HasError reports whether the error sentinel is displayed.
func (m *Machine) HasError() bool { return m.state.HasError() }

// Display returns the plain display strings.
func (m *Machine) Display() Display { return m.state.Display() }

// PreviousDisplay returns the previous operand and operator symbol, or "" when
// no operator is pending.
func (m *Machine) PreviousDisplay() string { return m.state.Display().Previous }

// Reset returns every field to its initial value.
func (m *Machine) Reset() {
	m.state = InitialState()
}

// ClearEntry discards the operand being edited and keeps the pending operation.
func (m *Machine) ClearEntry() {
	m.state.Current = zero
}

// Backspace removes the last character of the current operand. It never leaves
// the operand empty or holding a bare minus sign; those become "0", and so does
// the error sentinel.
func (m *Machine) Backspace() {
	cur := m.state.Current
	if cur == ErrorDisplay || len(cur) <= 1 {
		m.state.Current = zero

		return
	}

	cur = cur[:len(cur)-1]
	if cur == "-" {
		cur = zero
	}
	m.state.Current = cur
}

// AppendDigit adds a digit or a decimal point to the current operand. Input that
// would make the operand longer than MaxOperandLength is dropped, as are a second
// decimal point, a redundant leading zero and any byte that is not 0-9 or '.'.
func (m *Machine) AppendDigit(d byte) {
	if !isDigit(d) && d != '.' {
		return
	}

	if m.state.ResetPending {
		m.state.Current = ""
		m.state.ResetPending = false
	}

	cur := m.state.Current
	switch {
	case d == '.' && strings.Contains(cur, "."):
		return
	case d == '0' && cur == zero:
		return
	case cur == zero && d != '.':
		cur = string(d)
	default:
		if len(cur) >= MaxOperandLength {
			return
		}
		cur += string(d)
	}

	m.state.Current = cur
}

// ChooseOperation records op as the pending operation.
//
// A pending operation is always folded first, so 3 + 4 × behaves as 7 × and
// 5 ÷ 0 + shows the error. When the fold leaves nothing usable as an operand,
// only the pending operator is replaced. The error sentinel never becomes a
// previous operand.
func (m *Machine) ChooseOperation(op Operation) {
	if !op.Valid() {
		return
	}

	s := &m.state
	if s.Operation != None && s.Previous != "" {
		m.Compute()
	}

	switch {
	case isBlank(s.Current):
		if s.Previous != "" {
			s.Operation = op
		}
	case s.Current == ErrorDisplay:
	default:
		s.Previous = s.Current
		s.Operation = op
		s.Current = zero
	}
}

// Compute applies the pending operation to the previous and current operands.
// It does nothing when no operation is pending or an operand does not parse.
// Division by zero and non-finite results put the machine in the error state.
func (m *Machine) Compute() {
	s := &m.state
	if !s.Operation.Valid() {
		return
	}

	prev, ok := parseOperand(s.Previous)
	if !ok {
		return
	}
	cur, ok := parseOperand(s.Current)
	if !ok {
		return
	}

	result, ok := apply(s.Operation, prev, cur)
	if !ok {
		m.fail()

		return
	}

	s.Current = FormatNumber(roundResult(result))
	s.Previous = ""
	s.Operation = None
	s.ResetPending = true
}

// ToggleSign adds or strips a leading minus. It does nothing on "0", on an empty
// operand and on the error sentinel.
func (m *Machine) ToggleSign() {
	cur := m.state.Current
	if cur == zero || cur == "" || cur == ErrorDisplay {
		return
	}

	if strings.HasPrefix(cur, "-") {
		m.state.Current = cur[1:]
	} else {
		m.state.Current = "-" + cur
	}
}

func (m *Machine) fail() {
	m.state.Current = ErrorDisplay
	m.state.Previous = ""
	m.state.Operation = None
	m.state.ResetPending = true
}

func isDigit(d byte) bool {
	return d >= '0' && d <= '9'
}

func isBlank(operand string) bool {
	return operand == zero || operand == ""
}
