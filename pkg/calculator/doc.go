// Package calculator implements the keypad calculator core: a small state machine
// holding the operand being edited, the operand captured before an operator was
// chosen, the pending operation and a reset-pending flag.
//
// The machine consumes discrete inputs (digits, operators, equals, clear,
// clear-entry, backspace and sign toggle) and exposes plain display strings.
// It knows nothing about rendering: locale grouping lives in package display and
// key bindings in the adapters that feed it.
//
// A Machine is not safe for concurrent use. Callers that share one between
// goroutines must serialise access.
package calculator
