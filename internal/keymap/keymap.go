// Package keymap binds keyboard keys to calculator inputs. Key names follow the
// browser KeyboardEvent.key values ("Enter", "Escape", "Backspace", "Delete")
// plus the printable characters of the keypad.
package keymap

import (
	"strings"

	"calculator/pkg/calculator"
	"calculator/pkg/serrors"
)

// named holds the keys that are matched case-insensitively.
var named = map[string]calculator.Input{ //nolint: gochecknoglobals
	"enter":     calculator.Press(calculator.InputEquals),
	"return":    calculator.Press(calculator.InputEquals),
	"escape":    calculator.Press(calculator.InputClear),
	"esc":       calculator.Press(calculator.InputClear),
	"backspace": calculator.Press(calculator.InputBackspace),
	"delete":    calculator.Press(calculator.InputClearEntry),
	"del":       calculator.Press(calculator.InputClearEntry),
}

// Lookup returns the input bound to key.
//
//   - 0-9 and "." enter digits
//   - "+", "-", "*", "/" (and the keypad symbols −, ×, ÷) choose an operator
//   - "Enter" and "=" compute
//   - "Escape", "c" and "C" clear everything
//   - "Backspace" deletes one character, "Delete" clears the entry
//   - "n", "N" and "±" toggle the sign
func Lookup(key string) (calculator.Input, bool) {
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= '0' && c <= '9', c == '.':
			return calculator.DigitInput(c), true
		case c == '=':
			return calculator.Press(calculator.InputEquals), true
		case c == 'c' || c == 'C':
			return calculator.Press(calculator.InputClear), true
		case c == 'n' || c == 'N':
			return calculator.Press(calculator.InputToggleSign), true
		}
	}

	if key == "±" {
		return calculator.Press(calculator.InputToggleSign), true
	}

	if op, err := calculator.ParseOperation(key); err == nil && isOperatorKey(key) {
		return calculator.OperatorInput(op), true
	}

	in, ok := named[strings.ToLower(key)]

	return in, ok
}

// ParseKeys maps every key to its input. Unknown keys yield a bad request error
// naming the first offending key.
func ParseKeys(keys []string) ([]calculator.Input, error) {
	inputs := make([]calculator.Input, 0, len(keys))
	for i, key := range keys {
		in, ok := Lookup(key)
		if !ok {
			return nil, serrors.With(serrors.ErrBadRequest, "unknown key %q at position %d", key, i)
		}
		inputs = append(inputs, in)
	}

	return inputs, nil
}

// isOperatorKey keeps operation names such as "add" from being treated as keys.
func isOperatorKey(key string) bool {
	switch key {
	case "+", "-", "*", "/", "−", "×", "÷":
		return true
	default:
		return false
	}
}

// ParseLine reads a line typed in line mode. Each whitespace separated field is
// either a key name ("Enter", "Backspace") or a run of single character keys
// such as "12+3=".
func ParseLine(line string) ([]calculator.Input, error) {
	var inputs []calculator.Input
	for _, field := range strings.Fields(line) {
		if in, ok := Lookup(field); ok {
			inputs = append(inputs, in)

			continue
		}

		for _, r := range field {
			in, ok := Lookup(string(r))
			if !ok {
				return nil, serrors.With(serrors.ErrBadRequest, "unknown key %q in %q", string(r), field)
			}
			inputs = append(inputs, in)
		}
	}

	return inputs, nil
}
