package calculator_test

import (
	"math/rand"
	"strings"
	"testing"

	"calculator/pkg/calculator"

	"github.com/stretchr/testify/require"
)

// keys converts a compact keypad script into inputs: digits and '.' are digit
// keys, "+-*/" operators, '=' equals, 'C' clear, 'E' clear entry, '<' backspace
// and '~' sign toggle.
func keys(t *testing.T, script string) []calculator.Input {
	t.Helper()

	inputs := make([]calculator.Input, 0, len(script))
	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c >= '0' && c <= '9', c == '.':
			inputs = append(inputs, calculator.DigitInput(c))
		case strings.IndexByte("+-*/", c) >= 0:
			op, err := calculator.ParseOperation(string(c))
			require.NoError(t, err)
			inputs = append(inputs, calculator.OperatorInput(op))
		case c == '=':
			inputs = append(inputs, calculator.Press(calculator.InputEquals))
		case c == 'C':
			inputs = append(inputs, calculator.Press(calculator.InputClear))
		case c == 'E':
			inputs = append(inputs, calculator.Press(calculator.InputClearEntry))
		case c == '<':
			inputs = append(inputs, calculator.Press(calculator.InputBackspace))
		case c == '~':
			inputs = append(inputs, calculator.Press(calculator.InputToggleSign))
		case c == ' ':
		default:
			t.Fatalf("unknown key %q in script %q", c, script)
		}
	}

	return inputs
}

func run(t *testing.T, script string) *calculator.Machine {
	t.Helper()

	m := calculator.New()
	_, err := calculator.Run(m, keys(t, script)...)
	require.NoError(t, err)

	return m
}

func TestNew_InitialState(t *testing.T) {
	m := calculator.New()

	require.Equal(t, calculator.InitialState(), m.State())
	require.Equal(t, "0", m.Current())
	require.Equal(t, "", m.Previous())
	require.Equal(t, calculator.None, m.Operation())
	require.False(t, m.HasError())
	require.Equal(t, calculator.Display{Current: "0"}, m.Display())
}

func TestAppendDigit(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "single digit replaces zero", script: "7", want: "7"},
		{name: "redundant leading zero rejected", script: "00", want: "0"},
		{name: "zero then digit", script: "007", want: "7"},
		{name: "decimal point keeps zero", script: ".", want: "0."},
		{name: "zero point five", script: "0.5", want: "0.5"},
		{name: "zeros after the point are kept", script: "0.00", want: "0.00"},
		{name: "second decimal point rejected", script: "1..2.3", want: "1.23"},
		{name: "overflow input dropped", script: "1234567890123456789", want: "123456789012345"},
		{name: "overflow with decimal point", script: "1234567890.1234567", want: "1234567890.1234"},
		{name: "toggled operand does not grow past the limit", script: "123456789012345~6", want: "-123456789012345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.script).Current())
		})
	}
}

func TestAppendDigit_IgnoresNonDigits(t *testing.T) {
	m := calculator.New()
	m.AppendDigit('x')
	m.AppendDigit('-')

	require.Equal(t, "0", m.Current())
}

func TestAppendDigit_RandomSequences(t *testing.T) {
	rnd := rand.New(rand.NewSource(42)) //nolint: gosec
	alphabet := "0123456789."

	for i := 0; i < 500; i++ {
		m := calculator.New()
		n := rnd.Intn(30)
		for j := 0; j < n; j++ {
			m.AppendDigit(alphabet[rnd.Intn(len(alphabet))])

			cur := m.Current()
			require.LessOrEqual(t, len(cur), calculator.MaxOperandLength)
			require.LessOrEqual(t, strings.Count(cur, "."), 1, "operand %q", cur)
			if strings.HasPrefix(cur, "0") {
				require.True(t, cur == "0" || strings.HasPrefix(cur, "0."), "redundant leading zero in %q", cur)
			}
		}
	}
}

func TestAppendDigit_StartsFreshAfterResult(t *testing.T) {
	m := run(t, "2+3=")
	require.Equal(t, "5", m.Current())
	require.True(t, m.State().ResetPending)

	m.AppendDigit('7')
	require.Equal(t, "7", m.Current())
	require.False(t, m.State().ResetPending)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "addition", script: "2+3=", want: "5"},
		{name: "subtraction below zero", script: "2-5=", want: "-3"},
		{name: "multiplication", script: "1.5*4=", want: "6"},
		{name: "division", script: "1/4=", want: "0.25"},
		{name: "floating point artifact is rounded", script: "0.1+0.2=", want: "0.3"},
		{name: "repeating fraction rounds past the length limit", script: "1/3=", want: "3.3333333333e-1"},
		{name: "negative zero is shown as zero", script: "5~*0=", want: "0"},
		{name: "second operand left at zero", script: "3+=", want: "3"},
		{name: "long result in scientific notation", script: "999999999*999999999=", want: "9.9999999800e+17"},
		{name: "result reused as first operand", script: "2+3=*4=", want: "20"},
		{name: "new number after result", script: "2+3=7", want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.script).Current())
		})
	}
}

func TestCompute_ChainedOperations(t *testing.T) {
	m := run(t, "3+4*")
	require.Equal(t, "7", m.Previous())
	require.Equal(t, calculator.Multiply, m.Operation())
	require.Equal(t, "7 ×", m.PreviousDisplay())
	require.Equal(t, "0", m.Current())

	_, err := calculator.Run(m, keys(t, "2=")...)
	require.NoError(t, err)
	require.Equal(t, "14", m.Current())
	require.Equal(t, "", m.PreviousDisplay())
}

func TestCompute_IdempotentOnce(t *testing.T) {
	m := run(t, "5+3=")
	require.Equal(t, "8", m.Current())

	before := m.State()
	m.Compute()
	require.Equal(t, before, m.State())
}

func TestCompute_NoOperationPending(t *testing.T) {
	m := run(t, "42")
	m.Compute()

	require.Equal(t, "42", m.Current())
	require.False(t, m.State().ResetPending)
}

func TestCompute_UnparsableOperand(t *testing.T) {
	for _, st := range []calculator.State{
		{Current: "5", Previous: ".", Operation: calculator.Add},
		{Current: "-", Previous: "5", Operation: calculator.Add},
		{Current: "", Previous: "5", Operation: calculator.Multiply},
		{Current: "5", Previous: calculator.ErrorDisplay, Operation: calculator.Add},
	} {
		m := calculator.FromState(st)
		m.Compute()
		require.Equal(t, st, m.State())
	}
}

func TestCompute_DivideByZero(t *testing.T) {
	m := calculator.FromState(calculator.State{Previous: "5", Operation: calculator.Divide, Current: "0"})
	m.Compute()

	require.Equal(t, calculator.State{
		Current:      calculator.ErrorDisplay,
		Previous:     "",
		Operation:    calculator.None,
		ResetPending: true,
	}, m.State())
	require.True(t, m.HasError())
	require.Equal(t, "", m.PreviousDisplay())
}

func TestCompute_Overflow(t *testing.T) {
	m := calculator.FromState(calculator.State{Previous: "1e308", Operation: calculator.Multiply, Current: "10"})
	m.Compute()

	divByZero := calculator.FromState(calculator.State{Previous: "5", Operation: calculator.Divide, Current: "0"})
	divByZero.Compute()

	require.Equal(t, divByZero.State(), m.State())
}

func TestErrorRecovery(t *testing.T) {
	m := run(t, "8/0=")
	require.True(t, m.HasError())

	// sign toggle and operators are ignored on the sentinel
	m.ToggleSign()
	require.Equal(t, calculator.ErrorDisplay, m.Current())
	m.ChooseOperation(calculator.Add)
	require.Equal(t, calculator.ErrorDisplay, m.Current())
	require.Equal(t, calculator.None, m.Operation())
	require.Equal(t, "", m.Previous())

	// a digit starts a fresh operand
	m.AppendDigit('7')
	require.Equal(t, "7", m.Current())
	require.False(t, m.HasError())

	m = run(t, "8/0=C")
	require.Equal(t, calculator.InitialState(), m.State())
}

func TestChooseOperation_FoldsBeforeReplacing(t *testing.T) {
	tests := []struct {
		script   string
		current  string
		previous string
	}{
		{script: "3+*", current: "0", previous: "3 ×"},
		{script: "5*0+", current: "0", previous: ""},
		{script: "5*0+3=", current: "3", previous: ""},
		{script: "3+4*", current: "0", previous: "7 ×"},
		{script: "8/+", current: calculator.ErrorDisplay, previous: ""},
		{script: "5/0+", current: calculator.ErrorDisplay, previous: ""},
	}

	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			m := run(t, tt.script)
			require.Equal(t, tt.current, m.Current())
			require.Equal(t, tt.previous, m.PreviousDisplay())
		})
	}
}

func TestChooseOperation_AfterFoldedZeroOperand(t *testing.T) {
	m := run(t, "3+*")
	require.Equal(t, "3", m.Previous())
	require.Equal(t, calculator.Multiply, m.Operation())

	_, err := calculator.Run(m, keys(t, "2=")...)
	require.NoError(t, err)
	require.Equal(t, "6", m.Current())
}

func TestChooseOperation_NoOperandYet(t *testing.T) {
	m := run(t, "+")
	require.Equal(t, calculator.InitialState(), m.State())

	m.ChooseOperation(calculator.None)
	require.Equal(t, calculator.InitialState(), m.State())
}

func TestClearEntry_KeepsPendingOperation(t *testing.T) {
	m := run(t, "3+45E")
	require.Equal(t, "0", m.Current())
	require.Equal(t, "3 +", m.PreviousDisplay())

	_, err := calculator.Run(m, keys(t, "6=")...)
	require.NoError(t, err)
	require.Equal(t, "9", m.Current())
}

func TestBackspace(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{name: "single character", from: "5", want: "0"},
		{name: "last digit removed", from: "123", want: "12"},
		{name: "decimal point removed", from: "1.", want: "1"},
		{name: "bare minus is not left behind", from: "-5", want: "0"},
		{name: "zero stays zero", from: "0", want: "0"},
		{name: "empty becomes zero", from: "", want: "0"},
		{name: "error sentinel cleared", from: calculator.ErrorDisplay, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := calculator.FromState(calculator.State{Current: tt.from})
			m.Backspace()
			require.Equal(t, tt.want, m.Current())
		})
	}
}

func TestToggleSign(t *testing.T) {
	for _, noop := range []string{"0", "", calculator.ErrorDisplay} {
		m := calculator.FromState(calculator.State{Current: noop})
		m.ToggleSign()
		require.Equal(t, noop, m.Current())
	}

	m := calculator.FromState(calculator.State{Current: "12.5"})
	m.ToggleSign()
	require.Equal(t, "-12.5", m.Current())

	for _, v := range []string{"12.5", "-3", "0.", "7", "9.9999999800e+17"} {
		m := calculator.FromState(calculator.State{Current: v})
		m.ToggleSign()
		m.ToggleSign()
		require.Equal(t, v, m.Current())
	}
}

func TestReset(t *testing.T) {
	m := run(t, "12+3")
	m.Reset()

	require.Equal(t, calculator.InitialState(), m.State())
}
