// Package repl drives a calculator from a terminal. In key mode every keystroke
// is applied as it arrives and the display is redrawn in place; in line mode
// each line is a list of keys applied together.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"calculator/internal/keymap"
	"calculator/pkg/calculator"
	"calculator/pkg/display"
	"calculator/pkg/serrors"
)

// DefaultWidth is the width the display lines are right-aligned to.
const DefaultWidth = 24

const (
	cursorUp  = "\x1b[1A"
	clearLine = "\x1b[2K"
)

// Options configure a REPL.
type Options struct {
	// Formatter groups the numbers on screen. Nil shows them as they are.
	Formatter display.Formatter
	// Width right-aligns the display lines. Zero selects DefaultWidth.
	Width int
}

// REPL owns one calculator and the terminal it is shown on.
type REPL struct {
	machine  *calculator.Machine
	renderer display.Renderer
	width    int
	out      io.Writer
	drawn    bool
}

func New(out io.Writer, options Options) *REPL {
	if options.Width <= 0 {
		options.Width = DefaultWidth
	}

	return &REPL{
		machine:  calculator.New(),
		renderer: display.NewRenderer(options.Formatter),
		width:    options.Width,
		out:      out,
	}
}

// Machine exposes the calculator driven by the REPL.
func (r *REPL) Machine() *calculator.Machine {
	return r.machine
}

// Screen returns what the display currently shows.
func (r *REPL) Screen() display.Screen {
	return r.renderer.Render(r.machine.State())
}

func (r *REPL) lines() (string, string) {
	s := r.Screen()

	return fmt.Sprintf("%*s", r.width, s.Previous), fmt.Sprintf("%*s", r.width, s.Current)
}

// drawRaw redraws the two display lines in place. Raw terminals do not
// translate "\n", so lines end with "\r\n".
func (r *REPL) drawRaw() error {
	prev, cur := r.lines()

	var b strings.Builder
	if r.drawn {
		b.WriteString(cursorUp + "\r")
	}
	b.WriteString(clearLine + prev + "\r\n" + clearLine + cur + "\r")
	r.drawn = true

	_, err := io.WriteString(r.out, b.String())

	return err //nolint: wrapcheck
}

func (r *REPL) drawLines() error {
	prev, cur := r.lines()
	_, err := fmt.Fprintf(r.out, "%s\n%s\n", prev, cur)

	return err //nolint: wrapcheck
}

func (r *REPL) apply(inputs []calculator.Input) error {
	for _, in := range inputs {
		if err := r.machine.Apply(in); err != nil {
			return fmt.Errorf("could not apply %s: %w", in, err)
		}
	}

	return nil
}

// RunKeys reads raw keystrokes from in until the user quits, in reaches EOF or
// ctx is done. Keys with no binding are ignored.
//
// A read blocked on in does not hold RunKeys back once ctx is done. The reading
// goroutine exits after its pending read returns.
func (r *REPL) RunKeys(ctx context.Context, in io.Reader) error {
	if err := r.drawRaw(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := readKeys(keymap.NewDecoder(in), ctx.Done())
	for {
		var ev keyEvent
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint: wrapcheck
		case ev = <-keys:
		}

		key, err := ev.key, ev.err
		if errors.Is(err, keymap.ErrQuit) {
			_, err = io.WriteString(r.out, "\r\n")

			return err //nolint: wrapcheck
		}
		if err != nil {
			return fmt.Errorf("could not read key: %w", err)
		}

		input, ok := keymap.Lookup(key)
		if !ok {
			continue
		}
		if err := r.apply([]calculator.Input{input}); err != nil {
			return err
		}
		if err := r.drawRaw(); err != nil {
			return err
		}
	}
}

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	default:
		return false
	}
}

// RunLines reads lines of keys from in until EOF, a quit command or ctx is
// done. A line with an unknown key is rejected as a whole and reported without
// stopping the loop.
func (r *REPL) RunLines(ctx context.Context, in io.Reader) error {
	if err := r.drawLines(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err //nolint: wrapcheck
		}

		line := scanner.Text()
		if isQuit(line) {
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		inputs, err := keymap.ParseLine(line)
		if err != nil {
			msg := serrors.MessageOf(err)
			if msg == "" {
				msg = err.Error()
			}
			if _, err := fmt.Fprintf(r.out, "error: %s\n", msg); err != nil {
				return err //nolint: wrapcheck
			}

			continue
		}
		if err := r.apply(inputs); err != nil {
			return err
		}
		if err := r.drawLines(); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read line: %w", err)
	}

	return nil
}

// Eval applies the keys of line to the calculator and returns the screen.
func (r *REPL) Eval(line string) (display.Screen, error) {
	inputs, err := keymap.ParseLine(line)
	if err != nil {
		return display.Screen{}, err //nolint: wrapcheck
	}
	if err := r.apply(inputs); err != nil {
		return display.Screen{}, err
	}

	return r.Screen(), nil
}

type keyEvent struct {
	key string
	err error
}

// readKeys decodes keys on its own goroutine until a read fails or done is
// closed. The failing read is delivered as the last event.
func readKeys(dec *keymap.Decoder, done <-chan struct{}) <-chan keyEvent {
	events := make(chan keyEvent)
	go func() {
		for {
			key, err := dec.Next()
			select {
			case events <- keyEvent{key: key, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	return events
}
