// Package display turns calculator state into the strings a user sees. It owns
// presentation concerns such as locale digit grouping so that the calculator
// core stays locale independent.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"calculator/pkg/calculator"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is the locale used for digit grouping when none is configured.
const DefaultLocale = "ru-RU"

// Formatter renders a single operand string for presentation.
type Formatter interface {
	Format(value string) string
}

// Plain shows operands exactly as the calculator stores them.
type Plain struct{}

// Format returns value unchanged.
func (Plain) Format(value string) string { return value }

// Grouped inserts locale thousands separators into the integer part of an
// operand. The fractional part, including any exponent, is left as is and the
// decimal point is always '.'.
type Grouped struct {
	printer *message.Printer
}

// NewGrouped returns a Grouped formatter for a BCP 47 locale such as "en-US".
func NewGrouped(locale string) (*Grouped, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("could not parse locale %q: %w", locale, err)
	}

	return &Grouped{printer: message.NewPrinter(tag)}, nil
}

// Format groups the integer digits of value. The error sentinel and anything
// that is not a plain operand are returned unchanged.
func (g *Grouped) Format(value string) string {
	if value == "" || value == calculator.ErrorDisplay {
		return value
	}

	integer, fraction, hasPoint := strings.Cut(value, ".")
	sign := ""
	if strings.HasPrefix(integer, "-") {
		sign, integer = "-", integer[1:]
	}

	grouped := ""
	if integer != "" {
		if strings.HasPrefix(integer, "+") {
			return value
		}
		n, err := strconv.ParseInt(integer, 10, 64)
		if err != nil {
			return value
		}
		grouped = g.printer.Sprintf("%d", n)
	}

	if !hasPoint {
		return sign + grouped
	}

	return sign + grouped + "." + fraction
}

// Screen is what a renderer draws: the main line and the expression line above it.
type Screen struct {
	Current  string
	Previous string
}

// Renderer builds a Screen from calculator state.
type Renderer struct {
	formatter Formatter
}

// NewRenderer returns a Renderer using f, or Plain when f is nil.
func NewRenderer(f Formatter) Renderer {
	if f == nil {
		f = Plain{}
	}

	return Renderer{formatter: f}
}

// Render formats the current operand and, when an operator is pending, the
// previous operand followed by the operator symbol.
// The zero Renderer formats plainly.
func (r Renderer) Render(s calculator.State) Screen {
	f := r.formatter
	if f == nil {
		f = Plain{}
	}

	screen := Screen{Current: f.Format(s.Current)}
	if s.Operation != calculator.None {
		screen.Previous = f.Format(s.Previous) + " " + s.Operation.Symbol()
	}

	return screen
}
