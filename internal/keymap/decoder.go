package keymap

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrQuit is returned by Decoder.Next when the user asks to leave, either with
// Ctrl-C, Ctrl-D or "q".
var ErrQuit = errors.New("quit")

const (
	keyEscape    = 0x1b
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
)

// Decoder turns the byte stream of a terminal in raw mode into key names that
// Lookup understands.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next key. Escape sequences other than Delete (ESC [ 3 ~) are
// consumed and reported as an empty key name.
func (d *Decoder) Next() (string, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrQuit
		}

		return "", err //nolint: wrapcheck
	}

	switch b {
	case '\r', '\n':
		return "Enter", nil
	case keyBackspace, keyCtrlH:
		return "Backspace", nil
	case keyCtrlC, keyCtrlD, 'q', 'Q':
		return "", ErrQuit
	case keyEscape:
		return d.escape()
	}

	if b < utf8.RuneSelf {
		return string(b), nil
	}

	// multi-byte keys such as ×, ÷ and ±
	if err := d.r.UnreadByte(); err != nil {
		return "", err //nolint: wrapcheck
	}
	r, _, err := d.r.ReadRune()
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(r), nil
}

// escape reads the rest of an escape sequence. A lone escape, one with nothing
// buffered behind it, is the Escape key.
func (d *Decoder) escape() (string, error) {
	if d.r.Buffered() == 0 {
		return "Escape", nil
	}

	next, err := d.r.ReadByte()
	if err != nil {
		return "Escape", nil //nolint: nilerr
	}
	if next != '[' && next != 'O' {
		_ = d.r.UnreadByte()

		return "Escape", nil
	}

	var seq []byte
	for d.r.Buffered() > 0 {
		c, err := d.r.ReadByte()
		if err != nil {
			break
		}
		seq = append(seq, c)
		// final byte of a CSI sequence
		if c >= 0x40 && c <= 0x7e {
			break
		}
	}

	if next == '[' && string(seq) == "3~" {
		return "Delete", nil
	}

	return "", nil
}
