package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DefaultSequence is the literal the receiving firmware understands:
// 'r', 'g' and 'b' select the LED colour.
const DefaultSequence = "rgb"

// hexPrefix marks a sequence given as hex-encoded raw bytes, e.g. "hex:000102".
const hexPrefix = "hex:"

// Sequence is an immutable, non-empty list of byte values sent round-robin.
type Sequence struct {
	values []byte
	raw    string
}

// ParseSequence parses a sequence definition.
// A plain string is taken byte for byte; a "hex:" prefix selects raw bytes.
func ParseSequence(raw string) (Sequence, error) {
	var values []byte
	if rest, ok := strings.CutPrefix(raw, hexPrefix); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return Sequence{}, fmt.Errorf("parse sequence %q: %w", raw, err)
		}
		values = b
	} else {
		values = []byte(raw)
	}
	if len(values) == 0 {
		return Sequence{}, ErrEmptySequence
	}
	return Sequence{values: values, raw: raw}, nil
}

// MustParseSequence is like ParseSequence but panics on error.
func MustParseSequence(raw string) Sequence {
	s, err := ParseSequence(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of values in the sequence.
func (s Sequence) Len() int { return len(s.values) }

// At returns the value at index i.
func (s Sequence) At(i int) byte { return s.values[i] }

// Bytes returns a copy of the values.
func (s Sequence) Bytes() []byte {
	return append([]byte(nil), s.values...)
}

// IsZero reports whether s was never parsed.
func (s Sequence) IsZero() bool { return len(s.values) == 0 }

// Equal reports whether both sequences hold the same values.
func (s Sequence) Equal(o Sequence) bool {
	return string(s.values) == string(o.values)
}

// String returns the definition the sequence was parsed from.
func (s Sequence) String() string { return s.raw }

// Cursor tracks the cycling value. The zero Cursor points at the first element.
type Cursor struct {
	seq Sequence
	pos int
}

// NewCursor returns a cursor at the start of seq.
func NewCursor(seq Sequence) *Cursor {
	return &Cursor{seq: seq}
}

// Next returns the current value and advances, wrapping after the last one.
// The second result is true when the returned value completes a pass.
func (c *Cursor) Next() (byte, bool) {
	v := c.seq.At(c.pos)
	c.pos++
	if c.pos == c.seq.Len() {
		c.pos = 0
		return v, true
	}
	return v, false
}

// Reset moves the cursor to the start of seq.
func (c *Cursor) Reset(seq Sequence) {
	c.seq = seq
	c.pos = 0
}

// Sequence returns the sequence the cursor walks.
func (c *Cursor) Sequence() Sequence { return c.seq }
