// internal/game/code.go
//
// Code parsing and validation.
// Codes arrive as text from the console and the HTTP API; ParseCode is the
// single gate that enforces length and the 1..6 alphabet.

package game

import (
	"fmt"
	"strings"
)

// ParseCode converts user input such as "1234" into a Code.
// Surrounding whitespace is ignored; anything else must be four digits in 1..6.
func ParseCode(s string) (Code, error) {
	var c Code
	s = strings.TrimSpace(s)
	if len(s) != CodeLength {
		return c, fmt.Errorf("parse %q: %w", s, ErrCodeLength)
	}
	for i := 0; i < CodeLength; i++ {
		d := s[i]
		if d < '0'+MinDigit || d > '0'+MaxDigit {
			return c, fmt.Errorf("parse %q: %w", s, ErrCodeSymbol)
		}
		c[i] = d - '0'
	}
	return c, nil
}

// MustParseCode is ParseCode for literals known to be valid.
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate reports whether every digit lies in the alphabet.
// Codes built with ParseCode or Generate are always valid.
func (c Code) Validate() error {
	for _, d := range c {
		if d < MinDigit || d > MaxDigit {
			return fmt.Errorf("code %v: %w", [CodeLength]uint8(c), ErrCodeSymbol)
		}
	}
	return nil
}

// String renders the code as its digits, e.g. "1234".
func (c Code) String() string {
	var b [CodeLength]byte
	for i, d := range c {
		b[i] = '0' + d
	}
	return string(b[:])
}

// MarshalText lets codes travel as plain strings in JSON.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
