// Package contract formats and parses option contract labels of the form
// P-BTC-108000-260925 (side, underlying, strike, expiry DDMMYY).
package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	sideTyped   = regexp.MustCompile(`^(C|P)\s$`)
	strikeTyped = regexp.MustCompile(`^(C|P)-BTC-\d+\s$`)
)

// Format returns the new field text after the user changed it from prev to
// raw. The text is uppercased; typing a space after a lone side letter
// expands to "<side>-BTC-", and a space after the strike becomes "-".
// Nothing fires when the text did not change.
func Format(prev, raw string) string {
	s := strings.ToUpper(raw)
	if raw == prev {
		return s
	}

	switch {
	case sideTyped.MatchString(s):
		return strings.TrimSpace(s) + "-BTC-"
	case strikeTyped.MatchString(s):
		return strings.TrimSpace(s) + "-"
	}
	return s
}

// Field is the contract input box: it accumulates keystrokes and applies
// Format on each one.
type Field struct {
	value string
}

// Type feeds s one rune at a time and returns the resulting text.
func (f *Field) Type(s string) string {
	for _, r := range s {
		f.Set(f.value + string(r))
	}
	return f.value
}

// Set replaces the whole text, as a paste would.
func (f *Field) Set(raw string) string {
	f.value = Format(f.value, raw)
	return f.value
}

func (f *Field) Value() string { return f.value }

type Side int

const (
	Unknown Side = iota
	Call
	Put
)

func (s Side) String() string {
	switch s {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return "Unknown"
}

// SideOf classifies a label by its first letter.
func SideOf(label string) Side {
	switch {
	case strings.HasPrefix(strings.ToUpper(label), "C"):
		return Call
	case strings.HasPrefix(strings.ToUpper(label), "P"):
		return Put
	}
	return Unknown
}

// Option is a fully parsed contract label.
type Option struct {
	Side       Side
	Underlying string
	Strike     float64
	Expiry     time.Time
}

// Parse splits a complete label such as "C-BTC-108000-260925".
func Parse(label string) (Option, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(label)), "-")
	if len(parts) != 4 {
		return Option{}, fmt.Errorf("contract %q: want SIDE-UNDERLYING-STRIKE-DDMMYY", label)
	}

	var o Option
	switch parts[0] {
	case "C":
		o.Side = Call
	case "P":
		o.Side = Put
	default:
		return Option{}, fmt.Errorf("contract %q: unknown side %q", label, parts[0])
	}

	o.Underlying = parts[1]
	if o.Underlying == "" {
		return Option{}, fmt.Errorf("contract %q: missing underlying", label)
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Option{}, fmt.Errorf("contract %q: strike: %w", label, err)
	}
	o.Strike = strike

	exp, err := time.Parse("020106", parts[3])
	if err != nil {
		return Option{}, fmt.Errorf("contract %q: expiry: %w", label, err)
	}
	o.Expiry = exp
	return o, nil
}
