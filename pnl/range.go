package pnl

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/trade"
)

// Range is an inclusive date filter. A zero bound is open on that side.
type Range struct {
	From time.Time
	To   time.Time
}

// All is the unbounded range.
var All = Range{}

// ParseRange builds a range from YYYY-MM-DD bounds; an empty string leaves
// that side open.
func ParseRange(from, to string) (Range, error) {
	var r Range
	if from != "" {
		d, err := trade.ParseDate(from)
		if err != nil {
			return Range{}, fmt.Errorf("from: %w", err)
		}
		r.From, _ = d.Time()
	}
	if to != "" {
		d, err := trade.ParseDate(to)
		if err != nil {
			return Range{}, fmt.Errorf("to: %w", err)
		}
		r.To, _ = d.Time()
	}
	return r, nil
}

func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether d falls in the range. An unreadable date is
// only contained by the unbounded range.
func (r Range) Contains(d trade.Date) bool {
	if r.IsZero() {
		return true
	}
	t, ok := d.Time()
	if !ok {
		return false
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

func (r Range) String() string {
	return bound(r.From) + ".." + bound(r.To)
}

func bound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(trade.DateLayout)
}

// Filter returns the trades whose date lies in r, in their original order.
func Filter(trades []trade.Trade, r Range) []trade.Trade {
	if r.IsZero() {
		return append([]trade.Trade(nil), trades...)
	}
	var out []trade.Trade
	for _, t := range trades {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
