// Package trade holds the journal's trade record.
package trade

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/id"
)

type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", fmt.Errorf("unknown trade type %q (want Buy or Sell)", s)
}

// Trade is one executed option trade. Trades are replaced wholesale on
// edit; ID never changes once assigned.
type Trade struct {
	ID       string  `json:"id"`
	Date     Date    `json:"date"`
	Contract string  `json:"contract"`
	Type     Side    `json:"type"`
	Lot      int     `json:"lot"`
	Entry    float64 `json:"entry"`
	Exit     float64 `json:"exit"`
	Charges  float64 `json:"charges"`
	PL       float64 `json:"pl"`
	Remarks  string  `json:"remarks"`
}

// UnmarshalJSON accepts a fractional lot, as older exports may hold one,
// and truncates it.
func (t *Trade) UnmarshalJSON(b []byte) error {
	type plain Trade
	aux := struct {
		*plain
		Lot json.Number `json:"lot"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	t.Lot = 0
	if aux.Lot != "" {
		f, err := aux.Lot.Float64()
		if err != nil {
			return fmt.Errorf("lot: %w", err)
		}
		t.Lot = int(math.Trunc(f))
	}
	return nil
}

// Finite reports whether every amount is a real number.
func (t Trade) Finite() bool {
	for _, v := range []float64{t.Entry, t.Exit, t.Charges, t.PL} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FinalPL is the gross P&L less charges.
func (t Trade) FinalPL() float64 {
	return t.PL - t.Charges
}

// Date is a calendar date in YYYY-MM-DD form. It is kept as text so that
// imported trades round-trip unchanged even when the date is malformed.
type Date string

const DateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today is the current local date.
func Today() Date {
	return NewDate(time.Now())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return NewDate(t), nil
}

// Time returns midnight UTC of d, or false if d is not a valid date.
func (d Date) Time() (time.Time, bool) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) String() string { return string(d) }

// New returns t with a freshly minted ID, for trades saved from a blank
// form.
func New(t Trade) Trade {
	t.ID = id.New()
	return t
}
