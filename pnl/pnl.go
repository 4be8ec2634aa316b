// Package pnl derives profit-and-loss figures from a set of trades.
//
// Everything here is a pure function of its arguments: the same trades and
// range always give the same result. Sums are carried in decimal so that
// totals of two-decimal amounts do not drift.
package pnl

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/trade"
)

// LabelLayout formats the chart label of a point, e.g. "05 Jan".
const LabelLayout = "02 Jan"

type Totals struct {
	NetCharges float64 `json:"netCharges"`
	NetFinalPL float64 `json:"netFinalPl"`
}

type Point struct {
	Date         trade.Date `json:"date"`
	Label        string     `json:"label"`
	TradePL      float64    `json:"tradePl"`
	CumulativePL float64    `json:"cumulativePl"`
}

// amount converts v for summing. NaN and infinities count as zero.
func amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func finalPL(t trade.Trade) decimal.Decimal {
	return amount(t.PL).Sub(amount(t.Charges))
}

// NetCharges sums charges over all trades.
func NetCharges(trades []trade.Trade) float64 {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(amount(t.Charges))
	}
	return sum.InexactFloat64()
}

// NetFinalPL sums pl - charges over all trades.
func NetFinalPL(trades []trade.Trade) float64 {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(finalPL(t))
	}
	return sum.InexactFloat64()
}

func ComputeTotals(trades []trade.Trade) Totals {
	return Totals{
		NetCharges: NetCharges(trades),
		NetFinalPL: NetFinalPL(trades),
	}
}

// CumulativeSeries filters trades to r, orders them by date (ties keep
// their relative order) and emits one point per trade with the running
// total of final P&L. No matching trades gives a nil series.
func CumulativeSeries(trades []trade.Trade, r Range) []Point {
	sorted := SortByDate(Filter(trades, r))
	if len(sorted) == 0 {
		return nil
	}

	out := make([]Point, 0, len(sorted))
	running := decimal.Zero
	for _, t := range sorted {
		pl := finalPL(t)
		running = running.Add(pl)
		out = append(out, Point{
			Date:         t.Date,
			Label:        Label(t.Date),
			TradePL:      pl.InexactFloat64(),
			CumulativePL: running.InexactFloat64(),
		})
	}
	return out
}

// SortByDate returns a copy of trades in ascending date order. Trades
// with an unreadable date sort first.
func SortByDate(trades []trade.Trade) []trade.Trade {
	out := append([]trade.Trade(nil), trades...)
	keys := make(map[trade.Date]time.Time, len(out))
	for _, t := range out {
		if _, seen := keys[t.Date]; !seen {
			tm, _ := t.Date.Time()
			keys[t.Date] = tm
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keys[out[i].Date].Before(keys[out[j].Date])
	})
	return out
}

// Label is the display label of a trade date.
func Label(d trade.Date) string {
	tm, ok := d.Time()
	if !ok {
		return string(d)
	}
	return tm.Format(LabelLayout)
}
