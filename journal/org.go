package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/rustyeddy/tradejournal/id"
	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/trade"
)

// FormatTradeOrg renders a trade as an Org-mode block suitable for pasting
// into a journal. Structured facts go in the PROPERTIES drawer; remarks
// become the body.
func FormatTradeOrg(t trade.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Contract, t.Type, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	if created, ok := id.Time(t.ID); ok {
		b.WriteString(fmt.Sprintf(":CREATED: %s\n", created.Format(time.RFC3339)))
	}
	b.WriteString(fmt.Sprintf(":DATE: %s\n", t.Date))
	b.WriteString(fmt.Sprintf(":CONTRACT: %s\n", t.Contract))
	b.WriteString(fmt.Sprintf(":TYPE: %s\n", t.Type))
	b.WriteString(fmt.Sprintf(":LOT: %d\n", t.Lot))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.2f\n", t.Entry))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.2f\n", t.Exit))
	b.WriteString(fmt.Sprintf(":CHARGES: %.2f\n", t.Charges))
	b.WriteString(fmt.Sprintf(":PL: %.2f\n", t.PL))
	b.WriteString(fmt.Sprintf(":FINAL_PL: %.2f\n", t.FinalPL()))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Remarks\n")
	b.WriteString(fmt.Sprintf("- %s\n", t.Remarks))

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []trade.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

// Display holds the currency settings for rendered amounts.
type Display struct {
	Currency string  // e.g. "USD"
	Local    string  // second currency, e.g. "INR"; empty to omit
	Rate     float64 // Local units per Currency unit
}

// DefaultDisplay shows dollars alongside rupees at 85 per dollar.
func DefaultDisplay() Display {
	return Display{Currency: money.USD, Local: money.INR, Rate: 85}
}

// Amount formats v in the display currency, followed by the local
// equivalent when one is set.
func (d Display) Amount(v float64) string {
	s := money.NewFromFloat(v, d.Currency).Display()
	if d.Local == "" {
		return s
	}
	return s + " / " + money.NewFromFloat(v*d.Rate, d.Local).Display()
}

// FormatSummaryOrg renders the summary parameters and the journal totals.
func FormatSummaryOrg(s SummaryData, totals pnl.Totals, stats pnl.Stats, d Display) string {
	var b strings.Builder
	b.WriteString("* Summary\n")
	b.WriteString(fmt.Sprintf("- Capital :: %s\n", d.Amount(s.Capital)))
	b.WriteString(fmt.Sprintf("- Total Trading Days :: %g\n", s.TotalTradingDays))
	b.WriteString(fmt.Sprintf("- Qty / Lot :: %g\n", s.QtyPerLot))
	b.WriteString(fmt.Sprintf("- Working Capital :: %s\n", d.Amount(s.WorkingCapital)))
	b.WriteString(fmt.Sprintf("- Avg. Asset Movement :: %g%%\n", s.AvgAssetMovement))
	b.WriteString(fmt.Sprintf("- Max Trade PerDay :: %g\n", s.MaxTradePerDay))
	b.WriteString(fmt.Sprintf("- SL PerTrade :: %s\n", d.Amount(s.SLPerTrade)))
	b.WriteString(fmt.Sprintf("- TP PerTrade :: %s\n", d.Amount(s.TPPerTrade)))
	b.WriteString(fmt.Sprintf("- P&L Ratio :: %s\n", s.PLRatio))
	b.WriteString("\n* Totals\n")
	b.WriteString(fmt.Sprintf("- Net Charges :: %s\n", d.Amount(totals.NetCharges)))
	b.WriteString(fmt.Sprintf("- Final P&L :: %s\n", d.Amount(totals.NetFinalPL)))
	b.WriteString(fmt.Sprintf("- Trades :: %d (%d won, %d lost, win rate %.1f%%)\n",
		stats.Trades, stats.Wins, stats.Losses, stats.WinRate*100))
	if stats.ProfitFactor > 0 {
		b.WriteString(fmt.Sprintf("- Profit Factor :: %.2f\n", stats.ProfitFactor))
	}
	return b.String()
}

// FormatSeriesOrg renders a cumulative series as an Org table.
func FormatSeriesOrg(points []pnl.Point) string {
	if len(points) == 0 {
		return "No trade data available for the selected range.\n"
	}

	var b strings.Builder
	b.WriteString("| Date | Trade P&L | Cumulative P&L |\n")
	b.WriteString("|------+-----------+----------------|\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("| %s | %.2f | %.2f |\n", p.Label, p.TradePL, p.CumulativePL))
	}
	return b.String()
}
