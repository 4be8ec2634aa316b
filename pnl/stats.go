package pnl

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/trade"
)

// Stats summarises the outcome of a set of trades by final P&L.
type Stats struct {
	Trades int `json:"trades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	GrossProfit float64 `json:"grossProfit"`
	GrossLoss   float64 `json:"grossLoss"` // positive

	// WinRate is Wins/Trades, 0 with no trades.
	WinRate float64 `json:"winRate"`
	// ProfitFactor is GrossProfit/GrossLoss, 0 when there are no losses.
	ProfitFactor float64 `json:"profitFactor"`

	BestTrade  float64 `json:"bestTrade"`
	WorstTrade float64 `json:"worstTrade"`
}

func ComputeStats(trades []trade.Trade) Stats {
	s := Stats{Trades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	profit, loss := decimal.Zero, decimal.Zero
	best, worst := finalPL(trades[0]), finalPL(trades[0])
	for _, t := range trades {
		pl := finalPL(t)
		switch {
		case pl.IsPositive():
			s.Wins++
			profit = profit.Add(pl)
		case pl.IsNegative():
			s.Losses++
			loss = loss.Add(pl.Abs())
		}
		if pl.GreaterThan(best) {
			best = pl
		}
		if pl.LessThan(worst) {
			worst = pl
		}
	}

	s.GrossProfit = profit.InexactFloat64()
	s.GrossLoss = loss.InexactFloat64()
	s.WinRate = float64(s.Wins) / float64(s.Trades)
	if loss.IsPositive() {
		s.ProfitFactor = profit.Div(loss).InexactFloat64()
	}
	s.BestTrade = best.InexactFloat64()
	s.WorstTrade = worst.InexactFloat64()
	return s
}
