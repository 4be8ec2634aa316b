package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rustyeddy/tradejournal/trade"
)

var csvHeader = []string{"id", "date", "contract", "type", "lot", "entry", "exit", "charges", "pl", "final_pl", "remarks"}

// WriteTradesCSV writes the trades as CSV with a header row.
func WriteTradesCSV(w io.Writer, trades []trade.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			string(t.Date),
			t.Contract,
			string(t.Type),
			strconv.Itoa(t.Lot),
			f(t.Entry),
			f(t.Exit),
			f(t.Charges),
			f(t.PL),
			f(t.FinalPL()),
			t.Remarks,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
