package trade

import (
	"math"
	"strconv"
	"strings"
)

// Form is the text-entry state of a trade being added or edited. Numbers
// that do not parse are saved as zero.
type Form struct {
	Date     string
	Contract string
	Type     Side
	Lot      string
	Entry    string
	Exit     string
	Charges  string
	PL       string
	Remarks  string
}

// BlankForm is the form for a new trade: today's date, a Sell.
func BlankForm() Form {
	return Form{Date: string(Today()), Type: Sell}
}

// FormOf loads an existing trade for editing.
func FormOf(t Trade) Form {
	return Form{
		Date:     string(t.Date),
		Contract: t.Contract,
		Type:     t.Type,
		Lot:      strconv.Itoa(t.Lot),
		Entry:    formatFloat(t.Entry),
		Exit:     formatFloat(t.Exit),
		Charges:  formatFloat(t.Charges),
		PL:       formatFloat(t.PL),
		Remarks:  t.Remarks,
	}
}

// FinalPL previews the final P&L of the current entry.
func (f Form) FinalPL() float64 {
	return number(f.PL) - number(f.Charges)
}

// Save builds the trade. When editing is non-nil its ID is kept, otherwise
// a new one is minted.
func (f Form) Save(editing *Trade) Trade {
	t := Trade{
		Date:     Date(f.Date),
		Contract: f.Contract,
		Type:     f.Type,
		Lot:      int(math.Trunc(number(f.Lot))),
		Entry:    number(f.Entry),
		Exit:     number(f.Exit),
		Charges:  number(f.Charges),
		PL:       number(f.PL),
		Remarks:  f.Remarks,
	}
	if editing != nil {
		t.ID = editing.ID
		return t
	}
	return New(t)
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
