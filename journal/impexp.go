package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rustyeddy/tradejournal/trade"
)

// AppState is the unit of export and import.
type AppState struct {
	SummaryData SummaryData   `json:"summaryData"`
	Trades      []trade.Trade `json:"trades"`
}

// EncodeState writes st as indented JSON.
func EncodeState(w io.Writer, st AppState) error {
	if st.Trades == nil {
		st.Trades = []trade.Trade{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	return nil
}

// DecodeState reads an exported journal. The document must be an object
// with a summaryData object and a trades array; every trade must decode
// into a Trade and no two trades may share an ID. Any failure rejects the
// whole document with ErrParse.
func DecodeState(r io.Reader) (AppState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return AppState{}, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		if err == nil {
			err = fmt.Errorf("top level is null")
		}
		return AppState{}, fmt.Errorf("%w: not a JSON object: %v", ErrParse, err)
	}

	rawSummary, ok := top["summaryData"]
	if !ok || !isKind(rawSummary, '{') {
		return AppState{}, fmt.Errorf("%w: the file must contain 'summaryData' and 'trades'", ErrParse)
	}
	rawTrades, ok := top["trades"]
	if !ok || !isKind(rawTrades, '[') {
		return AppState{}, fmt.Errorf("%w: the file must contain 'summaryData' and 'trades'", ErrParse)
	}

	var st AppState
	if err := json.Unmarshal(rawSummary, &st.SummaryData); err != nil {
		return AppState{}, fmt.Errorf("%w: summaryData: %v", ErrParse, err)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(rawTrades, &elems); err != nil {
		return AppState{}, fmt.Errorf("%w: trades: %v", ErrParse, err)
	}
	st.Trades = make([]trade.Trade, 0, len(elems))
	for i, e := range elems {
		var t trade.Trade
		if err := json.Unmarshal(e, &t); err != nil {
			return AppState{}, fmt.Errorf("%w: trades[%d]: %v", ErrParse, i, err)
		}
		st.Trades = append(st.Trades, t)
	}
	if err := checkTrades(st.Trades); err != nil {
		return AppState{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return st, nil
}

func isKind(raw json.RawMessage, open byte) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == open
}
