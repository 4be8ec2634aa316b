package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/trade"
)

func sampleState() AppState {
	sum := DefaultSummary()
	sum.Capital = 1234.56
	sum.PLRatio = "1:2.5"
	return AppState{
		SummaryData: sum,
		Trades: []trade.Trade{
			sampleTrade("T2", "2024-01-15", -5.25, 0.75),
			sampleTrade("T1", "2024-01-01", 10.1, 0.2),
			{ID: "T3", Date: "2024-02-01", Contract: "C-BTC-110000-270925", Type: trade.Buy, Lot: 1, Entry: 0.1, Exit: 0.3, PL: 0.2},
		},
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, st := range []AppState{sampleState(), {SummaryData: DefaultSummary(), Trades: []trade.Trade{}}} {
		var buf bytes.Buffer
		require.NoError(t, EncodeState(&buf, st))

		got, err := DecodeState(&buf)
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
}

func TestEncodeStateShape(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeState(&buf, AppState{SummaryData: DefaultSummary()}))

	assert.JSONEq(t, `{
		"summaryData": {"capital":100,"totalTradingDays":50,"qtyPerLot":10,"workingCapital":20,
			"avgAssetMovement":2,"maxTradePerDay":2,"slPerTrade":1,"tpPerTrade":3,"plRatio":"1:3"},
		"trades": []
	}`, buf.String())
	assert.Contains(t, buf.String(), "\n  \"trades\"")
}

func TestDecodeStateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"summaryData":`},
		{"array", `[]`},
		{"null", `null`},
		{"missing trades", `{"summaryData":{}}`},
		{"missing summary", `{"trades":[]}`},
		{"null summary", `{"summaryData":null,"trades":[]}`},
		{"trades object", `{"summaryData":{},"trades":{}}`},
		{"summary string", `{"summaryData":"x","trades":[]}`},
		{"trade wrong type", `{"summaryData":{},"trades":[{"id":"a","lot":"two"}]}`},
		{"trade not object", `{"summaryData":{},"trades":[42]}`},
		{"repeated id", `{"summaryData":{},"trades":[{"id":"a","pl":1},{"id":"a","pl":2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestDecodeStateLoose(t *testing.T) {
	t.Parallel()

	// partial trades and extra fields are accepted as-is
	st, err := DecodeState(strings.NewReader(`{
		"version": 2,
		"summaryData": {"capital": 5},
		"trades": [{"id": "x", "date": "someday", "lot": 1.5}, {}, {}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, st.SummaryData.Capital)
	assert.Equal(t, "", st.SummaryData.PLRatio)
	require.Len(t, st.Trades, 3)
	assert.Equal(t, trade.Date("someday"), st.Trades[0].Date)
	assert.Equal(t, 1, st.Trades[0].Lot)
	assert.Equal(t, trade.Trade{}, st.Trades[1])
}
