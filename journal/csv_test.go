package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/trade"
)

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := sampleTrade("T1", "2024-01-02", 121.5, 1.25)
	tr.Remarks = "rolled, then closed"
	require.NoError(t, WriteTradesCSV(&buf, []trade.Trade{tr}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"T1", "2024-01-02", "P-BTC-108000-260925", "Sell", "2",
		"120", "80", "1.25", "121.5", "120.25", "rolled, then closed",
	}, rows[1])
}

func TestWriteTradesCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{csvHeader}, rows)
}
