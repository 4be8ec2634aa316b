package journal

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/storage"
	"github.com/rustyeddy/tradejournal/trade"
)

// countingStore counts writes per key and can be made to fail them.
type countingStore struct {
	storage.Store

	mu   sync.Mutex
	sets map[string]int
	fail error
}

func newCountingStore(s storage.Store) *countingStore {
	return &countingStore{Store: s, sets: make(map[string]int)}
}

func (c *countingStore) Set(key string, value []byte) error {
	c.mu.Lock()
	c.sets[key]++
	fail := c.fail
	c.mu.Unlock()

	if fail != nil {
		return fail
	}
	return c.Store.Set(key, value)
}

func (c *countingStore) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

func (c *countingStore) failWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

func newTestStore(t *testing.T) *countingStore {
	t.Helper()

	s := storage.NewMemory().Open()
	t.Cleanup(func() { _ = s.Close() })
	return newCountingStore(s)
}

func storedTrades(t *testing.T, s storage.Store) []trade.Trade {
	t.Helper()

	raw, ok, err := s.Get(TradesKey)
	require.NoError(t, err)
	require.True(t, ok, "no trades stored")

	var out []trade.Trade
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func storedSummary(t *testing.T, s storage.Store) (SummaryData, bool) {
	t.Helper()

	raw, ok, err := s.Get(SummaryKey)
	require.NoError(t, err)
	if !ok {
		return SummaryData{}, false
	}

	var out SummaryData
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, true
}

func sampleTrade(id, date string, pl, charges float64) trade.Trade {
	return trade.Trade{
		ID:       id,
		Date:     trade.Date(date),
		Contract: "P-BTC-108000-260925",
		Type:     trade.Sell,
		Lot:      2,
		Entry:    120,
		Exit:     80,
		Charges:  charges,
		PL:       pl,
		Remarks:  "note " + id,
	}
}
