package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/debounce"
	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/storage"
	"github.com/rustyeddy/tradejournal/trade"
)

func newTestSession(t *testing.T) (*Session, *countingStore, *debounce.Manual) {
	t.Helper()

	s := newTestStore(t)
	clock := debounce.NewManual()
	sess, err := Open(s, Options{Scheduler: clock, CacheCost: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, s, clock
}

func TestSessionTotalsAndSeries(t *testing.T) {
	t.Parallel()

	sess, _, _ := newTestSession(t)

	assert.Equal(t, pnl.Totals{}, sess.Totals())
	assert.Nil(t, sess.Series(pnl.All))

	for _, tr := range []trade.Trade{
		sampleTrade("T1", "2024-01-15", 7, 2),
		sampleTrade("T2", "2024-01-01", 6, 1),
		sampleTrade("T3", "2024-02-01", 4, 1),
	} {
		_, err := sess.AddTrade(tr)
		require.NoError(t, err)
	}

	assert.Equal(t, pnl.Totals{NetCharges: 4, NetFinalPL: 13}, sess.Totals())

	series := sess.Series(pnl.All)
	require.Len(t, series, 3)
	assert.Equal(t, []float64{5, 10, 13}, []float64{series[0].CumulativePL, series[1].CumulativePL, series[2].CumulativePL})

	r, err := pnl.ParseRange("2024-01-10", "2024-01-20")
	require.NoError(t, err)
	mid := sess.Series(r)
	require.Len(t, mid, 1)
	assert.Equal(t, trade.Date("2024-01-15"), mid[0].Date)

	// totals ignore the chart range
	assert.Equal(t, 13.0, sess.Totals().NetFinalPL)

	// memoised figures follow mutations
	ok, err := sess.DeleteTrade("T2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8.0, sess.Totals().NetFinalPL)
	assert.Len(t, sess.Series(pnl.All), 2)

	edited := sampleTrade("T1", "2024-01-15", 100, 0)
	require.NoError(t, sess.EditTrade(edited))
	assert.Equal(t, 103.0, sess.Totals().NetFinalPL)
	assert.Equal(t, 2, sess.Stats().Wins)
}

func TestSessionImportReplacesAndCommits(t *testing.T) {
	t.Parallel()

	sess, s, _ := newTestSession(t)
	_, err := sess.AddTrade(sampleTrade("OLD", "2023-01-01", 1, 0))
	require.NoError(t, err)
	_, err = sess.SetSummaryField("capital", 42.0)
	require.NoError(t, err)

	st := sampleState()
	var buf strings.Builder
	require.NoError(t, EncodeState(&buf, st))

	require.NoError(t, sess.Import(strings.NewReader(buf.String())))
	assert.Equal(t, st, sess.State())

	// written at once, not on the debounce timer
	stored, ok := storedSummary(t, s)
	require.True(t, ok)
	assert.Equal(t, st.SummaryData, stored)
	assert.Equal(t, st.Trades, storedTrades(t, s))
	assert.False(t, sess.SummaryStore().Pending())

	assert.InDelta(t, pnl.NetFinalPL(st.Trades), sess.Totals().NetFinalPL, 1e-9)
}

func TestSessionImportRejectedLeavesState(t *testing.T) {
	t.Parallel()

	sess, s, _ := newTestSession(t)
	_, err := sess.AddTrade(sampleTrade("T1", "2024-01-01", 1, 0))
	require.NoError(t, err)
	before := sess.State()
	writes := s.count(TradesKey)

	err = sess.Import(strings.NewReader(`{"summaryData": {"capital": 1}}`))
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, before, sess.State())
	assert.Equal(t, writes, s.count(TradesKey))
	assert.Equal(t, 0, s.count(SummaryKey))
}

func TestSessionFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultExportFile)

	src, _, clock := newTestSession(t)
	_, err := src.AddTrade(sampleTrade("T1", "2024-01-01", 3, 1))
	require.NoError(t, err)
	_, err = src.SetSummaryField("tpPerTrade", 9.0)
	require.NoError(t, err)
	clock.Advance(time.Second)

	// the pending edit is part of the export
	require.NoError(t, src.ExportFile(path))

	dst, _, _ := newTestSession(t)
	require.NoError(t, dst.ImportFile(path))
	assert.Equal(t, src.State(), dst.State())
	assert.Equal(t, 9.0, dst.Summary().TPPerTrade)

	err = dst.ImportFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrFileRead)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	assert.ErrorIs(t, dst.ImportFile(path), ErrParse)
	assert.Equal(t, src.State(), dst.State())
}

func TestSessionsShareStore(t *testing.T) {
	t.Parallel()

	m := storage.NewMemory()
	sa, sb := m.Open(), m.Open()
	defer sa.Close()
	defer sb.Close()

	clock := debounce.NewManual()
	a, err := Open(sa, Options{Scheduler: clock, CacheCost: 1 << 20})
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(sb, Options{Scheduler: clock, CacheCost: 1 << 20})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 0.0, b.Totals().NetFinalPL)

	_, err = a.AddTrade(sampleTrade("T1", "2024-01-01", 10, 1))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return b.Totals().NetFinalPL == 9 }, time.Second, 5*time.Millisecond)
}

func TestSessionImportRepeatedIDsRejected(t *testing.T) {
	t.Parallel()

	sess, _, _ := newTestSession(t)
	_, err := sess.AddTrade(sampleTrade("a", "2024-01-01", 1, 0))
	require.NoError(t, err)

	err = sess.Import(strings.NewReader(`{"summaryData":{},"trades":[
		{"id":"a","date":"2024-01-01","pl":1},
		{"id":"a","date":"2024-01-02","pl":2}
	]}`))
	assert.ErrorIs(t, err, ErrParse)

	require.NoError(t, sess.EditTrade(trade.Trade{ID: "a", Date: "2024-01-01", PL: 9}))
	trades := sess.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 9.0, trades[0].PL)
	assert.Equal(t, 9.0, sess.Totals().NetFinalPL)
}
