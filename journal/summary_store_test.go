package journal

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/debounce"
	"github.com/rustyeddy/tradejournal/storage"
)

func newTestSummaryStore(t *testing.T) (*SummaryStore, *countingStore, *debounce.Manual) {
	t.Helper()

	s := newTestStore(t)
	clock := debounce.NewManual()
	st := NewSummaryStore(s, clock, 0, nil)
	return st, s, clock
}

func TestSummaryStoreDefaults(t *testing.T) {
	t.Parallel()

	st, s, _ := newTestSummaryStore(t)
	assert.Equal(t, DefaultSummary(), st.Get())

	_, ok := storedSummary(t, s)
	assert.False(t, ok)
}

func TestSummaryStoreDebounce(t *testing.T) {
	t.Parallel()

	st, s, clock := newTestSummaryStore(t)

	for i, v := range []float64{110, 120, 130, 140, 150} {
		got, err := st.SetField("capital", v)
		require.NoError(t, err)
		assert.Equal(t, v, got.Capital, "edit %d", i)
		assert.Equal(t, v, st.Get().Capital)
		clock.Advance(time.Second)
	}

	assert.Equal(t, 0, s.count(SummaryKey))
	assert.True(t, st.Pending())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, s.count(SummaryKey))
	assert.False(t, st.Pending())

	stored, ok := storedSummary(t, s)
	require.True(t, ok)
	assert.Equal(t, 150.0, stored.Capital)
	assert.Equal(t, DefaultSummary().PLRatio, stored.PLRatio)
}

func TestSummaryStoreSkipsUnchanged(t *testing.T) {
	t.Parallel()

	st, s, clock := newTestSummaryStore(t)

	_, err := st.SetField("capital", 500.0)
	require.NoError(t, err)
	_, err = st.SetField("capital", DefaultSummary().Capital)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 0, s.count(SummaryKey))
}

func TestSummaryStoreReplaceAllImmediate(t *testing.T) {
	t.Parallel()

	st, s, clock := newTestSummaryStore(t)

	_, err := st.SetField("qtyPerLot", 99.0)
	require.NoError(t, err)

	next := DefaultSummary()
	next.Capital = 1000
	require.NoError(t, st.ReplaceAll(next))
	assert.Equal(t, 1, s.count(SummaryKey))
	assert.False(t, st.Pending())

	stored, _ := storedSummary(t, s)
	assert.Equal(t, next, stored)

	// the cancelled edit never lands
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, s.count(SummaryKey))
	assert.Equal(t, next, st.Get())
}

func TestSummaryStoreCloseFlushes(t *testing.T) {
	t.Parallel()

	st, s, _ := newTestSummaryStore(t)

	_, err := st.SetPLRatioPart(2, "4")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stored, ok := storedSummary(t, s)
	require.True(t, ok)
	assert.Equal(t, "1:4", stored.PLRatio)
}

func TestSummaryStoreFlushError(t *testing.T) {
	t.Parallel()

	st, s, _ := newTestSummaryStore(t)
	s.failWith(errors.New("disk full"))

	_, err := st.SetField("capital", 1.0)
	require.NoError(t, err)
	assert.ErrorIs(t, st.Flush(), ErrStorage)
	assert.Equal(t, 1.0, st.Get().Capital)
}

func TestSummaryStoreExternalChange(t *testing.T) {
	t.Parallel()

	m := storage.NewMemory()
	sa, sb := m.Open(), m.Open()
	defer sa.Close()
	defer sb.Close()
	cb := newCountingStore(sb)

	clock := debounce.NewManual()
	a := NewSummaryStore(sa, clock, 0, nil)
	b := NewSummaryStore(cb, clock, 0, nil)

	_, err := a.SetField("capital", 777.0)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	assert.Eventually(t, func() bool { return b.Get().Capital == 777 }, time.Second, 5*time.Millisecond)

	// b adopted the value as persisted, so closing it writes nothing
	require.NoError(t, b.Close())
	assert.Equal(t, 0, cb.count(SummaryKey))
}

func TestSummaryStoreInvalidEdit(t *testing.T) {
	t.Parallel()

	st, _, _ := newTestSummaryStore(t)

	got, err := st.SetField("unknown", 1.0)
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, DefaultSummary(), got)
	assert.False(t, st.Pending())
}

// gatedStore holds every Set until release is closed.
type gatedStore struct {
	storage.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Set(key string, value []byte) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.Store.Set(key, value)
}

func TestSummaryStoreCloseWaitsForAutosave(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory().Open()
	defer mem.Close()
	gate := &gatedStore{Store: mem, entered: make(chan struct{}), release: make(chan struct{})}
	clock := debounce.NewManual()
	st := NewSummaryStore(gate, clock, 0, nil)

	_, err := st.SetField("capital", 321.0)
	require.NoError(t, err)

	go clock.Advance(DefaultSummaryDelay)
	<-gate.entered

	closed := make(chan error, 1)
	go func() { closed <- st.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned before the autosave finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	stored, ok := storedSummary(t, mem)
	require.True(t, ok)
	assert.Equal(t, 321.0, stored.Capital)
}

func TestSummaryStoreReset(t *testing.T) {
	t.Parallel()

	st, s, clock := newTestSummaryStore(t)

	_, err := st.SetField("capital", 500.0)
	require.NoError(t, err)
	require.NoError(t, st.Flush())
	_, ok := storedSummary(t, s)
	require.True(t, ok)

	// a pending edit is dropped by the reset
	_, err = st.SetField("tpPerTrade", 9.0)
	require.NoError(t, err)

	got, err := st.Reset()
	require.NoError(t, err)
	assert.Equal(t, DefaultSummary(), got)
	assert.Equal(t, DefaultSummary(), st.Get())
	assert.False(t, st.Pending())

	_, ok = storedSummary(t, s)
	assert.False(t, ok)

	clock.Advance(time.Minute)
	_, ok = storedSummary(t, s)
	assert.False(t, ok)
}
