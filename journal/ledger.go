package journal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/id"
	"github.com/rustyeddy/tradejournal/storage"
	"github.com/rustyeddy/tradejournal/trade"
)

// Ledger is the ordered list of trades. Every mutation is written to the
// durable store before it returns; writes by other instances replace the
// in-memory list without being written back.
type Ledger struct {
	mu      sync.RWMutex
	trades  []trade.Trade
	version uint64

	value *storage.Value[[]trade.Trade]
	log   *zap.Logger

	hmu     sync.Mutex
	hooks   []func(version uint64)
	unwatch func()
}

// NewLedger loads the ledger from s and starts following external changes.
func NewLedger(s storage.Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		value: storage.NewValue(s, TradesKey, []trade.Trade{}, log),
		log:   log.With(zap.String("component", "ledger")),
	}
	l.trades = nonNil(l.value.Load())
	l.unwatch = l.value.Watch(l.external)
	return l
}

func nonNil(ts []trade.Trade) []trade.Trade {
	if ts == nil {
		return []trade.Trade{}
	}
	return ts
}

// OnChange registers fn to run after every change to the ledger, local or
// external.
func (l *Ledger) OnChange(fn func(version uint64)) {
	l.hmu.Lock()
	defer l.hmu.Unlock()
	l.hooks = append(l.hooks, fn)
}

func (l *Ledger) changed(v uint64) {
	l.hmu.Lock()
	hooks := append([]func(uint64){}, l.hooks...)
	l.hmu.Unlock()

	for _, fn := range hooks {
		fn(v)
	}
}

// Add appends t. A trade without an ID gets a new one. Adding an ID that
// is already present fails with ErrDuplicateID.
func (l *Ledger) Add(t trade.Trade) (trade.Trade, error) {
	if !t.Finite() {
		return trade.Trade{}, fmt.Errorf("%w: non-finite amount", ErrInvalidTrade)
	}
	if t.ID == "" {
		t.ID = id.New()
	}

	l.mu.Lock()
	if l.indexOf(t.ID) >= 0 {
		l.mu.Unlock()
		return trade.Trade{}, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	l.trades = append(l.trades, t)
	v, err := l.commit()
	l.mu.Unlock()

	l.changed(v)
	return t, err
}

// Update replaces the trade with t's ID. If there is none the ledger is
// left alone and ErrNotFound is returned. Should the list hold the ID more
// than once (another instance wrote it that way), the first entry is
// replaced and the rest are dropped.
func (l *Ledger) Update(t trade.Trade) error {
	if !t.Finite() {
		return fmt.Errorf("%w: non-finite amount", ErrInvalidTrade)
	}

	l.mu.Lock()
	if l.indexOf(t.ID) < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	next := make([]trade.Trade, 0, len(l.trades))
	replaced := false
	for _, cur := range l.trades {
		if cur.ID != t.ID {
			next = append(next, cur)
			continue
		}
		if !replaced {
			next = append(next, t)
			replaced = true
		}
	}
	l.trades = next
	v, err := l.commit()
	l.mu.Unlock()

	l.changed(v)
	return err
}

// Remove deletes every trade with the given ID and reports whether there
// was one.
func (l *Ledger) Remove(tradeID string) (bool, error) {
	l.mu.Lock()
	if l.indexOf(tradeID) < 0 {
		l.mu.Unlock()
		return false, nil
	}
	next := make([]trade.Trade, 0, len(l.trades)-1)
	for _, cur := range l.trades {
		if cur.ID != tradeID {
			next = append(next, cur)
		}
	}
	l.trades = next
	v, err := l.commit()
	l.mu.Unlock()

	l.changed(v)
	return true, err
}

// Replace swaps in a whole new trade list. A list that repeats an ID or
// holds a non-finite amount is refused and the ledger is left alone.
func (l *Ledger) Replace(trades []trade.Trade) error {
	if err := checkTrades(trades); err != nil {
		return err
	}

	l.mu.Lock()
	l.trades = append([]trade.Trade{}, trades...)
	v, err := l.commit()
	l.mu.Unlock()

	l.changed(v)
	return err
}

// commit must be called with mu held.
func (l *Ledger) commit() (uint64, error) {
	l.version++
	if err := l.value.Save(l.trades); err != nil {
		l.log.Error("persist trades", zap.Error(err), zap.Int("trades", len(l.trades)))
		return l.version, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return l.version, nil
}

func (l *Ledger) external(ts []trade.Trade) {
	l.mu.Lock()
	l.trades = nonNil(ts)
	l.version++
	v := l.version
	n := len(l.trades)
	l.mu.Unlock()

	l.log.Debug("trades changed externally", zap.Int("trades", n))
	l.changed(v)
}

// checkTrades reports the first repeated ID or non-finite trade. Trades
// without an ID are not compared.
func checkTrades(trades []trade.Trade) error {
	seen := make(map[string]bool, len(trades))
	for i, t := range trades {
		if !t.Finite() {
			return fmt.Errorf("%w: trades[%d]: non-finite amount", ErrInvalidTrade, i)
		}
		if t.ID == "" {
			continue
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func (l *Ledger) indexOf(tradeID string) int {
	for i, t := range l.trades {
		if t.ID == tradeID {
			return i
		}
	}
	return -1
}

// All returns a copy of the trades in insertion order.
func (l *Ledger) All() []trade.Trade {
	ts, _ := l.Snapshot()
	return ts
}

// Snapshot returns a copy of the trades together with the version they
// belong to.
func (l *Ledger) Snapshot() ([]trade.Trade, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]trade.Trade{}, l.trades...), l.version
}

func (l *Ledger) Get(tradeID string) (trade.Trade, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(tradeID); i >= 0 {
		return l.trades[i], true
	}
	return trade.Trade{}, false
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// Version increases on every change.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Close stops following external changes.
func (l *Ledger) Close() {
	if l.unwatch != nil {
		l.unwatch()
	}
}
