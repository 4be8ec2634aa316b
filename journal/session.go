package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/debounce"
	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/storage"
	"github.com/rustyeddy/tradejournal/trade"
)

type Options struct {
	Logger *zap.Logger
	// Scheduler drives the summary autosave; nil uses real timers.
	Scheduler debounce.Scheduler
	// SummaryDelay is the autosave quiet window; zero uses
	// DefaultSummaryDelay.
	SummaryDelay time.Duration
	// CacheCost bounds the aggregate memo; zero disables it.
	CacheCost int64
}

// Session is one open journal: a ledger and a summary store over one
// durable store, plus the derived P&L figures.
type Session struct {
	store   storage.Store
	ledger  *Ledger
	summary *SummaryStore
	cache   *pnl.Cache
	log     *zap.Logger
}

func Open(s storage.Store, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var cache *pnl.Cache
	if opts.CacheCost > 0 {
		c, err := pnl.NewCache(opts.CacheCost)
		if err != nil {
			return nil, fmt.Errorf("pnl cache: %w", err)
		}
		cache = c
	}

	sess := &Session{
		store:   s,
		ledger:  NewLedger(s, log),
		summary: NewSummaryStore(s, opts.Scheduler, opts.SummaryDelay, log),
		cache:   cache,
		log:     log,
	}
	sess.ledger.OnChange(func(uint64) { sess.cache.Invalidate() })
	return sess, nil
}

func (s *Session) Ledger() *Ledger { return s.ledger }

func (s *Session) SummaryStore() *SummaryStore { return s.summary }

func (s *Session) Trades() []trade.Trade { return s.ledger.All() }

func (s *Session) Trade(tradeID string) (trade.Trade, bool) { return s.ledger.Get(tradeID) }

func (s *Session) Summary() SummaryData { return s.summary.Get() }

// Totals are computed over every trade, whatever chart range is in use.
func (s *Session) Totals() pnl.Totals {
	ts, v := s.ledger.Snapshot()
	return s.cache.Totals(v, ts)
}

func (s *Session) Series(r pnl.Range) []pnl.Point {
	ts, v := s.ledger.Snapshot()
	return s.cache.Series(v, ts, r)
}

func (s *Session) Stats() pnl.Stats {
	ts, v := s.ledger.Snapshot()
	return s.cache.Stats(v, ts)
}

func (s *Session) AddTrade(t trade.Trade) (trade.Trade, error) {
	return s.ledger.Add(t)
}

func (s *Session) EditTrade(t trade.Trade) error {
	return s.ledger.Update(t)
}

func (s *Session) DeleteTrade(tradeID string) (bool, error) {
	return s.ledger.Remove(tradeID)
}

func (s *Session) SetSummaryField(key string, value any) (SummaryData, error) {
	return s.summary.SetField(key, value)
}

func (s *Session) SetPLRatioPart(part int, value string) (SummaryData, error) {
	return s.summary.SetPLRatioPart(part, value)
}

// ResetSummary puts the summary parameters back to their defaults.
func (s *Session) ResetSummary() (SummaryData, error) {
	return s.summary.Reset()
}

// State is the current journal as an exportable document.
func (s *Session) State() AppState {
	return AppState{
		SummaryData: s.summary.Get(),
		Trades:      s.ledger.All(),
	}
}

func (s *Session) Export(w io.Writer) error {
	return EncodeState(w, s.State())
}

// Import replaces the summary and the ledger with the document read from
// r and writes both at once. A document that does not parse changes
// nothing.
func (s *Session) Import(r io.Reader) error {
	st, err := DecodeState(r)
	if err != nil {
		s.log.Warn("import rejected", zap.Error(err))
		return err
	}

	errSummary := s.summary.ReplaceAll(st.SummaryData)
	errTrades := s.ledger.Replace(st.Trades)
	if err := errors.Join(errSummary, errTrades); err != nil {
		return err
	}
	s.log.Info("journal imported", zap.Int("trades", len(st.Trades)))
	return nil
}

func (s *Session) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	defer f.Close()
	return s.Import(f)
}

func (s *Session) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := s.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close writes any pending summary edit and detaches from the store. The
// store itself stays open.
func (s *Session) Close() error {
	s.ledger.Close()
	err := s.summary.Close()
	s.cache.Close()
	return err
}
