package journal

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/debounce"
	"github.com/rustyeddy/tradejournal/storage"
)

// DefaultSummaryDelay is the quiet window before summary edits are
// written to the durable store.
const DefaultSummaryDelay = 1500 * time.Millisecond

// SummaryStore holds the summary parameters. Edits are visible at once;
// the durable copy is written after edits pause for the debounce window.
type SummaryStore struct {
	mu        sync.Mutex
	data      SummaryData
	persisted []byte

	value *storage.Value[SummaryData]
	deb   *debounce.Debouncer
	log   *zap.Logger

	unwatch func()
}

func NewSummaryStore(s storage.Store, sched debounce.Scheduler, delay time.Duration, log *zap.Logger) *SummaryStore {
	if log == nil {
		log = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultSummaryDelay
	}

	st := &SummaryStore{
		value: storage.NewValue(s, SummaryKey, DefaultSummary(), log),
		deb:   debounce.New(sched, delay),
		log:   log.With(zap.String("component", "summary")),
	}
	st.data = st.value.Load()
	st.persisted, _ = st.value.Encode(st.data)
	st.unwatch = st.value.Watch(st.external)
	return st
}

func (s *SummaryStore) Get() SummaryData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetField replaces one field and schedules a durable write.
func (s *SummaryStore) SetField(key string, value any) (SummaryData, error) {
	return s.edit(func(d SummaryData) (SummaryData, error) {
		return d.With(key, value)
	})
}

// SetPLRatioPart replaces part 1 or part 2 of the P&L ratio.
func (s *SummaryStore) SetPLRatioPart(part int, value string) (SummaryData, error) {
	return s.edit(func(d SummaryData) (SummaryData, error) {
		return d.WithPLRatioPart(part, value)
	})
}

func (s *SummaryStore) edit(fn func(SummaryData) (SummaryData, error)) (SummaryData, error) {
	s.mu.Lock()
	next, err := fn(s.data)
	if err != nil {
		cur := s.data
		s.mu.Unlock()
		return cur, err
	}
	s.data = next
	s.mu.Unlock()

	s.deb.Trigger(s.autosave)
	return next, nil
}

func (s *SummaryStore) autosave() {
	if err := s.commit(); err != nil {
		// nothing to return the error to; the next edit or Flush retries
		s.log.Error("autosave summary", zap.Error(err))
	}
}

// ReplaceAll swaps in a whole record and writes it immediately, dropping
// any pending debounced write.
func (s *SummaryStore) ReplaceAll(d SummaryData) error {
	s.deb.Cancel()

	s.mu.Lock()
	s.data = d
	s.mu.Unlock()

	return s.commit()
}

// Reset drops any pending edit, removes the stored record and goes back to
// the defaults.
func (s *SummaryStore) Reset() (SummaryData, error) {
	s.deb.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = DefaultSummary()
	if err := s.value.Clear(); err != nil {
		s.log.Error("clear summary", zap.Error(err))
		return s.data, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.persisted, _ = s.value.Encode(s.data)
	s.log.Debug("summary reset")
	return s.data, nil
}

// Flush writes a pending edit now. An autosave already under way is
// waited for instead.
func (s *SummaryStore) Flush() error {
	if !s.deb.Cancel() {
		return nil
	}
	return s.commit()
}

// Pending reports whether an edit is waiting to be written.
func (s *SummaryStore) Pending() bool {
	return s.deb.Pending()
}

func (s *SummaryStore) commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.value.Encode(s.data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if bytes.Equal(b, s.persisted) {
		return nil
	}
	if err := s.value.Save(s.data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.persisted = b
	s.log.Debug("summary saved")
	return nil
}

func (s *SummaryStore) external(d SummaryData) {
	b, _ := s.value.Encode(d)

	s.mu.Lock()
	s.data = d
	s.persisted = b
	s.mu.Unlock()

	s.log.Debug("summary changed externally")
}

// Close stops following external changes and writes any pending edit.
func (s *SummaryStore) Close() error {
	if s.unwatch != nil {
		s.unwatch()
	}
	return s.Flush()
}
