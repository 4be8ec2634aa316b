// Package storage is the durable key-value layer of the journal.
//
// A Store is one open handle ("instance") on a shared backend. Several
// instances may be open on the same backend at once, in one process or in
// several; a write through one instance is reported to the change
// subscribers of every other instance, never to the writer itself.
package storage

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("storage: closed")

// ChangeFunc receives the new value of a key written by another instance.
// ok is false when the key was deleted.
type ChangeFunc func(value []byte, ok bool)

type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// OnExternalChange registers fn for writes to key made by other
	// instances. The returned func unregisters it.
	OnExternalChange(key string, fn ChangeFunc) (cancel func())
	Close() error
}

type subscribers struct {
	mu    sync.Mutex
	next  int
	byKey map[string]map[int]ChangeFunc
}

func (s *subscribers) add(key string, fn ChangeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byKey == nil {
		s.byKey = make(map[string]map[int]ChangeFunc)
	}
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[int]ChangeFunc)
	}
	s.next++
	n := s.next
	s.byKey[key][n] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.byKey[key], n)
		})
	}
}

func (s *subscribers) notify(key string, value []byte, ok bool) {
	s.mu.Lock()
	fns := make([]ChangeFunc, 0, len(s.byKey[key]))
	for _, fn := range s.byKey[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value, ok)
	}
}

func (s *subscribers) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey = nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
