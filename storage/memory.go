package storage

import (
	"sync"
)

// Memory is an in-process backend shared by every instance opened on it.
// It behaves like browser local storage: a write is visible to all
// instances at once, and other instances learn about it through change
// events delivered asynchronously, in write order.
type Memory struct {
	mu        sync.Mutex
	data      map[string][]byte
	instances map[*MemoryStore]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		data:      make(map[string][]byte),
		instances: make(map[*MemoryStore]struct{}),
	}
}

// Open returns a new instance on the backend.
func (m *Memory) Open() *MemoryStore {
	s := &MemoryStore{
		m:      m,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	m.mu.Lock()
	m.instances[s] = struct{}{}
	m.mu.Unlock()

	go s.deliver()
	return s
}

type memChange struct {
	key   string
	value []byte
	ok    bool
}

// MemoryStore is one instance on a Memory backend.
type MemoryStore struct {
	m    *Memory
	subs subscribers

	qmu    sync.Mutex
	queue  []memChange
	closed bool

	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	if s.isClosed() {
		return nil, false, ErrClosed
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	v, ok := s.m.data[key]
	return clone(v), ok, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	return s.write(memChange{key: key, value: clone(value), ok: true})
}

func (s *MemoryStore) Delete(key string) error {
	return s.write(memChange{key: key})
}

func (s *MemoryStore) write(c memChange) error {
	if s.isClosed() {
		return ErrClosed
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if c.ok {
		s.m.data[c.key] = c.value
	} else {
		delete(s.m.data, c.key)
	}
	// Enqueue under the backend lock so every instance sees writes in the
	// same order.
	for other := range s.m.instances {
		if other != s {
			other.enqueue(c)
		}
	}
	return nil
}

func (s *MemoryStore) OnExternalChange(key string, fn ChangeFunc) func() {
	return s.subs.add(key, fn)
}

func (s *MemoryStore) enqueue(c memChange) {
	s.qmu.Lock()
	if s.closed {
		s.qmu.Unlock()
		return
	}
	s.queue = append(s.queue, memChange{key: c.key, value: clone(c.value), ok: c.ok})
	s.qmu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *MemoryStore) deliver() {
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		s.qmu.Lock()
		batch := s.queue
		s.queue = nil
		s.qmu.Unlock()

		for _, c := range batch {
			s.subs.notify(c.key, c.value, c.ok)
		}
	}
}

func (s *MemoryStore) isClosed() bool {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	return s.closed
}

// Close detaches the instance. Pending change events are dropped.
func (s *MemoryStore) Close() error {
	s.qmu.Lock()
	if s.closed {
		s.qmu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.qmu.Unlock()

	s.m.mu.Lock()
	delete(s.m.instances, s)
	s.m.mu.Unlock()

	close(s.done)
	<-s.exited
	s.subs.clear()
	return nil
}
