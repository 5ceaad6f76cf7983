package subscription

import (
	"context"
	"sync"
)

// Memory is an in-process Engine. Events are delivered to every subscriber
// of the entity; a subscriber whose buffer is full misses the event.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySub]struct{}
	buffer int
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

type memorySub struct {
	ch   chan Event
	once sync.Once
}

func (s *memorySub) close() { s.once.Do(func() { close(s.ch) }) }

// MemoryOption configures a Memory engine.
type MemoryOption func(*Memory)

// WithBuffer sets the per-subscriber buffer size. Default is 64.
func WithBuffer(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.buffer = n
		}
	}
}

// NewMemory returns an in-process engine.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{subs: make(map[string]map[*memorySub]struct{}), buffer: 64, done: make(chan struct{})}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish delivers ev to the current subscribers of its entity.
func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for s := range m.subs[ev.Entity] {
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done or the engine is closed.
func (m *Memory) Subscribe(ctx context.Context, entity string) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	s := &memorySub{ch: make(chan Event, m.buffer)}
	if m.subs[entity] == nil {
		m.subs[entity] = make(map[*memorySub]struct{})
	}
	m.subs[entity][s] = struct{}{}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-ctx.Done():
		case <-m.done:
		}
		m.mu.Lock()
		delete(m.subs[entity], s)
		m.mu.Unlock()
		s.close()
	}()
	return s.ch, nil
}

// Subscribers returns the number of live subscribers of entity.
func (m *Memory) Subscribers(entity string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[entity])
}

// Close closes every subscriber channel and waits for the subscriber
// goroutines to exit. Later calls return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.closed = true
	close(m.done)
	for _, subs := range m.subs {
		for s := range subs {
			s.close()
		}
	}
	m.subs = nil
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}
