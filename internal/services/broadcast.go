package services

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// subscribers fans a state snapshot out to every registered callback, in
// registration order. Callbacks run on the goroutine that completed the mutation
// and must not mutate the store that invoked them.
//
// Each snapshot carries a sequence number taken with stamp while the store still
// holds its own lock, so sequence order is commit order. publish drops a snapshot
// older than one already delivered: subscribers may skip intermediate states but
// always end on the latest one.
type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]

	seq       atomic.Uint64
	deliverMu sync.Mutex
	delivered uint64
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// stamp must be called under the lock guarding the published state.
func (s *subscribers[T]) stamp() uint64 {
	return s.seq.Add(1)
}

func (s *subscribers[T]) publish(seq uint64, v T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.mu.Lock()
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(v)
	}
}

// inflight counts operations that have started but not yet completed.
type inflight struct {
	n atomic.Int64
}

func (f *inflight) begin() func() {
	f.n.Add(1)
	return func() { f.n.Add(-1) }
}

func (f *inflight) count() int {
	return int(f.n.Load())
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
