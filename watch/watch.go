// Package watch provides the two channel kinds the pipeline's activities
// communicate through: a last-value broadcast slot and a single-slot wake
// signal. Both are built so the writer never blocks on a slow reader; a
// superseded value is simply overwritten.
package watch

import "sync"

// Slot is a last-value broadcast cell. A write overwrites unconditionally.
// Any number of readers may wait for "changed since I last observed it", each
// tracking its own marker; a reader that starts late observes only the most
// recent value, never a backlog.
type Slot[T any] struct {
	mu      sync.Mutex
	val     T
	version uint64
	changed chan struct{}
}

// NewSlot returns a Slot seeded with an initial value. The seed counts as the
// first write, so a fresh reader immediately observes it as a change; an
// unseeded read is structurally impossible.
func NewSlot[T any](initial T) *Slot[T] {
	return &Slot[T]{
		val:     initial,
		version: 1,
		changed: make(chan struct{}),
	}
}

// Set overwrites the held value and wakes all waiting readers.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

// Get returns the current value without affecting any reader's marker.
func (s *Slot[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Reader returns an independent reader that has seen nothing yet, so its
// first wait observes the slot's current value.
func (s *Slot[T]) Reader() *Reader[T] {
	return &Reader[T]{slot: s}
}

// Reader tracks one consumer's position against a Slot.
type Reader[T any] struct {
	slot *Slot[T]
	seen uint64
}

var alreadyClosed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Changed returns a channel that is ready when the slot holds a value this
// reader has not observed. Intended for use in a select; follow up with
// Value to consume the change.
func (r *Reader[T]) Changed() <-chan struct{} {
	r.slot.mu.Lock()
	defer r.slot.mu.Unlock()
	if r.slot.version > r.seen {
		return alreadyClosed
	}
	return r.slot.changed
}

// Value returns the current value and marks it observed.
func (r *Reader[T]) Value() T {
	r.slot.mu.Lock()
	defer r.slot.mu.Unlock()
	r.seen = r.slot.version
	return r.slot.val
}

// Signal holds at most one pending notification for exactly one consumer. A
// write overwrites any unconsumed prior notification; the consumer
// consumes-and-clears by receiving from C.
type Signal[T any] struct {
	ch chan T
}

// NewSignal returns an empty Signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{ch: make(chan T, 1)}
}

// Notify stores a notification, replacing any unconsumed one. It never
// blocks.
func (s *Signal[T]) Notify(v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		// slot full: clear the stale value and try again
		select {
		case <-s.ch:
		default:
		}
	}
}

// C is the consume side. Receiving takes the pending notification and clears
// the slot.
func (s *Signal[T]) C() <-chan T {
	return s.ch
}
