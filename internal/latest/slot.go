// Package latest implements a single-value overwrite slot. A producer puts
// values as fast as it likes; a consumer only ever sees the freshest one.
// Values overwritten before being read are counted as drops, never queued.
package latest

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Put after Close.
var ErrClosed = errors.New("slot is closed")

// Slot holds at most one value. Put overwrites, Next blocks until a value is
// available. The zero value is not usable; call NewSlot.
type Slot[T any] struct {
	mu     sync.Mutex
	val    T
	full   bool
	closed bool
	ready  chan struct{} // capacity 1, nudges a blocked Next
	done   chan struct{} // closed by Close
	drops  atomic.Uint64
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Put stores v, replacing any value not yet consumed. Replacement increments
// the drop counter. Put never blocks.
func (s *Slot[T]) Put(v T) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.full {
		s.drops.Add(1)
	}
	s.val = v
	s.full = true
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return nil
}

// Next blocks until a value is available and returns it, or returns ok=false
// once the slot is closed and drained. A value put before Close is still
// delivered.
func (s *Slot[T]) Next() (v T, ok bool) {
	for {
		select {
		case <-s.ready:
			if v, ok := s.take(); ok {
				return v, true
			}
		case <-s.done:
			// A Put may have raced ahead of Close; drain it first.
			if v, ok := s.take(); ok {
				return v, true
			}
			var zero T
			return zero, false
		}
	}
}

func (s *Slot[T]) take() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		var zero T
		return zero, false
	}
	v = s.val
	s.full = false
	var zero T
	s.val = zero
	return v, true
}

// Close marks the slot closed. Subsequent Puts fail with ErrClosed; Next
// drains any pending value and then reports ok=false. Safe to call more than
// once.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Drops reports how many values were overwritten before being consumed.
func (s *Slot[T]) Drops() uint64 {
	return s.drops.Load()
}
