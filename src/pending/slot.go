// Package pending holds values handed from the capture step to the
// selection surface and the finalize step. Every read is destructive.
package pending

import (
	"errors"
	"sync"
)

var ErrEmpty = errors.New("slot is empty")

// Slot is a single-slot, take-once store guarded by its own mutex.
// The zero value is an empty slot ready for use.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
}

// Put stores v, replacing and returning any unconsumed value.
func (s *Slot[T]) Put(v T) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced = s.full
	s.value, s.full = v, true
	return replaced
}

// Take moves the value out of the slot. A second Take fails with ErrEmpty
// until the next Put.
func (s *Slot[T]) Take() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.full {
		return zero, ErrEmpty
	}
	v := s.value
	s.value, s.full = zero, false
	return v, nil
}

// Restore puts a taken value back only if the slot is still empty, so a
// failed consumer can hand it back without clobbering a newer value.
func (s *Slot[T]) Restore(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.value, s.full = v, true
	return true
}

// Clear drops any value and reports whether one was present.
func (s *Slot[T]) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	had := s.full
	s.value, s.full = zero, false
	return had
}

func (s *Slot[T]) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.full
}
