// Package notes tracks the activated notes of an instrument. "Activated"
// means currently held (e.g. a depressed key), regardless of whether the note
// is actually voiced: on a monophonic synth many keys may be down but only one
// sounds.
package notes

import "github.com/halfstep/midi2cv/model"

// DefaultCapacity follows the General MIDI Level 2 requirement that compliant
// devices handle at least 32 simultaneous notes.
const DefaultCapacity = 32

// Set is a fixed-capacity ordered collection of distinct notes. Insertion
// order is preserved across removals, so the first and most recent performed
// notes are always recoverable.
type Set struct {
	data []model.Note
	cap  int
}

// NewSet returns an empty Set. A capacity below one falls back to
// DefaultCapacity.
func NewSet(capacity int) *Set {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Set{data: make([]model.Note, 0, capacity), cap: capacity}
}

// Add records a note as activated. Adding a note that is already present is a
// no-op, as is adding to a full set: evicting an already-sounding note risks
// leaving it stuck downstream, so the excess note is ignored instead.
func (s *Set) Add(n model.Note) {
	if len(s.data) == s.cap || s.contains(n) {
		return
	}
	s.data = append(s.data, n)
}

// Remove drops a note from the set. Removing an absent note is a no-op, and
// removal never reorders the remaining entries.
func (s *Set) Remove(n model.Note) {
	for i, have := range s.data {
		if have == n {
			s.data = append(s.data[:i], s.data[i+1:]...)
			return
		}
	}
}

// IsEmpty reports whether no notes are activated.
func (s *Set) IsEmpty() bool { return len(s.data) == 0 }

// Len returns the number of activated notes.
func (s *Set) Len() int { return len(s.data) }

// Notes returns the activated notes in performance order, oldest first. The
// returned slice is a copy.
func (s *Set) Notes() []model.Note {
	out := make([]model.Note, len(s.data))
	copy(out, s.data)
	return out
}

// First returns the earliest-performed note still held.
func (s *Set) First() (model.Note, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.data[0], true
}

// Last returns the most recently performed note still held.
func (s *Set) Last() (model.Note, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.data[len(s.data)-1], true
}

// Lowest returns the held note with the lowest pitch.
func (s *Set) Lowest() (model.Note, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	low := s.data[0]
	for _, n := range s.data[1:] {
		if n < low {
			low = n
		}
	}
	return low, true
}

// Highest returns the held note with the highest pitch.
func (s *Set) Highest() (model.Note, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	high := s.data[0]
	for _, n := range s.data[1:] {
		if n > high {
			high = n
		}
	}
	return high, true
}

// Clone returns an independent copy with the same capacity and contents.
func (s *Set) Clone() *Set {
	c := NewSet(s.cap)
	c.data = append(c.data, s.data...)
	return c
}

func (s *Set) contains(n model.Note) bool {
	for _, have := range s.data {
		if have == n {
			return true
		}
	}
	return false
}
