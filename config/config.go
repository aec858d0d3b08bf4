// Package config holds the user-configurable performance policies. Each
// policy is an enum with an explicit Next method so a single trigger (a
// pushbutton, or the HTTP surface standing in for one) can advance through
// the values and wrap around.
package config

import "time"

// NotePriority determines which note sounds when more notes are held than the
// instrument can voice. When the sounding note is released it is replaced by
// the next candidate under the same rule.
type NotePriority int

const (
	// PriorityFirst voices the earliest-performed held note.
	PriorityFirst NotePriority = iota
	// PriorityLast voices the most recently performed held note.
	PriorityLast
	// PriorityLow voices the lowest-pitched held note, matching the native
	// behavior of most vintage monosynths.
	PriorityLow
	// PriorityHigh voices the highest-pitched held note.
	PriorityHigh
)

// Next returns the following priority, wrapping around after PriorityHigh.
func (p NotePriority) Next() NotePriority {
	switch p {
	case PriorityFirst:
		return PriorityLast
	case PriorityLast:
		return PriorityLow
	case PriorityLow:
		return PriorityHigh
	default:
		return PriorityFirst
	}
}

func (p NotePriority) String() string {
	switch p {
	case PriorityFirst:
		return "first"
	case PriorityLast:
		return "last"
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ChordCleanup determines how long to delay acting on note input so that the
// near-simultaneous keypresses of a chord land in one batch, expressed as a
// division of a note.
//
// The intended use case is live playing: with priority set to low, a chord
// whose third or fifth lands a few milliseconds before the root would
// otherwise sound briefly before the root wins. Because the feature batches
// and swallows notes by design, it should stay off when the synth is driven
// from a sequencer or a MIDI file.
type ChordCleanup int

const (
	// CleanupOff disables batching; note events apply as they arrive.
	CleanupOff ChordCleanup = iota
	// CleanupThirtySecondNote gives the performer a margin of error of one
	// 32nd note.
	CleanupThirtySecondNote
)

// Duration returns the length of the batching window.
//
// TODO: tie this to BPM once tempo context exists; for now BPM is assumed to
// be 120, making a 32nd note 62.5 ms.
func (c ChordCleanup) Duration() time.Duration {
	switch c {
	case CleanupThirtySecondNote:
		return 62500 * time.Microsecond
	default:
		return 0
	}
}

// Enabled reports whether note events should be batched at all.
func (c ChordCleanup) Enabled() bool { return c != CleanupOff }

// Next returns the following cleanup setting, wrapping around.
func (c ChordCleanup) Next() ChordCleanup {
	switch c {
	case CleanupOff:
		return CleanupThirtySecondNote
	default:
		return CleanupOff
	}
}

func (c ChordCleanup) String() string {
	switch c {
	case CleanupOff:
		return "off"
	case CleanupThirtySecondNote:
		return "32nd-note"
	default:
		return "unknown"
	}
}
