// Package keyboard models the note input of the attached synthesizer: which
// of the held notes gets voiced, and what control voltage that note requires.
package keyboard

import (
	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/model"
)

// Keyboard describes the playable span and pitch scaling of the attached
// instrument. The values below match a Micromoog-style monosynth; if a second
// instrument is ever supported these become part of an instrument selection
// rather than constants.
type Keyboard struct {
	// Low and High bound the playable span, inclusive.
	Low, High model.Note
	// VoltsPerOctave is the pitch scaling of the synth's keyboard input.
	VoltsPerOctave model.Voltage
	// DefaultNote is voiced at startup, before any key has been played.
	DefaultNote model.Note
}

// Default returns the profile of the one supported instrument: F3..C6 at
// 1 V/octave.
func Default() Keyboard {
	return Keyboard{
		Low:            model.F3,
		High:           model.C6,
		VoltsPerOctave: 1.0,
		DefaultNote:    model.F3,
	}
}

// InRange reports whether the instrument can play the note.
func (k Keyboard) InRange(n model.Note) bool {
	return n >= k.Low && n <= k.High
}

// Playable filters held notes down to the instrument's span, preserving
// order. Out-of-range notes are treated as if they were never held.
func (k Keyboard) Playable(held []model.Note) []model.Note {
	out := make([]model.Note, 0, len(held))
	for _, n := range held {
		if k.InRange(n) {
			out = append(out, n)
		}
	}
	return out
}

// Voltage returns the control voltage that plays the given note on this
// keyboard. The note must be within the playable span; range filtering
// happens before resolution, so an out-of-range note never reaches here.
func (k Keyboard) Voltage(n model.Note) model.Voltage {
	nth := model.Voltage(n - k.Low)
	return nth * k.VoltsPerOctave / 12
}

// ProvideNote selects the note to voice from the held notes under the given
// priority, after filtering to the playable span. ok is false when nothing
// playable is held; callers are expected to keep voicing the previous note in
// that case rather than resetting pitch.
func (k Keyboard) ProvideNote(held []model.Note, p config.NotePriority) (model.Note, bool) {
	return Resolve(k.Playable(held), p)
}

// Resolve picks one note from an ordered slice of held notes. First and Last
// go by performance order, Low and High by pitch. The input must already be
// filtered to the playable range.
func Resolve(held []model.Note, p config.NotePriority) (model.Note, bool) {
	if len(held) == 0 {
		return 0, false
	}
	switch p {
	case config.PriorityFirst:
		return held[0], true
	case config.PriorityLast:
		return held[len(held)-1], true
	case config.PriorityLow:
		low := held[0]
		for _, n := range held[1:] {
			if n < low {
				low = n
			}
		}
		return low, true
	default:
		high := held[0]
		for _, n := range held[1:] {
			if n > high {
				high = n
			}
		}
		return high, true
	}
}
