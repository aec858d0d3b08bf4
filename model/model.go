package model

import (
	"fmt"
	"time"
)

// Note is a pitch in the standard 0-127 MIDI key numbering.
type Note uint8

// A few pitches by name, mostly for tests and defaults.
const (
	F3 Note = 53
	C4 Note = 60
	D4 Note = 62
	E4 Note = 64
	G4 Note = 67
	B4 Note = 71
	D5 Note = 74
	C6 Note = 84
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the conventional note name, e.g. 60 -> "C4".
func (n Note) Name() string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

// Voltage is a real-valued quantity in volts. It is a distinct type so a
// voltage is never confused with a Note or a DAC code.
type Voltage float64

// Volts returns the value as a plain float64.
func (v Voltage) Volts() float64 { return float64(v) }

func (v Voltage) String() string { return fmt.Sprintf("%.4fV", float64(v)) }

// NoteEvent is a single note-on or note-off, stamped with its arrival time.
type NoteEvent struct {
	On       bool
	Channel  uint8
	Note     Note
	Velocity uint8
	At       time.Time
}
