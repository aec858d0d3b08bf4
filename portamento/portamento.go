// Package portamento manages intra-note state: gliding the control voltage
// from wherever the pitch currently is to the destination note.
package portamento

import (
	"time"

	"github.com/halfstep/midi2cv/keyboard"
	"github.com/halfstep/midi2cv/model"
)

// MaxGlideTime is the ceiling of the glide range, matching the hardware's
// portamento knob. CC values scale linearly up to it.
const MaxGlideTime = 5 * time.Second

// maxControlValue is the top of the MIDI 0-127 controller domain.
const maxControlValue = 127

// DurationFor converts a Portamento Time control value (CC 5) into a glide
// duration.
func DurationFor(value uint8) time.Duration {
	if value > maxControlValue {
		value = maxControlValue
	}
	return time.Duration(value) * MaxGlideTime / maxControlValue
}

// Glide is one pitch transition in progress.
//
// The origin is a raw voltage rather than a note so that intra-note state can
// be represented: a glide can start from anywhere, e.g. when a new
// destination is selected mid-transition.
type Glide struct {
	origin      model.Voltage
	destination model.Note
	start       time.Time
	duration    time.Duration
	kb          keyboard.Keyboard
}

// New returns a settled glide sitting on the given note.
func New(kb keyboard.Keyboard, note model.Note, now time.Time) Glide {
	return Glide{
		origin:      kb.Voltage(note),
		destination: note,
		start:       now,
		kb:          kb,
	}
}

// Retarget starts a new glide toward dest, catching the pitch where it is:
// the origin of the new glide is exactly the voltage sampled at this moment,
// never a snap back to a note boundary.
func (g Glide) Retarget(dest model.Note, now time.Time) Glide {
	return Glide{
		origin:      g.At(now),
		destination: dest,
		start:       now,
		duration:    g.duration,
		kb:          g.kb,
	}
}

// At returns the interpolated voltage at the given moment. Progress is
// clamped to [0, 1], so sampling at or after start+duration always returns
// exactly the destination voltage; a zero duration is an instant jump.
func (g Glide) At(now time.Time) model.Voltage {
	target := g.kb.Voltage(g.destination)
	elapsed := now.Sub(g.start)
	if g.duration <= 0 || elapsed >= g.duration {
		return target
	}
	if elapsed < 0 {
		return g.origin
	}
	progress := model.Voltage(float64(elapsed) / float64(g.duration))
	return g.origin + (target-g.origin)*progress
}

// Done reports whether the glide has arrived at its destination.
func (g Glide) Done(now time.Time) bool {
	return now.Sub(g.start) >= g.duration
}

// Destination returns the note the glide is heading for.
func (g Glide) Destination() model.Note { return g.destination }

// Duration returns the configured glide time.
func (g Glide) Duration() time.Duration { return g.duration }

// SetDuration changes the glide time. Shortening it below the elapsed time
// finishes the glide on the next sample.
func (g *Glide) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	g.duration = d
}
