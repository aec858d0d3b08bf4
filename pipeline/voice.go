package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/keyboard"
	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/portamento"
	"github.com/halfstep/midi2cv/watch"
)

// voicer is the resolution activity: it observes the committed note set and
// the performance policies, picks the note to voice, and drives the pitch
// through a glide toward it. When the set empties the previous note is
// retained so pitch holds steady; only the gate reflects that nothing is
// pressed.
type voicer struct {
	log  *slog.Logger
	kb   keyboard.Keyboard
	tick time.Duration

	held       *watch.Reader[[]model.Note]
	priority   *watch.Reader[config.NotePriority]
	portamento *watch.Reader[uint8]

	cv   *watch.Signal[model.Voltage]
	gate *watch.Signal[bool]
}

func (v *voicer) run(ctx context.Context) error {
	now := time.Now()
	glide := portamento.New(v.kb, v.kb.DefaultNote, now)
	gateOn := false

	ticker := time.NewTicker(v.tick)
	defer ticker.Stop()

	lastCV := glide.At(now)
	v.cv.Notify(lastCV)
	v.gate.Notify(gateOn)

	emit := func(now time.Time) {
		cv := glide.At(now)
		if cv != lastCV {
			lastCV = cv
			v.cv.Notify(cv)
		}
	}

	// reselect recomputes the voiced note from the current held set and
	// priority. An empty (or unplayable) set leaves the glide alone.
	reselect := func(now time.Time) {
		held := v.held.Value()
		pri := v.priority.Value()

		if on := len(held) > 0; on != gateOn {
			gateOn = on
			v.gate.Notify(on)
		}
		if note, ok := v.kb.ProvideNote(held, pri); ok && note != glide.Destination() {
			glide = glide.Retarget(note, now)
			v.log.Debug("voicing note", "note", note.Name(), "glide", glide.Duration())
		}
		emit(now)
	}

	for {
		// no need to wake on the tick once the glide has settled
		var tickC <-chan time.Time
		if !glide.Done(time.Now()) {
			tickC = ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-v.held.Changed():
			reselect(time.Now())

		case <-v.priority.Changed():
			reselect(time.Now())

		case <-v.portamento.Changed():
			glide.SetDuration(portamento.DurationFor(v.portamento.Value()))
			emit(time.Now())

		case t := <-tickC:
			emit(t)
		}
	}
}
