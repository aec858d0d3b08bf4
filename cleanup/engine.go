// Package cleanup implements the chord-cleanup batching engine: the admission
// state machine between note ingest and voicing. It absorbs the
// near-simultaneous note events of a played (or released) chord into one
// atomically-committed transition, so the priority resolver never observes a
// transient partial chord. Per-chord latency is bounded to exactly one window
// after the chord's first note, no matter how loosely it is articulated.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/notes"
	"github.com/halfstep/midi2cv/watch"
)

// Engine owns the committed activated-note set. No other activity mutates it;
// downstream consumers observe it only through the held broadcast slot.
//
// The engine is either idle or collecting. While collecting it holds a
// working copy of the note set plus a fixed expiry; events landing inside the
// window merge into the copy without extending the expiry (the window is not
// a sliding debounce). At expiry the copy replaces the committed set in one
// step.
type Engine struct {
	log    *slog.Logger
	events <-chan model.NoteEvent
	policy *watch.Slot[config.ChordCleanup]
	held   *watch.Slot[[]model.Note]

	committed *notes.Set

	collecting bool
	expiry     time.Time
	working    *notes.Set
	windowID   uuid.UUID
}

// NewEngine builds an engine reading note events from events, batching per
// the policy slot, and publishing committed snapshots to the held slot.
func NewEngine(
	events <-chan model.NoteEvent,
	policy *watch.Slot[config.ChordCleanup],
	held *watch.Slot[[]model.Note],
	capacity int,
	log *slog.Logger,
) *Engine {
	return &Engine{
		log:       log,
		events:    events,
		policy:    policy,
		held:      held,
		committed: notes.NewSet(capacity),
	}
}

// Collecting reports whether a batching window is open.
func (e *Engine) Collecting() bool { return e.collecting }

// Apply admits one note event, stamped with its arrival time, under the
// current cleanup policy.
func (e *Engine) Apply(ev model.NoteEvent) {
	pol := e.policy.Get()

	if !pol.Enabled() {
		// a window left over from before the policy was switched off must
		// not strand its events
		if e.collecting {
			e.commit()
		}
		applyEvent(e.committed, ev)
		e.publish()
		return
	}

	if !e.collecting {
		e.openWindow(ev.At, pol.Duration())
		applyEvent(e.working, ev)
		return
	}

	if ev.At.After(e.expiry) {
		// the expiry wake and this event raced; the window is over, so
		// commit it and open a fresh one seeded from the committed state
		e.commit()
		e.openWindow(ev.At, pol.Duration())
	} else {
		e.log.Debug("note event batched into open window", "window", e.windowID, "note", ev.Note.Name(), "on", ev.On)
	}
	applyEvent(e.working, ev)
}

// Expire handles the timed wake for the current window. A stale wake, one
// arriving after the window was already closed by a later event, is a no-op:
// validity is re-checked here rather than trusted.
func (e *Engine) Expire(now time.Time) {
	if !e.collecting || now.Before(e.expiry) {
		return
	}
	e.commit()
}

// Flush commits any open window immediately. Called when the cleanup policy
// is switched off mid-gesture so no events are stranded.
func (e *Engine) Flush() {
	if e.collecting {
		e.commit()
	}
}

// Run consumes events and wake-ups until the context is canceled or the
// event channel closes. Pending batched events are flushed on the way out.
func (e *Engine) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	disarm := func() {
		if !armed {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		armed = false
	}
	arm := func() {
		disarm()
		timer.Reset(time.Until(e.expiry))
		armed = true
	}

	policyRd := e.policy.Reader()
	for {
		var wake <-chan time.Time
		if armed {
			wake = timer.C
		}
		select {
		case <-ctx.Done():
			e.Flush()
			return ctx.Err()

		case ev, ok := <-e.events:
			if !ok {
				e.Flush()
				return nil
			}
			wasCollecting, prevExpiry := e.collecting, e.expiry
			e.Apply(ev)
			if e.collecting && (!wasCollecting || !e.expiry.Equal(prevExpiry)) {
				arm()
			} else if !e.collecting {
				disarm()
			}

		case <-wake:
			armed = false
			e.Expire(e.expiry)

		case <-policyRd.Changed():
			pol := policyRd.Value()
			e.log.Info("chord cleanup policy observed", "policy", pol.String())
			if !pol.Enabled() && e.collecting {
				e.Flush()
				disarm()
			}
		}
	}
}

func (e *Engine) openWindow(t time.Time, d time.Duration) {
	e.collecting = true
	e.expiry = t.Add(d)
	e.working = e.committed.Clone()
	e.windowID = uuid.New()
	e.log.Debug("batching window opened", "window", e.windowID, "expiry", e.expiry)
}

// commit atomically replaces the committed set with the working set and
// publishes the change.
func (e *Engine) commit() {
	e.committed = e.working
	e.working = nil
	e.collecting = false
	e.log.Debug("batching window committed", "window", e.windowID, "held", e.committed.Len())
	e.publish()
}

func (e *Engine) publish() {
	e.held.Set(e.committed.Notes())
}

func applyEvent(s *notes.Set, ev model.NoteEvent) {
	if ev.On {
		s.Add(ev.Note)
	} else {
		s.Remove(ev.Note)
	}
}
