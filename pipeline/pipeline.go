// Package pipeline constructs the voicing pipeline and runs its activities.
// Every slot and signal is built and seeded with a valid default here, before
// any activity starts, so an uninitialized read is structurally impossible.
// Each configuration value has exactly one writer; everything else observes
// it through the broadcast slots.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halfstep/midi2cv/cleanup"
	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/ingest"
	"github.com/halfstep/midi2cv/keyboard"
	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/notes"
	"github.com/halfstep/midi2cv/output"
	"github.com/halfstep/midi2cv/watch"
)

// defaultTick is how often the voicing activity samples an in-flight glide.
const defaultTick = 2 * time.Millisecond

// Options tune the pipeline; zero values fall back to sensible defaults.
type Options struct {
	Capacity int
	Keyboard keyboard.Keyboard
	Tick     time.Duration
}

// Pipeline owns the channel fabric and the activities wired through it.
type Pipeline struct {
	log  *slog.Logger
	opts Options

	// Events feeds note events from ingest into the cleanup engine.
	Events chan model.NoteEvent

	// Policy broadcast slots; one writer each.
	Priority       *watch.Slot[config.NotePriority]
	Cleanup        *watch.Slot[config.ChordCleanup]
	PortamentoTime *watch.Slot[uint8]

	// Held carries the committed activated-note snapshot downstream.
	Held *watch.Slot[[]model.Note]

	// Output wake signals; a superseded value is simply overwritten.
	CV   *watch.Signal[model.Voltage]
	Gate *watch.Signal[bool]

	engine       *cleanup.Engine
	priorityTrig *watch.Signal[struct{}]
	cleanupTrig  *watch.Signal[struct{}]

	cv   output.VoltageWriter
	gate output.GateWriter
}

// New builds a fully seeded pipeline writing to the given output drivers.
func New(opts Options, cv output.VoltageWriter, gate output.GateWriter, log *slog.Logger) *Pipeline {
	if opts.Capacity == 0 {
		opts.Capacity = notes.DefaultCapacity
	}
	if opts.Keyboard == (keyboard.Keyboard{}) {
		opts.Keyboard = keyboard.Default()
	}
	if opts.Tick == 0 {
		opts.Tick = defaultTick
	}

	p := &Pipeline{
		log:  log.With("session", uuid.New()),
		opts: opts,

		Events:         make(chan model.NoteEvent, 64),
		Priority:       watch.NewSlot(config.PriorityLow),
		Cleanup:        watch.NewSlot(config.CleanupOff),
		PortamentoTime: watch.NewSlot(uint8(0)),
		Held:           watch.NewSlot([]model.Note{}),
		CV:             watch.NewSignal[model.Voltage](),
		Gate:           watch.NewSignal[bool](),

		priorityTrig: watch.NewSignal[struct{}](),
		cleanupTrig:  watch.NewSignal[struct{}](),

		cv:   cv,
		gate: gate,
	}
	p.engine = cleanup.NewEngine(p.Events, p.Cleanup, p.Held, opts.Capacity, p.log)
	return p
}

// Ingest returns the inbound message handler feeding this pipeline.
func (p *Pipeline) Ingest() *ingest.Handler {
	return ingest.NewHandler(p.Events, p.PortamentoTime, p.log)
}

// AdvancePriority requests the note-priority policy advance to its next
// value. Safe to call from any goroutine; bursts collapse.
func (p *Pipeline) AdvancePriority() { p.priorityTrig.Notify(struct{}{}) }

// AdvanceCleanup requests the chord-cleanup policy advance to its next value.
func (p *Pipeline) AdvanceCleanup() { p.cleanupTrig.Notify(struct{}{}) }

// Run spawns every activity and blocks until the context is canceled, the
// event channel closes, or an activity fails. The first failure wins.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 8)
	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errc <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	v := &voicer{
		log:        p.log,
		kb:         p.opts.Keyboard,
		tick:       p.opts.Tick,
		held:       p.Held.Reader(),
		priority:   p.Priority.Reader(),
		portamento: p.PortamentoTime.Reader(),
		cv:         p.CV,
		gate:       p.Gate,
	}

	start("cleanup engine", p.engine.Run)
	start("voicer", v.run)
	start("cv driver", p.driveCV)
	start("gate driver", p.driveGate)
	start("note-priority owner", func(ctx context.Context) error {
		return advanceLoop(ctx, "note-priority", p.priorityTrig, p.Priority, p.log)
	})
	start("chord-cleanup owner", func(ctx context.Context) error {
		return advanceLoop(ctx, "chord-cleanup", p.cleanupTrig, p.Cleanup, p.log)
	})

	wg.Wait()
	close(errc)
	return <-errc
}

// driveCV forwards voltage updates to the pitch output. A failed write is
// logged and dropped; the next cycle supersedes it anyway.
func (p *Pipeline) driveCV(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-p.CV.C():
			if err := p.cv.WriteVoltage(v); err != nil {
				p.log.Error("cv write failed", "voltage", v.String(), "err", err)
			}
		}
	}
}

func (p *Pipeline) driveGate(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case on := <-p.Gate.C():
			if err := p.gate.SetGate(on); err != nil {
				p.log.Error("gate write failed", "on", on, "err", err)
			}
		}
	}
}

// cycler is any policy enum that can advance to its next value.
type cycler[T any] interface {
	Next() T
	String() string
}

// advanceLoop is the single writer of one policy slot: it waits for trigger
// notifications and cycles the value.
func advanceLoop[T cycler[T]](ctx context.Context, name string, trig *watch.Signal[struct{}], slot *watch.Slot[T], log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-trig.C():
			next := slot.Get().Next()
			slot.Set(next)
			log.Info("setting advanced", "setting", name, "value", next.String())
		}
	}
}
