package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/keyboard"
	"github.com/halfstep/midi2cv/model"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu       sync.Mutex
	voltages []model.Voltage
	gates    []bool
}

func (r *recorder) WriteVoltage(v model.Voltage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voltages = append(r.voltages, v)
	return nil
}

func (r *recorder) SetGate(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates = append(r.gates, on)
	return nil
}

func (r *recorder) lastVoltage() (model.Voltage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.voltages) == 0 {
		return 0, false
	}
	return r.voltages[len(r.voltages)-1], true
}

func (r *recorder) lastGate() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.gates) == 0 {
		return false, false
	}
	return r.gates[len(r.gates)-1], true
}

func startPipeline(t *testing.T) (*Pipeline, *recorder) {
	t.Helper()
	rec := &recorder{}
	p := New(Options{}, rec, rec, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return p, rec
}

func press(p *Pipeline, n model.Note) {
	p.Events <- model.NoteEvent{On: true, Note: n, At: time.Now()}
}

func release(p *Pipeline, n model.Note) {
	p.Events <- model.NoteEvent{On: false, Note: n, At: time.Now()}
}

func TestDefaultsSeeded(t *testing.T) {
	p := New(Options{}, &recorder{}, &recorder{}, slog.Default())

	assert.Equal(t, config.PriorityLow, p.Priority.Get())
	assert.Equal(t, config.CleanupOff, p.Cleanup.Get())
	assert.Equal(t, uint8(0), p.PortamentoTime.Get())
	assert.Empty(t, p.Held.Get())
}

func TestStartupVoicesDefaultNote(t *testing.T) {
	_, rec := startPipeline(t)
	kb := keyboard.Default()

	assert.Eventually(t, func() bool {
		v, ok := rec.lastVoltage()
		return ok && v == kb.Voltage(kb.DefaultNote)
	}, time.Second, 5*time.Millisecond, "default note voiced before any key")

	gate, ok := rec.lastGate()
	assert.True(t, ok)
	assert.False(t, gate, "gate stays low until a key is pressed")
}

func TestNoteOnRaisesGateAndPitch(t *testing.T) {
	p, rec := startPipeline(t)
	kb := keyboard.Default()

	press(p, model.C4)

	assert.Eventually(t, func() bool {
		v, _ := rec.lastVoltage()
		gate, _ := rec.lastGate()
		return gate && v == kb.Voltage(model.C4)
	}, time.Second, 5*time.Millisecond)
}

func TestReleaseRetainsPitch(t *testing.T) {
	p, rec := startPipeline(t)
	kb := keyboard.Default()

	press(p, model.C4)
	assert.Eventually(t, func() bool {
		gate, ok := rec.lastGate()
		return ok && gate
	}, time.Second, 5*time.Millisecond)

	release(p, model.C4)
	assert.Eventually(t, func() bool {
		gate, _ := rec.lastGate()
		return !gate
	}, time.Second, 5*time.Millisecond)

	v, ok := rec.lastVoltage()
	assert.True(t, ok)
	assert.Equal(t, kb.Voltage(model.C4), v, "released pitch is retained, not reset")
}

func TestAdvancePriorityRevoices(t *testing.T) {
	p, rec := startPipeline(t)
	kb := keyboard.Default()

	press(p, model.C4)
	press(p, model.E4)
	assert.Eventually(t, func() bool {
		v, _ := rec.lastVoltage()
		return v == kb.Voltage(model.C4)
	}, time.Second, 5*time.Millisecond, "low priority voices the lowest held note")

	p.AdvancePriority()
	assert.Eventually(t, func() bool {
		v, _ := rec.lastVoltage()
		return v == kb.Voltage(model.E4)
	}, time.Second, 5*time.Millisecond, "high priority voices the highest held note")
}

func TestOutOfRangeNoteIgnored(t *testing.T) {
	p, rec := startPipeline(t)
	kb := keyboard.Default()

	assert.Eventually(t, func() bool {
		_, ok := rec.lastVoltage()
		return ok
	}, time.Second, 5*time.Millisecond)

	press(p, kb.Low-1)

	assert.Eventually(t, func() bool {
		gate, ok := rec.lastGate()
		return ok && gate
	}, time.Second, 5*time.Millisecond, "gate tracks the held set even for unplayable notes")

	v, _ := rec.lastVoltage()
	assert.Equal(t, kb.Voltage(kb.DefaultNote), v, "pitch does not follow an unplayable note")
}
