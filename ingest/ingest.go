// Package ingest is the inbound boundary: it turns already-delimited message
// units (or a live MIDI port) into the pipeline's events. Note events flow to
// the cleanup engine; recognized controllers apply to their config slots
// immediately and are never batched.
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/watch"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// UnitSize is the size of one framed unit: a header byte plus a binary
// channel-voice message, per the USB-MIDI event packet layout.
const UnitSize = 4

// portamentoTimeController is MIDI CC 5, Portamento Time.
const portamentoTimeController = 5

// Handler classifies inbound messages and fans them out. It is the sole
// writer of the portamento-time slot.
type Handler struct {
	log        *slog.Logger
	events     chan<- model.NoteEvent
	portamento *watch.Slot[uint8]
}

func NewHandler(events chan<- model.NoteEvent, portamento *watch.Slot[uint8], log *slog.Logger) *Handler {
	return &Handler{log: log, events: events, portamento: portamento}
}

// HandleUnit parses one framed unit. Byte 0 is the framing header and is
// intentionally ignored; the remaining three bytes hold the MIDI message.
// Undersized units are discarded with a diagnostic, never an error.
func (h *Handler) HandleUnit(unit []byte, at time.Time) {
	if len(unit) != UnitSize {
		h.log.Warn("discarding undersized message unit", "len", len(unit))
		return
	}
	h.HandleMessage(midi.Message(unit[1:UnitSize]), at)
}

// HandleMessage classifies one channel-voice message. Valid kinds the
// pipeline does not care about are logged and dropped without state change.
func (h *Handler) HandleMessage(msg midi.Message, at time.Time) {
	var ch, key, vel, ctrl, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		h.log.Info("note on", "channel", ch, "note", model.Note(key).Name(), "velocity", vel)
		h.events <- model.NoteEvent{On: true, Channel: ch, Note: model.Note(key), Velocity: vel, At: at}
	case msg.GetNoteEnd(&ch, &key):
		h.log.Info("note off", "channel", ch, "note", model.Note(key).Name())
		h.events <- model.NoteEvent{On: false, Channel: ch, Note: model.Note(key), At: at}
	case msg.GetControlChange(&ch, &ctrl, &val):
		if ctrl == portamentoTimeController {
			h.log.Info("portamento time control change", "channel", ch, "value", val)
			h.portamento.Set(val)
		} else {
			h.log.Debug("unsupported control change", "channel", ch, "controller", ctrl, "value", val)
		}
	default:
		h.log.Debug("unsupported message", "msg", msg.String())
	}
}

// ReadFrom consumes fixed-size units from r until EOF or cancellation. A
// truncated trailing unit is discarded with a diagnostic; it never aborts the
// stream processing that came before it.
func (h *Handler) ReadFrom(ctx context.Context, r io.Reader) error {
	buf := make([]byte, UnitSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			h.HandleUnit(buf[:n], time.Now())
			return nil
		}
		if err != nil {
			return err
		}
		h.HandleUnit(buf, time.Now())
	}
}

// Listen opens a live MIDI input and feeds every message through the
// handler. With an empty name the first available port is used. The returned
// stop function tears the connection down.
func (h *Handler) Listen(portName string) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	in, err := findIn(drv, portName)
	if err != nil {
		drv.Close()
		return nil, err
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, err
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		h.HandleMessage(msg, time.Now())
	})
	if err != nil {
		in.Close()
		drv.Close()
		return nil, err
	}
	h.log.Info("listening for MIDI", "port", in.String())
	return func() {
		stop()
		in.Close()
		drv.Close()
	}, nil
}

// Ports enumerates available MIDI input port names.
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

func findIn(drv *rtmididrv.Driver, name string) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return nil, errors.New("no MIDI input ports available")
	}
	if name == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, errors.New("MIDI input port not found: " + name)
}
