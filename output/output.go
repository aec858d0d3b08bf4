// Package output is the outbound boundary: it carries the pipeline's two
// signal channels, pitch control voltage and gate, to whatever is driving the
// synthesizer's inputs.
package output

import (
	"log/slog"

	"github.com/halfstep/midi2cv/model"
)

// VoltageWriter drives the synth's pitch input.
type VoltageWriter interface {
	WriteVoltage(v model.Voltage) error
}

// GateWriter drives the synth's trigger input.
type GateWriter interface {
	SetGate(on bool) error
}

// Console logs output values instead of driving hardware, for running the
// pipeline without the adapter attached.
type Console struct {
	log *slog.Logger
	dac DAC
}

func NewConsole(dac DAC, log *slog.Logger) *Console {
	return &Console{log: log, dac: dac}
}

func (c *Console) WriteVoltage(v model.Voltage) error {
	c.log.Info("cv out", "voltage", v.String(), "code", c.dac.Code(v))
	return nil
}

func (c *Console) SetGate(on bool) error {
	if on {
		c.log.Info("gate high")
	} else {
		c.log.Info("gate low")
	}
	return nil
}
