package output

import (
	"fmt"
	"log/slog"

	"github.com/halfstep/midi2cv/model"
	"go.bug.st/serial"
)

// Wire format of the link to the DAC/gate board, one frame per value:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and the payload.
const (
	sof0 = 0xAA
	sof1 = 0x55

	cmdSetVoltage = 0x01 // payload: code hi, code lo
	cmdSetGate    = 0x02 // payload: 0 or 1
)

func encodeFrame(cmd byte, payload []byte) []byte {
	length := byte(len(payload) + 1)
	cks := length ^ cmd
	for _, b := range payload {
		cks ^= b
	}
	out := []byte{sof0, sof1, length, cmd}
	out = append(out, payload...)
	return append(out, cks)
}

// Port drives the CV and gate inputs over a serial link to the adapter
// board, quantizing voltages through the configured DAC.
type Port struct {
	log  *slog.Logger
	port serial.Port
	dac  DAC
}

// OpenPort opens the named serial device at the given baud rate.
func OpenPort(device string, baud int, dac DAC, log *slog.Logger) (*Port, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	log.Info("serial port opened", "device", device, "baud", baud)
	return &Port{log: log, port: p, dac: dac}, nil
}

func (p *Port) WriteVoltage(v model.Voltage) error {
	code := p.dac.Code(v)
	frame := encodeFrame(cmdSetVoltage, []byte{byte(code >> 8), byte(code)})
	if _, err := p.port.Write(frame); err != nil {
		return fmt.Errorf("write voltage frame: %w", err)
	}
	p.log.Debug("cv frame sent", "voltage", v.String(), "code", code)
	return nil
}

func (p *Port) SetGate(on bool) error {
	level := byte(0)
	if on {
		level = 1
	}
	if _, err := p.port.Write(encodeFrame(cmdSetGate, []byte{level})); err != nil {
		return fmt.Errorf("write gate frame: %w", err)
	}
	p.log.Debug("gate frame sent", "on", on)
	return nil
}

// Close closes the underlying serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
