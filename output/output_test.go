package output

import (
	"math"
	"testing"

	"github.com/halfstep/midi2cv/model"
	"github.com/stretchr/testify/assert"
)

func TestCodeRoundTripWithinOneStep(t *testing.T) {
	d := DefaultDAC()

	for _, v := range []model.Voltage{0, 0.75, 1.25, 1.75, 2.5833, 3.3333} {
		code := d.Code(v)
		back := d.Voltage(code)
		diff := math.Abs(back.Volts() - v.Volts())
		assert.LessOrEqual(t, diff, d.Step().Volts(),
			"voltage %v -> code %v -> %v drifted more than one step", v, code, back)
	}
}

func TestCodeClamps(t *testing.T) {
	d := DefaultDAC()

	assert.Equal(t, uint16(0), d.Code(-1))
	assert.Equal(t, uint16(4095), d.Code(100))
}

func TestCodeRounds(t *testing.T) {
	d := DAC{Bits: 12, Reference: 4.095}

	// 1 mV per code with this reference, so 1.0005 V rounds up
	assert.Equal(t, uint16(1000), d.Code(1.0))
	assert.Equal(t, uint16(1001), d.Code(1.0005))
}

func TestEncodeFrame(t *testing.T) {
	frame := encodeFrame(cmdSetVoltage, []byte{0x0F, 0xFF})

	assert.Equal(t, []byte{0xAA, 0x55, 0x03, 0x01, 0x0F, 0xFF, 0x03 ^ 0x01 ^ 0x0F ^ 0xFF}, frame)
}

func TestEncodeGateFrame(t *testing.T) {
	frame := encodeFrame(cmdSetGate, []byte{1})

	assert.Equal(t, []byte{0xAA, 0x55, 0x02, 0x02, 0x01, 0x02 ^ 0x02 ^ 0x01}, frame)
}
