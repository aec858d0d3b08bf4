package output

import (
	"math"

	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/util"
)

// DAC describes the converter on the far side of the output link: its
// resolution and the reference voltage its full-scale code corresponds to.
type DAC struct {
	Bits      uint
	Reference model.Voltage
}

// DefaultDAC is a 12-bit converter against a 10/3 V reference, the values of
// the adapter hardware this targets.
//
// TODO: take the reference from a calibration step instead of assuming the
// nominal value; real boards drift a few millivolts.
func DefaultDAC() DAC {
	return DAC{Bits: 12, Reference: 10.0 / 3.0}
}

func (d DAC) maxCode() uint16 {
	return uint16(1<<d.Bits - 1)
}

// Code quantizes a voltage to the DAC's code, rounding to the nearest step
// and clamping to the representable range.
func (d DAC) Code(v model.Voltage) uint16 {
	scaled := v.Volts() / d.Reference.Volts() * float64(d.maxCode())
	code := int(math.Round(scaled))
	return uint16(util.Clamp(code, 0, int(d.maxCode())))
}

// Voltage is the inverse of Code: the analog level a code produces.
func (d DAC) Voltage(code uint16) model.Voltage {
	return model.Voltage(float64(code) / float64(d.maxCode()) * d.Reference.Volts())
}

// Step is the voltage of one code, the worst-case quantization error bound.
func (d DAC) Step() model.Voltage {
	return model.Voltage(d.Reference.Volts() / float64(d.maxCode()))
}
