package constants

import "os"

// GetListenAddr returns the bind address of the configuration HTTP surface.
func GetListenAddr() string {
	addr := os.Getenv("MIDI2CV_LISTEN_ADDR")
	if addr != "" {
		return addr
	}
	return ":8090"
}

// GetSerialDevice returns the serial device the CV/gate hardware hangs off.
func GetSerialDevice() string {
	dev := os.Getenv("MIDI2CV_SERIAL_DEVICE")
	if dev != "" {
		return dev
	}
	return "/dev/ttyACM0"
}

// DefaultBaudRate matches the firmware on the DAC side of the link.
const DefaultBaudRate = 115200
