package output

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaudRate is the wire rate expected by the downstream visualizer.
const DefaultBaudRate = 115200

// Port is the minimal interface needed for the measurement stream.
type Port interface {
	io.Writer
	io.Closer
}

// OpenSerial opens a real serial port at the given device path, 8N1.
// baudRate 0 selects DefaultBaudRate.
func OpenSerial(device string, baudRate int) (Port, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return port, nil
}
