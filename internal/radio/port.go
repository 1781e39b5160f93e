package radio

import (
	"io"
	"time"
)

// SerialPorter defines the minimal interface needed for a serial port.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutSerialPorter is implemented by ports that support read timeouts.
// go.bug.st/serial ports do; when present the reply wait is enforced by the
// port itself instead of by polling.
type TimeoutSerialPorter interface {
	SerialPorter
	SetReadTimeout(timeout time.Duration) error
}
