package radio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/banshee-data/sendsubghz/internal/monitoring"
	"github.com/banshee-data/sendsubghz/internal/subghz"
	"github.com/banshee-data/sendsubghz/internal/timeutil"
)

var (
	ErrWriteFailed = errors.New("failed to write to serial port")
	ErrNoAck       = errors.New("transmitter bridge did not acknowledge")
	ErrBridge      = errors.New("transmitter bridge reported an error")
)

// DefaultAckTimeout is how long to wait for a reply beyond the burst itself.
const DefaultAckTimeout = 2 * time.Second

// SerialTransmitter talks a line protocol to a serial-attached OOK bridge.
// Every command is one newline-terminated line and the bridge answers with
// "OK" or "ERR <reason>":
//
//	MODE OOK
//	TX <frequency_hz> <duration> <duration> ...
//
// TX durations are signed microseconds, positive for carrier on. The bridge
// replies once the burst has been emitted.
type SerialTransmitter[T SerialPorter] struct {
	port       T
	clock      timeutil.Clock
	AckTimeout time.Duration

	mu      sync.Mutex
	pending []byte
}

// NewSerialTransmitter wraps an already open port.
func NewSerialTransmitter[T SerialPorter](port T) *SerialTransmitter[T] {
	return &SerialTransmitter[T]{
		port:       port,
		clock:      timeutil.RealClock{},
		AckTimeout: DefaultAckTimeout,
	}
}

// OpenSerial opens the bridge at path with the given options.
func OpenSerial(path string, opts PortOptions) (*SerialTransmitter[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	return NewSerialTransmitter[serial.Port](port), nil
}

// Initialise puts the bridge into OOK mode.
func (s *SerialTransmitter[T]) Initialise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.command("MODE OOK", s.AckTimeout); err != nil {
		return fmt.Errorf("failed to set OOK mode: %w", err)
	}
	return nil
}

// Transmit sends one burst and waits for the bridge to confirm it.
func (s *SerialTransmitter[T]) Transmit(ctx context.Context, frequencyHz uint64, seq subghz.Sequence) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wait := time.Duration(seq.Duration())*time.Microsecond + s.AckTimeout
	if err := s.command(FormatTX(frequencyHz, seq), wait); err != nil {
		return fmt.Errorf("burst of %d pulses: %w", len(seq), err)
	}
	return nil
}

// Close closes the serial port.
func (s *SerialTransmitter[T]) Close() error {
	return s.port.Close()
}

// FormatTX renders the TX command line for a burst, without the newline.
func FormatTX(frequencyHz uint64, seq subghz.Sequence) string {
	var b strings.Builder
	b.WriteString("TX ")
	b.WriteString(strconv.FormatUint(frequencyHz, 10))
	for _, p := range seq {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// command writes one line and waits up to wait for the reply. Callers hold mu.
func (s *SerialTransmitter[T]) command(line string, wait time.Duration) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	n, err := s.port.Write([]byte(line))
	if err != nil {
		return err
	}
	if n != len(line) {
		return ErrWriteFailed
	}

	deadline := s.clock.Now().Add(wait)
	for {
		reply, err := s.readLine(deadline)
		if err != nil {
			return err
		}
		switch {
		case reply == "":
			continue
		case reply == "OK":
			return nil
		case strings.HasPrefix(reply, "ERR"):
			return fmt.Errorf("%w: %s", ErrBridge, strings.TrimSpace(strings.TrimPrefix(reply, "ERR")))
		default:
			monitoring.Logf("bridge: %s", reply)
		}
	}
}

// readLine returns the next reply line, trimmed. Bytes after the newline are
// kept for the next call.
func (s *SerialTransmitter[T]) readLine(deadline time.Time) (string, error) {
	buf := make([]byte, 256)
	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(s.pending[:i])
			s.pending = s.pending[i+1:]
			return strings.TrimSpace(line), nil
		}

		remaining := deadline.Sub(s.clock.Now())
		if remaining <= 0 {
			return "", fmt.Errorf("%w: timed out", ErrNoAck)
		}
		if tp, ok := any(s.port).(TimeoutSerialPorter); ok {
			if err := tp.SetReadTimeout(remaining); err != nil {
				return "", err
			}
		}

		n, err := s.port.Read(buf)
		s.pending = append(s.pending, buf[:n]...)
		if err == io.EOF && n == 0 {
			return "", fmt.Errorf("%w: port closed", ErrNoAck)
		}
		if err != nil && err != io.EOF {
			return "", err
		}
	}
}
