package radio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

// FakeBridge is an in-memory serial port that behaves like the OOK bridge:
// every complete line written to it queues the next scripted reply for
// reading. With no script left it answers "OK".
type FakeBridge struct {
	mu sync.Mutex

	// Replies are returned in order, one per written line. A reply of ""
	// means the bridge stays silent for that line.
	Replies []string

	// WriteError is returned by the next Write call if set.
	WriteError error

	// ShortWrite makes Write report one byte less than it was given.
	ShortWrite bool

	// CloseError is returned by Close if set.
	CloseError error

	lines        []string
	partial      bytes.Buffer
	readBuf      bytes.Buffer
	readTimeouts []time.Duration
	closed       bool
}

// Write records complete lines and queues replies.
func (b *FakeBridge) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errors.New("serial port closed")
	}
	if b.WriteError != nil {
		err := b.WriteError
		b.WriteError = nil
		return 0, err
	}

	b.partial.Write(p)
	for {
		line, err := b.partial.ReadString('\n')
		if err != nil {
			// keep the incomplete tail for the next Write
			rest := line
			b.partial.Reset()
			b.partial.WriteString(rest)
			break
		}
		b.lines = append(b.lines, strings.TrimSuffix(line, "\n"))
		reply := "OK"
		if len(b.Replies) > 0 {
			reply = b.Replies[0]
			b.Replies = b.Replies[1:]
		}
		if reply != "" {
			b.readBuf.WriteString(reply + "\n")
		}
	}

	if b.ShortWrite && len(p) > 0 {
		return len(p) - 1, nil
	}
	return len(p), nil
}

// Read drains queued replies. An empty queue reads as io.EOF.
func (b *FakeBridge) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, errors.New("serial port closed")
	}
	if b.readBuf.Len() == 0 {
		return 0, io.EOF
	}
	return b.readBuf.Read(p)
}

// SetReadTimeout implements TimeoutSerialPorter.
func (b *FakeBridge) SetReadTimeout(timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readTimeouts = append(b.readTimeouts, timeout)
	return nil
}

// Close marks the port as closed.
func (b *FakeBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return b.CloseError
}

// Lines returns every complete line written so far.
func (b *FakeBridge) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// ReadTimeouts returns the read timeouts applied so far.
func (b *FakeBridge) ReadTimeouts() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]time.Duration, len(b.readTimeouts))
	copy(out, b.readTimeouts)
	return out
}

// Closed reports whether Close was called.
func (b *FakeBridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Burst is one recorded Transmit call.
type Burst struct {
	FrequencyHz uint64
	Sequence    subghz.Sequence
}

// RecordingTransmitter keeps every burst in memory. OnTransmit, when set, is
// called after a burst is recorded with its 1-based call number; its error is
// returned from Transmit.
type RecordingTransmitter struct {
	mu         sync.Mutex
	bursts     []Burst
	OnTransmit func(call int) error
}

// Transmit records the burst.
func (r *RecordingTransmitter) Transmit(_ context.Context, frequencyHz uint64, seq subghz.Sequence) error {
	r.mu.Lock()
	cp := make(subghz.Sequence, len(seq))
	copy(cp, seq)
	r.bursts = append(r.bursts, Burst{FrequencyHz: frequencyHz, Sequence: cp})
	call := len(r.bursts)
	hook := r.OnTransmit
	r.mu.Unlock()

	if hook != nil {
		if err := hook(call); err != nil {
			return fmt.Errorf("transmit %d: %w", call, err)
		}
	}
	return nil
}

// Bursts returns a copy of the recorded bursts.
func (r *RecordingTransmitter) Bursts() []Burst {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Burst, len(r.bursts))
	copy(out, r.bursts)
	return out
}
