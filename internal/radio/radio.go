// Package radio drives the external OOK transmitter. The playback scheduler
// only sees the Transmitter interface; implementations talk to a
// serial-attached bridge, simulate timing for dry runs, or record bursts in
// memory for tests.
package radio

import (
	"context"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

// Transmitter emits one burst on the given carrier frequency and blocks until
// it has been sent, which takes roughly seq.Duration() microseconds. A burst
// that has started is never cut short; ctx is only consulted before work
// begins.
type Transmitter interface {
	Transmit(ctx context.Context, frequencyHz uint64, seq subghz.Sequence) error
}
