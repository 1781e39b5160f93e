package radio

import (
	"context"
	"time"

	"github.com/banshee-data/sendsubghz/internal/monitoring"
	"github.com/banshee-data/sendsubghz/internal/subghz"
	"github.com/banshee-data/sendsubghz/internal/timeutil"
)

// SimulatedTransmitter stands in for the bridge during dry runs. It logs the
// burst and blocks for its on-air time without emitting anything.
type SimulatedTransmitter struct {
	Clock timeutil.Clock
}

// NewSimulatedTransmitter returns a simulator on the real clock.
func NewSimulatedTransmitter() *SimulatedTransmitter {
	return &SimulatedTransmitter{Clock: timeutil.RealClock{}}
}

// Transmit sleeps for the burst duration.
func (s *SimulatedTransmitter) Transmit(ctx context.Context, frequencyHz uint64, seq subghz.Sequence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := time.Duration(seq.Duration()) * time.Microsecond
	monitoring.Logf("simulating %d pulses at %d Hz for %v", len(seq), frequencyHz, d)
	s.Clock.Sleep(d)
	return nil
}
