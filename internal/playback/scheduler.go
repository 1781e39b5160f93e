// Package playback replays a SubFile through a Transmitter with repeats and
// inter-burst pauses, stopping cleanly when its context is cancelled.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/sendsubghz/internal/radio"
	"github.com/banshee-data/sendsubghz/internal/subghz"
	"github.com/banshee-data/sendsubghz/internal/timeutil"
)

// DefaultPause is the gap between consecutive bursts.
const DefaultPause = 10 * time.Millisecond

// Outcome is the terminal state of a playback run.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
	OutcomeFailed      Outcome = "failed"
)

// Result summarises what a run actually did.
type Result struct {
	Outcome    Outcome
	Transmits  int
	Pauses     int
	PulsesSent int
	AirTime    time.Duration // sum of transmitted burst durations
	Elapsed    time.Duration
}

// Scheduler plays every sequence of a SubFile Repeat times, in order,
// sleeping Pause between consecutive bursts.
type Scheduler struct {
	Transmitter radio.Transmitter
	Clock       timeutil.Clock
	Repeat      int
	Pause       time.Duration
}

// NewScheduler returns a scheduler on the real clock.
func NewScheduler(tx radio.Transmitter, repeat int, pause time.Duration) *Scheduler {
	return &Scheduler{
		Transmitter: tx,
		Clock:       timeutil.RealClock{},
		Repeat:      repeat,
		Pause:       pause,
	}
}

// Run plays f. Cancellation of ctx is checked after every transmit and after
// every pause; once seen, no further burst is sent and no further pause is
// taken, and the result is OutcomeInterrupted with a nil error. A burst that
// has already been handed to the transmitter always runs to completion. A
// transmitter error stops playback and is returned with OutcomeFailed, unless
// ctx was cancelled by then, which counts as OutcomeInterrupted.
func (s *Scheduler) Run(ctx context.Context, f subghz.SubFile) (Result, error) {
	if s.Repeat < 1 {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("repeat count must be at least 1, got %d", s.Repeat)
	}
	if s.Pause < 0 {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("pause must not be negative, got %v", s.Pause)
	}
	if len(f.Sequences) == 0 {
		return Result{Outcome: OutcomeFailed}, errors.New("nothing to play: SubFile has no sequences")
	}

	clock := s.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	res := Result{Outcome: OutcomeCompleted}
	finish := func(o Outcome) Result {
		res.Outcome = o
		res.Elapsed = clock.Since(start)
		return res
	}

	if ctx.Err() != nil {
		return finish(OutcomeInterrupted), nil
	}

	last := len(f.Sequences) - 1
	for r := 0; r < s.Repeat; r++ {
		for i, seq := range f.Sequences {
			if err := s.Transmitter.Transmit(ctx, f.FrequencyHz, seq); err != nil {
				// cancellation reported by the transmitter is still an interruption
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return finish(OutcomeInterrupted), nil
				}
				return finish(OutcomeFailed), fmt.Errorf("repeat %d/%d, sequence %d/%d: %w", r+1, s.Repeat, i+1, len(f.Sequences), err)
			}
			res.Transmits++
			res.PulsesSent += len(seq)
			res.AirTime += time.Duration(seq.Duration()) * time.Microsecond

			if ctx.Err() != nil {
				return finish(OutcomeInterrupted), nil
			}
			if r == s.Repeat-1 && i == last {
				continue
			}

			clock.Sleep(s.Pause)
			res.Pauses++
			if ctx.Err() != nil {
				return finish(OutcomeInterrupted), nil
			}
		}
	}
	return finish(OutcomeCompleted), nil
}
