// Package subghz holds the pulse model shared by the descriptor parser, the
// protocol encoders and the playback scheduler.
package subghz

import (
	"fmt"
	"strings"
)

// DefaultFrequency is used when a descriptor does not carry a Frequency line.
const DefaultFrequency uint64 = 433920000

// MaxPulseDuration is the longest accepted pulse, one hour in microseconds.
// Sequence sums and time.Duration conversions stay in range below it.
const MaxPulseDuration uint64 = 3_600_000_000

// Pulse is one timed carrier state. Level true means carrier on.
type Pulse struct {
	Level    bool
	Duration uint64 // microseconds
}

// On returns a carrier-on pulse of d microseconds.
func On(d uint64) Pulse { return Pulse{Level: true, Duration: d} }

// Off returns a carrier-off pulse of d microseconds.
func Off(d uint64) Pulse { return Pulse{Level: false, Duration: d} }

// String renders the pulse the way RAW_Data lines do: positive for on,
// negative for off.
func (p Pulse) String() string {
	if p.Level {
		return fmt.Sprintf("%d", p.Duration)
	}
	return fmt.Sprintf("-%d", p.Duration)
}

// Sequence is one contiguous burst.
type Sequence []Pulse

// Duration returns the sum of all pulse durations in microseconds.
func (s Sequence) Duration() uint64 {
	var total uint64
	for _, p := range s {
		total += p.Duration
	}
	return total
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// SubFile is the final, read-only artifact handed to playback. Sequences are
// non-empty and ordered in playback order.
type SubFile struct {
	FrequencyHz uint64
	Sequences   []Sequence
}

// TotalPulses counts pulses across all sequences.
func (f SubFile) TotalPulses() int {
	n := 0
	for _, s := range f.Sequences {
		n += len(s)
	}
	return n
}

// Duration returns the combined on-air time of one pass over all sequences.
func (f SubFile) Duration() uint64 {
	var total uint64
	for _, s := range f.Sequences {
		total += s.Duration()
	}
	return total
}

// Sanitize drops zero-length pulses from every sequence and then drops any
// sequence left empty. The input is not modified. Applying Sanitize to its
// own output returns an equal list.
func Sanitize(seqs []Sequence) []Sequence {
	out := make([]Sequence, 0, len(seqs))
	for _, seq := range seqs {
		kept := make(Sequence, 0, len(seq))
		for _, p := range seq {
			if p.Duration == 0 {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}
