package subghz

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a SubFile for the human-readable report.
type Summary struct {
	FrequencyHz   uint64
	Sequences     int
	TotalPulses   int
	TotalDuration uint64  // microseconds, one pass over all sequences
	MinDuration   uint64  // shortest sequence, microseconds
	MaxDuration   uint64  // longest sequence, microseconds
	MeanDuration  float64 // microseconds
}

// Summarize computes the report figures for f. An empty SubFile yields a
// zero summary apart from the frequency.
func Summarize(f SubFile) Summary {
	s := Summary{
		FrequencyHz: f.FrequencyHz,
		Sequences:   len(f.Sequences),
		TotalPulses: f.TotalPulses(),
	}
	if len(f.Sequences) == 0 {
		return s
	}

	durations := make([]float64, len(f.Sequences))
	for i, seq := range f.Sequences {
		d := seq.Duration()
		durations[i] = float64(d)
		s.TotalDuration += d
	}
	s.MinDuration = uint64(floats.Min(durations))
	s.MaxDuration = uint64(floats.Max(durations))
	s.MeanDuration = stat.Mean(durations, nil)
	return s
}
