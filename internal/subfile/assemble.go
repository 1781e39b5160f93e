package subfile

import (
	"errors"

	"github.com/banshee-data/sendsubghz/internal/protocol"
	"github.com/banshee-data/sendsubghz/internal/subghz"
)

const stageAssemble = "assemble"

var (
	// ErrNoPulseData means the descriptor produced no raw or protocol pulses.
	ErrNoPulseData = errors.New("no valid RAW or Protocol data found")
	// ErrEmptyAfterSanitize means every sequence was removed by sanitization.
	ErrEmptyAfterSanitize = errors.New("no pulses left after removing zero-duration entries")
)

// Assemble resolves raw capture data against protocol fields and returns the
// playable SubFile. Raw data always wins over a protocol block. The returned
// error is one of ErrNoPulseData or ErrEmptyAfterSanitize; everything else is
// reported through warnings.
func Assemble(d Descriptor, timing protocol.Timing) (subghz.SubFile, subghz.Warnings, error) {
	var warnings subghz.Warnings
	var seqs []subghz.Sequence

	switch {
	case len(d.RawSequences) > 0 && d.HasProtocol:
		warnings.Addf(stageAssemble, "file has both RAW_Data and Protocol %q; using %d raw sequence(s) and ignoring the protocol", d.ProtocolName, len(d.RawSequences))
		seqs = d.RawSequences
	case len(d.RawSequences) > 0:
		seqs = d.RawSequences
	case d.HasProtocol:
		seq, ws := encodeProtocol(d, timing)
		warnings.Merge(ws)
		if len(seq) > 0 {
			seqs = []subghz.Sequence{seq}
		}
	}

	f := subghz.SubFile{FrequencyHz: d.FrequencyHz}
	if len(seqs) == 0 {
		return f, warnings, ErrNoPulseData
	}

	f.Sequences = subghz.Sanitize(seqs)
	// Parse and the encoders never emit zero-length pulses; this guards
	// Descriptors built by hand.
	if len(f.Sequences) == 0 {
		return f, warnings, ErrEmptyAfterSanitize
	}
	return f, warnings, nil
}

func encodeProtocol(d Descriptor, timing protocol.Timing) (subghz.Sequence, subghz.Warnings) {
	var warnings subghz.Warnings

	missing := make([]string, 0, 4)
	if d.ProtocolName == "" {
		missing = append(missing, "Protocol name")
	}
	if d.Key == "" {
		missing = append(missing, "Key")
	}
	if d.BitCount <= 0 {
		missing = append(missing, "Bit")
	}
	if d.TE == 0 {
		missing = append(missing, "TE")
	}
	if len(missing) > 0 {
		warnings.Addf(stageAssemble, "protocol block is incomplete, missing or invalid: %v", missing)
		return nil, warnings
	}

	bits, ws := protocol.DecodeHexKey(d.Key, d.BitCount)
	warnings.Merge(ws)
	if len(bits) != d.BitCount {
		warnings.Addf(stageAssemble, "key %q decoded to %d bits but Bit is %d; not encoding", d.Key, len(bits), d.BitCount)
		return nil, warnings
	}

	p := d.Protocol
	if p.Name != d.ProtocolName {
		p = protocol.Resolve(d.ProtocolName)
	}
	seq, ws := protocol.Encode(p, bits, d.TE, timing)
	warnings.Merge(ws)
	return seq, warnings
}
