package protocol

import (
	"math/bits"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

const stageEncode = "encode"

// Encode dispatches to the encoder for p. Unsupported protocols produce an
// empty sequence and a warning.
func Encode(p Protocol, bits []bool, te uint64, timing Timing) (subghz.Sequence, subghz.Warnings) {
	switch p.Kind {
	case Princeton:
		return EncodePrinceton(bits, te, timing)
	case EV1527:
		return EncodeEV1527(bits, te, timing)
	case KeeloqStatic:
		return EncodeKeeloqStatic(bits, te, timing)
	}
	var warnings subghz.Warnings
	warnings.Addf(stageEncode, "unsupported protocol %q", p.Name)
	return nil, warnings
}

// scaled returns k*te, or false when the product overflows or exceeds
// subghz.MaxPulseDuration.
func scaled(te, k uint64) (uint64, bool) {
	hi, lo := bits.Mul64(te, k)
	if hi != 0 || lo > subghz.MaxPulseDuration {
		return 0, false
	}
	return lo, true
}

// EncodePrinceton emits one TE-symmetric pulse pair per bit (1 = on/off,
// 0 = off/on) followed by a PrincetonGapTE synchronisation gap.
func EncodePrinceton(bits []bool, te uint64, timing Timing) (subghz.Sequence, subghz.Warnings) {
	var warnings subghz.Warnings
	if te == 0 {
		warnings.Addf(stageEncode, "Princeton: TE is zero, nothing to encode")
		return nil, warnings
	}
	timing = timing.WithDefaults()
	gap, ok := scaled(te, timing.PrincetonGapTE)
	if !ok {
		warnings.Addf(stageEncode, "Princeton: gap of %d x TE %d is out of range", timing.PrincetonGapTE, te)
		return nil, warnings
	}

	seq := make(subghz.Sequence, 0, 2*len(bits)+1)
	for _, bit := range bits {
		if bit {
			seq = append(seq, subghz.On(te), subghz.Off(te))
		} else {
			seq = append(seq, subghz.Off(te), subghz.On(te))
		}
	}
	seq = append(seq, subghz.Off(gap))
	return seq, warnings
}

// EncodeEV1527 emits the preamble, a 3:1 or 1:3 on/off pair per bit and a
// trailing TE gap.
func EncodeEV1527(bits []bool, te uint64, timing Timing) (subghz.Sequence, subghz.Warnings) {
	var warnings subghz.Warnings
	if te == 0 {
		warnings.Addf(stageEncode, "EV1527: TE is zero, nothing to encode")
		return nil, warnings
	}
	timing = timing.WithDefaults()
	if len(bits) != timing.EV1527Bits {
		warnings.Addf(stageEncode, "EV1527: got %d bits, expected %d; encoding anyway", len(bits), timing.EV1527Bits)
	}

	preamble, ok := scaled(te, timing.EV1527PreambleTE)
	if !ok {
		warnings.Addf(stageEncode, "EV1527: preamble of %d x TE %d is out of range", timing.EV1527PreambleTE, te)
		return nil, warnings
	}
	long, ok := scaled(te, 3)
	if !ok {
		warnings.Addf(stageEncode, "EV1527: long pulse of 3 x TE %d is out of range", te)
		return nil, warnings
	}

	seq := make(subghz.Sequence, 0, 2*len(bits)+3)
	seq = append(seq, subghz.On(te), subghz.Off(preamble))
	for _, bit := range bits {
		if bit {
			seq = append(seq, subghz.On(long), subghz.Off(te))
		} else {
			seq = append(seq, subghz.On(te), subghz.Off(long))
		}
	}
	seq = append(seq, subghz.Off(te))
	return seq, warnings
}

// EncodeKeeloqStatic replays a captured Keeloq key as fixed Manchester bits.
// Rolling-code receivers will reject it.
func EncodeKeeloqStatic(bits []bool, te uint64, timing Timing) (subghz.Sequence, subghz.Warnings) {
	var warnings subghz.Warnings
	if te == 0 {
		warnings.Addf(stageEncode, "Keeloq: TE is zero, nothing to encode")
		return nil, warnings
	}
	if te > subghz.MaxPulseDuration {
		warnings.Addf(stageEncode, "Keeloq: TE %d is out of range", te)
		return nil, warnings
	}
	timing = timing.WithDefaults()
	warnings.Addf(stageEncode, "Keeloq: static reproduction of a rolling code, real receivers will not accept it")
	if len(bits) != timing.KeeloqBits {
		warnings.Addf(stageEncode, "Keeloq: got %d bits, expected %d; encoding anyway", len(bits), timing.KeeloqBits)
	}

	seq := make(subghz.Sequence, 0, 2*len(bits)+1)
	for _, bit := range bits {
		if bit {
			seq = append(seq, subghz.On(te), subghz.Off(te))
		} else {
			seq = append(seq, subghz.Off(te), subghz.On(te))
		}
	}
	seq = append(seq, subghz.Off(te))
	return seq, warnings
}
