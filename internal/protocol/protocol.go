package protocol

import (
	"fmt"
	"strings"
)

// Kind enumerates the protocols that can be encoded.
type Kind int

const (
	Unsupported Kind = iota
	Princeton
	EV1527
	KeeloqStatic
)

func (k Kind) String() string {
	switch k {
	case Princeton:
		return "Princeton"
	case EV1527:
		return "EV1527"
	case KeeloqStatic:
		return "KeeloqStatic"
	default:
		return "Unsupported"
	}
}

// Protocol is a resolved protocol name. Name keeps the descriptor's original
// text so unsupported protocols can still be reported.
type Protocol struct {
	Kind Kind
	Name string
}

func (p Protocol) String() string {
	if p.Kind == Unsupported {
		return fmt.Sprintf("Unsupported(%s)", p.Name)
	}
	return p.Kind.String()
}

// resolveOrder is the match priority when a name contains several markers.
var resolveOrder = []struct {
	marker string
	kind   Kind
}{
	{"Princeton", Princeton},
	{"EV1527", EV1527},
	{"Keeloq", KeeloqStatic},
}

// Resolve maps a free-text protocol name to a Protocol by case-sensitive
// substring containment; the first match in resolveOrder wins.
func Resolve(name string) Protocol {
	for _, r := range resolveOrder {
		if strings.Contains(name, r.marker) {
			return Protocol{Kind: r.kind, Name: name}
		}
	}
	return Protocol{Kind: Unsupported, Name: name}
}

// Timing holds the TE multipliers and expected key lengths. The multipliers
// reproduce observed captures and are not taken from any protocol datasheet,
// so they can be overridden from the config file.
type Timing struct {
	PrincetonGapTE   uint64 `json:"princeton_gap_te,omitempty" yaml:"princeton_gap_te,omitempty"`
	EV1527PreambleTE uint64 `json:"ev1527_preamble_te,omitempty" yaml:"ev1527_preamble_te,omitempty"`
	EV1527Bits       int    `json:"ev1527_bits,omitempty" yaml:"ev1527_bits,omitempty"`
	KeeloqBits       int    `json:"keeloq_bits,omitempty" yaml:"keeloq_bits,omitempty"`
}

const (
	DefaultPrincetonGapTE   = 30
	DefaultEV1527PreambleTE = 31
	DefaultEV1527Bits       = 24
	DefaultKeeloqBits       = 66
)

// DefaultTiming returns the stock multipliers.
func DefaultTiming() Timing {
	return Timing{
		PrincetonGapTE:   DefaultPrincetonGapTE,
		EV1527PreambleTE: DefaultEV1527PreambleTE,
		EV1527Bits:       DefaultEV1527Bits,
		KeeloqBits:       DefaultKeeloqBits,
	}
}

// WithDefaults fills every zero field from DefaultTiming.
func (t Timing) WithDefaults() Timing {
	d := DefaultTiming()
	if t.PrincetonGapTE == 0 {
		t.PrincetonGapTE = d.PrincetonGapTE
	}
	if t.EV1527PreambleTE == 0 {
		t.EV1527PreambleTE = d.EV1527PreambleTE
	}
	if t.EV1527Bits == 0 {
		t.EV1527Bits = d.EV1527Bits
	}
	if t.KeeloqBits == 0 {
		t.KeeloqBits = d.KeeloqBits
	}
	return t
}
