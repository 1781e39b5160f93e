package protocol

import (
	"strings"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

const stageHexKey = "hexkey"

// DecodeHexKey converts a hex key string into at most bitCount bits, most
// significant bit of each byte first. Separators and any other non-hex
// characters are stripped before pairing digits into bytes, so a malformed
// byte never reaches decoding. Irregular input never fails: an odd trailing
// digit is dropped with a warning, and a result shorter than bitCount is
// returned with a warning so the caller can reject it.
func DecodeHexKey(s string, bitCount int) ([]bool, subghz.Warnings) {
	var warnings subghz.Warnings

	clean := strings.Map(func(r rune) rune {
		if isHexDigit(r) {
			return r
		}
		return -1
	}, s)

	if len(clean)%2 != 0 {
		warnings.Addf(stageHexKey, "odd number of hex digits in key %q, ignoring trailing %q", s, clean[len(clean)-1:])
		clean = clean[:len(clean)-1]
	}

	bits := make([]bool, 0, max(bitCount, 0))
	for i := 0; i+2 <= len(clean) && len(bits) < bitCount; i += 2 {
		b := hexValue(clean[i])<<4 | hexValue(clean[i+1])
		for shift := 7; shift >= 0 && len(bits) < bitCount; shift-- {
			bits = append(bits, (b>>uint(shift))&1 == 1)
		}
	}

	if len(bits) != bitCount {
		warnings.Addf(stageHexKey, "decoded %d bits from key %q, expected %d", len(bits), s, bitCount)
	}
	return bits, warnings
}

// hexValue returns the value of a digit already accepted by isHexDigit.
func hexValue(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// BitString renders bits as a string of '0' and '1', mostly for logs and tests.
func BitString(bits []bool) string {
	var b strings.Builder
	b.Grow(len(bits))
	for _, bit := range bits {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
