package protocol

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

var (
	on  = subghz.On
	off = subghz.Off
)

func bitsOf(s string) []bool {
	bits := make([]bool, len(s))
	for i, c := range s {
		bits[i] = c == '1'
	}
	return bits
}

func TestEncodePrinceton(t *testing.T) {
	seq, warnings := EncodePrinceton(bitsOf("10100101"), 400, DefaultTiming())
	assert.Empty(t, warnings)

	want := subghz.Sequence{
		on(400), off(400), // 1
		off(400), on(400), // 0
		on(400), off(400), // 1
		off(400), on(400), // 0
		off(400), on(400), // 0
		on(400), off(400), // 1
		off(400), on(400), // 0
		on(400), off(400), // 1
		off(12000),
	}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Errorf("Princeton mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodePrincetonCustomGap(t *testing.T) {
	seq, _ := EncodePrinceton(bitsOf("1"), 100, Timing{PrincetonGapTE: 10})
	require.Len(t, seq, 3)
	assert.Equal(t, off(1000), seq[2])
}

func TestEncodeEV1527(t *testing.T) {
	bits := bitsOf(strings.Repeat("10", 12))
	seq, warnings := EncodeEV1527(bits, 300, DefaultTiming())
	assert.Empty(t, warnings)
	require.Len(t, seq, 2+48+1)

	assert.Equal(t, on(300), seq[0])
	assert.Equal(t, off(31*300), seq[1])
	assert.Equal(t, on(900), seq[2])
	assert.Equal(t, off(300), seq[3])
	assert.Equal(t, on(300), seq[4])
	assert.Equal(t, off(900), seq[5])
	assert.Equal(t, off(300), seq[len(seq)-1])
}

func TestEncodeEV1527WrongLength(t *testing.T) {
	seq, warnings := EncodeEV1527(bitsOf("1"), 100, DefaultTiming())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "expected 24")
	assert.Equal(t, subghz.Sequence{on(100), off(3100), on(300), off(100), off(100)}, seq)
}

func TestEncodeKeeloqStatic(t *testing.T) {
	bits := bitsOf(strings.Repeat("01", 33))
	seq, warnings := EncodeKeeloqStatic(bits, 400, DefaultTiming())
	require.Len(t, warnings, 1, "static warning is always raised")
	assert.Contains(t, warnings[0].Message, "static")

	require.Len(t, seq, 133)
	assert.Equal(t, off(400), seq[0])
	assert.Equal(t, on(400), seq[1])
	assert.Equal(t, on(400), seq[2])
	assert.Equal(t, off(400), seq[3])
	assert.Equal(t, off(400), seq[132])
}

func TestEncodeKeeloqStaticWrongLength(t *testing.T) {
	_, warnings := EncodeKeeloqStatic(bitsOf("1010"), 400, DefaultTiming())
	assert.Len(t, warnings, 2)
}

func TestEncodersZeroTE(t *testing.T) {
	encoders := map[string]func([]bool, uint64, Timing) (subghz.Sequence, subghz.Warnings){
		"Princeton": EncodePrinceton,
		"EV1527":    EncodeEV1527,
		"Keeloq":    EncodeKeeloqStatic,
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			seq, warnings := enc(bitsOf("1010"), 0, DefaultTiming())
			assert.Empty(t, seq)
			assert.NotEmpty(t, warnings)
		})
	}
}

func TestEncodersDeterministic(t *testing.T) {
	bits := bitsOf("110010101111000011001010")
	for _, kind := range []Kind{Princeton, EV1527, KeeloqStatic} {
		p := Protocol{Kind: kind, Name: kind.String()}
		first, _ := Encode(p, bits, 350, DefaultTiming())
		second, _ := Encode(p, bits, 350, DefaultTiming())
		assert.Equal(t, first, second, "kind %v", kind)
		assert.NotEmpty(t, first)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	seq, warnings := Encode(Resolve("CAME"), bitsOf("1"), 100, DefaultTiming())
	assert.Empty(t, seq)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "CAME")
}

func TestEncodersRejectOutOfRangeTE(t *testing.T) {
	encoders := map[string]func([]bool, uint64, Timing) (subghz.Sequence, subghz.Warnings){
		"Princeton": EncodePrinceton,
		"EV1527":    EncodeEV1527,
		"Keeloq":    EncodeKeeloqStatic,
	}
	for name, enc := range encoders {
		for _, te := range []uint64{1 << 63, subghz.MaxPulseDuration + 1} {
			seq, warnings := enc(bitsOf("1010"), te, DefaultTiming())
			assert.Empty(t, seq, "%s te=%d", name, te)
			assert.NotEmpty(t, warnings, "%s te=%d", name, te)
		}
	}
}

func TestEncodePrincetonGapAtLimit(t *testing.T) {
	te := subghz.MaxPulseDuration / 30
	seq, warnings := EncodePrinceton(bitsOf("1"), te, DefaultTiming())
	assert.Empty(t, warnings)
	require.Len(t, seq, 3)
	assert.Equal(t, subghz.Off(30*te), seq[2])

	seq, warnings = EncodePrinceton(bitsOf("1"), te+1, DefaultTiming())
	assert.Empty(t, seq)
	assert.Len(t, warnings, 1)
}
