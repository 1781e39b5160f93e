package subfile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sendsubghz/internal/protocol"
	"github.com/banshee-data/sendsubghz/internal/subghz"
	"github.com/banshee-data/sendsubghz/internal/testutil"
)

func parseString(t *testing.T, s string) (Descriptor, subghz.Warnings) {
	t.Helper()
	d, warnings, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return d, warnings
}

func TestParsePrincetonFixture(t *testing.T) {
	d, warnings := parseString(t, testutil.PrincetonFixture)
	assert.Empty(t, warnings)

	assert.Equal(t, uint64(433920000), d.FrequencyHz)
	assert.True(t, d.HasProtocol)
	assert.Equal(t, "Princeton", d.ProtocolName)
	assert.Equal(t, protocol.Princeton, d.Protocol.Kind)
	assert.Equal(t, "A5", d.Key)
	assert.Equal(t, 8, d.BitCount)
	assert.Equal(t, uint64(400), d.TE)
	assert.Empty(t, d.RawSequences)
	assert.Equal(t, "Flipper SubGhz Key File", d.Filetype)
	assert.Equal(t, "1", d.Version)
	assert.Equal(t, "FuriHalSubGhzPresetOok650Async", d.Preset)
}

func TestParseDefaults(t *testing.T) {
	d, warnings := parseString(t, "")
	assert.Empty(t, warnings)
	assert.Equal(t, subghz.DefaultFrequency, d.FrequencyHz)
	assert.False(t, d.HasProtocol)
}

func TestParseSkipsCommentsBlankAndUnknown(t *testing.T) {
	input := `
# Frequency: 1
   # TE: 5

no separator here
Frequency:  868350000  
Unknown: whatever
Frequency 1234
`
	d, warnings := parseString(t, input)
	assert.Empty(t, warnings)
	assert.Equal(t, uint64(868350000), d.FrequencyHz)
	assert.Equal(t, uint64(0), d.TE)
}

func TestParseInvalidNumbers(t *testing.T) {
	input := `Frequency: 315000000
Frequency: fast
Bit: 24
Bit: many
TE: 400
TE: -3
`
	d, warnings := parseString(t, input)
	assert.Len(t, warnings, 3)
	assert.Equal(t, uint64(315000000), d.FrequencyHz, "failed Frequency keeps the prior value")
	assert.Equal(t, 0, d.BitCount, "failed Bit resets to zero")
	assert.Equal(t, uint64(0), d.TE, "failed TE resets to zero")
}

func TestParseRawData(t *testing.T) {
	d, warnings := parseString(t, "RAW_Data: 350 -700 0 1200 -1 0\n")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "dropped 2 zero-duration")

	want := []subghz.Sequence{{
		subghz.On(350), subghz.Off(700), subghz.On(1200), subghz.Off(1),
	}}
	if diff := cmp.Diff(want, d.RawSequences); diff != "" {
		t.Errorf("raw sequences mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRawDataOneSequencePerLine(t *testing.T) {
	d, _ := parseString(t, testutil.RawFixture)
	require.Len(t, d.RawSequences, 2)
	assert.Len(t, d.RawSequences[0], 6)
	assert.Len(t, d.RawSequences[1], 4)
	assert.Equal(t, subghz.Off(10000), d.RawSequences[1][3])
}

func TestParseRawDataAllZeroLine(t *testing.T) {
	d, warnings := parseString(t, "RAW_Data: 0 0 0\nRAW_Data: 100 -100\n")
	assert.Len(t, warnings, 1)
	require.Len(t, d.RawSequences, 1)
	assert.Equal(t, subghz.Sequence{subghz.On(100), subghz.Off(100)}, d.RawSequences[0])
}

func TestParseRawDataInvalidToken(t *testing.T) {
	d, warnings := parseString(t, "RAW_Data: 100 abc -200\n")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, `"abc"`)
	assert.Equal(t, subghz.Sequence{subghz.On(100), subghz.Off(200)}, d.RawSequences[0])
}

func TestParseRejectsOutOfRangeDurations(t *testing.T) {
	input := `TE: 9223372036854775808
RAW_Data: 100 -9223372036854775807 3600000001 -200
RAW_Data: 3600000000
`
	d, warnings := parseString(t, input)
	assert.Len(t, warnings, 3)
	assert.Equal(t, uint64(0), d.TE)
	require.Len(t, d.RawSequences, 2)
	assert.Equal(t, subghz.Sequence{subghz.On(100), subghz.Off(200)}, d.RawSequences[0])
	assert.Equal(t, subghz.Sequence{subghz.On(subghz.MaxPulseDuration)}, d.RawSequences[1])
}

func TestParseLongRawLine(t *testing.T) {
	var b strings.Builder
	b.WriteString("RAW_Data:")
	for i := 0; i < 20000; i++ {
		b.WriteString(" 123 -456")
	}
	d, warnings := parseString(t, b.String())
	assert.Empty(t, warnings)
	require.Len(t, d.RawSequences, 1)
	assert.Len(t, d.RawSequences[0], 40000)
}

func TestParseReadError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := Parse(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}

func TestAbsInt64(t *testing.T) {
	assert.Equal(t, uint64(5), absInt64(-5))
	assert.Equal(t, uint64(5), absInt64(5))
	assert.Equal(t, uint64(1)<<63, absInt64(-1<<63))
}

func TestLoad(t *testing.T) {
	path := testutil.WriteDescriptor(t, testutil.RawFixture)
	d, _, err := Load(path)
	testutil.AssertNoError(t, err)
	assert.Equal(t, uint64(315000000), d.FrequencyHz)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.sub"))
	testutil.AssertError(t, err)
	assert.Contains(t, err.Error(), "could not open file")
}
