// Package subfile reads Flipper-style SubGHz descriptor files and assembles
// them into playable SubFiles.
package subfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/sendsubghz/internal/protocol"
	"github.com/banshee-data/sendsubghz/internal/subghz"
)

const stageParse = "parse"

// maxLineSize bounds a single descriptor line. RAW_Data lines from long
// captures run well past bufio's 64KiB default.
const maxLineSize = 1 << 20

// Descriptor is the best-effort state accumulated while reading a file. It
// is only meaningful as input to Assemble.
type Descriptor struct {
	FrequencyHz  uint64
	HasProtocol  bool
	ProtocolName string
	Protocol     protocol.Protocol
	Key          string
	BitCount     int
	TE           uint64
	RawSequences []subghz.Sequence

	// Informational header fields, not used for encoding.
	Filetype string
	Version  string
	Preset   string
}

// NewDescriptor returns an empty descriptor with the default frequency.
func NewDescriptor() Descriptor {
	return Descriptor{FrequencyHz: subghz.DefaultFrequency}
}

// Load opens path and parses it. Only a failure to open or read the file is
// returned as an error.
func Load(path string) (Descriptor, subghz.Warnings, error) {
	f, err := os.Open(path)
	if err != nil {
		return NewDescriptor(), nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()

	d, warnings, err := Parse(f)
	if err != nil {
		return d, warnings, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d, warnings, nil
}

// Parse reads a descriptor line by line. Malformed lines degrade to warnings
// and never stop the parse.
func Parse(r io.Reader) (Descriptor, subghz.Warnings, error) {
	d := NewDescriptor()
	var warnings subghz.Warnings

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		d.applyField(lineNo, strings.TrimSpace(name), strings.TrimSpace(value), &warnings)
	}
	if err := scan.Err(); err != nil {
		return d, warnings, err
	}
	return d, warnings, nil
}

func (d *Descriptor) applyField(lineNo int, name, value string, warnings *subghz.Warnings) {
	switch name {
	case "Frequency":
		freq, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			warnings.Addf(stageParse, "line %d: invalid Frequency %q, keeping %d Hz", lineNo, value, d.FrequencyHz)
			return
		}
		d.FrequencyHz = freq
	case "Protocol":
		d.HasProtocol = true
		d.ProtocolName = value
		d.Protocol = protocol.Resolve(value)
	case "Key":
		d.Key = value
	case "Bit":
		bits, err := strconv.Atoi(value)
		if err != nil {
			warnings.Addf(stageParse, "line %d: invalid Bit %q, using 0", lineNo, value)
			bits = 0
		}
		d.BitCount = bits
	case "TE":
		te, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			warnings.Addf(stageParse, "line %d: invalid TE %q, using 0", lineNo, value)
			te = 0
		}
		if te > subghz.MaxPulseDuration {
			warnings.Addf(stageParse, "line %d: TE %d exceeds %d us, using 0", lineNo, te, subghz.MaxPulseDuration)
			te = 0
		}
		d.TE = te
	case "RAW_Data":
		if seq := parseRawData(lineNo, value, warnings); len(seq) > 0 {
			d.RawSequences = append(d.RawSequences, seq)
		}
	case "Filetype":
		d.Filetype = value
	case "Version":
		d.Version = value
	case "Preset":
		d.Preset = value
	}
}

// parseRawData turns signed microsecond timings into pulses: positive values
// are carrier on, zero and negative values carrier off. Zero-length entries,
// tokens that are not integers and out-of-range durations are dropped with
// a warning.
func parseRawData(lineNo int, value string, warnings *subghz.Warnings) subghz.Sequence {
	fields := strings.Fields(value)
	seq := make(subghz.Sequence, 0, len(fields))
	zeros := 0
	for _, tok := range fields {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			warnings.Addf(stageParse, "line %d: skipping invalid RAW_Data value %q", lineNo, tok)
			continue
		}
		if v == 0 {
			zeros++
			continue
		}
		if absInt64(v) > subghz.MaxPulseDuration {
			warnings.Addf(stageParse, "line %d: skipping RAW_Data value %d longer than %d us", lineNo, v, subghz.MaxPulseDuration)
			continue
		}
		if v > 0 {
			seq = append(seq, subghz.On(uint64(v)))
		} else {
			seq = append(seq, subghz.Off(absInt64(v)))
		}
	}
	if zeros > 0 {
		warnings.Addf(stageParse, "line %d: dropped %d zero-duration RAW_Data value(s)", lineNo, zeros)
	}
	return seq
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
