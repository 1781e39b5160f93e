// Package testutil provides shared test helpers and descriptor fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PrincetonFixture is a complete protocol block with no raw data.
const PrincetonFixture = `Filetype: Flipper SubGhz Key File
Version: 1
Frequency: 433920000
Preset: FuriHalSubGhzPresetOok650Async
Protocol: Princeton
Bit: 8
Key: A5
TE: 400
`

// RawFixture has two bursts captured at 315 MHz.
const RawFixture = `Filetype: Flipper SubGhz RAW File
Version: 1
Frequency: 315000000
Preset: FuriHalSubGhzPresetOok270Async
Protocol: RAW
RAW_Data: 350 -700 350 -700 700 -350
RAW_Data: 500 -500 500 -10000
`

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteDescriptor writes content to a .sub file in a fresh temp directory and
// returns its path.
func WriteDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.sub")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write descriptor fixture: %v", err)
	}
	return path
}
