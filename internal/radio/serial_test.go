package radio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sendsubghz/internal/monitoring"
	"github.com/banshee-data/sendsubghz/internal/subghz"
)

var testBurst = subghz.Sequence{subghz.On(400), subghz.Off(400), subghz.Off(12000)}

func newTestTransmitter(bridge *FakeBridge) *SerialTransmitter[*FakeBridge] {
	tx := NewSerialTransmitter(bridge)
	tx.AckTimeout = 50 * time.Millisecond
	return tx
}

func TestFormatTX(t *testing.T) {
	assert.Equal(t, "TX 433920000 400 -400 -12000", FormatTX(433920000, testBurst))
	assert.Equal(t, "TX 315000000", FormatTX(315000000, nil))
}

func TestSerialTransmitter_Initialise(t *testing.T) {
	bridge := &FakeBridge{}
	tx := newTestTransmitter(bridge)

	require.NoError(t, tx.Initialise())
	assert.Equal(t, []string{"MODE OOK"}, bridge.Lines())
}

func TestSerialTransmitter_Transmit(t *testing.T) {
	bridge := &FakeBridge{}
	tx := newTestTransmitter(bridge)

	require.NoError(t, tx.Transmit(context.Background(), 433920000, testBurst))
	assert.Equal(t, []string{"TX 433920000 400 -400 -12000"}, bridge.Lines())

	timeouts := bridge.ReadTimeouts()
	require.NotEmpty(t, timeouts)
	assert.Greater(t, timeouts[0], 12*time.Millisecond, "reply wait covers the burst duration")
}

func TestSerialTransmitter_SkipsChatter(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, format)
	})

	bridge := &FakeBridge{Replies: []string{"\nbusy\nOK"}}
	tx := newTestTransmitter(bridge)

	require.NoError(t, tx.Transmit(context.Background(), 433920000, testBurst))
	assert.Len(t, logged, 1)
}

func TestSerialTransmitter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		bridge  *FakeBridge
		wantErr error
	}{
		{name: "bridge error", bridge: &FakeBridge{Replies: []string{"ERR pll unlocked"}}, wantErr: ErrBridge},
		{name: "no reply", bridge: &FakeBridge{Replies: []string{""}}, wantErr: ErrNoAck},
		{name: "short write", bridge: &FakeBridge{ShortWrite: true}, wantErr: ErrWriteFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := newTestTransmitter(tc.bridge)
			err := tx.Transmit(context.Background(), 433920000, testBurst)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSerialTransmitter_WriteError(t *testing.T) {
	boom := errors.New("unplugged")
	tx := newTestTransmitter(&FakeBridge{WriteError: boom})
	assert.ErrorIs(t, tx.Transmit(context.Background(), 433920000, testBurst), boom)
}

func TestSerialTransmitter_BridgeErrorMessage(t *testing.T) {
	tx := newTestTransmitter(&FakeBridge{Replies: []string{"ERR pll unlocked"}})
	err := tx.Transmit(context.Background(), 433920000, testBurst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pll unlocked")
}

func TestSerialTransmitter_CancelledBeforeStart(t *testing.T) {
	bridge := &FakeBridge{}
	tx := newTestTransmitter(bridge)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tx.Transmit(ctx, 433920000, testBurst), context.Canceled)
	assert.Empty(t, bridge.Lines())
}

func TestSerialTransmitter_Close(t *testing.T) {
	bridge := &FakeBridge{}
	tx := newTestTransmitter(bridge)
	require.NoError(t, tx.Close())
	assert.True(t, bridge.Closed())
}

func TestSerialTransmitter_SequentialReplies(t *testing.T) {
	bridge := &FakeBridge{Replies: []string{"OK", "OK", "ERR overheat"}}
	tx := newTestTransmitter(bridge)
	ctx := context.Background()

	require.NoError(t, tx.Initialise())
	require.NoError(t, tx.Transmit(ctx, 433920000, testBurst))
	assert.ErrorIs(t, tx.Transmit(ctx, 433920000, testBurst), ErrBridge)
	assert.Len(t, bridge.Lines(), 3)
}
