package l1addr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/bridge-withdraw/internal/bridge/errs"
	"github/chapool/bridge-withdraw/internal/bridge/l1addr"
)

func testPayload() []byte {
	payload := make([]byte, 33)
	payload[0] = 0x00 // address type tag
	for i := 1; i < len(payload); i++ {
		payload[i] = byte(i)
	}
	return payload
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := testPayload()

	text, err := l1addr.Encode("rms", payload)
	require.NoError(t, err)

	addr, err := l1addr.Decode(text, "rms")
	require.NoError(t, err)

	assert.Equal(t, byte(0x00), addr.Type)
	assert.Equal(t, payload[1:], addr.Bytes)
	assert.Equal(t, payload, addr.Payload())

	// Re-encoding the payload with the same prefix reproduces the original text.
	again, err := l1addr.Encode("rms", addr.Payload())
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestDecodeWrongPrefix(t *testing.T) {
	text, err := l1addr.Encode("rms", testPayload())
	require.NoError(t, err)

	_, err = l1addr.Decode(text, "iota")
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestDecodeEmptyPayload(t *testing.T) {
	text, err := l1addr.Encode("rms", nil)
	require.NoError(t, err)

	_, err = l1addr.Decode(text, "rms")
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestDecodeBadChecksum(t *testing.T) {
	text, err := l1addr.Encode("rms", testPayload())
	require.NoError(t, err)

	// Flip the last data character; the checksum no longer matches.
	last := text[len(text)-1]
	flipped := byte('q')
	if last == 'q' {
		flipped = 'p'
	}
	_, err = l1addr.Decode(text[:len(text)-1]+string(flipped), "rms")
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := l1addr.Decode("not an address", "rms")
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestBridgeBytes(t *testing.T) {
	addr := l1addr.Address{Type: 0x08, Bytes: []byte{0xaa, 0xbb}}

	got := addr.BridgeBytes()
	assert.Equal(t, []byte{0x00, 0xaa, 0xbb}, got)

	// The original address is untouched.
	assert.Equal(t, byte(0x08), addr.Type)
	assert.Equal(t, []byte{0xaa, 0xbb}, addr.Bytes)
}
