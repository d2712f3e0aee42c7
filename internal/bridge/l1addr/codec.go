// Package l1addr decodes and validates bech32-encoded layer-1 addresses.
package l1addr

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

// plainAddressDiscriminator is the byte the bridge contract expects in front
// of a plain recipient address payload.
const plainAddressDiscriminator = 0x00

// Address is a decoded layer-1 address: the type tag (the first byte of the
// bech32 payload) plus the remaining payload bytes.
type Address struct {
	Type  byte
	Bytes []byte
}

// Decode parses a bech32-encoded layer-1 address and validates it against the
// expected human-readable prefix.
func Decode(text string, expectedPrefix string) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return Address{}, errs.Wrap(errs.ErrFormat, err, "failed to decode bech32 address")
	}

	if hrp != expectedPrefix {
		return Address{}, errors.Wrapf(errs.ErrFormat, "unexpected address prefix %q (want %q)", hrp, expectedPrefix)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, errs.Wrap(errs.ErrFormat, err, "failed to regroup address payload")
	}

	// The payload must carry at least the address type tag.
	if len(payload) == 0 {
		return Address{}, errors.Wrap(errs.ErrFormat, "address payload is empty")
	}

	return Address{Type: payload[0], Bytes: payload[1:]}, nil
}

// Encode is the inverse of Decode for a raw payload, type tag included.
func Encode(hrp string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.ErrFormat, err, "failed to regroup address payload")
	}

	text, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errs.Wrap(errs.ErrFormat, err, "failed to encode bech32 address")
	}

	return text, nil
}

// Payload returns the full decoded payload, type tag included.
func (a Address) Payload() []byte {
	out := make([]byte, 0, len(a.Bytes)+1)
	out = append(out, a.Type)
	out = append(out, a.Bytes...)
	return out
}

// BridgeBytes returns the form the bridge contract expects: a zero
// discriminator byte marking a plain address, followed by the address bytes.
func (a Address) BridgeBytes() []byte {
	out := make([]byte, 0, len(a.Bytes)+1)
	out = append(out, plainAddressDiscriminator)
	out = append(out, a.Bytes...)
	return out
}
