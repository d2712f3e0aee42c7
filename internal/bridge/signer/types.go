// Package signer defines the external signing capability used by the
// withdrawal pipeline and a local, seed-backed implementation of it.
package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// RawSignature is a compact secp256k1 signature as produced by a signer: the
// r and s values plus the recovery parameter, free of any chain binding.
type RawSignature struct {
	R             [32]byte
	S             [32]byte
	RecoveryParam byte
}

// Signer is the external signing capability. Implementations never expose
// key material; callers only ever see addresses and signatures.
type Signer interface {
	// GenerateAddresses derives count consecutive account addresses for the
	// given BIP-44 coin type and account index, starting at address index 0.
	GenerateAddresses(ctx context.Context, coinType, accountIndex uint32, count int) ([]common.Address, error)

	// SignDigest signs a 32-byte message digest with the key at the given
	// BIP-44 derivation path.
	SignDigest(ctx context.Context, digest [32]byte, bip44Path string) (RawSignature, error)
}
