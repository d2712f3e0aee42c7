package signer

import (
	"context"
	"crypto/sha512"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/pbkdf2"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

const (
	// BIP-39 seed derivation parameters.
	bip39Iterations = 2048
	bip39KeyLength  = 64
)

// localSigner signs with keys derived from an in-memory BIP-39 seed. It
// stands in for a hardware or remote signer in development and tests; the
// seed never leaves process memory and is never persisted.
type localSigner struct {
	mu   sync.RWMutex
	seed []byte
}

// NewLocalSigner creates a seed-backed signer from a BIP-39 mnemonic.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewLocalSigner(mnemonic string, passphrase string) (Signer, error) {
	if mnemonic == "" {
		return nil, errors.New("mnemonic is required")
	}

	// BIP39: seed = PBKDF2(mnemonic, "mnemonic"+passphrase, 2048, 64, SHA512)
	seed := pbkdf2.Key(
		[]byte(mnemonic),
		[]byte("mnemonic"+passphrase),
		bip39Iterations,
		bip39KeyLength,
		sha512.New,
	)

	return &localSigner{seed: seed}, nil
}

// GenerateAddresses derives count consecutive addresses at
// m/44'/coinType'/accountIndex'/0/i.
func (s *localSigner) GenerateAddresses(_ context.Context, coinType, accountIndex uint32, count int) ([]common.Address, error) {
	if count < 1 {
		return nil, errors.New("count must be at least 1")
	}

	addresses := make([]common.Address, 0, count)
	for i := 0; i < count; i++ {
		path := fmt.Sprintf("m/44'/%d'/%d'/0/%d", coinType, accountIndex, i)

		key, err := s.derive(path)
		if err != nil {
			return nil, err
		}

		privateKey, err := crypto.ToECDSA(key)
		zero(key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load derived key")
		}

		addresses = append(addresses, crypto.PubkeyToAddress(privateKey.PublicKey))
	}

	return addresses, nil
}

// SignDigest signs the digest with the key at the given BIP-44 path and
// returns the compact signature with its recovery parameter.
func (s *localSigner) SignDigest(_ context.Context, digest [32]byte, bip44Path string) (RawSignature, error) {
	key, err := s.derive(bip44Path)
	if err != nil {
		return RawSignature{}, err
	}
	defer zero(key)

	privateKey, err := crypto.ToECDSA(key)
	if err != nil {
		return RawSignature{}, errors.Wrap(err, "failed to load derived key")
	}

	sig, err := crypto.Sign(digest[:], privateKey)
	if err != nil {
		return RawSignature{}, errors.Wrap(err, "failed to sign digest")
	}

	var raw RawSignature
	copy(raw.R[:], sig[:32])
	copy(raw.S[:], sig[32:64])
	raw.RecoveryParam = sig[64]
	return raw, nil
}

// derive walks the BIP-44 path from the master key and returns a copy of the
// resulting private key. Callers must zero the returned slice after use.
func (s *localSigner) derive(path string) ([]byte, error) {
	indices, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	seed := make([]byte, len(s.seed))
	copy(seed, s.seed)
	s.mu.RUnlock()
	defer zero(seed)

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	for _, index := range indices {
		if key, err = key.NewChildKey(index); err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	out := make([]byte, len(key.Key))
	copy(out, key.Key)
	return out, nil
}

// parsePath parses a BIP-44 path like "m/44'/60'/0'/0/0" into child indices.
func parsePath(path string) ([]uint32, error) {
	if path == "" || path[0] != 'm' {
		return nil, errors.Wrapf(errs.ErrFormat, "invalid derivation path %q", path)
	}

	trimmed := strings.TrimPrefix(path, "m")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return nil, errors.Wrapf(errs.ErrFormat, "derivation path %q has no segments", path)
	}

	segments := strings.Split(trimmed, "/")
	indices := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		hardened := strings.HasSuffix(segment, "'")
		segment = strings.TrimSuffix(segment, "'")

		index, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(errs.ErrFormat, "invalid path segment %q", segment)
		}

		child := uint32(index)
		if hardened {
			if child >= bip32.FirstHardenedChild {
				return nil, errors.Wrapf(errs.ErrFormat, "hardened index %d is out of range", index)
			}
			child += bip32.FirstHardenedChild
		}
		indices = append(indices, child)
	}

	return indices, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
