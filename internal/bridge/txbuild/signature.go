package txbuild

import (
	"math/big"

	"github.com/pkg/errors"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
	"github/chapool/bridge-withdraw/internal/bridge/signer"
)

const (
	legacyRecoveryOffset = 27
	eip155VOffset        = 35
)

// Normalize converts a raw recovery-parameter signature into the
// replay-protected (v, r, s) triple for the given chain:
//
//	v = chainID*2 + 35 + parity
//
// r and s pass through unchanged. This transform is pure and never touches
// key material.
func Normalize(raw signer.RawSignature, chainID *big.Int) (v, r, s *big.Int, err error) {
	parity := raw.RecoveryParam
	// Some signers hand back the legacy 27/28 form.
	if parity >= legacyRecoveryOffset {
		parity -= legacyRecoveryOffset
	}
	if parity > 1 {
		return nil, nil, nil, errors.Wrapf(errs.ErrFormat,
			"recovery parameter %d is not a parity bit", raw.RecoveryParam)
	}
	if chainID == nil || chainID.Sign() < 0 {
		return nil, nil, nil, errors.Wrap(errs.ErrFormat, "chain id must be non-negative")
	}

	v = new(big.Int).Mul(chainID, big.NewInt(2))
	v.Add(v, big.NewInt(eip155VOffset+int64(parity)))
	r = new(big.Int).SetBytes(raw.R[:])
	s = new(big.Int).SetBytes(raw.S[:])
	return v, r, s, nil
}
