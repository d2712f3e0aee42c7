package txbuild

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

// Attach folds (v, r, s) into the unsigned transaction's field vector at the
// three signature slots. Every other field is taken from the unsigned source.
func Attach(tx UnsignedTx, v, r, s *big.Int) *types.Transaction {
	return legacyTx(tx, v, r, s)
}

// Serialize produces the canonical binary encoding of a signed transaction
// and its 0x-prefixed hex form for broadcast.
func Serialize(signed *types.Transaction) ([]byte, string, error) {
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to encode signed transaction")
	}
	return raw, hexutil.Encode(raw), nil
}

// RecoverSender re-derives the sending address from a signed transaction.
func RecoverSender(signed *types.Transaction, chainID *big.Int) (common.Address, error) {
	sender, err := types.Sender(types.NewEIP155Signer(chainID), signed)
	if err != nil {
		return common.Address{}, errs.Wrap(errs.ErrFormat, err, "failed to recover sender")
	}
	return sender, nil
}

// VerifySender checks the pipeline's primary correctness assertion: the
// address recovered from the signed transaction must equal the account the
// withdrawal was built for.
func VerifySender(signed *types.Transaction, chainID *big.Int, from common.Address) error {
	sender, err := RecoverSender(signed, chainID)
	if err != nil {
		return err
	}
	if sender != from {
		return errors.Wrapf(errs.ErrMismatch,
			"recovered sender %s does not match account %s", sender.Hex(), from.Hex())
	}
	return nil
}
