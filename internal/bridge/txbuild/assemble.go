package txbuild

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Assemble builds the unsigned transaction for a bridge call. Value is
// always zero: the withdrawn amount travels inside the calldata, not as
// native transfer value.
func Assemble(nonce uint64, gasPrice *big.Int, gasLimit uint64, bridge common.Address, calldata []byte, chainID *big.Int) UnsignedTx {
	return UnsignedTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       bridge,
		Value:    big.NewInt(0),
		Data:     calldata,
		ChainID:  chainID,
	}
}

// SigningDigest returns the hash the external signer must sign: the
// replay-protected hash over the unsigned field vector, chain id included.
func SigningDigest(tx UnsignedTx) common.Hash {
	return types.NewEIP155Signer(tx.ChainID).Hash(legacyTx(tx, nil, nil, nil))
}

func legacyTx(tx UnsignedTx, v, r, s *big.Int) *types.Transaction {
	to := tx.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    tx.Nonce,
		GasPrice: tx.GasPrice,
		Gas:      tx.GasLimit,
		To:       &to,
		Value:    tx.Value,
		Data:     tx.Data,
		V:        v,
		R:        r,
		S:        s,
	})
}
