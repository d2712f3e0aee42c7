// Package txbuild assembles, signs-in and serializes the legacy nine-field
// transaction that carries a bridge withdrawal call.
package txbuild

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UnsignedTx is the canonical pre-signing field set of the legacy transaction
// layout. It is immutable once assembled; the signed transaction is derived
// from it by filling the three signature slots.
type UnsignedTx struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       common.Address
	Value    *big.Int
	Data     []byte
	ChainID  *big.Int
}
