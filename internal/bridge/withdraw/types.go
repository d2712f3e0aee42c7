package withdraw

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github/chapool/bridge-withdraw/internal/bridge/reconcile"
)

// Request identifies the account to drain and the layer-1 recipient.
type Request struct {
	// From is the layer-2 account whose full spendable balance moves to L1.
	From common.Address

	// DerivationPath locates From's key at the external signer.
	DerivationPath string

	// Recipient is the bech32-encoded layer-1 destination address.
	Recipient string
}

// Result describes a built (and, after WithdrawAll, broadcast) withdrawal.
type Result struct {
	TxHash     string
	RawTx      []byte
	RawTxHex   string
	BaseTokens *big.Int
	GasLimit   uint64
	GasPrice   *big.Int
	Nonce      uint64
	Rounds     []reconcile.Round
}

// Client is the slice of the chain RPC surface the withdrawal flow needs.
type Client interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to common.Address, calldata []byte) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

// Options configures the withdrawal flow for one chain and bridge contract.
type Options struct {
	// ChainID is the layer-2 chain id used for replay protection.
	ChainID *big.Int

	// BridgeAddress is the well-known bridge contract address.
	BridgeAddress common.Address

	// AddressPrefix is the bech32 human-readable prefix recipients must carry.
	AddressPrefix string

	// DecimalsGap is the decimal gap between the layer-2 unit and the
	// base-token unit; balances are floor-divided by 10^DecimalsGap.
	DecimalsGap uint

	// CallTimeout bounds every single network call.
	CallTimeout time.Duration

	// Policy selects the gas/amount reconciliation behavior.
	Policy reconcile.Policy
}
