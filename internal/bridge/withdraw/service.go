// Package withdraw drives a full layer-2 to layer-1 withdrawal: it resolves
// the recipient, reconciles the amount with the gas fee, has the transaction
// signed externally and broadcasts it once the sender check passes.
package withdraw

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/chapool/bridge-withdraw/internal/bridge/iscmagic"
	"github/chapool/bridge-withdraw/internal/bridge/l1addr"
	"github/chapool/bridge-withdraw/internal/bridge/reconcile"
	"github/chapool/bridge-withdraw/internal/bridge/signer"
	"github/chapool/bridge-withdraw/internal/bridge/txbuild"
)

// Service builds and broadcasts full-balance bridge withdrawals. Each call is
// an independent, stateless run; concurrent runs for the same account are the
// caller's nonce-ordering problem.
type Service interface {
	// WithdrawAll moves the account's entire spendable balance to the
	// layer-1 recipient and broadcasts the resulting transaction.
	WithdrawAll(ctx context.Context, req *Request) (*Result, error)

	// BuildSignedTx runs the pipeline up to and including the sender check,
	// without broadcasting.
	BuildSignedTx(ctx context.Context, req *Request) (*types.Transaction, *Result, error)
}

type service struct {
	client Client
	signer signer.Signer
	opts   Options
}

// NewService creates a withdrawal service.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(client Client, signingService signer.Signer, opts Options) (Service, error) {
	if client == nil || signingService == nil {
		return nil, errors.New("client and signer are required")
	}
	if opts.ChainID == nil || opts.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id must be positive")
	}
	if opts.AddressPrefix == "" {
		return nil, errors.New("address prefix is required")
	}
	if opts.CallTimeout <= 0 {
		return nil, errors.New("call timeout must be positive")
	}

	return &service{
		client: client,
		signer: signingService,
		opts:   opts,
	}, nil
}

// WithdrawAll builds, verifies and broadcasts the withdrawal transaction.
func (s *service) WithdrawAll(ctx context.Context, req *Request) (*Result, error) {
	_, result, err := s.BuildSignedTx(ctx, req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	hash, err := s.client.SendRawTransaction(callCtx, result.RawTx)
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to broadcast withdrawal")
	}
	result.TxHash = hash.Hex()

	log.Info().
		Str("tx_hash", result.TxHash).
		Str("from", req.From.Hex()).
		Str("recipient", req.Recipient).
		Str("base_tokens", result.BaseTokens.String()).
		Msg("Withdrawal broadcast")

	return result, nil
}

// BuildSignedTx runs the full pipeline without broadcasting: fresh chain
// reads, the reconciliation rounds, external signing, signature
// normalization, serialization and the sender-match check.
func (s *service) BuildSignedTx(ctx context.Context, req *Request) (*types.Transaction, *Result, error) {
	recipient, err := l1addr.Decode(req.Recipient, s.opts.AddressPrefix)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid recipient address")
	}

	balance, nonce, gasPrice, err := s.readChainState(ctx, req.From)
	if err != nil {
		return nil, nil, err
	}

	baseTokens := reconcile.ToBaseTokens(balance, s.opts.DecimalsGap)
	if baseTokens.Sign() <= 0 {
		return nil, nil, errors.Errorf("balance %s is below one base token", balance)
	}

	reconciler, err := reconcile.NewReconciler(
		&timeoutEstimator{client: s.client, timeout: s.opts.CallTimeout},
		func(amount *big.Int) ([]byte, error) {
			return iscmagic.BuildWithdrawCalldata(recipient, amount)
		},
		s.opts.Policy,
	)
	if err != nil {
		return nil, nil, err
	}

	fixed, err := reconciler.Run(ctx, req.From, s.opts.BridgeAddress, baseTokens)
	if err != nil {
		return nil, nil, err
	}

	unsigned := txbuild.Assemble(nonce, gasPrice, fixed.GasLimit, s.opts.BridgeAddress, fixed.Calldata, s.opts.ChainID)
	digest := txbuild.SigningDigest(unsigned)

	signCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	rawSig, err := s.signer.SignDigest(signCtx, digest, req.DerivationPath)
	cancel()
	if err != nil {
		return nil, nil, errors.Wrap(err, "external signing failed")
	}

	v, r, sigS, err := txbuild.Normalize(rawSig, s.opts.ChainID)
	if err != nil {
		return nil, nil, err
	}

	signed := txbuild.Attach(unsigned, v, r, sigS)
	raw, rawHex, err := txbuild.Serialize(signed)
	if err != nil {
		return nil, nil, err
	}

	if err := txbuild.VerifySender(signed, s.opts.ChainID, req.From); err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("from", req.From.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas_limit", fixed.GasLimit).
		Str("base_tokens", fixed.BaseTokens.String()).
		Msg("Withdrawal transaction built and verified")

	return signed, &Result{
		RawTx:      raw,
		RawTxHex:   rawHex,
		BaseTokens: fixed.BaseTokens,
		GasLimit:   fixed.GasLimit,
		GasPrice:   gasPrice,
		Nonce:      nonce,
		Rounds:     fixed.Rounds,
	}, nil
}

// readChainState takes the fresh balance, nonce and gas price reads the flow
// must start from.
func (s *service) readChainState(ctx context.Context, from common.Address) (*big.Int, uint64, *big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	balance, err := s.client.BalanceAt(callCtx, from)
	cancel()
	if err != nil {
		return nil, 0, nil, errors.Wrap(err, "failed to read account balance")
	}

	callCtx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
	nonce, err := s.client.PendingNonceAt(callCtx, from)
	cancel()
	if err != nil {
		return nil, 0, nil, errors.Wrap(err, "failed to read pending nonce")
	}

	callCtx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
	gasPrice, err := s.client.SuggestGasPrice(callCtx)
	cancel()
	if err != nil {
		return nil, 0, nil, errors.Wrap(err, "failed to read gas price")
	}

	return balance, nonce, gasPrice, nil
}

// timeoutEstimator bounds each estimation round with the configured call
// timeout.
type timeoutEstimator struct {
	client  Client
	timeout time.Duration
}

func (e *timeoutEstimator) EstimateGas(ctx context.Context, from, to common.Address, calldata []byte) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.client.EstimateGas(callCtx, from, to, calldata)
}
