// Package chain wraps the layer-2 JSON-RPC endpoint used by the withdrawal
// flow: balance, nonce and gas price lookups, gas estimation and raw
// transaction broadcast.
package chain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

// Client is an RPC client with failover across multiple URLs. Every
// acquisition health-checks the chosen endpoint and rotates past dead ones.
// It is safe for concurrent use. No method retries on its own; a failure
// surfaces to the caller as a typed error.
type Client struct {
	urls    []string
	clients []*ethclient.Client
	mu      sync.Mutex
	current int
}

// Dial connects to the given RPC URLs. HTTP endpoints connect lazily, so
// reachability is only established by the per-acquisition health check in
// get; endpoints that fail to dial outright are redialed on first use.
func Dial(urls []string) (*Client, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, len(urls))
	connected := 0
	for i, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			continue
		}
		clients[i] = client
		connected++
	}

	if connected == 0 {
		return nil, errors.Wrap(errs.ErrRPC, "failed to connect to any RPC node")
	}

	return &Client{urls: urls, clients: clients}, nil
}

// Close closes all underlying connections.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// BalanceAt returns the account balance at the latest known block.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, wrapAs(errs.ErrRPC, err, "failed to get balance")
	}
	return balance, nil
}

// PendingNonceAt returns the account's pending transaction count.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	client, err := c.get(ctx)
	if err != nil {
		return 0, err
	}

	nonce, err := client.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, wrapAs(errs.ErrRPC, err, "failed to get pending nonce")
	}
	return nonce, nil
}

// SuggestGasPrice returns the node's current gas price suggestion, unmodified.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, wrapAs(errs.ErrRPC, err, "failed to suggest gas price")
	}
	return gasPrice, nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, wrapAs(errs.ErrRPC, err, "failed to get chain id")
	}
	return chainID, nil
}

// EstimateGas asks the node for a gas estimate for the given call.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, calldata []byte) (uint64, error) {
	client, err := c.get(ctx)
	if err != nil {
		return 0, err
	}

	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: calldata,
	})
	if err != nil {
		return 0, wrapAs(errs.ErrEstimation, err, "failed to estimate gas")
	}
	return gas, nil
}

// SendRawTransaction broadcasts a signed raw transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	client, err := c.get(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, errs.Wrap(errs.ErrFormat, err, "failed to decode raw transaction")
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, wrapAs(errs.ErrRPC, err, "failed to broadcast transaction")
	}
	return tx.Hash(), nil
}

// get returns a healthy client, redialing failed endpoints and rotating past
// dead ones. HTTP connections dial lazily, so reachability is only known
// after a round trip; a cheap chain id probe stands in for one.
func (c *Client) get(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(c.clients); i++ {
		idx := (c.current + i) % len(c.clients)
		client := c.clients[idx]
		if client == nil {
			dialed, err := ethclient.DialContext(ctx, c.urls[idx])
			if err != nil {
				log.Warn().
					Str("url", c.urls[idx]).
					Err(err).
					Msg("Failed to reconnect RPC node")
				continue
			}
			c.clients[idx] = dialed
			client = dialed
		}

		if _, err := client.ChainID(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, errs.Wrap(errs.ErrCancelled, err, "rpc endpoint check aborted")
			}
			log.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("RPC node failed health check, rotating to next")
			client.Close()
			c.clients[idx] = nil
			continue
		}

		c.current = idx
		return client, nil
	}

	return nil, errors.Wrap(errs.ErrRPC, "no RPC endpoint is available")
}

// wrapAs tags err with kind, except that cancellation and timeouts always
// surface as ErrCancelled.
func wrapAs(kind error, err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = errs.ErrCancelled
	}
	return errs.Wrap(kind, err, msg)
}
