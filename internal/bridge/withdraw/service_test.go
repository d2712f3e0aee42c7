package withdraw_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/bridge-withdraw/internal/bridge/errs"
	"github/chapool/bridge-withdraw/internal/bridge/l1addr"
	"github/chapool/bridge-withdraw/internal/bridge/reconcile"
	"github/chapool/bridge-withdraw/internal/bridge/signer"
	"github/chapool/bridge-withdraw/internal/bridge/withdraw"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

var (
	testChainID = big.NewInt(1073)
	testBridge  = common.HexToAddress("0x1074000000000000000000000000000000000000")
)

// mockClient is a scripted chain RPC double.
type mockClient struct {
	balance     *big.Int
	nonce       uint64
	gasPrice    *big.Int
	gas         uint64
	estimateErr error

	estimateCalls int
	broadcastRaw  []byte
}

func (m *mockClient) BalanceAt(_ context.Context, _ common.Address) (*big.Int, error) {
	return new(big.Int).Set(m.balance), nil
}

func (m *mockClient) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return m.nonce, nil
}

func (m *mockClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(m.gasPrice), nil
}

func (m *mockClient) EstimateGas(_ context.Context, _, _ common.Address, _ []byte) (uint64, error) {
	m.estimateCalls++
	if m.estimateErr != nil {
		return 0, m.estimateErr
	}
	return m.gas, nil
}

func (m *mockClient) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	m.broadcastRaw = raw
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func weiBalance(baseTokens int64) *big.Int {
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
	wei := new(big.Int).Mul(big.NewInt(baseTokens), factor)
	// Some dust below the base-token unit.
	return wei.Add(wei, big.NewInt(123_456))
}

func testRecipient(t *testing.T) string {
	t.Helper()
	payload := make([]byte, 33)
	for i := 1; i < len(payload); i++ {
		payload[i] = byte(i)
	}
	text, err := l1addr.Encode("rms", payload)
	require.NoError(t, err)
	return text
}

func newTestService(t *testing.T, client withdraw.Client) (withdraw.Service, common.Address) {
	t.Helper()

	signingService, err := signer.NewLocalSigner(testMnemonic, "")
	require.NoError(t, err)

	addrs, err := signingService.GenerateAddresses(context.Background(), 60, 0, 1)
	require.NoError(t, err)

	svc, err := withdraw.NewService(client, signingService, withdraw.Options{
		ChainID:       testChainID,
		BridgeAddress: testBridge,
		AddressPrefix: "rms",
		DecimalsGap:   12,
		CallTimeout:   5 * time.Second,
		Policy:        reconcile.CompatibilityPolicy(),
	})
	require.NoError(t, err)

	return svc, addrs[0]
}

func TestBuildSignedTxEndToEnd(t *testing.T) {
	client := &mockClient{
		balance:  weiBalance(2_000_000),
		nonce:    7,
		gasPrice: big.NewInt(1_000_000_000),
		gas:      100_000,
	}
	svc, from := newTestService(t, client)

	signed, result, err := svc.BuildSignedTx(context.Background(), &withdraw.Request{
		From:           from,
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.NoError(t, err)

	// Compatibility policy: three estimator rounds, second one adopted.
	assert.Equal(t, 3, client.estimateCalls)
	assert.Equal(t, uint64(100_000), result.GasLimit)
	assert.Equal(t, big.NewInt(2_000_000-100_000), result.BaseTokens)
	require.Len(t, result.Rounds, 3)

	// The signed transaction carries the chosen fields and recovers to the
	// originating account.
	assert.Equal(t, uint64(7), signed.Nonce())
	assert.Equal(t, uint64(100_000), signed.Gas())
	assert.Zero(t, signed.Value().Sign())
	assert.Equal(t, testBridge, *signed.To())
	assert.NotEmpty(t, signed.Data())

	sender, err := types.Sender(types.NewEIP155Signer(testChainID), signed)
	require.NoError(t, err)
	assert.Equal(t, from, sender)

	// The raw encoding round-trips.
	decoded := new(types.Transaction)
	require.NoError(t, decoded.UnmarshalBinary(result.RawTx))
	assert.Equal(t, signed.Hash(), decoded.Hash())
	assert.Equal(t, "0x", result.RawTxHex[:2])
}

func TestWithdrawAllBroadcasts(t *testing.T) {
	client := &mockClient{
		balance:  weiBalance(2_000_000),
		nonce:    1,
		gasPrice: big.NewInt(1_000_000_000),
		gas:      90_000,
	}
	svc, from := newTestService(t, client)

	result, err := svc.WithdrawAll(context.Background(), &withdraw.Request{
		From:           from,
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.NoError(t, err)

	require.NotEmpty(t, client.broadcastRaw)
	assert.Equal(t, result.RawTx, client.broadcastRaw)
	assert.NotEmpty(t, result.TxHash)
}

func TestMismatchedAccountFails(t *testing.T) {
	client := &mockClient{
		balance:  weiBalance(2_000_000),
		nonce:    0,
		gasPrice: big.NewInt(1_000_000_000),
		gas:      90_000,
	}
	svc, _ := newTestService(t, client)

	// The key at the derivation path does not control this account.
	other := common.HexToAddress("0x9999999999999999999999999999999999999999")
	_, _, err := svc.BuildSignedTx(context.Background(), &withdraw.Request{
		From:           other,
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.ErrorIs(t, err, errs.ErrMismatch)
	assert.Empty(t, client.broadcastRaw)
}

func TestWrongRecipientPrefixFails(t *testing.T) {
	client := &mockClient{
		balance:  weiBalance(2_000_000),
		nonce:    0,
		gasPrice: big.NewInt(1_000_000_000),
		gas:      90_000,
	}
	signingService := mustSigner(t)
	addrs, err := signingService.GenerateAddresses(context.Background(), 60, 0, 1)
	require.NoError(t, err)

	// The service expects "iota" recipients; the address is encoded for "rms".
	svc, err := withdraw.NewService(client, signingService, withdraw.Options{
		ChainID:       testChainID,
		BridgeAddress: testBridge,
		AddressPrefix: "iota",
		DecimalsGap:   12,
		CallTimeout:   5 * time.Second,
		Policy:        reconcile.CompatibilityPolicy(),
	})
	require.NoError(t, err)

	_, _, err = svc.BuildSignedTx(context.Background(), &withdraw.Request{
		From:           addrs[0],
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.ErrorIs(t, err, errs.ErrFormat)
	assert.Zero(t, client.estimateCalls)
}

func TestEstimationFailureAbortsRun(t *testing.T) {
	client := &mockClient{
		balance:     weiBalance(2_000_000),
		nonce:       0,
		gasPrice:    big.NewInt(1_000_000_000),
		estimateErr: errs.Wrap(errs.ErrEstimation, errors.New("node down"), "estimate"),
	}
	svc, from := newTestService(t, client)

	_, err := svc.WithdrawAll(context.Background(), &withdraw.Request{
		From:           from,
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.ErrorIs(t, err, errs.ErrEstimation)
	assert.Empty(t, client.broadcastRaw)
}

func TestDustOnlyBalanceFails(t *testing.T) {
	client := &mockClient{
		balance:  big.NewInt(999_999_999), // below one base token
		nonce:    0,
		gasPrice: big.NewInt(1_000_000_000),
		gas:      90_000,
	}
	svc, from := newTestService(t, client)

	_, _, err := svc.BuildSignedTx(context.Background(), &withdraw.Request{
		From:           from,
		DerivationPath: "m/44'/60'/0'/0/0",
		Recipient:      testRecipient(t),
	})
	require.Error(t, err)
	assert.Zero(t, client.estimateCalls)
}

func mustSigner(t *testing.T) signer.Signer {
	t.Helper()
	s, err := signer.NewLocalSigner(testMnemonic, "")
	require.NoError(t, err)
	return s
}
